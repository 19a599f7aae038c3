package dto

type CreateAccountRequest struct {
	FullName   string `json:"full_name" validate:"required,max=120"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Role       string `json:"role" validate:"required,oneof=teacher hoi student parent"`
	SchoolCode string `json:"school_code" validate:"required"`
	Phone      string `json:"phone" validate:"omitempty,max=20"`
	Subject    string `json:"subject" validate:"omitempty,max=60"`
	Grade      string `json:"grade" validate:"omitempty,max=40"`
}

type CreateDeputyRequest struct {
	FullName string `json:"full_name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
}

type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive suspended"`
}

type SettingsRequest struct {
	SchoolName         *string `json:"school_name" validate:"omitempty,max=120"`
	AcademicYear       *string `json:"academic_year" validate:"omitempty,max=20"`
	CurrentTerm        *string `json:"current_term" validate:"omitempty,max=40"`
	AllowTeacherSignup *bool   `json:"allow_teacher_signup"`
	MaintenanceMode    *bool   `json:"maintenance_mode"`
}
