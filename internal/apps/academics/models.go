package academics

type CreateStudentRequest struct {
	FullName    string `json:"full_name" validate:"required,max=120"`
	ClassID     string `json:"class_id" validate:"required"`
	StreamID    string `json:"stream_id"`
	AdmissionNo string `json:"admission_no" validate:"omitempty,max=40"`
	Gender      string `json:"gender" validate:"omitempty,oneof=male female"`
	ParentPhone string `json:"parent_phone" validate:"omitempty,max=20"`
}

type SaveAttendanceRequest struct {
	ClassID  string `json:"class_id" validate:"required"`
	StreamID string `json:"stream_id"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Marks    []Mark `json:"marks" validate:"required"`
}

type AssignSubjectRequest struct {
	TeacherID    string `json:"teacher_id" validate:"required"`
	TeacherEmail string `json:"teacher_email" validate:"omitempty,email"`
	Subject      string `json:"subject" validate:"required,max=60"`
	ClassID      string `json:"class_id" validate:"required"`
	StreamID     string `json:"stream_id"`
}
