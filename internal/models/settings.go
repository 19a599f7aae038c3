package models

import "time"

// PlatformSettings is the per-school settings singleton.
type PlatformSettings struct {
	SchoolCode         string    `json:"schoolCode"`
	SchoolName         string    `json:"schoolName"`
	AcademicYear       string    `json:"academicYear"`
	CurrentTerm        string    `json:"currentTerm"`
	AllowTeacherSignup bool      `json:"allowTeacherSignup"`
	MaintenanceMode    bool      `json:"maintenanceMode"`
	UpdatedAt          time.Time `json:"updatedAt,omitempty"`
	UpdatedBy          string    `json:"updatedBy,omitempty"`
}
