package models

import "time"

type StudentStatus string

const (
	StudentActive      StudentStatus = "active"
	StudentTransferred StudentStatus = "transferred"
)

// Student is a roster entry. Removal is a transition to StudentTransferred.
type Student struct {
	ID            string        `json:"id"`
	SchoolCode    string        `json:"schoolCode"`
	ClassID       string        `json:"classId"`
	StreamID      string        `json:"streamId"`
	AdmissionNo   string        `json:"admissionNo"`
	FullName      string        `json:"fullName"`
	Gender        string        `json:"gender,omitempty"`
	ParentPhone   string        `json:"parentPhone,omitempty"`
	Status        StudentStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	TransferredAt *time.Time    `json:"transferredAt,omitempty"`
}

func (s *Student) GetID() string   { return s.ID }
func (s *Student) SetID(id string) { s.ID = id }

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

// AttendanceRecord is one student's mark for one day. Date is YYYY-MM-DD.
type AttendanceRecord struct {
	ID         string           `json:"id"`
	SchoolCode string           `json:"schoolCode"`
	ClassID    string           `json:"classId"`
	StreamID   string           `json:"streamId"`
	StudentID  string           `json:"studentId"`
	Date       string           `json:"date"`
	Status     AttendanceStatus `json:"status"`
	MarkedBy   string           `json:"markedBy,omitempty"`
	RecordedAt time.Time        `json:"recordedAt"`
}

func (a *AttendanceRecord) GetID() string   { return a.ID }
func (a *AttendanceRecord) SetID(id string) { a.ID = id }

// SubjectAssignment binds a teacher to a subject for one class stream.
type SubjectAssignment struct {
	ID           string    `json:"id"`
	SchoolCode   string    `json:"schoolCode"`
	TeacherID    string    `json:"teacherId"`
	TeacherEmail string    `json:"teacherEmail"`
	Subject      string    `json:"subject"`
	ClassID      string    `json:"classId"`
	StreamID     string    `json:"streamId"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (s *SubjectAssignment) GetID() string   { return s.ID }
func (s *SubjectAssignment) SetID(id string) { s.ID = id }
