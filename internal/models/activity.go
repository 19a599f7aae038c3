package models

import "time"

type ActivityAction string

const (
	ActionLogin          ActivityAction = "login"
	ActionLogout         ActivityAction = "logout"
	ActionAccountCreated ActivityAction = "account_created"
	ActionStatusChanged  ActivityAction = "status_changed"
)

// ActivityEvent is an immutable entry of the activity ledger.
type ActivityEvent struct {
	ID         string         `json:"id"`
	UserID     string         `json:"userId"`
	Email      string         `json:"email"`
	FullName   string         `json:"fullName"`
	Role       Role           `json:"role"`
	SchoolCode string         `json:"schoolCode,omitempty"`
	Action     ActivityAction `json:"action"`
	Details    string         `json:"details,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

func (e *ActivityEvent) GetID() string   { return e.ID }
func (e *ActivityEvent) SetID(id string) { e.ID = id }
