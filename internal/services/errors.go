package services

import "errors"

// Error kinds surfaced across the session boundary. Match with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrUnsupported  = errors.New("unsupported")
	ErrInvalid      = errors.New("invalid")
)

// User-facing messages.
const (
	MsgSuperAdminInvalid = "Invalid school code, email, or password"
	MsgTeacherNotFound   = "No account found with this email. Please sign up first."
	MsgHOINotFound       = "No HOI account found with this email. HOI accounts must be created by SuperAdmin."
	MsgDHOINotFound      = "No Deputy HOI account found with this email. Deputy HOI accounts must be created by your HOI."
	MsgSuspended         = "Your account has been suspended. Please contact your administrator."
	MsgInactive          = "Your account is inactive. Please contact your administrator."
	MsgIncorrectPassword = "Incorrect password. Please try again."
	MsgRoleUnavailable   = "Login for this role is not yet available."
	MsgAccountExists     = "An account with this email already exists. Please log in instead."
	MsgSignupDisabled    = "Teacher self-registration is disabled for this school."
	MsgUnknownSchool     = "Unknown school code."
	MsgNotPermitted      = "You do not have permission to perform this action."
	MsgAccountNotFound   = "Account not found."
	MsgMaintenance       = "This school is in maintenance mode. Changes are paused until it ends."
)

// AuthError is a user-facing failure with a machine-checkable kind.
type AuthError struct {
	Kind    error
	Message string
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Kind }

func newAuthError(kind error, msg string) *AuthError {
	return &AuthError{Kind: kind, Message: msg}
}

// Message returns the user-facing text of err, or "" if err is not an AuthError.
func Message(err error) string {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return ""
}
