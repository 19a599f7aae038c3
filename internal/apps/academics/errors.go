package academics

import (
	"context"
	"errors"

	"github.com/zaroda/school-backend/internal/storage"
)

var (
	ErrStudentNotFound    = errors.New("student not found")
	ErrInvalidStudent     = errors.New("student full name and class are required")
	ErrDuplicateAdmission = errors.New("admission number already in use")
	ErrInvalidDate        = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidMark        = errors.New("each mark needs a student id and a valid status")
	ErrUnknownStudent     = errors.New("marks may only name active students enrolled in the class stream")
	ErrInvalidClass       = errors.New("class is required")
	ErrInvalidAssignment  = errors.New("teacher, subject and class are required")
	ErrAssignmentExists   = errors.New("teacher is already assigned this subject for the class")
	ErrAssignmentNotFound = errors.New("subject assignment not found")
)

// atomically runs fn in one store scope when kv supports it.
func atomically(ctx context.Context, kv storage.KV, fn func(kv storage.KV) error) error {
	if u, ok := kv.(storage.Updater); ok {
		return u.Update(ctx, fn)
	}
	return fn(kv)
}
