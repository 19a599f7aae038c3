package academics

import (
	"context"
	"strings"
	"time"

	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/storage"
	"github.com/zaroda/school-backend/internal/tenant"
)

type AssignmentFilter struct {
	TeacherID string
	ClassID   string
	StreamID  string
	Subject   string
}

func (f AssignmentFilter) matches(a models.SubjectAssignment) bool {
	if f.TeacherID != "" && a.TeacherID != f.TeacherID {
		return false
	}
	if f.ClassID != "" && a.ClassID != f.ClassID {
		return false
	}
	if f.StreamID != "" && a.StreamID != f.StreamID {
		return false
	}
	return f.Subject == "" || strings.EqualFold(a.Subject, f.Subject)
}

type AssignmentPatch struct {
	TeacherID    *string `json:"teacher_id"`
	TeacherEmail *string `json:"teacher_email"`
	Subject      *string `json:"subject"`
	ClassID      *string `json:"class_id"`
	StreamID     *string `json:"stream_id"`
}

func (p AssignmentPatch) apply(a *models.SubjectAssignment) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&a.TeacherID, p.TeacherID)
	set(&a.TeacherEmail, p.TeacherEmail)
	set(&a.Subject, p.Subject)
	set(&a.ClassID, p.ClassID)
	set(&a.StreamID, p.StreamID)
	normalizeAssignment(a)
}

func normalizeAssignment(a *models.SubjectAssignment) {
	a.TeacherID = strings.TrimSpace(a.TeacherID)
	a.TeacherEmail = models.NormalizeEmail(a.TeacherEmail)
	a.Subject = strings.TrimSpace(a.Subject)
	a.ClassID = strings.TrimSpace(a.ClassID)
	a.StreamID = strings.TrimSpace(a.StreamID)
}

// SubjectAssignments tracks which teacher teaches which subject to which
// class stream, under subject_assignments:<school>.
type SubjectAssignments struct {
	kv  storage.KV
	now func() time.Time
}

func NewSubjectAssignments(kv storage.KV) *SubjectAssignments {
	return &SubjectAssignments{kv: kv, now: time.Now}
}

func (s *SubjectAssignments) assignments(kv storage.KV, schoolCode string) *storage.EntityStore[models.SubjectAssignment, *models.SubjectAssignment] {
	return storage.NewEntityStore[models.SubjectAssignment](kv, tenant.SchoolKey("subject_assignments", schoolCode))
}

func (s *SubjectAssignments) List(ctx context.Context, schoolCode string, filter AssignmentFilter) ([]models.SubjectAssignment, error) {
	return s.assignments(s.kv, schoolCode).FindBy(ctx, filter.matches)
}

func sameSlot(a, b models.SubjectAssignment) bool {
	return a.TeacherID == b.TeacherID &&
		strings.EqualFold(a.Subject, b.Subject) &&
		a.ClassID == b.ClassID &&
		a.StreamID == b.StreamID
}

func validAssignment(a models.SubjectAssignment) bool {
	return a.TeacherID != "" && a.Subject != "" && a.ClassID != ""
}

func (s *SubjectAssignments) conflicts(ctx context.Context, store *storage.EntityStore[models.SubjectAssignment, *models.SubjectAssignment], a models.SubjectAssignment) error {
	_, found, err := store.First(ctx, func(other models.SubjectAssignment) bool {
		return other.ID != a.ID && sameSlot(a, other)
	})
	if err != nil {
		return err
	}
	if found {
		return ErrAssignmentExists
	}
	return nil
}

// Assign records a new assignment. The same teacher, subject, class and
// stream can only be assigned once.
func (s *SubjectAssignments) Assign(ctx context.Context, schoolCode string, a models.SubjectAssignment) (models.SubjectAssignment, error) {
	normalizeAssignment(&a)
	if !validAssignment(a) {
		return models.SubjectAssignment{}, ErrInvalidAssignment
	}
	a.ID = ""
	a.SchoolCode = tenant.Canonical(schoolCode)
	a.CreatedAt = s.now().UTC()

	var added models.SubjectAssignment
	err := atomically(ctx, s.kv, func(kv storage.KV) error {
		store := s.assignments(kv, schoolCode)
		if err := s.conflicts(ctx, store, a); err != nil {
			return err
		}
		var err error
		added, err = store.Add(ctx, a)
		return err
	})
	return added, err
}

func (s *SubjectAssignments) Update(ctx context.Context, schoolCode, id string, patch AssignmentPatch) (models.SubjectAssignment, error) {
	var updated models.SubjectAssignment
	err := atomically(ctx, s.kv, func(kv storage.KV) error {
		store := s.assignments(kv, schoolCode)
		current, ok, err := store.Find(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAssignmentNotFound
		}
		patch.apply(&current)
		if !validAssignment(current) {
			return ErrInvalidAssignment
		}
		if err := s.conflicts(ctx, store, current); err != nil {
			return err
		}
		updated, _, err = store.Update(ctx, id, patch.apply)
		return err
	})
	return updated, err
}

func (s *SubjectAssignments) Remove(ctx context.Context, schoolCode, id string) error {
	n, err := s.assignments(s.kv, schoolCode).RemoveWhere(ctx, func(a models.SubjectAssignment) bool {
		return a.ID == id
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}
