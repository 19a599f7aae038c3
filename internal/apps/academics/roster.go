package academics

import (
	"context"
	"strings"
	"time"

	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/storage"
	"github.com/zaroda/school-backend/internal/tenant"
)

type StudentFilter struct {
	ClassID            string
	StreamID           string
	IncludeTransferred bool
}

// StudentPatch lists the editable student fields; nil means keep.
type StudentPatch struct {
	ClassID     *string `json:"class_id"`
	StreamID    *string `json:"stream_id"`
	AdmissionNo *string `json:"admission_no"`
	FullName    *string `json:"full_name"`
	Gender      *string `json:"gender"`
	ParentPhone *string `json:"parent_phone"`
}

func (p StudentPatch) apply(s *models.Student) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&s.ClassID, p.ClassID)
	set(&s.StreamID, p.StreamID)
	set(&s.AdmissionNo, p.AdmissionNo)
	set(&s.FullName, p.FullName)
	set(&s.Gender, p.Gender)
	set(&s.ParentPhone, p.ParentPhone)
}

// StudentRoster keeps one student list per school under students:<school>.
type StudentRoster struct {
	kv  storage.KV
	now func() time.Time
}

func NewStudentRoster(kv storage.KV) *StudentRoster {
	return &StudentRoster{kv: kv, now: time.Now}
}

func (r *StudentRoster) students(kv storage.KV, schoolCode string) *storage.EntityStore[models.Student, *models.Student] {
	return studentsAt(kv, schoolCode)
}

func studentsAt(kv storage.KV, schoolCode string) *storage.EntityStore[models.Student, *models.Student] {
	return storage.NewEntityStore[models.Student](kv, tenant.SchoolKey("students", schoolCode))
}

func (r *StudentRoster) List(ctx context.Context, schoolCode string, filter StudentFilter) ([]models.Student, error) {
	return r.students(r.kv, schoolCode).FindBy(ctx, func(s models.Student) bool {
		if !filter.IncludeTransferred && s.Status == models.StudentTransferred {
			return false
		}
		if filter.ClassID != "" && s.ClassID != filter.ClassID {
			return false
		}
		return filter.StreamID == "" || s.StreamID == filter.StreamID
	})
}

func (r *StudentRoster) Get(ctx context.Context, schoolCode, id string) (models.Student, error) {
	s, ok, err := r.students(r.kv, schoolCode).Find(ctx, id)
	if err != nil {
		return models.Student{}, err
	}
	if !ok {
		return models.Student{}, ErrStudentNotFound
	}
	return s, nil
}

// admissionTaken reports whether another active student already uses no.
func admissionTaken(ctx context.Context, store *storage.EntityStore[models.Student, *models.Student], no, exceptID string) (bool, error) {
	if no == "" {
		return false, nil
	}
	_, found, err := store.First(ctx, func(s models.Student) bool {
		return s.ID != exceptID && s.Status == models.StudentActive && strings.EqualFold(s.AdmissionNo, no)
	})
	return found, err
}

func (r *StudentRoster) Add(ctx context.Context, schoolCode string, s models.Student) (models.Student, error) {
	s.FullName = strings.TrimSpace(s.FullName)
	s.ClassID = strings.TrimSpace(s.ClassID)
	s.StreamID = strings.TrimSpace(s.StreamID)
	s.AdmissionNo = strings.TrimSpace(s.AdmissionNo)
	if s.FullName == "" || s.ClassID == "" {
		return models.Student{}, ErrInvalidStudent
	}
	s.SchoolCode = tenant.Canonical(schoolCode)
	s.Status = models.StudentActive
	s.TransferredAt = nil
	s.CreatedAt = r.now().UTC()

	var added models.Student
	err := atomically(ctx, r.kv, func(kv storage.KV) error {
		store := r.students(kv, schoolCode)
		taken, err := admissionTaken(ctx, store, s.AdmissionNo, "")
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateAdmission
		}
		added, err = store.Add(ctx, s)
		return err
	})
	return added, err
}

func (r *StudentRoster) Update(ctx context.Context, schoolCode, id string, patch StudentPatch) (models.Student, error) {
	var updated models.Student
	err := atomically(ctx, r.kv, func(kv storage.KV) error {
		store := r.students(kv, schoolCode)
		current, ok, err := store.Find(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrStudentNotFound
		}
		patch.apply(&current)
		if current.FullName == "" || current.ClassID == "" {
			return ErrInvalidStudent
		}
		taken, err := admissionTaken(ctx, store, current.AdmissionNo, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateAdmission
		}
		updated, _, err = store.Update(ctx, id, patch.apply)
		return err
	})
	return updated, err
}

// Transfer marks a student as transferred. Transferring twice keeps the
// first transfer time.
func (r *StudentRoster) Transfer(ctx context.Context, schoolCode, id string) (models.Student, error) {
	at := r.now().UTC()
	updated, ok, err := r.students(r.kv, schoolCode).Update(ctx, id, func(s *models.Student) {
		if s.Status == models.StudentTransferred {
			return
		}
		s.Status = models.StudentTransferred
		s.TransferredAt = &at
	})
	if err != nil {
		return models.Student{}, err
	}
	if !ok {
		return models.Student{}, ErrStudentNotFound
	}
	return updated, nil
}
