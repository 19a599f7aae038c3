package services

import (
	"context"
	"time"

	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/storage"
	"github.com/zaroda/school-backend/internal/tenant"
)

// DirectoryFilter narrows List results. Zero fields match everything.
type DirectoryFilter struct {
	SchoolCode string
	Role       models.Role
	Status     models.AccountStatus
}

func (f DirectoryFilter) matches(r models.PlatformUserRecord) bool {
	if f.SchoolCode != "" && !tenant.SameSchool(r.SchoolCode, f.SchoolCode) {
		return false
	}
	if f.Role != "" && r.Role != f.Role {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}

// UserDirectory is the list of teacher/hoi/student/parent platform accounts.
type UserDirectory struct {
	users *storage.EntityStore[models.PlatformUserRecord, *models.PlatformUserRecord]
	now   func() time.Time
}

func NewUserDirectory(kv storage.KV) *UserDirectory {
	return &UserDirectory{
		users: storage.NewEntityStore[models.PlatformUserRecord](kv, KeyPlatformUsers),
		now:   time.Now,
	}
}

func (d *UserDirectory) Bind(kv storage.KV) *UserDirectory {
	return &UserDirectory{users: d.users.Bind(kv), now: d.now}
}

func (d *UserDirectory) FindByEmail(ctx context.Context, email string) (models.PlatformUserRecord, bool, error) {
	email = models.NormalizeEmail(email)
	return d.users.First(ctx, func(r models.PlatformUserRecord) bool {
		return models.NormalizeEmail(r.Email) == email
	})
}

func (d *UserDirectory) FindByID(ctx context.Context, id string) (models.PlatformUserRecord, bool, error) {
	return d.users.Find(ctx, id)
}

// Add assigns an id and stores rec. Status defaults to active.
func (d *UserDirectory) Add(ctx context.Context, rec models.PlatformUserRecord) (models.PlatformUserRecord, error) {
	rec.Email = models.NormalizeEmail(rec.Email)
	if rec.Status == "" {
		rec.Status = models.StatusActive
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = d.now().UTC()
	}
	return d.users.Add(ctx, rec)
}

// RecordLogin stamps the last-login time of account id.
func (d *UserDirectory) RecordLogin(ctx context.Context, id string) error {
	at := d.now().UTC()
	_, _, err := d.users.Update(ctx, id, func(r *models.PlatformUserRecord) {
		r.LastLogin = &at
	})
	return err
}

func (d *UserDirectory) SetStatus(ctx context.Context, id string, status models.AccountStatus) (models.PlatformUserRecord, bool, error) {
	return d.users.Update(ctx, id, func(r *models.PlatformUserRecord) {
		r.Status = status
	})
}

func (d *UserDirectory) List(ctx context.Context, filter DirectoryFilter) ([]models.PlatformUserRecord, error) {
	return d.users.FindBy(ctx, filter.matches)
}
