package services

import (
	"context"

	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/storage"
)

// identityStores groups every store touched by login, signup and account
// administration so a whole set can be bound to one arena.
type identityStores struct {
	session     *storage.Document[models.AuthUser]
	legacy      *storage.Document[[]models.AuthUser]
	credentials *CredentialStore
	directory   *UserDirectory
	deputies    *DeputyAccounts
	activity    *ActivityLog
}

func newIdentityStores(kv storage.KV) identityStores {
	return identityStores{
		session:     storage.NewDocument[models.AuthUser](kv, KeyCurrentSession),
		legacy:      storage.NewDocument[[]models.AuthUser](kv, KeyLegacyUsers),
		credentials: NewCredentialStore(kv),
		directory:   NewUserDirectory(kv),
		deputies:    NewDeputyAccounts(kv),
		activity:    NewActivityLog(kv),
	}
}

func (s identityStores) bind(kv storage.KV) identityStores {
	return identityStores{
		session:     s.session.Bind(kv),
		legacy:      s.legacy.Bind(kv),
		credentials: s.credentials.Bind(kv),
		directory:   s.directory.Bind(kv),
		deputies:    s.deputies.Bind(kv),
		activity:    s.activity.Bind(kv),
	}
}

// legacyTeacher finds a self-registered teacher by email.
func (s identityStores) legacyTeacher(ctx context.Context, email string) (models.AuthUser, bool, error) {
	users, _, err := s.legacy.Load(ctx)
	if err != nil {
		return models.AuthUser{}, false, err
	}
	email = models.NormalizeEmail(email)
	for _, u := range users {
		if u.Role == models.RoleTeacher && models.NormalizeEmail(u.Email) == email {
			return u, true, nil
		}
	}
	return models.AuthUser{}, false, nil
}

// emailTaken reports whether email is known to any account source.
func (s identityStores) emailTaken(ctx context.Context, email string) (bool, error) {
	users, _, err := s.legacy.Load(ctx)
	if err != nil {
		return false, err
	}
	email = models.NormalizeEmail(email)
	for _, u := range users {
		if models.NormalizeEmail(u.Email) == email {
			return true, nil
		}
	}
	if _, ok, err := s.directory.FindByEmail(ctx, email); err != nil || ok {
		return ok, err
	}
	if _, ok, err := s.deputies.FindByEmail(ctx, email); err != nil || ok {
		return ok, err
	}
	_, ok, err := s.credentials.Get(ctx, email)
	return ok, err
}
