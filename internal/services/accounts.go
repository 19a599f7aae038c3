package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/storage"
	"github.com/zaroda/school-backend/internal/tenant"
)

const (
	MsgAccountFieldsRequired = "Full name, email, password and school code are required."
	MsgAccountRoleInvalid    = "Accounts can only be created for teacher, hoi, student or parent roles."
	MsgStatusInvalid         = "Status must be active, inactive or suspended."
)

// NewAccount is an administrator-created account.
type NewAccount struct {
	FullName   string
	Email      string
	Password   string
	Role       models.Role
	SchoolCode string
	Phone      string
	Subject    string
	Grade      string
}

func (a *NewAccount) normalize() {
	a.FullName = strings.TrimSpace(a.FullName)
	a.Email = models.NormalizeEmail(a.Email)
	a.SchoolCode = tenant.Canonical(a.SchoolCode)
}

func (a NewAccount) record(createdBy string) models.PlatformUserRecord {
	return models.PlatformUserRecord{
		Email:      a.Email,
		FullName:   a.FullName,
		Role:       a.Role,
		SchoolCode: a.SchoolCode,
		Phone:      a.Phone,
		Subject:    a.Subject,
		Grade:      a.Grade,
		Status:     models.StatusActive,
		CreatedBy:  createdBy,
	}
}

// AccountService implements superadmin and HOI account administration.
// Every mutation commits its account, credential and activity event together.
type AccountService struct {
	store   *storage.Store
	ids     identityStores
	schools *tenant.Registry
}

func NewAccountService(store *storage.Store, schools *tenant.Registry) *AccountService {
	return &AccountService{store: store, ids: newIdentityStores(store), schools: schools}
}

var creatableRoles = map[models.Role]bool{
	models.RoleTeacher: true,
	models.RoleHOI:     true,
	models.RoleStudent: true,
	models.RoleParent:  true,
}

func forbidden() error { return newAuthError(ErrForbidden, MsgNotPermitted) }

func (s *AccountService) validate(acct NewAccount) error {
	if acct.FullName == "" || acct.Email == "" || acct.Password == "" || acct.SchoolCode == "" {
		return newAuthError(ErrInvalid, MsgAccountFieldsRequired)
	}
	if s.schools != nil && !s.schools.Allows(acct.SchoolCode) {
		return newAuthError(ErrInvalid, MsgUnknownSchool)
	}
	return nil
}

// CreateAccount adds a directory account. Only superadmin may call it.
func (s *AccountService) CreateAccount(ctx context.Context, actor models.AuthUser, acct NewAccount) (models.PlatformUserRecord, error) {
	if actor.Role != models.RoleSuperAdmin {
		return models.PlatformUserRecord{}, forbidden()
	}
	acct.normalize()
	if !creatableRoles[acct.Role] {
		return models.PlatformUserRecord{}, newAuthError(ErrInvalid, MsgAccountRoleInvalid)
	}
	if err := s.validate(acct); err != nil {
		return models.PlatformUserRecord{}, err
	}

	var created models.PlatformUserRecord
	err := s.store.Update(ctx, func(kv storage.KV) error {
		ids := s.ids.bind(kv)
		taken, err := ids.emailTaken(ctx, acct.Email)
		if err != nil {
			return err
		}
		if taken {
			return newAuthError(ErrConflict, MsgAccountExists)
		}
		if created, err = ids.directory.Add(ctx, acct.record(actor.Email)); err != nil {
			return err
		}
		if err := ids.credentials.Set(ctx, acct.Email, acct.Password); err != nil {
			return err
		}
		details := fmt.Sprintf("Created %s account for %s", acct.Role, acct.Email)
		_, err = ids.activity.Append(ctx, actor, models.ActionAccountCreated, details)
		return err
	})
	if err != nil {
		return models.PlatformUserRecord{}, wrapInternal("create account", err)
	}
	slog.Info("account created", "user_id", created.ID, "role", created.Role, "school_code", created.SchoolCode, "created_by", actor.ID)
	return created, nil
}

// CreateDeputy adds a deputy HOI account to the calling HOI's school.
func (s *AccountService) CreateDeputy(ctx context.Context, actor models.AuthUser, acct NewAccount) (models.PlatformUserRecord, error) {
	if actor.Role != models.RoleHOI {
		return models.PlatformUserRecord{}, forbidden()
	}
	acct.Role = models.RoleDHOI
	acct.SchoolCode = actor.SchoolCode
	acct.normalize()
	if err := s.validate(acct); err != nil {
		return models.PlatformUserRecord{}, err
	}

	var created models.PlatformUserRecord
	err := s.store.Update(ctx, func(kv storage.KV) error {
		ids := s.ids.bind(kv)
		taken, err := ids.emailTaken(ctx, acct.Email)
		if err != nil {
			return err
		}
		if taken {
			return newAuthError(ErrConflict, MsgAccountExists)
		}
		if created, err = ids.deputies.Add(ctx, acct.record(actor.Email)); err != nil {
			return err
		}
		if err := ids.credentials.Set(ctx, acct.Email, acct.Password); err != nil {
			return err
		}
		details := fmt.Sprintf("Created dhoi account for %s", acct.Email)
		_, err = ids.activity.Append(ctx, actor, models.ActionAccountCreated, details)
		return err
	})
	if err != nil {
		return models.PlatformUserRecord{}, wrapInternal("create deputy", err)
	}
	slog.Info("deputy created", "user_id", created.ID, "school_code", created.SchoolCode, "created_by", actor.ID)
	return created, nil
}

// canManage reports whether actor may change target's status. An HOI
// manages non-HOI accounts of their own school.
func canManage(actor models.AuthUser, target models.PlatformUserRecord) bool {
	switch actor.Role {
	case models.RoleSuperAdmin:
		return true
	case models.RoleHOI:
		return tenant.SameSchool(target.SchoolCode, actor.SchoolCode) && target.Role != models.RoleHOI
	}
	return false
}

// SetStatus changes the status of a directory or deputy account.
func (s *AccountService) SetStatus(ctx context.Context, actor models.AuthUser, id string, status models.AccountStatus) (models.PlatformUserRecord, error) {
	if actor.Role != models.RoleSuperAdmin && actor.Role != models.RoleHOI {
		return models.PlatformUserRecord{}, forbidden()
	}
	if !status.Valid() {
		return models.PlatformUserRecord{}, newAuthError(ErrInvalid, MsgStatusInvalid)
	}

	var updated models.PlatformUserRecord
	err := s.store.Update(ctx, func(kv storage.KV) error {
		ids := s.ids.bind(kv)
		target, inDirectory, err := ids.directory.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !inDirectory {
			var ok bool
			if target, ok, err = ids.deputies.FindByID(ctx, id); err != nil {
				return err
			} else if !ok {
				return newAuthError(ErrNotFound, MsgAccountNotFound)
			}
		}
		if !canManage(actor, target) {
			return forbidden()
		}
		if inDirectory {
			updated, _, err = ids.directory.SetStatus(ctx, id, status)
		} else {
			updated, _, err = ids.deputies.SetStatus(ctx, id, status)
		}
		if err != nil {
			return err
		}
		details := fmt.Sprintf("Changed status of %s from %s to %s", target.Email, target.Status, status)
		_, err = ids.activity.Append(ctx, actor, models.ActionStatusChanged, details)
		return err
	})
	if err != nil {
		return models.PlatformUserRecord{}, wrapInternal("set status", err)
	}
	slog.Info("account status changed", "user_id", id, "status", status, "changed_by", actor.ID)
	return updated, nil
}

// ListAccounts returns directory and deputy accounts visible to actor.
// An HOI only ever sees their own school.
func (s *AccountService) ListAccounts(ctx context.Context, actor models.AuthUser, filter DirectoryFilter) ([]models.PlatformUserRecord, error) {
	switch actor.Role {
	case models.RoleSuperAdmin:
	case models.RoleHOI:
		filter.SchoolCode = actor.SchoolCode
	default:
		return nil, forbidden()
	}

	var out []models.PlatformUserRecord
	if filter.Role != models.RoleDHOI {
		users, err := s.ids.directory.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		out = append(out, users...)
	}
	if filter.Role == "" || filter.Role == models.RoleDHOI {
		deputies, err := s.ids.deputies.List(ctx, filter.SchoolCode)
		if err != nil {
			return nil, err
		}
		for _, d := range deputies {
			if filter.Status == "" || d.Status == filter.Status {
				out = append(out, d)
			}
		}
	}
	if out == nil {
		out = []models.PlatformUserRecord{}
	}
	return out, nil
}

// ListActivity returns activity events visible to actor, newest first.
func (s *AccountService) ListActivity(ctx context.Context, actor models.AuthUser, filter ActivityFilter) ([]models.ActivityEvent, error) {
	switch actor.Role {
	case models.RoleSuperAdmin:
	case models.RoleHOI:
		filter.SchoolCode = actor.SchoolCode
	default:
		return nil, forbidden()
	}
	return s.ids.activity.List(ctx, filter)
}
