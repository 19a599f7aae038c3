package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/storage"
	"github.com/zaroda/school-backend/internal/tenant"
)

const (
	MsgSignupFieldsRequired = "Full name, email, password and school code are required."
	selfRegistered          = "Self-registered"
)

// TeacherSignupData is a teacher self-registration request.
type TeacherSignupData struct {
	FullName   string
	Email      string
	Password   string
	SchoolCode string
	Phone      string
	Subject    string
	Grade      string
}

type SessionOptions struct {
	SuperAdmin SuperAdminCredentials
	// Schools, when set and non-empty, restricts signup to registered codes.
	Schools  *tenant.Registry
	Settings *SettingsService
}

// SessionManager owns the single process-wide session. It is hydrated from
// the store on construction and changed only by Login, Signup and Logout.
type SessionManager struct {
	store          *storage.Store
	ids            identityStores
	authenticators map[models.Role]authenticator
	schools        *tenant.Registry
	settings       *SettingsService

	mu      sync.RWMutex
	user    *models.AuthUser
	loading bool
}

func NewSessionManager(ctx context.Context, store *storage.Store, opts SessionOptions) *SessionManager {
	admin := opts.SuperAdmin
	if admin == (SuperAdminCredentials{}) {
		admin = DefaultSuperAdmin()
	}
	m := &SessionManager{
		store:          store,
		ids:            newIdentityStores(store),
		authenticators: defaultAuthenticators(admin),
		schools:        opts.Schools,
		settings:       opts.Settings,
		loading:        true,
	}
	m.hydrate(ctx)
	return m
}

func (m *SessionManager) hydrate(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer func() { m.loading = false }()

	user, err := m.ids.session.LoadStrict(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return
	case errors.Is(err, storage.ErrCorrupt), err == nil && !user.Complete():
		slog.Warn("discarding unreadable session", "key", KeyCurrentSession, "error", err)
		if err := m.store.Update(ctx, func(kv storage.KV) error {
			return m.ids.bind(kv).session.Clear(ctx)
		}); err != nil {
			slog.Error("failed to clear session", "error", err)
		}
		return
	case err != nil:
		slog.Error("failed to hydrate session", "error", err)
		return
	}
	m.user = &user
	slog.Info("session restored", "user_id", user.ID, "role", user.Role)
}

// Loading reports whether hydration is still in progress.
func (m *SessionManager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// CurrentUser returns a copy of the session identity, or nil.
func (m *SessionManager) CurrentUser() *models.AuthUser {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// SessionFor returns the session identity when it belongs to userID. The
// check and the read happen under one lock.
func (m *SessionManager) SessionFor(userID string) (models.AuthUser, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil || userID == "" || m.user.ID != userID {
		return models.AuthUser{}, false
	}
	return *m.user, true
}

// Login authenticates creds with the rules of creds.Role. On success the
// session, its persisted copy, the login event and the last-login stamp are
// committed together; on failure nothing is written.
func (m *SessionManager) Login(ctx context.Context, creds Credentials) (models.AuthUser, error) {
	auth, ok := m.authenticators[creds.Role]
	if !ok {
		return models.AuthUser{}, newAuthError(ErrUnsupported, MsgRoleUnavailable)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var user models.AuthUser
	err := m.store.Update(ctx, func(kv storage.KV) error {
		ids := m.ids.bind(kv)
		res, err := auth.authenticate(ctx, ids, creds)
		if err != nil {
			return err
		}
		if res.directoryID != "" {
			if err := ids.directory.RecordLogin(ctx, res.directoryID); err != nil {
				return err
			}
		}
		if res.deputyID != "" {
			if err := ids.deputies.RecordLogin(ctx, res.deputyID); err != nil {
				return err
			}
		}
		if err := ids.session.Save(ctx, res.user); err != nil {
			return err
		}
		details := fmt.Sprintf("Logged in as %s", res.user.Role)
		if _, err := ids.activity.Append(ctx, res.user, models.ActionLogin, details); err != nil {
			return err
		}
		user = res.user
		return nil
	})
	if err != nil {
		return models.AuthUser{}, wrapInternal("login", err)
	}

	m.user = &user
	slog.Info("user logged in", "user_id", user.ID, "role", user.Role, "school_code", user.SchoolCode)
	return user, nil
}

// Signup registers a teacher and starts a session for them in one commit.
func (m *SessionManager) Signup(ctx context.Context, data TeacherSignupData) (models.AuthUser, error) {
	data.Email = models.NormalizeEmail(data.Email)
	data.FullName = strings.TrimSpace(data.FullName)
	data.SchoolCode = tenant.Canonical(data.SchoolCode)
	if data.FullName == "" || data.Email == "" || data.Password == "" || data.SchoolCode == "" {
		return models.AuthUser{}, newAuthError(ErrInvalid, MsgSignupFieldsRequired)
	}
	if m.schools != nil && !m.schools.Allows(data.SchoolCode) {
		return models.AuthUser{}, newAuthError(ErrInvalid, MsgUnknownSchool)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var user models.AuthUser
	err := m.store.Update(ctx, func(kv storage.KV) error {
		ids := m.ids.bind(kv)
		if m.settings != nil {
			settings, err := m.settings.Bind(kv).Get(ctx, data.SchoolCode)
			if err != nil {
				return err
			}
			if !settings.AllowTeacherSignup {
				return newAuthError(ErrForbidden, MsgSignupDisabled)
			}
		}
		taken, err := ids.emailTaken(ctx, data.Email)
		if err != nil {
			return err
		}
		if taken {
			return newAuthError(ErrConflict, MsgAccountExists)
		}

		rec, err := ids.directory.Add(ctx, models.PlatformUserRecord{
			Email:      data.Email,
			FullName:   data.FullName,
			Role:       models.RoleTeacher,
			SchoolCode: data.SchoolCode,
			Phone:      data.Phone,
			Subject:    data.Subject,
			Grade:      data.Grade,
			Status:     models.StatusActive,
			CreatedBy:  selfRegistered,
		})
		if err != nil {
			return err
		}
		user = rec.AuthUser()

		if err := ids.credentials.Set(ctx, data.Email, data.Password); err != nil {
			return err
		}
		legacy, _, err := ids.legacy.Load(ctx)
		if err != nil {
			return err
		}
		if err := ids.legacy.Save(ctx, append(legacy, user)); err != nil {
			return err
		}
		if err := ids.session.Save(ctx, user); err != nil {
			return err
		}
		_, err = ids.activity.Append(ctx, user, models.ActionAccountCreated, "Teacher self-registered")
		return err
	})
	if err != nil {
		return models.AuthUser{}, wrapInternal("signup", err)
	}

	m.user = &user
	slog.Info("teacher signed up", "user_id", user.ID, "school_code", user.SchoolCode)
	return user, nil
}

// Logout records a logout event and clears the session. It is a no-op
// when nobody is logged in.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	user := *m.user
	err := m.store.Update(ctx, func(kv storage.KV) error {
		ids := m.ids.bind(kv)
		if _, err := ids.activity.Append(ctx, user, models.ActionLogout, "Logged out"); err != nil {
			return err
		}
		return ids.session.Clear(ctx)
	})
	if err != nil {
		return wrapInternal("logout", err)
	}
	m.user = nil
	slog.Info("user logged out", "user_id", user.ID, "role", user.Role)
	return nil
}

// wrapInternal leaves *AuthError values untouched and annotates the rest.
func wrapInternal(op string, err error) error {
	var ae *AuthError
	if errors.As(err, &ae) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
