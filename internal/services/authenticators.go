package services

import (
	"context"
	"crypto/subtle"

	"github.com/zaroda/school-backend/internal/models"
)

// Credentials is a login attempt. SchoolCode is only checked for superadmin.
type Credentials struct {
	Role       models.Role
	Email      string
	Password   string
	SchoolCode string
}

// SuperAdminCredentials is the fixed platform-owner triple.
type SuperAdminCredentials struct {
	SchoolCode string
	Email      string
	Password   string
}

func DefaultSuperAdmin() SuperAdminCredentials {
	return SuperAdminCredentials{
		SchoolCode: "Zaroda001",
		Email:      "oduorongo@gmail.com",
		Password:   "ongo123",
	}
}

// loginResult is what every authenticator produces on success. The ids name
// the account whose last-login stamp is bumped, if any.
type loginResult struct {
	user        models.AuthUser
	directoryID string
	deputyID    string
}

// authenticator checks one role's login rules against stores bound to the
// login's arena. Errors returned for rejected attempts are *AuthError.
type authenticator interface {
	authenticate(ctx context.Context, ids identityStores, creds Credentials) (loginResult, error)
}

type superAdminAuth struct {
	creds SuperAdminCredentials
}

func (a superAdminAuth) authenticate(_ context.Context, _ identityStores, creds Credentials) (loginResult, error) {
	schoolOK := creds.SchoolCode == a.creds.SchoolCode
	emailOK := models.NormalizeEmail(creds.Email) == models.NormalizeEmail(a.creds.Email)
	passOK := subtle.ConstantTimeCompare([]byte(creds.Password), []byte(a.creds.Password)) == 1
	if !schoolOK || !emailOK || !passOK {
		return loginResult{}, newAuthError(ErrUnauthorized, MsgSuperAdminInvalid)
	}
	return loginResult{user: models.AuthUser{
		ID:         "superadmin",
		Email:      models.NormalizeEmail(a.creds.Email),
		FullName:   "Super Admin",
		Role:       models.RoleSuperAdmin,
		SchoolCode: a.creds.SchoolCode,
	}}, nil
}

// checkStatus rejects accounts whose status does not permit login.
// Suspension is checked first so its message wins.
func checkStatus(status models.AccountStatus) error {
	switch status {
	case models.StatusSuspended:
		return newAuthError(ErrForbidden, MsgSuspended)
	case models.StatusInactive:
		return newAuthError(ErrForbidden, MsgInactive)
	}
	return nil
}

func verifyPassword(ctx context.Context, ids identityStores, email, password string) error {
	ok, err := ids.credentials.Verify(ctx, email, password)
	if err != nil {
		return err
	}
	if !ok {
		return newAuthError(ErrUnauthorized, MsgIncorrectPassword)
	}
	return nil
}

type teacherAuth struct{}

func (teacherAuth) authenticate(ctx context.Context, ids identityStores, creds Credentials) (loginResult, error) {
	legacy, inLegacy, err := ids.legacyTeacher(ctx, creds.Email)
	if err != nil {
		return loginResult{}, err
	}
	rec, inDirectory, err := ids.directory.FindByEmail(ctx, creds.Email)
	if err != nil {
		return loginResult{}, err
	}
	inDirectory = inDirectory && rec.Role == models.RoleTeacher
	if !inLegacy && !inDirectory {
		return loginResult{}, newAuthError(ErrNotFound, MsgTeacherNotFound)
	}
	if inDirectory {
		if err := checkStatus(rec.Status); err != nil {
			return loginResult{}, err
		}
	}
	if err := verifyPassword(ctx, ids, creds.Email, creds.Password); err != nil {
		return loginResult{}, err
	}

	var res loginResult
	if inDirectory {
		res.directoryID = rec.ID
		res.user = rec.AuthUser()
	}
	if inLegacy {
		res.user = legacy
	}
	return res, nil
}

type hoiAuth struct{}

func (hoiAuth) authenticate(ctx context.Context, ids identityStores, creds Credentials) (loginResult, error) {
	rec, ok, err := ids.directory.FindByEmail(ctx, creds.Email)
	if err != nil {
		return loginResult{}, err
	}
	if !ok || rec.Role != models.RoleHOI {
		return loginResult{}, newAuthError(ErrNotFound, MsgHOINotFound)
	}
	if err := checkStatus(rec.Status); err != nil {
		return loginResult{}, err
	}
	if err := verifyPassword(ctx, ids, creds.Email, creds.Password); err != nil {
		return loginResult{}, err
	}
	return loginResult{user: rec.AuthUser(), directoryID: rec.ID}, nil
}

type deputyAuth struct{}

func (deputyAuth) authenticate(ctx context.Context, ids identityStores, creds Credentials) (loginResult, error) {
	rec, ok, err := ids.deputies.FindByEmail(ctx, creds.Email)
	if err != nil {
		return loginResult{}, err
	}
	if !ok {
		return loginResult{}, newAuthError(ErrNotFound, MsgDHOINotFound)
	}
	if err := checkStatus(rec.Status); err != nil {
		return loginResult{}, err
	}
	if err := verifyPassword(ctx, ids, creds.Email, creds.Password); err != nil {
		return loginResult{}, err
	}
	return loginResult{user: rec.AuthUser(), deputyID: rec.ID}, nil
}

func defaultAuthenticators(admin SuperAdminCredentials) map[models.Role]authenticator {
	return map[models.Role]authenticator{
		models.RoleSuperAdmin: superAdminAuth{creds: admin},
		models.RoleTeacher:    teacherAuth{},
		models.RoleHOI:        hoiAuth{},
		models.RoleDHOI:       deputyAuth{},
	}
}
