package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/tenant"
)

var (
	superAdmin = models.AuthUser{ID: "superadmin", Email: "oduorongo@gmail.com", Role: models.RoleSuperAdmin, SchoolCode: "Zaroda001"}
	headABC    = models.AuthUser{ID: "hoi-abc", Email: "head@abc.ac.ke", Role: models.RoleHOI, SchoolCode: "ABC123"}
	headXYZ    = models.AuthUser{ID: "hoi-xyz", Email: "head@xyz.ac.ke", Role: models.RoleHOI, SchoolCode: "XYZ999"}
)

func TestCreateAccountAllowsLogin(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	accounts := NewAccountService(store, nil)

	rec, err := accounts.CreateAccount(ctx, superAdmin, NewAccount{
		FullName: "Head Teacher", Email: "Head@ABC.ac.ke", Password: "hoipass", Role: models.RoleHOI, SchoolCode: "ABC123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "head@abc.ac.ke", rec.Email)
	assert.Equal(t, models.StatusActive, rec.Status)
	assert.Equal(t, superAdmin.Email, rec.CreatedBy)

	m := newTestManager(t, store)
	user, err := m.Login(ctx, Credentials{Role: models.RoleHOI, Email: "head@abc.ac.ke", Password: "hoipass"})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, user.ID)
	assert.Equal(t, "/hoi/dashboard", DashboardFor(user.Role))
}

func TestCreateAccountRules(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	schools := tenant.NewRegistry()
	schools.Register(&tenant.SchoolConfig{Code: "ABC123"})
	accounts := NewAccountService(store, schools)
	valid := NewAccount{FullName: "A", Email: "a@abc.ac.ke", Password: "pw", Role: models.RoleTeacher, SchoolCode: "ABC123"}

	_, err := accounts.CreateAccount(ctx, headABC, valid)
	assert.True(t, errors.Is(err, ErrForbidden))

	bad := valid
	bad.Role = models.RoleSuperAdmin
	_, err = accounts.CreateAccount(ctx, superAdmin, bad)
	assert.Equal(t, MsgAccountRoleInvalid, Message(err))

	bad = valid
	bad.SchoolCode = "ELSEWHERE"
	_, err = accounts.CreateAccount(ctx, superAdmin, bad)
	assert.Equal(t, MsgUnknownSchool, Message(err))

	_, err = accounts.CreateAccount(ctx, superAdmin, valid)
	require.NoError(t, err)
	dup := valid
	dup.Email = "A@ABC.AC.KE"
	_, err = accounts.CreateAccount(ctx, superAdmin, dup)
	assert.True(t, errors.Is(err, ErrConflict))

	users, err := NewUserDirectory(store).List(ctx, DirectoryFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestCreateDeputyScopedToHOISchool(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	accounts := NewAccountService(store, nil)

	_, err := accounts.CreateDeputy(ctx, superAdmin, NewAccount{FullName: "D", Email: "d@abc.ac.ke", Password: "pw"})
	assert.True(t, errors.Is(err, ErrForbidden))

	dep, err := accounts.CreateDeputy(ctx, headABC, NewAccount{FullName: "D", Email: "d@abc.ac.ke", Password: "pw", SchoolCode: "XYZ999"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleDHOI, dep.Role)
	assert.Equal(t, "ABC123", dep.SchoolCode)

	m := newTestManager(t, store)
	user, err := m.Login(ctx, Credentials{Role: models.RoleDHOI, Email: "d@abc.ac.ke", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, dep.ID, user.ID)
	require.NoError(t, m.Logout(ctx))
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	accounts := NewAccountService(store, nil)
	teacher, err := accounts.CreateAccount(ctx, superAdmin, NewAccount{FullName: "T", Email: "t@abc.ac.ke", Password: "pw", Role: models.RoleTeacher, SchoolCode: "ABC123"})
	require.NoError(t, err)
	dep, err := accounts.CreateDeputy(ctx, headABC, NewAccount{FullName: "D", Email: "d@abc.ac.ke", Password: "pw"})
	require.NoError(t, err)

	_, err = accounts.SetStatus(ctx, headXYZ, teacher.ID, models.StatusSuspended)
	assert.True(t, errors.Is(err, ErrForbidden), "other school's hoi")

	_, err = accounts.SetStatus(ctx, headABC, teacher.ID, "retired")
	assert.True(t, errors.Is(err, ErrInvalid))

	_, err = accounts.SetStatus(ctx, headABC, "missing", models.StatusSuspended)
	assert.True(t, errors.Is(err, ErrNotFound))

	updated, err := accounts.SetStatus(ctx, headABC, teacher.ID, models.StatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuspended, updated.Status)

	updated, err = accounts.SetStatus(ctx, superAdmin, dep.ID, models.StatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuspended, updated.Status)

	m := newTestManager(t, store)
	_, err = m.Login(ctx, Credentials{Role: models.RoleTeacher, Email: "t@abc.ac.ke", Password: "pw"})
	assert.Equal(t, MsgSuspended, Message(err))
	_, err = m.Login(ctx, Credentials{Role: models.RoleDHOI, Email: "d@abc.ac.ke", Password: "pw"})
	assert.Equal(t, MsgSuspended, Message(err))

	events, err := accounts.ListActivity(ctx, superAdmin, ActivityFilter{Action: models.ActionStatusChanged})
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestListScopesHOIToOwnSchool(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	accounts := NewAccountService(store, nil)
	for _, acct := range []NewAccount{
		{FullName: "A", Email: "a@abc.ac.ke", Password: "pw", Role: models.RoleTeacher, SchoolCode: "ABC123"},
		{FullName: "B", Email: "b@xyz.ac.ke", Password: "pw", Role: models.RoleTeacher, SchoolCode: "XYZ999"},
	} {
		_, err := accounts.CreateAccount(ctx, superAdmin, acct)
		require.NoError(t, err)
	}
	_, err := accounts.CreateDeputy(ctx, headABC, NewAccount{FullName: "D", Email: "d@abc.ac.ke", Password: "pw"})
	require.NoError(t, err)

	all, err := accounts.ListAccounts(ctx, superAdmin, DirectoryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	own, err := accounts.ListAccounts(ctx, headABC, DirectoryFilter{SchoolCode: "XYZ999"})
	require.NoError(t, err)
	require.Len(t, own, 2)
	for _, rec := range own {
		assert.Equal(t, "ABC123", rec.SchoolCode)
	}

	deputies, err := accounts.ListAccounts(ctx, superAdmin, DirectoryFilter{Role: models.RoleDHOI})
	require.NoError(t, err)
	require.Len(t, deputies, 1)

	_, err = accounts.ListAccounts(ctx, models.AuthUser{Role: models.RoleTeacher}, DirectoryFilter{})
	assert.True(t, errors.Is(err, ErrForbidden))

	events, err := accounts.ListActivity(ctx, headABC, ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, headABC.ID, events[0].UserID)

	events, err = accounts.ListActivity(ctx, superAdmin, ActivityFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, headABC.ID, events[0].UserID, "newest first")
}

func TestCreateAccountCanonicalisesSchoolCode(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	accounts := NewAccountService(store, nil)

	rec, err := accounts.CreateAccount(ctx, superAdmin, NewAccount{
		FullName: "T", Email: "t@abc.ac.ke", Password: "pw", Role: models.RoleTeacher, SchoolCode: " abc123 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "ABC123", rec.SchoolCode)

	listed, err := accounts.ListAccounts(ctx, headABC, DirectoryFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, rec.ID, listed[0].ID)
}
