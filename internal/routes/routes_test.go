package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zaroda/school-backend/internal/apps"
	"github.com/zaroda/school-backend/internal/apps/academics"
	"github.com/zaroda/school-backend/internal/config"
	"github.com/zaroda/school-backend/internal/services"
	"github.com/zaroda/school-backend/internal/storage"
	"github.com/zaroda/school-backend/internal/tenant"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	app      *fiber.App
	sessions *services.SessionManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	services.BcryptCost = bcrypt.MinCost

	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour}
	store := storage.NewStore(storage.NewMemoryBackend())
	schools := tenant.NewRegistry()
	schools.Register(&tenant.SchoolConfig{Code: "ABC123", Name: "Alpha Academy"})
	settings := services.NewSettingsService(store, schools)
	sessions := services.NewSessionManager(context.Background(), store, services.SessionOptions{
		Schools:  schools,
		Settings: settings,
	})

	app := fiber.New()
	Setup(app, cfg, Services{
		Store:    store,
		Sessions: sessions,
		Tokens:   services.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry),
		Accounts: services.NewAccountService(store, schools),
		Settings: settings,
		Schools:  schools,
	}, []apps.Plugin{academics.New()})
	return &testServer{app: app, sessions: sessions}
}

func (s *testServer) call(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func (s *testServer) login(t *testing.T, body map[string]string) string {
	t.Helper()
	resp, out := s.call(t, http.MethodPost, "/api/auth/login", "", body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, out)
	token, _ := out["token"].(string)
	require.NotEmpty(t, token)
	return token
}

var superAdminLogin = map[string]string{
	"role": "superadmin", "email": "oduorongo@gmail.com", "password": "ongo123", "school_code": "Zaroda001",
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.call(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["storage"])
	assert.EqualValues(t, 1, body["school_count"])
}

func TestSignupLoginFlow(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.call(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"full_name": "Test Teacher", "email": "t@x.com", "password": "secret1", "school_code": "ABC123",
		"subject": "Math", "phone": "0712345678", "grade": "Grade 4",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "/teacher/dashboard", body["redirect"])
	token, _ := body["token"].(string)

	resp, body = s.call(t, http.MethodGet, "/api/auth/session", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["loading"])
	assert.Equal(t, "/teacher/dashboard", body["redirect"])

	resp, _ = s.call(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// the token of an ended session is refused
	resp, _ = s.call(t, http.MethodGet, "/api/p/settings", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, body = s.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"role": "teacher", "email": "t@x.com", "password": "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, services.MsgIncorrectPassword, body["message"])

	token = s.login(t, map[string]string{"role": "teacher", "email": "t@x.com", "password": "secret1"})
	resp, body = s.call(t, http.MethodGet, "/api/p/settings", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Alpha Academy", body["schoolName"])

	resp, body = s.call(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"full_name": "Again", "email": "T@X.com", "password": "secret2", "school_code": "ABC123",
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, services.MsgAccountExists, body["message"])
}

func TestLoginErrorStatuses(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		body map[string]string
		code int
	}{
		{map[string]string{"role": "superadmin", "email": "oduorongo@gmail.com", "password": "nope", "school_code": "Zaroda001"}, fiber.StatusUnauthorized},
		{map[string]string{"role": "hoi", "email": "nobody@x.com", "password": "pw"}, fiber.StatusNotFound},
		{map[string]string{"role": "parent", "email": "p@x.com", "password": "pw"}, fiber.StatusNotImplemented},
		{map[string]string{"role": "teacher", "email": "not-an-email", "password": "pw"}, fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		resp, _ := s.call(t, http.MethodPost, "/api/auth/login", "", tt.body)
		assert.Equal(t, tt.code, resp.StatusCode, tt.body)
	}
}

func TestRouteGuard(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.call(t, http.MethodGet, "/hoi/dashboard", "", nil)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	s.login(t, superAdminLogin)
	resp, _ = s.call(t, http.MethodGet, "/hoi/dashboard", "", nil)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/superadmin/dashboard", resp.Header.Get("Location"))

	resp, body := s.call(t, http.MethodGet, "/superadmin/dashboard", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "/superadmin/dashboard", body["dashboard"])
}

func TestAdminFlow(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login(t, superAdminLogin)

	resp, body := s.call(t, http.MethodPost, "/api/admin/accounts", adminToken, map[string]string{
		"full_name": "Head", "email": "head@abc.ac.ke", "password": "hoipass", "role": "hoi", "school_code": "ABC123",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)

	hoiToken := s.login(t, map[string]string{"role": "hoi", "email": "head@abc.ac.ke", "password": "hoipass"})

	// the superadmin token died with its session
	resp, _ = s.call(t, http.MethodGet, "/api/admin/accounts", adminToken, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, body = s.call(t, http.MethodPost, "/api/admin/accounts", hoiToken, map[string]string{
		"full_name": "T", "email": "t@abc.ac.ke", "password": "teachpw", "role": "teacher", "school_code": "ABC123",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, body)

	resp, body = s.call(t, http.MethodPost, "/api/admin/deputies", hoiToken, map[string]string{
		"full_name": "Deputy", "email": "dep@abc.ac.ke", "password": "deppass",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	depID, _ := body["id"].(string)

	resp, body = s.call(t, http.MethodPut, "/api/admin/accounts/"+depID+"/status", hoiToken, map[string]string{"status": "suspended"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "suspended", body["status"])

	resp, body = s.call(t, http.MethodGet, "/api/admin/activity", hoiToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, body["count"], "login, deputy creation and status change")

	off := false
	resp, body = s.call(t, http.MethodPut, "/api/p/settings", hoiToken, map[string]any{"allow_teacher_signup": off})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
	assert.Equal(t, false, body["allowTeacherSignup"])

	resp, body = s.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"role": "dhoi", "email": "dep@abc.ac.ke", "password": "deppass"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, services.MsgSuspended, body["message"])

	resp, body = s.call(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"full_name": "New", "email": "new@abc.ac.ke", "password": "secret1", "school_code": "ABC123",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, services.MsgSignupDisabled, body["message"])
}

func TestAcademicsMountedBehindSession(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.call(t, http.MethodGet, "/api/p/academics/students", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	token := s.login(t, superAdminLogin)
	// a superadmin picks the school to act on
	resp, _ = s.call(t, http.MethodGet, "/api/p/academics/students?school_code=ABC123", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = s.call(t, http.MethodGet, "/api/p/academics/students?school_code=NOPE", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSchoolCodeCaseSharesTenant(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, superAdminLogin)

	resp, body := s.call(t, http.MethodPost, "/api/p/academics/students?school_code=abc123", token, map[string]string{
		"full_name": "Amina", "class_id": "grade-4", "stream_id": "east", "admission_no": "A001",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "ABC123", body["schoolCode"])

	resp, body = s.call(t, http.MethodGet, "/api/p/academics/students?school_code=ABC123", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["count"])
}

func TestMaintenanceModePausesSchoolWrites(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login(t, superAdminLogin)
	resp, body := s.call(t, http.MethodPost, "/api/admin/accounts", adminToken, map[string]string{
		"full_name": "Head", "email": "head@abc.ac.ke", "password": "hoipass", "role": "hoi", "school_code": "ABC123",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)

	hoiToken := s.login(t, map[string]string{"role": "hoi", "email": "head@abc.ac.ke", "password": "hoipass"})
	resp, body = s.call(t, http.MethodPut, "/api/p/settings", hoiToken, map[string]any{"maintenance_mode": true})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)

	student := map[string]string{"full_name": "Amina", "class_id": "grade-4", "admission_no": "A001"}
	resp, body = s.call(t, http.MethodPost, "/api/p/academics/students", hoiToken, student)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, services.MsgMaintenance, body["message"])
	resp, _ = s.call(t, http.MethodGet, "/api/p/academics/students", hoiToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// settings stay writable so maintenance can be switched off
	resp, body = s.call(t, http.MethodPut, "/api/p/settings", hoiToken, map[string]any{"maintenance_mode": false})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
	resp, body = s.call(t, http.MethodPost, "/api/p/academics/students", hoiToken, student)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
}
