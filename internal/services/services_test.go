package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/storage"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	BcryptCost = bcrypt.MinCost
	goleak.VerifyTestMain(m)
}

func newTestStore(t *testing.T) (*storage.Store, *storage.MemoryBackend) {
	t.Helper()
	backend := storage.NewMemoryBackend()
	return storage.NewStore(backend), backend
}

func newTestManager(t *testing.T, store *storage.Store) *SessionManager {
	t.Helper()
	return NewSessionManager(context.Background(), store, SessionOptions{})
}

// seedAccount writes a directory account and its credential directly.
func seedAccount(t *testing.T, store *storage.Store, rec models.PlatformUserRecord, password string) models.PlatformUserRecord {
	t.Helper()
	ctx := context.Background()
	var added models.PlatformUserRecord
	require.NoError(t, store.Update(ctx, func(kv storage.KV) error {
		var err error
		if added, err = NewUserDirectory(kv).Add(ctx, rec); err != nil {
			return err
		}
		return NewCredentialStore(kv).Set(ctx, rec.Email, password)
	}))
	return added
}

func activityCount(t *testing.T, store *storage.Store) int {
	t.Helper()
	events, err := NewActivityLog(store).List(context.Background(), ActivityFilter{})
	require.NoError(t, err)
	return len(events)
}

var exampleSignup = TeacherSignupData{
	FullName:   "Test Teacher",
	Email:      "t@x.com",
	Password:   "secret1",
	SchoolCode: "ABC123",
	Subject:    "Math",
	Phone:      "0712345678",
	Grade:      "Grade 4",
}
