package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zaroda/school-backend/internal/tenant"
)

func TestSettingsDefaultsAndUpdate(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	schools := tenant.NewRegistry()
	schools.Register(&tenant.SchoolConfig{Code: "ABC123", Name: "Alpha Academy"})
	svc := NewSettingsService(store, schools)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC) }

	got, err := svc.Get(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "Alpha Academy", got.SchoolName)
	assert.Equal(t, "2026", got.AcademicYear)
	assert.True(t, got.AllowTeacherSignup)
	assert.False(t, got.MaintenanceMode)

	term := "Term 2"
	on := true
	updated, err := svc.Update(ctx, "ABC123", SettingsPatch{CurrentTerm: &term, MaintenanceMode: &on}, "head@abc.ac.ke")
	require.NoError(t, err)
	assert.Equal(t, "Term 2", updated.CurrentTerm)
	assert.True(t, updated.MaintenanceMode)
	assert.Equal(t, "head@abc.ac.ke", updated.UpdatedBy)

	got, err = svc.Get(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, updated, got)
	assert.Equal(t, "Alpha Academy", got.SchoolName, "unpatched fields keep their values")
}

func TestSettingsCorruptValueFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.NoError(t, store.Put(ctx, settingsKey("ABC123"), []byte("garbage")))

	got, err := NewSettingsService(store, nil).Get(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", got.SchoolCode)
	assert.True(t, got.AllowTeacherSignup)
}
