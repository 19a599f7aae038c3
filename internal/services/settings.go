package services

import (
	"context"
	"strings"
	"time"

	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/storage"
	"github.com/zaroda/school-backend/internal/tenant"
)

// SettingsPatch lists the settings fields a caller may change; nil means keep.
type SettingsPatch struct {
	SchoolName         *string `json:"schoolName"`
	AcademicYear       *string `json:"academicYear"`
	CurrentTerm        *string `json:"currentTerm"`
	AllowTeacherSignup *bool   `json:"allowTeacherSignup"`
	MaintenanceMode    *bool   `json:"maintenanceMode"`
}

// SettingsService owns the per-school PlatformSettings singleton.
type SettingsService struct {
	kv      storage.KV
	schools *tenant.Registry
	now     func() time.Time
}

func NewSettingsService(kv storage.KV, schools *tenant.Registry) *SettingsService {
	return &SettingsService{kv: kv, schools: schools, now: time.Now}
}

func (s *SettingsService) Bind(kv storage.KV) *SettingsService {
	return &SettingsService{kv: kv, schools: s.schools, now: s.now}
}

func (s *SettingsService) defaults(schoolCode string) models.PlatformSettings {
	settings := models.PlatformSettings{
		SchoolCode:         schoolCode,
		AllowTeacherSignup: true,
		AcademicYear:       s.now().Format("2006"),
		CurrentTerm:        "Term 1",
	}
	if s.schools != nil {
		settings.SchoolName = s.schools.SchoolName(schoolCode)
	}
	return settings
}

// Get returns the school's settings, or defaults when none are stored.
func (s *SettingsService) Get(ctx context.Context, schoolCode string) (models.PlatformSettings, error) {
	return s.get(ctx, s.kv, schoolCode)
}

func (s *SettingsService) get(ctx context.Context, kv storage.KV, schoolCode string) (models.PlatformSettings, error) {
	schoolCode = tenant.Canonical(schoolCode)
	doc := storage.NewDocument[models.PlatformSettings](kv, settingsKey(schoolCode))
	settings, ok, err := doc.Load(ctx)
	if err != nil {
		return models.PlatformSettings{}, err
	}
	if !ok {
		return s.defaults(schoolCode), nil
	}
	settings.SchoolCode = schoolCode
	return settings, nil
}

func (s *SettingsService) Update(ctx context.Context, schoolCode string, patch SettingsPatch, updatedBy string) (models.PlatformSettings, error) {
	var out models.PlatformSettings
	fn := func(kv storage.KV) error {
		current, err := s.get(ctx, kv, schoolCode)
		if err != nil {
			return err
		}
		if patch.SchoolName != nil {
			current.SchoolName = strings.TrimSpace(*patch.SchoolName)
		}
		if patch.AcademicYear != nil {
			current.AcademicYear = strings.TrimSpace(*patch.AcademicYear)
		}
		if patch.CurrentTerm != nil {
			current.CurrentTerm = strings.TrimSpace(*patch.CurrentTerm)
		}
		if patch.AllowTeacherSignup != nil {
			current.AllowTeacherSignup = *patch.AllowTeacherSignup
		}
		if patch.MaintenanceMode != nil {
			current.MaintenanceMode = *patch.MaintenanceMode
		}
		current.UpdatedAt = s.now().UTC()
		current.UpdatedBy = updatedBy
		out = current
		return storage.NewDocument[models.PlatformSettings](kv, settingsKey(schoolCode)).Save(ctx, current)
	}
	if u, ok := s.kv.(storage.Updater); ok {
		return out, u.Update(ctx, fn)
	}
	return out, fn(s.kv)
}
