package services

import "github.com/zaroda/school-backend/internal/tenant"

// Persisted document keys.
const (
	KeyCurrentSession = "current_session"
	KeyLegacyUsers    = "users"
	KeyPasswords      = "passwords"
	KeyPlatformUsers  = "platform_users"
	KeyActivityLog    = "activity_log"
	KeyDeputyAccounts = "dhoi_account"
)

func settingsKey(schoolCode string) string {
	return tenant.SchoolKey("settings", schoolCode)
}
