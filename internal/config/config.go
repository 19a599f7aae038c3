package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Storage
	StorageDriver string // memory, postgres, sqlite, redis
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisPrefix   string

	// JWT
	JWTSecret string
	JWTExpiry time.Duration

	// SuperAdmin credentials (fixed, never stored)
	SuperAdminSchoolCode string
	SuperAdminEmail      string
	SuperAdminPassword   string

	// Server
	Port        string
	CORSOrigins string
	AppEnv      string
	SentryDSN   string

	// School registry
	SchoolsConfigPath string
}

// Load reads configuration from the environment. A .env file in the working
// directory (or the file named by ENV_FILE) is loaded first when present;
// variables already set in the environment win.
func Load() *Config {
	envFile := getEnv("ENV_FILE", ".env")
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	return &Config{
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "sqlite")),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", ""),
		DBName:        getEnv("DB_NAME", "zaroda_school"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
		SQLitePath:    getEnv("SQLITE_PATH", "zaroda.db"),
		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisPrefix:   getEnv("REDIS_PREFIX", "zaroda:"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpiry: parseDuration(getEnv("JWT_EXPIRY", "12h")),

		SuperAdminSchoolCode: getEnv("SUPERADMIN_SCHOOL_CODE", "Zaroda001"),
		SuperAdminEmail:      getEnv("SUPERADMIN_EMAIL", "oduorongo@gmail.com"),
		SuperAdminPassword:   getEnv("SUPERADMIN_PASSWORD", "ongo123"),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		AppEnv:      getEnv("APP_ENV", "development"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),

		SchoolsConfigPath: getEnv("SCHOOLS_CONFIG_PATH", "schools.json"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// SQLiteDSN opens SQLitePath with immediate transactions and a busy timeout,
// so writers in separate processes queue on the database lock instead of
// failing with SQLITE_BUSY.
func (c *Config) SQLiteDSN() string {
	sep := "?"
	if strings.Contains(c.SQLitePath, "?") {
		sep = "&"
	}
	return c.SQLitePath + sep + "_txlock=immediate&_busy_timeout=5000"
}

// UsesSQL reports whether the storage driver is backed by gorm.
func (c *Config) UsesSQL() bool {
	return c.StorageDriver == "postgres" || c.StorageDriver == "sqlite"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 12 * time.Hour
	}
	return d
}
