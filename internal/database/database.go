package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zaroda/school-backend/internal/config"
	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/storage"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is set by Connect for SQL storage drivers and stays nil otherwise.
var DB *gorm.DB

var ErrUnknownDriver = errors.New("unknown storage driver")

func Connect(cfg *config.Config) error {
	var dialector gorm.Dialector
	switch cfg.StorageDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLiteDSN())
	default:
		return fmt.Errorf("%w: %q is not a SQL driver", ErrUnknownDriver, cfg.StorageDriver)
	}

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.StorageDriver == "sqlite" {
		// one writer keeps sqlite from returning SQLITE_BUSY under concurrent commits
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	slog.Info("database connected", "driver", cfg.StorageDriver)
	return nil
}

// MigrateShared runs AutoMigrate for the document table and system logs.
func MigrateShared() error {
	return DB.AutoMigrate(
		&models.KVEntry{},
		&models.SystemLog{},
	)
}

func Ping() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// OpenBackend builds the storage backend selected by cfg.StorageDriver.
func OpenBackend(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	switch cfg.StorageDriver {
	case "memory":
		slog.Warn("using in-memory storage; state is lost on restart")
		return storage.NewMemoryBackend(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
		slog.Info("redis connected", "addr", cfg.RedisAddr)
		return storage.NewRedisBackend(client, cfg.RedisPrefix), nil
	case "postgres", "sqlite":
		if err := Connect(cfg); err != nil {
			return nil, err
		}
		if err := MigrateShared(); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
		return storage.NewSQLBackend(DB), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.StorageDriver)
	}
}
