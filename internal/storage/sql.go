package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/zaroda/school-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// updateLockID is the postgres advisory lock key held by every update scope.
const updateLockID = 0x7a61726f6461 // "zaroda"

// SQLBackend stores documents in the kv_entries table through gorm.
type SQLBackend struct {
	db *gorm.DB
}

func NewSQLBackend(db *gorm.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

// Migrate creates the kv_entries table.
func (b *SQLBackend) Migrate() error {
	return b.db.AutoMigrate(&models.KVEntry{})
}

func (b *SQLBackend) Get(ctx context.Context, key string) ([]byte, error) {
	return sqlTxn{tx: b.db.WithContext(ctx)}.Get(ctx, key)
}

func (b *SQLBackend) Apply(ctx context.Context, writes []Write) error {
	if len(writes) == 0 {
		return nil
	}
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return sqlTxn{tx: tx}.Apply(ctx, writes)
	})
}

// Transact runs fn in one database transaction. On postgres the transaction
// first takes an advisory lock so update scopes from every process queue
// behind each other. Sqlite gets the same effect from immediate
// transactions, which the connection string asks for.
func (b *SQLBackend) Transact(ctx context.Context, fn func(txn Txn) error) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", updateLockID).Error; err != nil {
				return fmt.Errorf("failed to take update lock: %w", err)
			}
		}
		return fn(sqlTxn{tx: tx})
	})
}

func (b *SQLBackend) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (b *SQLBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// sqlTxn reads and writes kv_entries through one gorm handle, either the
// backend's pool or an open transaction.
type sqlTxn struct {
	tx *gorm.DB
}

func (t sqlTxn) Get(ctx context.Context, key string) ([]byte, error) {
	var entries []models.KVEntry
	res := t.tx.WithContext(ctx).Where("key = ?", key).Limit(1).Find(&entries)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to read %q: %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return []byte(entries[0].Value), nil
}

func (t sqlTxn) Apply(ctx context.Context, writes []Write) error {
	now := time.Now().UTC()
	for _, w := range writes {
		if w.Delete {
			if err := t.tx.WithContext(ctx).Where("key = ?", w.Key).Delete(&models.KVEntry{}).Error; err != nil {
				return fmt.Errorf("failed to delete %q: %w", w.Key, err)
			}
			continue
		}
		entry := models.KVEntry{Key: w.Key, Value: datatypes.JSON(w.Value), UpdatedAt: now}
		err := t.tx.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&entry).Error
		if err != nil {
			return fmt.Errorf("failed to write %q: %w", w.Key, err)
		}
	}
	return nil
}

var (
	_ Backend    = (*SQLBackend)(nil)
	_ Transactor = (*SQLBackend)(nil)
)
