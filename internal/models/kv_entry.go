package models

import (
	"time"

	"gorm.io/datatypes"
)

// KVEntry is one persisted document of the SQL storage backend.
type KVEntry struct {
	Key       string         `gorm:"primaryKey;size:255" json:"key"`
	Value     datatypes.JSON `gorm:"not null" json:"value"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
