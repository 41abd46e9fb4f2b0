package models

import "time"

// Snapshot is one persisted client store, keyed by "<namespace>:<client>:<store>".
type Snapshot struct {
	Key       string    `gorm:"column:key;type:varchar(255);primaryKey"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table created by the goose migrations.
func (Snapshot) TableName() string { return "snapshots" }
