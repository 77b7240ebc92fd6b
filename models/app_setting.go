package models

import "time"

// AppSetting stores a durable key/value pair in SQLite.
// The error log buffer lives under a single key as one JSON document.
type AppSetting struct {
	Key       string    `gorm:"primaryKey;size:128" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
