package models

import "time"

// AppSetting stores small persistent key/value settings in SQLite.
// It is intentionally generic to avoid adding new tables for every tiny feature.
type AppSetting struct {
	Key       string    `gorm:"primaryKey;size:128" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Setting keys used by the service. The takeover list also has an
// environment default (TAKEOVER_FIELDS); the persisted value wins.
const (
	SettingTakeoverFields = "takeover_fields"
)
