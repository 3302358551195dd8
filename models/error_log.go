package models

import "time"

// ErrorLog keeps a persistent trail of storage and upload failures so
// editors' bug reports can be matched to a concrete cause.
type ErrorLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Level     string    `gorm:"size:16" json:"level"`  // ERROR, WARN
	Source    string    `gorm:"size:64" json:"source"` // originating module
	Message   string    `gorm:"type:text" json:"message"`
	Detail    string    `gorm:"type:text" json:"detail"`
}
