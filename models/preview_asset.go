package models

import "time"

// PreviewAsset is a managed image file stored by the asset store.
// ID is a UUID; StoredName is the on-disk filename under the upload dir.
type PreviewAsset struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	OriginalName string    `gorm:"not null" json:"original_name"`
	StoredName   string    `gorm:"uniqueIndex;not null" json:"stored_name"`
	ContentType  string    `gorm:"size:128" json:"content_type"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
}
