package models

import "strings"

// FieldKind is the closed set of container-field types that support previews.
type FieldKind string

const (
	KindMatrix FieldKind = "matrix"
	KindNeo    FieldKind = "neo"
)

// Valid reports whether the kind is one of the supported variants.
func (k FieldKind) Valid() bool {
	switch k {
	case KindMatrix, KindNeo:
		return true
	}
	return false
}

// Field mirrors a container field defined in the host CMS.
// Rows are pushed by the CMS through the schema endpoint and are
// read-only everywhere else.
type Field struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	Handle     string      `gorm:"uniqueIndex;not null" json:"handle"`
	Name       string      `gorm:"not null" json:"name"`
	Kind       FieldKind   `gorm:"not null;default:'matrix'" json:"kind"`
	BlockTypes []BlockType `json:"block_types,omitempty"`
}

// BlockType mirrors a block type belonging to a container field.
type BlockType struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	FieldID uint   `gorm:"index;not null" json:"field_id"`
	Handle  string `gorm:"uniqueIndex;not null" json:"handle"`
	Name    string `gorm:"not null" json:"name"`
}

// FieldConfig holds the editor-facing preview settings of one field.
// Created on first lookup (upsert-on-read) and never deleted, so rows
// may outlive the field they were created for.
type FieldConfig struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FieldHandle    string    `gorm:"uniqueIndex;not null" json:"field_handle"`
	Kind           FieldKind `gorm:"not null" json:"kind"`
	EnablePreviews bool      `gorm:"default:true" json:"enable_previews"`
	EnableTakeover bool      `gorm:"default:false" json:"enable_takeover"`
}

// BlockTypeConfig holds the preview of one block type: a markdown
// description, an optional category and an optional managed image.
// At most one image is attached at a time.
type BlockTypeConfig struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	FieldConfigID   uint    `gorm:"index;not null" json:"field_config_id"`
	BlockTypeHandle string  `gorm:"uniqueIndex;not null" json:"block_type_handle"`
	Description     string  `gorm:"type:text" json:"description"`
	CategoryID      *uint   `gorm:"index" json:"category_id"`
	PreviewImageID  *string `gorm:"size:36" json:"preview_image_id"`
}

// Category classifies block-type previews. Managed by the CMS side;
// read-only here.
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

// BlockTypeConfigUpdate is the settings-form payload for one block type.
type BlockTypeConfigUpdate struct {
	Description string `json:"description"`
	CategoryID  *uint  `json:"category_id"`
}

// Normalize trims whitespace from input fields
func (u *BlockTypeConfigUpdate) Normalize() {
	u.Description = strings.TrimSpace(u.Description)
}

// FieldConfigUpdate is the settings-form payload for one field.
type FieldConfigUpdate struct {
	EnablePreviews bool `json:"enable_previews"`
	EnableTakeover bool `json:"enable_takeover"`
}

// SchemaSync is the payload the CMS pushes to mirror its field layout.
type SchemaSync struct {
	Fields     []SchemaField    `json:"fields"`
	Categories []SchemaCategory `json:"categories"`
}

type SchemaField struct {
	Handle     string            `json:"handle" binding:"required"`
	Name       string            `json:"name"`
	Kind       FieldKind         `json:"kind"`
	BlockTypes []SchemaBlockType `json:"block_types"`
}

type SchemaBlockType struct {
	Handle string `json:"handle" binding:"required"`
	Name   string `json:"name"`
}

type SchemaCategory struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Normalize trims handles and names across the sync payload.
func (s *SchemaSync) Normalize() {
	for i := range s.Fields {
		f := &s.Fields[i]
		f.Handle = strings.TrimSpace(f.Handle)
		f.Name = strings.TrimSpace(f.Name)
		for j := range f.BlockTypes {
			f.BlockTypes[j].Handle = strings.TrimSpace(f.BlockTypes[j].Handle)
			f.BlockTypes[j].Name = strings.TrimSpace(f.BlockTypes[j].Name)
		}
	}
	for i := range s.Categories {
		s.Categories[i].Name = strings.TrimSpace(s.Categories[i].Name)
	}
}
