package service

import (
	"blockpreview/models"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// SchemaService maintains the local mirror of the CMS's container fields,
// block types and categories. The CMS pushes the full layout through the
// schema endpoint; everything else treats the mirror as read-only.
type SchemaService struct {
	db *gorm.DB
}

// NewSchemaService constructs a schema service
func NewSchemaService(db *gorm.DB) *SchemaService {
	return &SchemaService{db: db}
}

// FieldByHandle fetches a field with its block types. ok is false when the
// handle is unknown.
func (s *SchemaService) FieldByHandle(handle string) (*models.Field, bool, error) {
	var field models.Field
	if err := s.db.First(&field, "handle = ?", handle).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get field: %w", err)
	}

	if err := s.db.Where("field_id = ?", field.ID).Find(&field.BlockTypes).Error; err != nil {
		return nil, false, fmt.Errorf("failed to get block types: %w", err)
	}
	sortBlockTypesByName(field.BlockTypes)

	return &field, true, nil
}

// AllBlockTypes lists every block type in the system, alphabetically by
// name. Used by the settings screen.
func (s *SchemaService) AllBlockTypes() ([]models.BlockType, error) {
	var blockTypes []models.BlockType
	if err := s.db.Find(&blockTypes).Error; err != nil {
		return nil, fmt.Errorf("failed to list block types: %w", err)
	}
	sortBlockTypesByName(blockTypes)
	return blockTypes, nil
}

// Sync makes the mirror match the pushed layout: fields, block types and
// categories are upserted by handle/id and rows absent from the payload
// are removed. Preview configuration rows are intentionally left alone,
// so configs for removed block types persist as orphans.
func (s *SchemaService) Sync(payload models.SchemaSync) error {
	payload.Normalize()

	for i := range payload.Fields {
		f := &payload.Fields[i]
		if f.Handle == "" {
			return fmt.Errorf("field with empty handle in schema payload")
		}
		if f.Kind == "" {
			f.Kind = models.KindMatrix
		}
		if !f.Kind.Valid() {
			return fmt.Errorf("unsupported field kind %q for field %q", f.Kind, f.Handle)
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		fieldHandles := make([]string, 0, len(payload.Fields))
		blockTypeHandles := make([]string, 0)

		for _, f := range payload.Fields {
			field := models.Field{Handle: f.Handle, Name: f.Name, Kind: f.Kind}
			var existing models.Field
			err := tx.First(&existing, "handle = ?", f.Handle).Error
			switch {
			case err == gorm.ErrRecordNotFound:
				if err := tx.Create(&field).Error; err != nil {
					return fmt.Errorf("failed to create field %s: %w", f.Handle, err)
				}
			case err != nil:
				return fmt.Errorf("failed to look up field %s: %w", f.Handle, err)
			default:
				existing.Name = f.Name
				existing.Kind = f.Kind
				if err := tx.Save(&existing).Error; err != nil {
					return fmt.Errorf("failed to update field %s: %w", f.Handle, err)
				}
				field = existing
			}
			fieldHandles = append(fieldHandles, f.Handle)

			for _, bt := range f.BlockTypes {
				if bt.Handle == "" {
					return fmt.Errorf("block type with empty handle on field %s", f.Handle)
				}
				blockType := models.BlockType{FieldID: field.ID, Handle: bt.Handle, Name: bt.Name}
				var existingBT models.BlockType
				err := tx.First(&existingBT, "handle = ?", bt.Handle).Error
				switch {
				case err == gorm.ErrRecordNotFound:
					if err := tx.Create(&blockType).Error; err != nil {
						return fmt.Errorf("failed to create block type %s: %w", bt.Handle, err)
					}
				case err != nil:
					return fmt.Errorf("failed to look up block type %s: %w", bt.Handle, err)
				default:
					existingBT.FieldID = field.ID
					existingBT.Name = bt.Name
					if err := tx.Save(&existingBT).Error; err != nil {
						return fmt.Errorf("failed to update block type %s: %w", bt.Handle, err)
					}
				}
				blockTypeHandles = append(blockTypeHandles, bt.Handle)
			}
		}

		// Remove mirror rows the CMS no longer reports.
		if err := deleteAbsent(tx, &models.Field{}, "field", fieldHandles); err != nil {
			return err
		}
		if err := deleteAbsent(tx, &models.BlockType{}, "block type", blockTypeHandles); err != nil {
			return err
		}

		categoryIDs := make([]uint, 0, len(payload.Categories))
		for _, c := range payload.Categories {
			if c.ID == 0 {
				return fmt.Errorf("category with zero id in schema payload")
			}
			cat := models.Category{ID: c.ID, Name: c.Name, Description: c.Description}
			if err := tx.Save(&cat).Error; err != nil {
				return fmt.Errorf("failed to upsert category %d: %w", c.ID, err)
			}
			categoryIDs = append(categoryIDs, c.ID)
		}
		if len(categoryIDs) == 0 {
			if err := tx.Where("1 = 1").Delete(&models.Category{}).Error; err != nil {
				return fmt.Errorf("failed to clear categories: %w", err)
			}
		} else if err := tx.Where("id NOT IN ?", categoryIDs).Delete(&models.Category{}).Error; err != nil {
			return fmt.Errorf("failed to prune categories: %w", err)
		}

		return nil
	})
}

func deleteAbsent(tx *gorm.DB, model any, label string, keepHandles []string) error {
	q := tx
	if len(keepHandles) == 0 {
		q = q.Where("1 = 1")
	} else {
		q = q.Where("handle NOT IN ?", keepHandles)
	}
	if err := q.Delete(model).Error; err != nil {
		return fmt.Errorf("failed to prune %ss: %w", label, err)
	}
	return nil
}

// sortBlockTypesByName orders by display name, case-insensitive.
func sortBlockTypesByName(blockTypes []models.BlockType) {
	sort.SliceStable(blockTypes, func(i, j int) bool {
		return strings.ToLower(blockTypes[i].Name) < strings.ToLower(blockTypes[j].Name)
	})
}
