package service

import (
	"blockpreview/models"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrConfigNotFound is returned when a config id does not resolve.
var ErrConfigNotFound = errors.New("preview config not found")

// FieldConfigService is the configuration store: preview settings per
// field and per block type, created lazily on first access so nothing has
// to be provisioned when a field or block type is added in the CMS.
type FieldConfigService struct {
	db     *gorm.DB
	schema *SchemaService
}

// NewFieldConfigService constructs a field config service
func NewFieldConfigService(db *gorm.DB, schema *SchemaService) *FieldConfigService {
	return &FieldConfigService{db: db, schema: schema}
}

// GetByFieldHandle is the read-only lookup: no row is created. ok is
// false when no config exists for the handle.
func (s *FieldConfigService) GetByFieldHandle(handle string) (*models.FieldConfig, bool, error) {
	var cfg models.FieldConfig
	if err := s.db.First(&cfg, "field_handle = ?", handle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get field config: %w", err)
	}
	return &cfg, true, nil
}

// GetOrCreateByFieldHandle resolves the field in the schema mirror and
// upserts its config row. Returns (nil, nil) when the handle is unknown
// to the field system: callers treat that as "no data yet", not an error.
func (s *FieldConfigService) GetOrCreateByFieldHandle(handle string) (*models.FieldConfig, error) {
	field, ok, err := s.schema.FieldByHandle(handle)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	cfg, found, err := s.GetByFieldHandle(handle)
	if err != nil {
		return nil, err
	}
	if found {
		return cfg, nil
	}

	cfg = &models.FieldConfig{
		FieldHandle:    field.Handle,
		Kind:           field.Kind,
		EnablePreviews: true,
	}
	if err := s.db.Create(cfg).Error; err != nil {
		return nil, fmt.Errorf("failed to create field config: %w", err)
	}
	return cfg, nil
}

// BlockTypeRow pairs a block type with its preview configuration.
type BlockTypeRow struct {
	BlockType models.BlockType
	Config    models.BlockTypeConfig
}

// GetOrCreateBlockTypeConfigs materializes one config per block type
// currently defined on the field, inserting missing rows as a side
// effect, ordered by block-type name ascending (case-insensitive).
// Returns (nil, nil) when the field handle is unknown.
func (s *FieldConfigService) GetOrCreateBlockTypeConfigs(handle string) ([]BlockTypeRow, error) {
	fieldCfg, err := s.GetOrCreateByFieldHandle(handle)
	if err != nil || fieldCfg == nil {
		return nil, err
	}

	field, ok, err := s.schema.FieldByHandle(handle)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	rows := make([]BlockTypeRow, 0, len(field.BlockTypes))
	for _, bt := range field.BlockTypes {
		var cfg models.BlockTypeConfig
		err := s.db.First(&cfg, "block_type_handle = ?", bt.Handle).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			cfg = models.BlockTypeConfig{
				FieldConfigID:   fieldCfg.ID,
				BlockTypeHandle: bt.Handle,
			}
			if err := s.db.Create(&cfg).Error; err != nil {
				return nil, fmt.Errorf("failed to create block type config: %w", err)
			}
		case err != nil:
			return nil, fmt.Errorf("failed to get block type config: %w", err)
		}
		rows = append(rows, BlockTypeRow{BlockType: bt, Config: cfg})
	}

	return rows, nil
}

// GetBlockTypeConfigByID fetches a block-type config by id.
// Returns ErrConfigNotFound when absent.
func (s *FieldConfigService) GetBlockTypeConfigByID(id uint) (*models.BlockTypeConfig, error) {
	var cfg models.BlockTypeConfig
	if err := s.db.First(&cfg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrConfigNotFound, id)
		}
		return nil, fmt.Errorf("failed to get block type config: %w", err)
	}
	return &cfg, nil
}

// GetFieldConfigByID fetches a field config by id.
// Returns ErrConfigNotFound when absent.
func (s *FieldConfigService) GetFieldConfigByID(id uint) (*models.FieldConfig, error) {
	var cfg models.FieldConfig
	if err := s.db.First(&cfg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrConfigNotFound, id)
		}
		return nil, fmt.Errorf("failed to get field config: %w", err)
	}
	return &cfg, nil
}

// SaveFieldConfig persists attribute changes.
func (s *FieldConfigService) SaveFieldConfig(cfg *models.FieldConfig) error {
	if err := s.db.Save(cfg).Error; err != nil {
		return fmt.Errorf("failed to save field config: %w", err)
	}
	return nil
}

// SaveBlockTypeConfig persists attribute changes.
func (s *FieldConfigService) SaveBlockTypeConfig(cfg *models.BlockTypeConfig) error {
	if err := s.db.Save(cfg).Error; err != nil {
		return fmt.Errorf("failed to save block type config: %w", err)
	}
	return nil
}

// AllBlockTypeConfigs lists every existing block-type config without
// creating any. The settings screen left-joins these against the block
// type list in memory.
func (s *FieldConfigService) AllBlockTypeConfigs() ([]models.BlockTypeConfig, error) {
	var configs []models.BlockTypeConfig
	if err := s.db.Find(&configs).Error; err != nil {
		return nil, fmt.Errorf("failed to list block type configs: %w", err)
	}
	return configs, nil
}
