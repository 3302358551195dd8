package service

import (
	"blockpreview/assets"
	"blockpreview/models"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// PreviewImageService attaches and detaches managed images on block-type
// configs. No locking: concurrent mutation of the same config is
// last-write-wins.
type PreviewImageService struct {
	db      *gorm.DB
	store   *assets.Store
	configs *FieldConfigService
}

// NewPreviewImageService constructs a preview image service
func NewPreviewImageService(db *gorm.DB, store *assets.Store, configs *FieldConfigService) *PreviewImageService {
	return &PreviewImageService{db: db, store: store, configs: configs}
}

// Upload stores the file at tempPath as a managed asset and attaches it
// to the config. The config must exist before any storage write happens;
// ErrConfigNotFound is returned otherwise. A previously attached asset is
// not deleted, only dereferenced.
func (s *PreviewImageService) Upload(configID uint, tempPath, originalName string) (*models.BlockTypeConfig, error) {
	cfg, err := s.configs.GetBlockTypeConfigByID(configID)
	if err != nil {
		return nil, err
	}

	asset, err := s.store.Save(tempPath, originalName)
	if err != nil {
		s.recordFailure("upload", err)
		return nil, err
	}

	cfg.PreviewImageID = &asset.ID
	if err := s.configs.SaveBlockTypeConfig(cfg); err != nil {
		// Roll back the stored file so the asset table does not
		// accumulate entries no config references.
		if derr := s.store.Delete(asset.ID); derr != nil {
			log.Printf("Failed to remove asset %s after save error: %v", asset.ID, derr)
		}
		s.recordFailure("upload", err)
		return nil, err
	}

	return cfg, nil
}

// Detach deletes the attached asset (record and file) and clears the
// reference. Missing assets are tolerated: the reference is cleared
// either way.
func (s *PreviewImageService) Detach(configID uint) (*models.BlockTypeConfig, error) {
	cfg, err := s.configs.GetBlockTypeConfigByID(configID)
	if err != nil {
		return nil, err
	}

	if cfg.PreviewImageID != nil {
		if err := s.store.Delete(*cfg.PreviewImageID); err != nil && !errors.Is(err, assets.ErrNotFound) {
			s.recordFailure("detach", err)
			return nil, fmt.Errorf("failed to delete preview image: %w", err)
		}
	}

	cfg.PreviewImageID = nil
	if err := s.configs.SaveBlockTypeConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// recordFailure keeps a persistent trail of storage failures. Best
// effort: a failure to record is only logged.
func (s *PreviewImageService) recordFailure(source string, cause error) {
	entry := models.ErrorLog{
		Level:   "ERROR",
		Source:  "previewimage." + source,
		Message: cause.Error(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("Failed to record error log: %v", err)
	}
}
