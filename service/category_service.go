package service

import (
	"blockpreview/models"
	"fmt"

	"gorm.io/gorm"
)

// CategoryService reads the category registry. Categories are managed on
// the CMS side and arrive through the schema sync; nothing here mutates
// them.
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService constructs a category service
func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// All lists every category ordered by name.
func (s *CategoryService) All() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("name asc").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Get fetches a category by id. ok is false when absent.
func (s *CategoryService) Get(id uint) (*models.Category, bool, error) {
	var category models.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, true, nil
}
