package service

import (
	"blockpreview/assets"

	"gorm.io/gorm"
)

// Services is the global service container
type Services struct {
	Schema       *SchemaService
	FieldConfig  *FieldConfigService
	Category     *CategoryService
	PreviewImage *PreviewImageService
	Assembly     *AssemblyService
	Assets       *assets.Store
}

// GlobalServices is the global service instance
var GlobalServices *Services

// InitServices initializes all services
func InitServices(db *gorm.DB, store *assets.Store) {
	schemaSvc := NewSchemaService(db)
	fieldConfigSvc := NewFieldConfigService(db, schemaSvc)
	categorySvc := NewCategoryService(db)
	previewImageSvc := NewPreviewImageService(db, store, fieldConfigSvc)
	assemblySvc := NewAssemblyService(fieldConfigSvc, categorySvc, store)

	GlobalServices = &Services{
		Schema:       schemaSvc,
		FieldConfig:  fieldConfigSvc,
		Category:     categorySvc,
		PreviewImage: previewImageSvc,
		Assembly:     assemblySvc,
		Assets:       store,
	}
}
