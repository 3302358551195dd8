package service

import (
	"blockpreview/assets"
	"blockpreview/database"
	"blockpreview/models"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestEnv builds a full service wiring on an in-memory database and a
// throwaway asset directory.
func newTestEnv(t *testing.T) *Services {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	dir := t.TempDir()
	store, err := assets.NewStore(db, dir, filepath.Join(dir, ".transforms"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	schemaSvc := NewSchemaService(db)
	fieldConfigSvc := NewFieldConfigService(db, schemaSvc)
	categorySvc := NewCategoryService(db)

	return &Services{
		Schema:       schemaSvc,
		FieldConfig:  fieldConfigSvc,
		Category:     categorySvc,
		PreviewImage: NewPreviewImageService(db, store, fieldConfigSvc),
		Assembly:     NewAssemblyService(fieldConfigSvc, categorySvc, store),
		Assets:       store,
	}
}

// seedSchema pushes a representative layout: one matrix field with three
// block types (names deliberately unsorted) and two categories.
func seedSchema(t *testing.T, svcs *Services) {
	t.Helper()

	err := svcs.Schema.Sync(models.SchemaSync{
		Fields: []models.SchemaField{
			{
				Handle: "pageContent",
				Name:   "Page Content",
				Kind:   models.KindMatrix,
				BlockTypes: []models.SchemaBlockType{
					{Handle: "textBlock", Name: "text"},
					{Handle: "heroBlock", Name: "Hero"},
					{Handle: "quoteBlock", Name: "Quote"},
				},
			},
			{
				Handle: "sidebar",
				Name:   "Sidebar",
				Kind:   models.KindNeo,
				BlockTypes: []models.SchemaBlockType{
					{Handle: "ctaBlock", Name: "Call to Action"},
				},
			},
		},
		Categories: []models.SchemaCategory{
			{ID: 1, Name: "Layout", Description: "Structural **blocks**"},
			{ID: 2, Name: "Content", Description: "Body copy"},
		},
	})
	if err != nil {
		t.Fatalf("seed schema: %v", err)
	}
}
