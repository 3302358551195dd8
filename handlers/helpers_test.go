package handlers

import (
	"blockpreview/assets"
	"blockpreview/database"
	"blockpreview/models"
	"blockpreview/service"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestEnv wires the handler globals to an in-memory database and a
// throwaway asset directory, and restores the previous globals when the
// test finishes.
func setupTestEnv(t *testing.T) {
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

	prevDB := database.DB
	prevServices := service.GlobalServices
	database.DB = db
	service.InitServices(db, store)
	t.Cleanup(func() {
		database.DB = prevDB
		service.GlobalServices = prevServices
	})
}

// testRouter builds a router with the same route layout the server uses,
// minus logging middleware.
func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	api := r.Group("/api")
	api.GET("/previews", GetPreviews)
	api.GET("/categories", ListCategories)
	api.GET("/admin-context", GetAdminContext)
	api.POST("/login", Login)

	auth := api.Group("")
	auth.Use(RequireAcceptsJSON(), RequireLogin())
	auth.POST("/upload-preview-image", UploadPreviewImage)
	auth.POST("/delete-preview-image", DeletePreviewImage)
	auth.POST("/field-configs/:id", SaveFieldConfig)
	auth.POST("/block-type-configs/:id", SaveBlockTypeConfig)
	auth.PUT("/schema", SyncSchema)
	auth.GET("/settings-rows", GetSettingsRows)
	auth.GET("/takeover-fields", GetTakeoverFields)
	auth.PUT("/takeover-fields", SetTakeoverFields)

	return r
}

// seedSchema pushes a small field layout through the schema service.
func seedSchema(t *testing.T) {
	t.Helper()

	err := service.GlobalServices.Schema.Sync(models.SchemaSync{
		Fields: []models.SchemaField{
			{
				Handle: "pageContent",
				Name:   "Page Content",
				Kind:   models.KindMatrix,
				BlockTypes: []models.SchemaBlockType{
					{Handle: "textBlock", Name: "Text"},
					{Handle: "heroBlock", Name: "Hero"},
				},
			},
		},
		Categories: []models.SchemaCategory{
			{ID: 1, Name: "Layout", Description: "Structural blocks"},
		},
	})
	if err != nil {
		t.Fatalf("seed schema: %v", err)
	}
}

// doJSON performs a JSON request against the router and decodes the body.
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if out != nil && w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w
}

// multipartUpload builds a multipart form with a previewId and, when
// filename is non-empty, a previewImage part holding content.
func multipartUpload(t *testing.T, previewID, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("previewId", previewID); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if filename != "" {
		part, err := mw.CreateFormFile("previewImage", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func do(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
