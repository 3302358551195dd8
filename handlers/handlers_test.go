package handlers

import (
	"blockpreview/models"
	"blockpreview/service"
	"blockpreview/state"
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestGetPreviewsInvalidKind(t *testing.T) {
	setupTestEnv(t)
	r := testRouter()

	var resp models.PreviewPayload
	w := doJSON(t, r, http.MethodGet, "/api/previews?type=bogus&fieldHandle=pageContent", "", nil, &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp.Success {
		t.Fatal("expected success=false for invalid kind")
	}
	if resp.Error != "'type' must be 'matrix' or 'neo'" {
		t.Fatalf("unexpected error message: %q", resp.Error)
	}
}

func TestGetPreviewsUnknownField(t *testing.T) {
	setupTestEnv(t)
	r := testRouter()

	var resp models.PreviewPayload
	w := doJSON(t, r, http.MethodGet, "/api/previews?type=matrix&fieldHandle=nope", "", nil, &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp.Success {
		t.Fatal("unknown field is the unsuccessful empty state")
	}
	if resp.Error != "" {
		t.Fatalf("unknown field carries no error message, got %q", resp.Error)
	}
	if resp.Config.Field != nil {
		t.Fatal("unknown field should have nil field summary")
	}
	if len(resp.Config.BlockTypes) != 0 || len(resp.Config.Categories) != 0 {
		t.Fatalf("expected empty nested structures, got %d block types, %d categories",
			len(resp.Config.BlockTypes), len(resp.Config.Categories))
	}
}

func TestGetPreviewsAssemblesField(t *testing.T) {
	setupTestEnv(t)
	seedSchema(t)
	r := testRouter()

	var resp models.PreviewPayload
	w := doJSON(t, r, http.MethodGet, "/api/previews?type=matrix&fieldHandle=pageContent", "", nil, &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !resp.Success {
		t.Fatalf("expected success, got error %q", resp.Error)
	}
	if resp.Config.Field == nil || resp.Config.Field.Handle != "pageContent" {
		t.Fatalf("unexpected field summary: %+v", resp.Config.Field)
	}
	if len(resp.Config.BlockTypes) != 2 {
		t.Fatalf("expected 2 block types, got %d", len(resp.Config.BlockTypes))
	}
	if _, ok := resp.Config.BlockTypes["heroBlock"]; !ok {
		t.Fatal("expected heroBlock keyed by handle")
	}
	if len(resp.Config.Categories) != 1 || resp.Config.Categories[0].Name != "Layout" {
		t.Fatalf("unexpected categories: %+v", resp.Config.Categories)
	}
}

func TestAuthRequired(t *testing.T) {
	setupTestEnv(t)
	r := testRouter()

	// No session token.
	w := doJSON(t, r, http.MethodGet, "/api/settings-rows", "", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", w.Code)
	}

	// Valid token but the client does not accept JSON.
	token := state.Global.Create()
	defer state.Global.Revoke(token)
	req := httptest.NewRequest(http.MethodGet, "/api/settings-rows", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "text/html")
	if w := do(r, req); w.Code != http.StatusNotAcceptable {
		t.Fatalf("expected 406 without JSON accept, got %d", w.Code)
	}

	// Token and accept header present.
	w = doJSON(t, r, http.MethodGet, "/api/settings-rows", token, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with session, got %d", w.Code)
	}
}

func TestSaveBlockTypeConfig(t *testing.T) {
	setupTestEnv(t)
	seedSchema(t)
	token := state.Global.Create()
	defer state.Global.Revoke(token)
	r := testRouter()

	rows, err := service.GlobalServices.FieldConfig.GetOrCreateBlockTypeConfigs("pageContent")
	if err != nil {
		t.Fatalf("create configs: %v", err)
	}
	cfg := rows[0].Config

	catID := uint(1)
	body := models.BlockTypeConfigUpdate{Description: "  A **hero** banner  ", CategoryID: &catID}
	w := doJSON(t, r, http.MethodPost, "/api/block-type-configs/"+strconv.Itoa(int(cfg.ID)), token, body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	saved, err := service.GlobalServices.FieldConfig.GetBlockTypeConfigByID(cfg.ID)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if saved.Description != "A **hero** banner" {
		t.Fatalf("description not trimmed and saved: %q", saved.Description)
	}
	if saved.CategoryID == nil || *saved.CategoryID != catID {
		t.Fatalf("category not saved: %+v", saved.CategoryID)
	}

	// Unknown category is rejected.
	badCat := uint(99)
	w = doJSON(t, r, http.MethodPost, "/api/block-type-configs/"+strconv.Itoa(int(cfg.ID)), token,
		models.BlockTypeConfigUpdate{CategoryID: &badCat}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown category, got %d", w.Code)
	}

	// Unknown config id is a 404.
	w = doJSON(t, r, http.MethodPost, "/api/block-type-configs/9999", token,
		models.BlockTypeConfigUpdate{Description: "x"}, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown config, got %d", w.Code)
	}
}

func TestUploadPreviewImage(t *testing.T) {
	setupTestEnv(t)
	seedSchema(t)
	token := state.Global.Create()
	defer state.Global.Revoke(token)
	r := testRouter()

	rows, err := service.GlobalServices.FieldConfig.GetOrCreateBlockTypeConfigs("pageContent")
	if err != nil {
		t.Fatalf("create configs: %v", err)
	}
	cfg := rows[0].Config
	id := strconv.Itoa(int(cfg.ID))

	// Unknown previewId fails before any file handling.
	body, contentType := multipartUpload(t, "9999", "x.png", pngBytes(t))
	w := do(r, uploadRequest(body, contentType, token))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown previewId, got %d", w.Code)
	}

	// A request without a file part is an empty success.
	body, contentType = multipartUpload(t, id, "", nil)
	w = do(r, uploadRequest(body, contentType, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for missing file, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("expected empty body for missing file, got %q", w.Body.String())
	}

	// A real upload attaches the image and returns the fragment.
	body, contentType = multipartUpload(t, id, "hero.png", pngBytes(t))
	w = do(r, uploadRequest(body, contentType, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for upload, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		HTML  string `json:"html"`
		Error string `json:"error"`
	}
	if err := decodeBody(w, &resp); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if resp.Error != "" {
		t.Fatalf("unexpected upload error: %q", resp.Error)
	}
	if !strings.Contains(resp.HTML, "/assets/thumb/") {
		t.Fatalf("fragment should reference the new thumb, got %q", resp.HTML)
	}

	saved, err := service.GlobalServices.FieldConfig.GetBlockTypeConfigByID(cfg.ID)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if saved.PreviewImageID == nil {
		t.Fatal("preview image id not persisted")
	}

	// Detach removes the reference and renders the placeholder fragment.
	detachBody, detachType := multipartUpload(t, id, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/delete-preview-image", detachBody)
	req.Header.Set("Content-Type", detachType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w = do(r, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for detach, got %d: %s", w.Code, w.Body.String())
	}
	saved, err = service.GlobalServices.FieldConfig.GetBlockTypeConfigByID(cfg.ID)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if saved.PreviewImageID != nil {
		t.Fatalf("preview image id should be cleared, got %v", *saved.PreviewImageID)
	}
}

func TestSyncSchemaRejectsUnknownKind(t *testing.T) {
	setupTestEnv(t)
	token := state.Global.Create()
	defer state.Global.Revoke(token)
	r := testRouter()

	body := models.SchemaSync{
		Fields: []models.SchemaField{{Handle: "broken", Name: "Broken", Kind: "carousel"}},
	}
	w := doJSON(t, r, http.MethodPut, "/api/schema", token, body, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind, got %d: %s", w.Code, w.Body.String())
	}
}

func TestTakeoverFieldsRoundTrip(t *testing.T) {
	setupTestEnv(t)
	token := state.Global.Create()
	defer state.Global.Revoke(token)
	r := testRouter()

	put := map[string][]string{"fields": {"pageContent", "  sidebar  ", ""}}
	w := doJSON(t, r, http.MethodPut, "/api/takeover-fields", token, put, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Fields []string `json:"fields"`
	}
	w = doJSON(t, r, http.MethodGet, "/api/takeover-fields", token, nil, &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(resp.Fields) != 2 || resp.Fields[0] != "pageContent" || resp.Fields[1] != "sidebar" {
		t.Fatalf("unexpected fields after round trip: %v", resp.Fields)
	}
}

func TestAdminContext(t *testing.T) {
	setupTestEnv(t)
	r := testRouter()

	var resp AdminContext
	w := doJSON(t, r, http.MethodGet, "/api/admin-context", "", nil, &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp.DefaultImage == "" {
		t.Fatal("default image should be set")
	}
	if resp.InitSelector != ".matrix-field" {
		t.Fatalf("unexpected init selector %q", resp.InitSelector)
	}
	if resp.TakeoverFields == nil {
		t.Fatal("takeover fields should serialize as a list, not null")
	}
}

func TestSettingsPageUsesInjectedContext(t *testing.T) {
	setupTestEnv(t)
	seedSchema(t)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/settings", func(c *gin.Context) {
		c.Set("adminContext", AdminContext{
			DefaultImage:   "/admin/img/custom-placeholder.svg",
			TakeoverFields: []string{},
			InitSelector:   ".matrix-field",
		})
	}, SettingsPage)

	w := do(r, httptest.NewRequest(http.MethodGet, "/admin/settings", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "/admin/img/custom-placeholder.svg") {
		t.Fatal("settings page should render the context placed by the middleware")
	}
}

func uploadRequest(body *bytes.Buffer, contentType, token string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/upload-preview-image", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func decodeBody(w *httptest.ResponseRecorder, out any) error {
	return json.Unmarshal(w.Body.Bytes(), out)
}

// pngBytes encodes a tiny solid PNG for upload tests.
func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.RGBA{R: 0xff, A: 0xff})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
