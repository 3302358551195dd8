package handlers

import (
	"blockpreview/assets"
	"blockpreview/config"
	"blockpreview/database"
	"blockpreview/models"
	"blockpreview/service"
	"blockpreview/version"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetPreviews returns the JSON configuration the admin input widget uses
// for one field: toggles, categories and per-block-type previews.
func GetPreviews(c *gin.Context) {
	kind := models.FieldKind(c.Query("type"))
	fieldHandle := c.Query("fieldHandle")

	payload, err := service.GlobalServices.Assembly.Assemble(kind, fieldHandle)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, payload)
}

// UploadPreviewImage accepts a multipart upload (previewId + previewImage)
// and attaches the stored image to the block-type config. Responds with a
// re-rendered preview-image fragment.
func UploadPreviewImage(c *gin.Context) {
	previewID, ok := parsePreviewID(c)
	if !ok {
		return
	}

	cfg, err := service.GlobalServices.FieldConfig.GetBlockTypeConfigByID(previewID)
	if err != nil {
		if errors.Is(err, service.ErrConfigNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	file, err := c.FormFile("previewImage")
	if err != nil {
		// No file in the request: nothing to do.
		c.Status(http.StatusOK)
		return
	}
	if file.Size > config.Settings.MaxUploadBytes {
		c.JSON(http.StatusOK, gin.H{"error": "uploaded image is too large"})
		return
	}

	// Spool to our own temp location first so a failed store never leaves
	// a partial file in the upload dir.
	tempPath, err := assets.TempFilePath(filepath.Ext(file.Filename))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}
	if err := c.SaveUploadedFile(file, tempPath); err != nil {
		removeTemp(tempPath)
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}

	updated, err := service.GlobalServices.PreviewImage.Upload(cfg.ID, tempPath, file.Filename)
	if err != nil {
		removeTemp(tempPath)
		log.Printf("There was an error uploading the preview image: %v", err)
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}
	removeTemp(tempPath)

	c.JSON(http.StatusOK, gin.H{"html": renderPreviewImageFragment(updated)})
}

// DeletePreviewImage detaches and deletes the config's image, responding
// with the re-rendered fragment.
func DeletePreviewImage(c *gin.Context) {
	previewID, ok := parsePreviewID(c)
	if !ok {
		return
	}

	updated, err := service.GlobalServices.PreviewImage.Detach(previewID)
	if err != nil {
		if errors.Is(err, service.ErrConfigNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"html": renderPreviewImageFragment(updated)})
}

// SaveFieldConfig persists the settings-form toggles for one field config.
func SaveFieldConfig(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req models.FieldConfigUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	cfg, err := service.GlobalServices.FieldConfig.GetFieldConfigByID(id)
	if err != nil {
		if errors.Is(err, service.ErrConfigNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	cfg.EnablePreviews = req.EnablePreviews
	cfg.EnableTakeover = req.EnableTakeover
	if err := service.GlobalServices.FieldConfig.SaveFieldConfig(cfg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "id": cfg.ID})
}

// SaveBlockTypeConfig persists the settings-form description and category
// for one block-type config.
func SaveBlockTypeConfig(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req models.BlockTypeConfigUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	req.Normalize()

	cfg, err := service.GlobalServices.FieldConfig.GetBlockTypeConfigByID(id)
	if err != nil {
		if errors.Is(err, service.ErrConfigNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	if req.CategoryID != nil {
		_, found, err := service.GlobalServices.Category.Get(*req.CategoryID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}
		if !found {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "unknown category id"})
			return
		}
	}

	cfg.Description = req.Description
	cfg.CategoryID = req.CategoryID
	if err := service.GlobalServices.FieldConfig.SaveBlockTypeConfig(cfg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "id": cfg.ID})
}

// SyncSchema replaces the local mirror of the CMS's field layout.
func SyncSchema(c *gin.Context) {
	var req models.SchemaSync
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if err := service.GlobalServices.Schema.Sync(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListCategories lists the category registry.
func ListCategories(c *gin.Context) {
	categories, err := service.GlobalServices.Category.All()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, categories)
}

// ServeAssetTransform streams a rendition of a managed image.
func ServeAssetTransform(kind assets.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		path, err := service.GlobalServices.Assets.RenderTransform(c.Param("id"), kind)
		if err != nil {
			if errors.Is(err, assets.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"detail": "asset not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}
		c.File(path)
	}
}

// GetErrorLogs lists recorded storage failures, newest first.
func GetErrorLogs(c *gin.Context) {
	var logs []models.ErrorLog
	if err := database.DB.Order("id desc").Limit(200).Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, logs)
}

// ClearErrorLogs removes all recorded failures.
func ClearErrorLogs(c *gin.Context) {
	if err := database.DB.Where("1 = 1").Delete(&models.ErrorLog{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// HealthCheck reports service and database health.
func HealthCheck(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if !database.SQLiteUp(c.Request.Context()) {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":  status,
		"version": version.GetFullVersion(),
		"db": gin.H{
			"busyErrors":   database.SQLiteBusyErrorsTotal(),
			"lockedErrors": database.SQLiteLockedErrorsTotal(),
			"slowQueries":  database.SQLiteSlowQueriesTotal(),
		},
	})
}

// parsePreviewID reads the previewId body param shared by the two image
// endpoints. Writes the error response itself when invalid.
func parsePreviewID(c *gin.Context) (uint, bool) {
	raw := c.PostForm("previewId")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "missing required param previewId"})
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid previewId"})
		return 0, false
	}
	return uint(id), true
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// removeTemp clears a spooled upload. Best effort: the file has usually
// been consumed by a successful store already.
func removeTemp(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to remove temp upload %s: %v", path, err)
	}
}
