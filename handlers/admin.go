package handlers

import (
	"blockpreview/config"
	"blockpreview/database"
	"blockpreview/models"
	"blockpreview/service"
	"embed"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var adminTemplates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// AdminContext is the page context injected into every admin-area render:
// the placeholder image, the takeover field list and the widget init call.
type AdminContext struct {
	DefaultImage   string   `json:"defaultImage"`
	TakeoverFields []string `json:"takeoverFields"`
	InitSelector   string   `json:"initSelector"`
}

// currentAdminContext assembles the injection context from config and the
// persisted settings.
func currentAdminContext() AdminContext {
	return AdminContext{
		DefaultImage:   config.Settings.DefaultImagePath,
		TakeoverFields: takeoverFields(),
		InitSelector:   ".matrix-field",
	}
}

// InjectAdminContext makes the admin page context available to admin-area
// renders. Only requests under the admin prefix get the injection.
func InjectAdminContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/admin") {
			c.Set("adminContext", currentAdminContext())
		}
		c.Next()
	}
}

// injectedAdminContext returns the context placed by InjectAdminContext,
// assembling a fresh one when the handler runs outside that middleware.
func injectedAdminContext(c *gin.Context) AdminContext {
	if v, exists := c.Get("adminContext"); exists {
		if ctx, ok := v.(AdminContext); ok {
			return ctx
		}
	}
	return currentAdminContext()
}

// GetAdminContext serves the injection context to the front-end bundle.
func GetAdminContext(c *gin.Context) {
	c.JSON(http.StatusOK, currentAdminContext())
}

// settingsRowView is the render model for one settings-screen row.
type settingsRowView struct {
	BlockType    models.BlockType
	Config       *models.BlockTypeConfig
	CategoryID   uint
	CategoryName string
	ThumbURL     string
}

// SettingsPage renders the settings screen: every block type in the
// system, alphabetically, paired with its existing preview config. The
// pairing is an in-memory left join; block types without configuration
// show empty rather than auto-creating rows.
func SettingsPage(c *gin.Context) {
	rows, err := settingsRows()
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load settings: %s", err.Error())
		return
	}

	categories, err := service.GlobalServices.Category.All()
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load categories: %s", err.Error())
		return
	}
	categoryNames := make(map[uint]string, len(categories))
	for _, category := range categories {
		categoryNames[category.ID] = category.Name
	}

	ctx := injectedAdminContext(c)
	views := make([]settingsRowView, 0, len(rows))
	for _, row := range rows {
		view := settingsRowView{
			BlockType: row.BlockType,
			Config:    row.Config,
			ThumbURL:  ctx.DefaultImage,
		}
		if row.Config != nil {
			if row.Config.CategoryID != nil {
				view.CategoryID = *row.Config.CategoryID
				view.CategoryName = categoryNames[*row.Config.CategoryID]
			}
			if row.Config.PreviewImageID != nil {
				view.ThumbURL = "/assets/thumb/" + *row.Config.PreviewImageID
			}
		}
		views = append(views, view)
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	err = adminTemplates.ExecuteTemplate(c.Writer, "settings.tmpl", gin.H{
		"Rows":       views,
		"Categories": categories,
		"Context":    ctx,
	})
	if err != nil {
		log.Printf("Failed to render settings page: %v", err)
	}
}

// GetSettingsRows serves the settings-screen join as JSON for the
// front-end bundle.
func GetSettingsRows(c *gin.Context) {
	rows, err := settingsRows()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func settingsRows() ([]models.SettingsRow, error) {
	blockTypes, err := service.GlobalServices.Schema.AllBlockTypes()
	if err != nil {
		return nil, err
	}

	configs, err := service.GlobalServices.FieldConfig.AllBlockTypeConfigs()
	if err != nil {
		return nil, err
	}

	configsByHandle := make(map[string]*models.BlockTypeConfig, len(configs))
	for i := range configs {
		configsByHandle[configs[i].BlockTypeHandle] = &configs[i]
	}

	rows := make([]models.SettingsRow, 0, len(blockTypes))
	for _, bt := range blockTypes {
		rows = append(rows, models.SettingsRow{
			BlockType: bt,
			Config:    configsByHandle[bt.Handle],
		})
	}
	return rows, nil
}

// GetTakeoverFields serves the persisted takeover list.
func GetTakeoverFields(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fields": takeoverFields()})
}

// SetTakeoverFields persists the takeover list.
func SetTakeoverFields(c *gin.Context) {
	var req struct {
		Fields []string `json:"fields"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	cleaned := make([]string, 0, len(req.Fields))
	for _, f := range req.Fields {
		f = strings.TrimSpace(f)
		if f != "" {
			cleaned = append(cleaned, f)
		}
	}

	if err := database.SetSettingList(models.SettingTakeoverFields, cleaned); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "fields": cleaned})
}

// takeoverFields resolves the takeover list: the persisted setting wins,
// the environment default applies otherwise.
func takeoverFields() []string {
	fields, ok, err := database.GetSettingList(models.SettingTakeoverFields)
	if err != nil {
		log.Printf("Failed to read takeover fields setting: %v", err)
		return []string{}
	}
	if ok {
		return fields
	}
	if config.Settings.TakeoverFields != nil {
		return config.Settings.TakeoverFields
	}
	return []string{}
}

// fragmentData is the template payload for the preview-image cell.
type fragmentData struct {
	ConfigID     uint
	ThumbURL     string
	DefaultImage string
}

// renderPreviewImageFragment renders the preview-image cell so the
// settings screen can swap it in place after an upload or delete.
func renderPreviewImageFragment(cfg *models.BlockTypeConfig) string {
	data := fragmentData{
		ConfigID:     cfg.ID,
		DefaultImage: config.Settings.DefaultImagePath,
	}
	if cfg.PreviewImageID != nil {
		data.ThumbURL = "/assets/thumb/" + *cfg.PreviewImageID
	}

	var sb strings.Builder
	if err := adminTemplates.ExecuteTemplate(&sb, "preview_image.tmpl", data); err != nil {
		log.Printf("Failed to render preview image fragment: %v", err)
		return ""
	}
	return sb.String()
}
