package models

// PreviewPayload is the response shape consumed by the admin input widget.
type PreviewPayload struct {
	Success bool          `json:"success"`
	Config  PreviewConfig `json:"config"`
	Error   string        `json:"error,omitempty"`
}

type PreviewConfig struct {
	General    map[string]any              `json:"general"`
	Field      *FieldSummary               `json:"field"`
	BlockTypes map[string]BlockTypePreview `json:"blockTypes"`
	Categories []CategoryView              `json:"categories"`
}

type FieldSummary struct {
	Name           string `json:"name"`
	Handle         string `json:"handle"`
	EnablePreviews bool   `json:"enablePreviews"`
	EnableTakeover bool   `json:"enableTakeover"`
	ButtonText     string `json:"buttonText"`
}

type BlockTypePreview struct {
	Name            string  `json:"name"`
	Handle          string  `json:"handle"`
	Description     string  `json:"description"`
	DescriptionHTML string  `json:"descriptionHTML"`
	CategoryID      *uint   `json:"categoryId"`
	Image           *string `json:"image"`
	Thumb           *string `json:"thumb"`
	ImageID         string  `json:"imageId,omitempty"`
}

type CategoryView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	DescriptionHTML string `json:"descriptionHTML"`
}

// NewPreviewPayload returns the zeroed default shape: unsuccessful, empty
// nested structures. Maps and slices are allocated so they serialize as
// {} and [] rather than null.
func NewPreviewPayload() *PreviewPayload {
	return &PreviewPayload{
		Config: PreviewConfig{
			General:    map[string]any{},
			Field:      nil,
			BlockTypes: map[string]BlockTypePreview{},
			Categories: []CategoryView{},
		},
	}
}

// SettingsRow pairs a block type with its existing preview configuration,
// nil when none has been created yet.
type SettingsRow struct {
	BlockType BlockType        `json:"block_type"`
	Config    *BlockTypeConfig `json:"config"`
}
