package service

import (
	"blockpreview/assets"
	"blockpreview/markdown"
	"blockpreview/models"
	"log"
)

// kindSpec carries the per-variant behavior of a supported field kind.
// Adding a kind means adding an entry here and a FieldKind constant;
// nothing string-matches on the kind elsewhere.
type kindSpec struct {
	buttonText string
}

var kindSpecs = map[models.FieldKind]kindSpec{
	models.KindMatrix: {buttonText: "Content Previews"},
	models.KindNeo:    {buttonText: "Content Previews"},
}

// ErrInvalidKind is the client-facing message for an unsupported type
// discriminator. The widget matches on this string.
const ErrInvalidKind = "'type' must be 'matrix' or 'neo'"

// AssemblyService builds the preview payload the admin widget consumes:
// field summary, category list and one preview per block type, with
// markdown-rendered descriptions and image delivery URLs.
type AssemblyService struct {
	configs    *FieldConfigService
	categories *CategoryService
	store      *assets.Store
}

// NewAssemblyService constructs an assembly service
func NewAssemblyService(configs *FieldConfigService, categories *CategoryService, store *assets.Store) *AssemblyService {
	return &AssemblyService{configs: configs, categories: categories, store: store}
}

// Assemble materializes the configuration for fieldHandle under the given
// kind. Failures never escape as errors: an unsupported kind yields an
// unsuccessful payload with an error message, an unknown field handle an
// unsuccessful payload with empty structures ("no data yet").
func (s *AssemblyService) Assemble(kind models.FieldKind, fieldHandle string) (*models.PreviewPayload, error) {
	payload := models.NewPreviewPayload()

	spec, ok := kindSpecs[kind]
	if !ok {
		payload.Error = ErrInvalidKind
		return payload, nil
	}

	field, ok, err := s.configs.schema.FieldByHandle(fieldHandle)
	if err != nil {
		return nil, err
	}
	if !ok || field.Kind != kind {
		// Field handle unknown to the field system, or belongs to a
		// different kind: an explicit empty state, not an error. No
		// config row is materialized for it.
		return payload, nil
	}

	fieldCfg, err := s.configs.GetOrCreateByFieldHandle(fieldHandle)
	if err != nil {
		return nil, err
	}
	if fieldCfg == nil {
		return payload, nil
	}

	rows, err := s.configs.GetOrCreateBlockTypeConfigs(fieldHandle)
	if err != nil {
		return nil, err
	}

	payload.Config.Field = &models.FieldSummary{
		Name:           field.Name,
		Handle:         field.Handle,
		EnablePreviews: fieldCfg.EnablePreviews,
		EnableTakeover: fieldCfg.EnableTakeover,
		ButtonText:     spec.buttonText,
	}

	categories, err := s.categories.All()
	if err != nil {
		return nil, err
	}
	for _, category := range categories {
		payload.Config.Categories = append(payload.Config.Categories, models.CategoryView{
			ID:              category.ID,
			Name:            category.Name,
			Description:     category.Description,
			DescriptionHTML: markdown.Render(category.Description),
		})
	}

	for _, row := range rows {
		preview := models.BlockTypePreview{
			Name:            row.BlockType.Name,
			Handle:          row.BlockType.Handle,
			Description:     row.Config.Description,
			DescriptionHTML: markdown.Render(row.Config.Description),
			CategoryID:      row.Config.CategoryID,
		}
		if row.Config.PreviewImageID != nil {
			preview.ImageID = *row.Config.PreviewImageID
			image, thumb := s.imageURLs(*row.Config.PreviewImageID)
			preview.Image = &image
			preview.Thumb = &thumb
		}
		payload.Config.BlockTypes[row.BlockType.Handle] = preview
	}

	payload.Success = true
	return payload, nil
}

// imageURLs returns delivery URLs for an attached asset, or empty strings
// when the asset record has gone missing underneath the reference.
func (s *AssemblyService) imageURLs(assetID string) (image, thumb string) {
	if _, err := s.store.Get(assetID); err != nil {
		log.Printf("Preview references missing asset %s: %v", assetID, err)
		return "", ""
	}
	return assets.ImageURL(assetID), assets.ThumbURL(assetID)
}
