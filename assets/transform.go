package assets

import (
	"blockpreview/models"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// Renditions served to the admin widget. The main image is scaled to a
// fixed width with a center anchor; thumbnails are square fills.
const (
	previewWidth = 800
	thumbSize    = 300
)

// Kind selects which rendition RenderTransform produces.
type Kind string

const (
	KindImage Kind = "img"
	KindThumb Kind = "thumb"
)

// RenderTransform returns the on-disk path of the requested rendition,
// producing and caching it on first use. Files that cannot be decoded as
// images (e.g. SVG) are served untransformed.
func (s *Store) RenderTransform(id string, kind Kind) (string, error) {
	asset, err := s.Get(id)
	if err != nil {
		return "", err
	}

	src := s.Path(asset)
	cached := s.transformPath(asset, kind)
	if _, err := os.Stat(cached); err == nil {
		return cached, nil
	}

	img, err := imaging.Open(src)
	if err != nil {
		// Not a decodable raster image; deliver the original as-is.
		if _, serr := os.Stat(src); serr != nil {
			return "", fmt.Errorf("asset file missing: %w", serr)
		}
		return src, nil
	}

	switch kind {
	case KindThumb:
		img = imaging.Fill(img, thumbSize, thumbSize, imaging.Center, imaging.Lanczos)
	default:
		if img.Bounds().Dx() != previewWidth {
			img = imaging.Resize(img, previewWidth, 0, imaging.Lanczos)
		}
	}

	if err := imaging.Save(img, cached); err != nil {
		return "", fmt.Errorf("failed to save rendition: %w", err)
	}
	return cached, nil
}

func (s *Store) transformPath(asset *models.PreviewAsset, kind Kind) string {
	ext := filepath.Ext(asset.StoredName)
	if !encodableExt(ext) {
		ext = ".jpg"
	}
	return filepath.Join(s.cacheDir, fmt.Sprintf("%s.%s%s", asset.ID, kind, ext))
}

func (s *Store) purgeTransforms(asset *models.PreviewAsset) {
	for _, kind := range []Kind{KindImage, KindThumb} {
		_ = os.Remove(s.transformPath(asset, kind))
	}
}

// encodableExt reports whether imaging can encode the format implied by ext.
func encodableExt(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".tif", ".tiff", ".bmp":
		return true
	}
	return false
}
