// Package assets owns managed preview images: disk storage under the
// upload directory, their database records, and resized renditions.
package assets

import (
	"blockpreview/models"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when an asset id has no record.
var ErrNotFound = errors.New("asset not found")

// Store persists uploaded images on disk with a database record per file.
type Store struct {
	db       *gorm.DB
	dir      string
	cacheDir string
}

// NewStore creates the upload and transform-cache directories if needed.
func NewStore(db *gorm.DB, dir, cacheDir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create transform cache dir: %w", err)
	}
	return &Store{db: db, dir: dir, cacheDir: cacheDir}, nil
}

// TempFilePath returns a fresh temporary file path carrying the given
// extension. The file is created empty so the path is reserved.
func TempFilePath(ext string) (string, error) {
	ext = sanitizeExt(ext)
	f, err := os.CreateTemp("", "preview-upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// Save moves the file at tempPath into managed storage and records it.
// On any failure the stored file is removed again; the temp file is left
// for the caller's cleanup.
func (s *Store) Save(tempPath, originalName string) (*models.PreviewAsset, error) {
	ext := sanitizeExt(filepath.Ext(originalName))

	asset := &models.PreviewAsset{
		ID:           uuid.NewString(),
		OriginalName: filepath.Base(originalName),
		ContentType:  contentTypeForExt(ext),
	}
	asset.StoredName = asset.ID + ext

	dest := filepath.Join(s.dir, asset.StoredName)
	size, err := moveFile(tempPath, dest)
	if err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", originalName, err)
	}
	asset.Size = size

	if err := s.db.Create(asset).Error; err != nil {
		_ = os.Remove(dest)
		return nil, fmt.Errorf("failed to record asset: %w", err)
	}

	return asset, nil
}

// Get fetches an asset record by id. Returns ErrNotFound when absent.
func (s *Store) Get(id string) (*models.PreviewAsset, error) {
	var asset models.PreviewAsset
	if err := s.db.First(&asset, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return &asset, nil
}

// Delete removes the asset record, its file, and any cached renditions.
// File removal is best effort: a missing file does not fail the delete.
func (s *Store) Delete(id string) error {
	asset, err := s.Get(id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(&models.PreviewAsset{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete asset record: %w", err)
	}

	_ = os.Remove(filepath.Join(s.dir, asset.StoredName))
	s.purgeTransforms(asset)
	return nil
}

// Path returns the on-disk location of the original file.
func (s *Store) Path(asset *models.PreviewAsset) string {
	return filepath.Join(s.dir, asset.StoredName)
}

// ImageURL is the delivery URL for the main (800px wide) rendition.
func ImageURL(id string) string {
	return "/assets/img/" + id
}

// ThumbURL is the delivery URL for the 300x300 rendition.
func ThumbURL(id string) string {
	return "/assets/thumb/" + id
}

// moveFile renames src to dest, falling back to copy+remove across
// filesystems, and returns the stored size.
func moveFile(src, dest string) (int64, error) {
	if err := os.Rename(src, dest); err == nil {
		info, err := os.Stat(dest)
		if err != nil {
			return 0, err
		}
		return info.Size(), nil
	}

	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, err
	}

	size, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dest)
		return 0, err
	}

	_ = os.Remove(src)
	return size, nil
}

// sanitizeExt keeps only a plain lowercase extension; anything suspicious
// collapses to empty so stored names stay flat under the upload dir.
func sanitizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

func contentTypeForExt(ext string) string {
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
