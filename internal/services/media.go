package services

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
)

const thumbnailMaxEdge = 300

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// MediaStore keeps uploaded photos on local disk under a single root and
// addresses them with root-relative URLs ("/uploads/...").
type MediaStore struct {
	root string
	log  *logger.Logger
}

func NewMediaStore(baseLog *logger.Logger, root string) *MediaStore {
	return &MediaStore{
		root: filepath.Clean(root),
		log:  baseLog.With("service", "MediaStore"),
	}
}

func AllowedImageExt(ext string) bool {
	return allowedImageExts[strings.ToLower(ext)]
}

// diskPath maps a stored URL back onto the filesystem. URLs outside the
// upload root are rejected.
func (m *MediaStore) diskPath(url string) (string, error) {
	rel := strings.TrimPrefix(url, "/")
	clean := filepath.Clean(rel)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("url %q escapes the upload root", url)
	}
	return clean, nil
}

// Save writes image bytes under root/subdir with a unique file name and
// returns the URL it is now addressable by.
func (m *MediaStore) Save(subdir, originalName string, data []byte) (string, error) {
	dir := filepath.Join(m.root, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	name := strings.ReplaceAll(uuid.New().String(), "-", "") + ext
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return "/" + filepath.ToSlash(path), nil
}

// Copy duplicates an already-stored file into another subdir.
func (m *MediaStore) Copy(srcURL, destSubdir, destName string) (string, error) {
	srcPath, err := m.diskPath(srcURL)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	dir := filepath.Join(m.root, destSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}
	path := filepath.Join(dir, destName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write copy: %w", err)
	}
	return "/" + filepath.ToSlash(path), nil
}

// Delete removes a stored file. Missing files are not an error.
func (m *MediaStore) Delete(url string) error {
	path, err := m.diskPath(url)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Read returns the raw bytes of a stored file.
func (m *MediaStore) Read(url string) ([]byte, error) {
	path, err := m.diskPath(url)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Dimensions decodes just enough of the image to report width and height.
func (m *MediaStore) Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// Thumbnail renders a downscaled JPEG next to the stored image and returns
// its URL. Images already at or under the thumbnail edge are copied as-is.
func (m *MediaStore) Thumbnail(srcURL string) (string, error) {
	srcPath, err := m.diskPath(srcURL)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	tw, th := w, h
	if w > thumbnailMaxEdge || h > thumbnailMaxEdge {
		if w >= h {
			tw = thumbnailMaxEdge
			th = h * thumbnailMaxEdge / w
		} else {
			th = thumbnailMaxEdge
			tw = w * thumbnailMaxEdge / h
		}
	}
	if th < 1 {
		th = 1
	}
	if tw < 1 {
		tw = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	dir := filepath.Dir(srcPath)
	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	thumbPath := filepath.Join(dir, "thumb_"+base+".jpg")

	out, err := os.Create(thumbPath)
	if err != nil {
		return "", fmt.Errorf("create thumbnail: %w", err)
	}
	defer out.Close()
	if err := jpeg.Encode(out, dst, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	return "/" + filepath.ToSlash(thumbPath), nil
}
