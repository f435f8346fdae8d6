package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	// Register decoders consulted by image.Decode.
	_ "image/gif"
	_ "image/png"

	"sociopedia/internal/middleware"
	"sociopedia/internal/models"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultAssetsDir      = "public/assets"
	DefaultMaxUploadBytes = 30 * 1024 * 1024
	PictureMaxSize        = 1080
	JPEGQuality           = 82
	// MaxPicturePixels bounds the decoded canvas, whatever the compressed size.
	MaxPicturePixels = 40_000_000
)

// PictureStore normalizes uploaded pictures and writes them under a directory
// served at /assets.
type PictureStore struct {
	dir      string
	maxBytes int64
}

// NewPictureStore returns a store writing to dir and accepting uploads up to maxBytes.
func NewPictureStore(dir string, maxBytes int64) *PictureStore {
	if dir == "" {
		dir = DefaultAssetsDir
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &PictureStore{dir: dir, maxBytes: maxBytes}
}

// Dir returns the directory pictures are written to.
func (s *PictureStore) Dir() string {
	return s.dir
}

// Save validates, re-encodes and stores content. It returns the stored file
// name, which is the path relative to /assets.
func (s *PictureStore) Save(ctx context.Context, filename, contentType string, content []byte) (string, error) {
	name, _, err := s.SaveUpload(ctx, filename, contentType, content)
	return name, err
}

// SaveUpload is Save that also reports whether the file was written by this
// call rather than already present under the same content hash.
func (s *PictureStore) SaveUpload(ctx context.Context, filename, contentType string, content []byte) (string, bool, error) {
	if len(content) == 0 {
		return "", false, models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxBytes {
		return "", false, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxBytes/(1024*1024)))
	}

	detected := http.DetectContentType(content)
	if !isAllowedImageMIME(detected) {
		return "", false, models.NewValidationError("Invalid image type")
	}

	header, _, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return "", false, models.NewValidationError("Invalid image file")
	}
	if header.Width <= 0 || header.Height <= 0 ||
		int64(header.Width)*int64(header.Height) > MaxPicturePixels {
		return "", false, models.NewValidationError("Image dimensions too large")
	}

	decoded, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", false, models.NewValidationError("Invalid image file")
	}
	if provided := normalizeContentType(contentType); strings.HasPrefix(provided, "image/") &&
		!isMatchingContentType(provided, decodedFormatToMime(format)) {
		return "", false, models.NewValidationError("Image content type mismatch")
	}

	encoded, err := encodeJPEG(resizeToFit(decoded, PictureMaxSize, PictureMaxSize), JPEGQuality)
	if err != nil {
		return "", false, models.NewInternalError(err)
	}

	sum := sha256.Sum256(encoded)
	name := hex.EncodeToString(sum[:]) + ".jpg"
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err == nil {
		return name, false, nil
	}
	if err := writeBytesToFile(path, encoded); err != nil {
		return "", false, models.NewInternalError(err)
	}

	middleware.Logger.InfoContext(ctx, "picture stored",
		slog.String("name", name),
		slog.String("original_filename", filepath.Base(filename)),
		slog.String("format", format),
	)
	return name, true, nil
}

// Remove deletes a stored picture. Unknown names are ignored.
func (s *PictureStore) Remove(name string) error {
	if name == "" || name != filepath.Base(name) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
