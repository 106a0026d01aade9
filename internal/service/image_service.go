package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "image/gif" // register decoders
	_ "image/png"

	"cookbook/internal/config"
	"cookbook/internal/models"
	"cookbook/internal/observability"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultImageMaxUploadSizeMB = 10
	MaxImageWidth               = 800
	JPEGQuality                 = 75

	// UploadsRoute is where stored images are served from.
	UploadsRoute = "/api/uploads/"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// ImageService stores uploaded recipe images as width-capped JPEGs.
type ImageService struct {
	uploadDir          string
	maxUploadSizeBytes int64
}

func NewImageService(cfg *config.Config) *ImageService {
	uploadDir := filepath.Join(os.TempDir(), "cookbook", "uploads")
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB
	if cfg != nil {
		if cfg.ImageUploadDir != "" {
			uploadDir = cfg.ImageUploadDir
		}
		if cfg.ImageMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
		}
	}
	return &ImageService{
		uploadDir:          uploadDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Dir is the directory stored images are written to.
func (s *ImageService) Dir() string {
	return s.uploadDir
}

// MaxUploadBytes bounds the accepted upload size.
func (s *ImageService) MaxUploadBytes() int64 {
	return s.maxUploadSizeBytes
}

// Upload decodes content, scales it down to MaxImageWidth and stores it as
// JPEG. The returned URL is relative to the API host.
func (s *ImageService) Upload(ctx context.Context, filename string, content []byte) (*models.ImageUpload, error) {
	if len(content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}
	if !strings.HasPrefix(http.DetectContentType(content), "image/") {
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}

	encoded, err := encodeJPEG(resizeToWidth(decoded, MaxImageWidth), JPEGQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, models.NewInternalError(err)
	}
	name := storedName(filename)
	if err := os.WriteFile(filepath.Join(s.uploadDir, name), encoded, 0o644); err != nil {
		return nil, models.NewInternalError(err)
	}
	observability.Logger.InfoContext(ctx, "image stored", slog.String("file", name), slog.Int("bytes", len(encoded)))
	return &models.ImageUpload{ImageURL: UploadsRoute + name}, nil
}

// storedName keeps a readable part of the client's filename and makes it unique.
func storedName(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.Trim(unsafeNameChars.ReplaceAllString(base, "_"), "_")
	if len(base) > 40 {
		base = base[:40]
	}
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("%s_%s.jpg", uuid.NewString()[:8], base)
}

// resizeToWidth scales src down so it is at most maxWidth wide, keeping
// the aspect ratio. Narrower images are only copied onto an opaque canvas.
func resizeToWidth(src image.Image, maxWidth int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxWidth {
		h = int(float64(h) * float64(maxWidth) / float64(w))
		w = maxWidth
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
