package pipeline

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-catalog2pdf/internal/catalog"
)

// ImageExtensions lists the candidate image extensions in lookup order.
var ImageExtensions = []string{".jpg", ".jpeg", ".png"}

// Placeholder captions.
const (
	CaptionMissing = "Sem imagem"
	CaptionError   = "Erro"
)

// Fallback reasons reported to a FallbackObserver.
const (
	FallbackMissing    = "missing"
	FallbackUnreadable = "unreadable"
	FallbackError      = "error"
)

// FallbackObserver is notified when image lookup degrades.
// Unreadable is reported per failed candidate; missing and error once
// per product, when a placeholder is returned.
type FallbackObserver interface {
	ImageFallback(reason string)
}

var (
	placeholderMissing = Placeholder(CaptionMissing)
	placeholderError   = Placeholder(CaptionError)
)

// Placeholder returns a 1200x900 light-gray SVG with a centered caption,
// encoded as a base64 data URI.
func Placeholder(caption string) string {
	svg := `<svg xmlns="http://www.w3.org/2000/svg" width="1200" height="900">` +
		`<rect width="100%" height="100%" fill="#efefef"/>` +
		`<text x="50%" y="50%" dominant-baseline="middle" text-anchor="middle" ` +
		`font-family="Arial" font-size="42" fill="#888">` + Escape(caption) + `</text></svg>`
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}

// AssetResolver inlines product images from a directory.
type AssetResolver struct {
	dir      string
	logger   *zap.Logger
	observer FallbackObserver
	readFile func(string) ([]byte, error)
}

// AssetOption configures an AssetResolver.
type AssetOption func(*AssetResolver)

// WithAssetLogger sets the logger used for unreadable-image warnings.
func WithAssetLogger(l *zap.Logger) AssetOption {
	return func(r *AssetResolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithFallbackObserver sets the observer notified on placeholder use.
func WithFallbackObserver(o FallbackObserver) AssetOption {
	return func(r *AssetResolver) {
		r.observer = o
	}
}

// NewAssetResolver creates a resolver looking for images in dir.
func NewAssetResolver(dir string, opts ...AssetOption) *AssetResolver {
	r := &AssetResolver{
		dir:      dir,
		logger:   zap.NewNop(),
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns a data URI for the image named <id><ext> in the image
// directory, trying ImageExtensions in order. A candidate that exists but
// cannot be read is logged and skipped. Resolve never fails: with no
// readable candidate it returns the "Sem imagem" placeholder, and an
// identifier that cannot name a file (path separators, "..") or an
// internal failure yields the "Erro" placeholder. An empty identifier has
// no image.
func (r *AssetResolver) Resolve(id catalog.ID) (uri string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("image lookup failed",
				zap.String("id", id.String()),
				zap.Any("panic", rec))
			r.notify(FallbackError)
			uri = placeholderError
		}
	}()

	if strings.TrimSpace(id.String()) == "" {
		r.notify(FallbackMissing)
		return placeholderMissing
	}
	if err := catalog.ValidateID(id); err != nil {
		r.logger.Warn("product id cannot name an image file",
			zap.String("id", id.String()),
			zap.Error(err))
		r.notify(FallbackError)
		return placeholderError
	}

	for _, ext := range ImageExtensions {
		path := filepath.Join(r.dir, id.String()+ext)
		data, err := r.readFile(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				r.logger.Warn("image unreadable",
					zap.String("path", path),
					zap.Error(err))
				r.notify(FallbackUnreadable)
			}
			continue
		}
		return DataURI(MIMEType(ext), data)
	}

	r.notify(FallbackMissing)
	return placeholderMissing
}

func (r *AssetResolver) notify(reason string) {
	if r.observer != nil {
		r.observer.ImageFallback(reason)
	}
}

// MIMEType maps an image extension to its MIME type.
// Only ".png" is distinguished; everything else is served as JPEG.
func MIMEType(ext string) string {
	if ext == ".png" {
		return "image/png"
	}
	return "image/jpeg"
}

// DataURI builds a base64 data URI.
func DataURI(mime string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}
