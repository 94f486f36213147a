package catalog2pdf

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-catalog2pdf/internal/catalog"
	"github.com/alnah/go-catalog2pdf/internal/pipeline"
)

// Product data model, shared with the product stores.
type (
	Product = catalog.Product
	ID      = catalog.ID
	Spec    = catalog.Spec
	Specs   = catalog.Specs
)

// Defaults applied when the caller leaves a value unset.
const (
	DefaultTitle   = "Catálogo de Produtos"
	DefaultColumns = pipeline.DefaultColumns
	MinColumns     = pipeline.MinColumns
	MaxColumns     = pipeline.MaxColumns
)

// Input is one catalog to render.
type Input struct {
	Title    string    // Header and document title; DefaultTitle when empty
	Columns  int       // Grid columns, clamped to [MinColumns, MaxColumns]
	Products []Product // Rendered in order; must be non-empty with unique IDs
	ImageDir string    // Directory holding <id>.jpg|.jpeg|.png
	HTMLOnly bool      // Skip PDF rendering
}

// ConvertResult holds the output of a conversion.
type ConvertResult struct {
	HTML string // Composed document
	PDF  []byte // Empty when Input.HTMLOnly is set
}

// ClampColumns bounds a column count to [MinColumns, MaxColumns].
func ClampColumns(n int) int {
	return pipeline.ClampColumns(n)
}

// ParseColumns converts a textual column count (CLI flag, query string)
// to a valid grid width. Non-numeric or empty input yields DefaultColumns;
// numbers are clamped, so "0" gives 1 and "5" gives 4.
func ParseColumns(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return DefaultColumns
	}
	return ClampColumns(n)
}

// Observer receives pipeline events. internal/metrics implements it with
// Prometheus collectors.
type Observer interface {
	ImageFallback(reason string)
	RenderDone(d time.Duration, err error)
	CacheLookup(hit bool)
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout         time.Duration
	assetPath       string
	styleName       string
	templateSetName string
	workers         int
}

// defaultTimeout bounds the page load (network idle) wait.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the page load timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("catalog2pdf: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAssetPath sets a directory whose styles/ and templates/ override the
// embedded ones.
func WithAssetPath(path string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = path
	}
}

// WithStyle selects the stylesheet by name (without .css).
func WithStyle(name string) Option {
	return func(c *Converter) {
		c.cfg.styleName = name
	}
}

// WithTemplateSet selects the template set by name.
func WithTemplateSet(name string) Option {
	return func(c *Converter) {
		c.cfg.templateSetName = name
	}
}

// WithCache enables PDF caching keyed by the composed HTML.
func WithCache(cache Cache) Option {
	return func(c *Converter) {
		c.cache = cache
	}
}

// WithObserver registers an Observer for pipeline events.
func WithObserver(o Observer) Option {
	return func(c *Converter) {
		c.observer = o
	}
}

// WithWorkers bounds concurrent card building. n <= 0 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *Converter) {
		c.cfg.workers = n
	}
}
