package catalog2pdf

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-catalog2pdf/internal/assets"
	"github.com/alnah/go-catalog2pdf/internal/catalog"
	"github.com/alnah/go-catalog2pdf/internal/pipeline"
)

// Converter orchestrates the catalog-to-PDF pipeline.
// Create with NewConverter, use Convert for conversion, and Close when done.
// A Converter owns one browser; concurrent Convert calls share it and
// their renders run one at a time.
type Converter struct {
	cfg          converterConfig
	assetLoader  assets.Loader
	composer     *pipeline.Composer
	pdfConverter pdfConverter
	cache        Cache
	observer     Observer
	logger       *zap.Logger
}

// NewConverter creates a Converter with default configuration.
// Returns error if asset loading or template parsing fails.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout:         defaultTimeout,
			styleName:       assets.DefaultStyleName,
			templateSetName: assets.DefaultTemplateSetName,
		},
		assetLoader: assets.NewEmbeddedLoader(),
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cfg.assetPath != "" {
		resolver, err := assets.NewResolver(c.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		c.assetLoader = resolver
	}

	style, err := c.assetLoader.LoadStyle(c.cfg.styleName)
	if err != nil {
		return nil, fmt.Errorf("loading style %q: %w", c.cfg.styleName, err)
	}
	templateSet, err := c.assetLoader.LoadTemplateSet(c.cfg.templateSetName)
	if err != nil {
		return nil, fmt.Errorf("loading template set %q: %w", c.cfg.templateSetName, err)
	}
	c.composer, err = pipeline.NewComposer(templateSet, style)
	if err != nil {
		return nil, fmt.Errorf("initializing composer: %w", err)
	}

	// Created lazily so tests can inject a fake.
	if c.pdfConverter == nil {
		c.pdfConverter = newRodConverter(c.cfg.timeout, c.logger)
	}

	return c, nil
}

// Convert validates input, composes the catalog HTML and renders it.
// The context is used for cancellation and bounds the page load together
// with the converter timeout. With input.HTMLOnly the browser is not used.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	htmlContent, err := c.ComposeHTML(ctx, input)
	if err != nil {
		return nil, err
	}

	res := &ConvertResult{HTML: htmlContent}
	if input.HTMLOnly {
		return res, nil
	}

	key := CacheKey(htmlContent)
	if pdf, ok := c.cacheGet(ctx, key); ok {
		res.PDF = pdf
		return res, nil
	}

	start := time.Now()
	pdfBytes, err := c.pdfConverter.ToPDF(ctx, htmlContent)
	elapsed := time.Since(start)
	if c.observer != nil {
		c.observer.RenderDone(elapsed, err)
	}
	if err != nil {
		return nil, fmt.Errorf("converting to PDF: %w", err)
	}

	c.logger.Debug("catalog rendered",
		zap.Int("products", len(input.Products)),
		zap.Int("bytes", len(pdfBytes)),
		zap.Duration("elapsed", elapsed))

	c.cacheSet(ctx, key, pdfBytes)
	res.PDF = pdfBytes
	return res, nil
}

// ComposeHTML builds the catalog document without rendering it.
// Cards are built concurrently and assembled in input order.
func (c *Converter) ComposeHTML(ctx context.Context, input Input) (string, error) {
	if err := c.validateInput(input); err != nil {
		return "", err
	}

	resolver := pipeline.NewAssetResolver(input.ImageDir,
		pipeline.WithAssetLogger(c.logger),
		pipeline.WithFallbackObserver(c.observer))

	cards := make([]string, len(input.Products))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers())
	for i, p := range input.Products {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			card, err := c.composer.Card(p, resolver.Resolve(p.ID))
			if err != nil {
				return err
			}
			cards[i] = card
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %v", ErrHTMLComposition, err)
	}

	title := input.Title
	if title == "" {
		title = DefaultTitle
	}
	doc, err := c.composer.Document(title, input.Columns, cards)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLComposition, err)
	}
	return doc, nil
}

// Close releases resources (headless Chrome browser).
func (c *Converter) Close() error {
	if c.pdfConverter != nil {
		return c.pdfConverter.Close()
	}
	return nil
}

// validateInput rejects inputs that must never reach the browser.
func (c *Converter) validateInput(input Input) error {
	if len(input.Products) == 0 {
		return ErrNoProducts
	}
	return catalog.CheckUnique(input.Products)
}

func (c *Converter) workers() int {
	if c.cfg.workers > 0 {
		return c.cfg.workers
	}
	return runtime.GOMAXPROCS(0)
}

// cacheGet returns a cached PDF. Cache failures are logged, never fatal.
func (c *Converter) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	pdf, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("PDF cache lookup failed", zap.Error(err))
		ok = false
	}
	if c.observer != nil {
		c.observer.CacheLookup(ok)
	}
	return pdf, ok
}

func (c *Converter) cacheSet(ctx context.Context, key string, pdf []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, pdf); err != nil {
		c.logger.Warn("PDF cache store failed", zap.Error(err))
	}
}
