// Package server exposes the product store and catalog generation over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalog2pdf "github.com/alnah/go-catalog2pdf"
	"github.com/alnah/go-catalog2pdf/internal/backup"
	"github.com/alnah/go-catalog2pdf/internal/metrics"
	"github.com/alnah/go-catalog2pdf/internal/store"
)

// Renderer turns a catalog input into HTML and PDF.
type Renderer interface {
	Render(ctx context.Context, input catalog2pdf.Input) (*catalog2pdf.ConvertResult, error)
}

// PoolRenderer renders with converters borrowed from a ConverterPool.
type PoolRenderer struct {
	Pool *catalog2pdf.ConverterPool
}

// Render acquires a converter, converts and releases it.
func (r PoolRenderer) Render(ctx context.Context, input catalog2pdf.Input) (*catalog2pdf.ConvertResult, error) {
	conv, err := r.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Pool.Release(conv)
	return conv.Convert(ctx, input)
}

// Options configures the service.
type Options struct {
	OutputPath  string   // Where POST /api/gerar-pdf writes the PDF
	WriteHTML   bool     // Also write the composed HTML next to it
	ImagesDir   string   // Product images
	Title       string   // Default catalog title
	Columns     int      // Default grid columns
	StaticDir   string   // Optional directory served for unmatched GETs
	CORSOrigins []string // Empty allows any origin
	RateLimit   float64  // PDF requests per second per client; 0 disables
	RateBurst   int
}

// Deps are the collaborators of the service. Archiver and Metrics are optional.
type Deps struct {
	Store    store.Store
	Renderer Renderer
	Archiver backup.Archiver
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// Server is the HTTP front end.
type Server struct {
	engine   *gin.Engine
	opts     Options
	store    store.Store
	renderer Renderer
	archiver backup.Archiver
	metrics  *metrics.Metrics
	logger   *zap.Logger
	validate *productValidator
}

// New builds the router.
func New(deps Deps, opts Options) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if opts.Title == "" {
		opts.Title = catalog2pdf.DefaultTitle
	}
	if opts.Columns == 0 {
		opts.Columns = catalog2pdf.DefaultColumns
	}

	s := &Server{
		opts:     opts,
		store:    deps.Store,
		renderer: deps.Renderer,
		archiver: deps.Archiver,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		validate: newProductValidator(),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(RequestID(), RequestLogger(s.logger), Recovery(s.logger))
	if s.metrics != nil {
		r.Use(s.metrics.Middleware())
	}
	r.Use(cors.New(corsConfig(s.opts.CORSOrigins)))

	r.NoMethod(func(c *gin.Context) {
		abortError(c, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	})
	r.NoRoute(s.staticOrNotFound())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := r.Group("/api")
	api.GET("/produtos", s.listProducts)
	api.POST("/produtos", s.createProduct)
	api.PUT("/produtos/:id", s.updateProduct)
	api.DELETE("/produtos/:id", s.deleteProduct)

	pdf := api.Group("")
	if s.opts.RateLimit > 0 {
		pdf.Use(NewIPRateLimiter(s.opts.RateLimit, s.opts.RateBurst, s.logger).RateLimit())
	}
	pdf.POST("/gerar-pdf", s.generatePDF)
	pdf.GET("/catalogo.pdf", s.streamPDF)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:  []string{"Origin", "Content-Type", headerRequestID},
		ExposeHeaders: []string{"Content-Disposition", headerRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func (s *Server) staticOrNotFound() gin.HandlerFunc {
	var files http.Handler
	if s.opts.StaticDir != "" {
		files = http.FileServer(http.Dir(s.opts.StaticDir))
	}
	return func(c *gin.Context) {
		if files != nil && c.Request.Method == http.MethodGet {
			files.ServeHTTP(c.Writer, c.Request)
			return
		}
		abortError(c, http.StatusNotFound, "not found")
	}
}

// shutdownTimeout bounds in-flight requests on shutdown.
const shutdownTimeout = 30 * time.Second

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listening on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
