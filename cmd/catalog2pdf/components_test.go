package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	catalog2pdf "github.com/alnah/go-catalog2pdf"
	"github.com/alnah/go-catalog2pdf/internal/backup"
	"github.com/alnah/go-catalog2pdf/internal/config"
	"github.com/alnah/go-catalog2pdf/internal/store"
)

// ---------------------------------------------------------------------------
// TestNewArchiver - Backend selection
// ---------------------------------------------------------------------------

func TestNewArchiver(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()

	a, err := newArchiver(context.Background(), cfg, "")
	if err != nil || a != nil {
		t.Errorf("empty dir: archiver = %v, err = %v, want nil", a, err)
	}

	a, err = newArchiver(context.Background(), cfg, t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := a.(*backup.DirArchiver); !ok {
		t.Errorf("archiver = %T, want *backup.DirArchiver", a)
	}
}

// ---------------------------------------------------------------------------
// TestNewCache - Redis wiring
// ---------------------------------------------------------------------------

func TestNewCache(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cache, closeFn, err := newCache(cfg)
	if err != nil || cache != nil {
		t.Errorf("no addr: cache = %v, err = %v", cache, err)
	}
	if closeFn() != nil {
		t.Error("noop close returned an error")
	}

	mr := miniredis.RunT(t)
	cfg.Redis.Addr = mr.Addr()
	cache, closeFn, err = newCache(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = closeFn() }()

	ctx := context.Background()
	if err := cache.Set(ctx, "k", []byte("%PDF")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := cache.Get(ctx, "k")
	if err != nil || !ok || string(got) != "%PDF" {
		t.Errorf("Get = %q, %v, %v", got, ok, err)
	}

	cfg.Redis.TTL = "never"
	if _, _, err := newCache(cfg); !errors.Is(err, config.ErrInvalidValue) {
		t.Errorf("bad ttl: error = %v, want ErrInvalidValue", err)
	}
}

// ---------------------------------------------------------------------------
// TestConverterOptions - Render section mapping
// ---------------------------------------------------------------------------

func TestConverterOptions(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	opts, err := converterOptions(cfg, newLogger(&bytes.Buffer{}, false, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opts) != 2 {
		t.Errorf("default options = %d, want timeout and logger only", len(opts))
	}

	cfg.Render.Style = "minimal"
	cfg.Render.TemplateSet = "catalog"
	cfg.Render.AssetPath = t.TempDir()
	opts, err = converterOptions(cfg, newLogger(&bytes.Buffer{}, false, false))
	if err != nil || len(opts) != 5 {
		t.Errorf("options = %d, err = %v, want 5", len(opts), err)
	}
}

// ---------------------------------------------------------------------------
// TestDescribeError - User-facing messages
// ---------------------------------------------------------------------------

func TestDescribeError(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Data.Path = "/srv/catalogo/dados.json"

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"data file", store.ErrDataNotFound, "Arquivo de dados não encontrado: /srv/catalogo/dados.json"},
		{"no products", catalog2pdf.ErrNoProducts, "Nenhum produto encontrado em dados.json"},
		{"page load", catalog2pdf.ErrPageLoad, "--timeout"},
		{"write", ErrWriteOutput, "writable"},
		{"other", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		if got := describeError(tt.err, cfg); !strings.Contains(got, tt.want) {
			t.Errorf("%s: describeError() = %q, want it to contain %q", tt.name, got, tt.want)
		}
	}

	if got := describeError(catalog2pdf.ErrNoProducts, nil); !strings.Contains(got, "dados.json") {
		t.Errorf("nil config: %q", got)
	}
}

// ---------------------------------------------------------------------------
// TestNewLogger - Levels and encoders
// ---------------------------------------------------------------------------

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var console bytes.Buffer
	logger := newLogger(&console, false, false)
	logger.Info("hidden")
	logger.Warn("imagem ausente")
	if strings.Contains(console.String(), "hidden") || !strings.Contains(console.String(), "imagem ausente") {
		t.Errorf("console logger output = %q", console.String())
	}

	var js bytes.Buffer
	logger = newLogger(&js, false, true)
	logger.Info("server listening")
	if !strings.HasPrefix(strings.TrimSpace(js.String()), "{") {
		t.Errorf("service logger is not JSON: %q", js.String())
	}

	var verbose bytes.Buffer
	newLogger(&verbose, true, false).Debug("products loaded")
	if !strings.Contains(verbose.String(), "products loaded") {
		t.Errorf("verbose logger dropped debug: %q", verbose.String())
	}
}
