package catalog2pdf

// Notes:
// - These tests never start a browser: the pdfConverter is replaced through
//   withPDFConverter. Real rendering is covered by the integration tests.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-catalog2pdf/internal/pipeline"
)

// ---------------------------------------------------------------------------
// Test Helpers - Mock Implementations
// ---------------------------------------------------------------------------

type mockPDFConverter struct {
	mu        sync.Mutex
	calls     int
	inputHTML string
	output    []byte
	err       error
	panicMsg  string
	closed    bool
}

func (m *mockPDFConverter) ToPDF(ctx context.Context, htmlContent string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.inputHTML = htmlContent
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.output != nil {
		return m.output, nil
	}
	return []byte("%PDF-1.4 mock"), nil
}

func (m *mockPDFConverter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockPDFConverter) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockObserver struct {
	mu        sync.Mutex
	fallbacks []string
	renders   int
	renderErr error
	hits      int
	misses    int
}

func (m *mockObserver) ImageFallback(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks = append(m.fallbacks, reason)
}

func (m *mockObserver) RenderDone(_ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renders++
	m.renderErr = err
}

func (m *mockObserver) CacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, pdf []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = pdf
	return nil
}

func withPDFConverter(c pdfConverter) Option {
	return func(conv *Converter) {
		conv.pdfConverter = c
	}
}

func newTestConverter(t *testing.T, pdf *mockPDFConverter, opts ...Option) *Converter {
	t.Helper()

	conv, err := NewConverter(append([]Option{withPDFConverter(pdf)}, opts...)...)
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	t.Cleanup(func() { _ = conv.Close() })
	return conv
}

func sampleProducts() []Product {
	return []Product{
		{ID: "1", Nome: "Caixa Kraft", Descricao: "Caixa para envio", Especificacoes: Specs{{Key: "type", Value: "Caixa"}, {Key: "size", Value: ""}}},
		{ID: "2", Nome: "Saco de papel"},
	}
}

// ---------------------------------------------------------------------------
// TestConvert_Success - Full pipeline with mocked renderer
// ---------------------------------------------------------------------------

func TestConvert_Success(t *testing.T) {
	t.Parallel()

	imgDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(imgDir, "1.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	pdf := &mockPDFConverter{output: []byte("%PDF-1.4 test")}
	obs := &mockObserver{}
	conv := newTestConverter(t, pdf, WithObserver(obs))

	result, err := conv.Convert(context.Background(), Input{
		Title:    "Linha 2025",
		Columns:  3,
		Products: sampleProducts(),
		ImageDir: imgDir,
	})
	if err != nil {
		t.Fatalf("Convert() unexpected error: %v", err)
	}

	if string(result.PDF) != "%PDF-1.4 test" {
		t.Errorf("result.PDF = %q, want %q", result.PDF, "%PDF-1.4 test")
	}
	if pdf.callCount() != 1 {
		t.Errorf("ToPDF called %d times, want 1", pdf.callCount())
	}
	if pdf.inputHTML != result.HTML {
		t.Error("renderer should receive the composed HTML")
	}

	for _, want := range []string{
		`<h1 class="title">Linha 2025</h1>`,
		"repeat(3, 1fr)",
		`src="data:image/png;base64,cG5n"`,
		"<li><strong>Tipo:</strong> Caixa</li>",
		`<h3 class="name">Saco de papel</h3>`,
	} {
		if !strings.Contains(result.HTML, want) {
			t.Errorf("HTML should contain %q", want)
		}
	}
	if strings.Index(result.HTML, "Caixa Kraft") > strings.Index(result.HTML, "Saco de papel") {
		t.Error("cards should follow product order")
	}

	if len(obs.fallbacks) != 1 || obs.fallbacks[0] != pipeline.FallbackMissing {
		t.Errorf("fallbacks = %v, want one %q for product 2", obs.fallbacks, pipeline.FallbackMissing)
	}
	if obs.renders != 1 || obs.renderErr != nil {
		t.Errorf("renders = %d (err %v), want 1 successful", obs.renders, obs.renderErr)
	}
}

// ---------------------------------------------------------------------------
// TestConvert_InputErrors - Rejected before the browser starts
// ---------------------------------------------------------------------------

func TestConvert_InputErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		products []Product
		wantErr  error
	}{
		{name: "nil products", products: nil, wantErr: ErrNoProducts},
		{name: "empty products", products: []Product{}, wantErr: ErrNoProducts},
		{name: "duplicate ids", products: []Product{{ID: "1"}, {ID: "1"}}, wantErr: ErrDuplicateID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pdf := &mockPDFConverter{}
			conv := newTestConverter(t, pdf)

			_, err := conv.Convert(context.Background(), Input{Products: tt.products})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if pdf.callCount() != 0 {
				t.Error("renderer must not be called on input errors")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConvert_Defaults - Title and column normalization
// ---------------------------------------------------------------------------

func TestConvert_Defaults(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, &mockPDFConverter{})

	tests := []struct {
		name    string
		title   string
		columns int
		want    []string
	}{
		{name: "empty title uses default", title: "", columns: 2, want: []string{"<title>Catálogo de Produtos</title>"}},
		{name: "zero columns clamps to 1", columns: 0, want: []string{"repeat(1, 1fr)"}},
		{name: "negative columns clamps to 1", columns: -1, want: []string{"repeat(1, 1fr)"}},
		{name: "five columns clamps to 4", columns: 5, want: []string{"repeat(4, 1fr)"}},
		{name: "title escaped", title: "A & B", columns: 2, want: []string{"<title>A &amp; B</title>"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := conv.Convert(context.Background(), Input{
				Title:    tt.title,
				Columns:  tt.columns,
				Products: sampleProducts(),
				HTMLOnly: true,
			})
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(res.HTML, want) {
					t.Errorf("HTML should contain %q", want)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConvert_HTMLOnly - No browser, deterministic output
// ---------------------------------------------------------------------------

func TestConvert_HTMLOnly(t *testing.T) {
	t.Parallel()

	pdf := &mockPDFConverter{}
	conv := newTestConverter(t, pdf)

	input := Input{Products: sampleProducts(), ImageDir: t.TempDir(), HTMLOnly: true}
	first, err := conv.Convert(context.Background(), input)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	second, err := conv.Convert(context.Background(), input)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if pdf.callCount() != 0 {
		t.Error("HTMLOnly must not call the renderer")
	}
	if first.PDF != nil {
		t.Error("HTMLOnly result should have no PDF")
	}
	if first.HTML != second.HTML {
		t.Error("identical input produced different HTML")
	}
}

// ---------------------------------------------------------------------------
// TestConvert_RenderError - Errors surface wrapped
// ---------------------------------------------------------------------------

func TestConvert_RenderError(t *testing.T) {
	t.Parallel()

	pdf := &mockPDFConverter{err: ErrPageLoad}
	obs := &mockObserver{}
	conv := newTestConverter(t, pdf, WithObserver(obs))

	res, err := conv.Convert(context.Background(), Input{Products: sampleProducts()})
	if !errors.Is(err, ErrPageLoad) {
		t.Fatalf("error = %v, want ErrPageLoad", err)
	}
	if res != nil {
		t.Error("no partial result on render failure")
	}
	if !errors.Is(obs.renderErr, ErrPageLoad) {
		t.Errorf("observer saw %v, want ErrPageLoad", obs.renderErr)
	}
}

func TestConvert_RecoversPanic(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, &mockPDFConverter{panicMsg: "boom"})

	_, err := conv.Convert(context.Background(), Input{Products: sampleProducts()})
	if err == nil {
		t.Fatal("expected error from panic recovery, got nil")
	}
	if !strings.Contains(err.Error(), "internal error") {
		t.Errorf("expected 'internal error' in message, got %q", err.Error())
	}
}

func TestConvert_ContextCancellation(t *testing.T) {
	t.Parallel()

	pdf := &mockPDFConverter{}
	conv := newTestConverter(t, pdf)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := conv.Convert(ctx, Input{Products: sampleProducts()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if pdf.callCount() != 0 {
		t.Error("renderer must not be called after cancellation")
	}
}

// ---------------------------------------------------------------------------
// TestConvert_Cache - Hits skip the renderer
// ---------------------------------------------------------------------------

func TestConvert_Cache(t *testing.T) {
	t.Parallel()

	t.Run("second call is served from cache", func(t *testing.T) {
		t.Parallel()

		pdf := &mockPDFConverter{output: []byte("%PDF-cached")}
		obs := &mockObserver{}
		conv := newTestConverter(t, pdf, WithCache(newMemoryCache()), WithObserver(obs))

		input := Input{Products: sampleProducts()}
		for range 2 {
			res, err := conv.Convert(context.Background(), input)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			if string(res.PDF) != "%PDF-cached" {
				t.Errorf("PDF = %q", res.PDF)
			}
		}
		if pdf.callCount() != 1 {
			t.Errorf("ToPDF called %d times, want 1", pdf.callCount())
		}
		if obs.hits != 1 || obs.misses != 1 {
			t.Errorf("hits=%d misses=%d, want 1/1", obs.hits, obs.misses)
		}
	})

	t.Run("cache failure falls back to rendering", func(t *testing.T) {
		t.Parallel()

		cache := newMemoryCache()
		cache.getErr = errors.New("connection refused")
		pdf := &mockPDFConverter{}
		conv := newTestConverter(t, pdf, WithCache(cache))

		if _, err := conv.Convert(context.Background(), Input{Products: sampleProducts()}); err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if pdf.callCount() != 1 {
			t.Errorf("ToPDF called %d times, want 1", pdf.callCount())
		}
	})
}

// ---------------------------------------------------------------------------
// TestNewConverter - Options and asset loading
// ---------------------------------------------------------------------------

func TestNewConverter(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		conv := newTestConverter(t, &mockPDFConverter{})
		if conv.cfg.timeout != defaultTimeout {
			t.Errorf("timeout = %v, want %v", conv.cfg.timeout, defaultTimeout)
		}
		if conv.logger == nil {
			t.Error("logger should default to a no-op logger")
		}
	})

	t.Run("invalid asset path", func(t *testing.T) {
		t.Parallel()

		_, err := NewConverter(withPDFConverter(&mockPDFConverter{}), WithAssetPath("/nonexistent/abc123"))
		if !errors.Is(err, ErrInvalidAssetPath) {
			t.Errorf("error = %v, want ErrInvalidAssetPath", err)
		}
	})

	t.Run("unknown style", func(t *testing.T) {
		t.Parallel()

		_, err := NewConverter(withPDFConverter(&mockPDFConverter{}), WithStyle("nope"))
		if !errors.Is(err, ErrStyleNotFound) {
			t.Errorf("error = %v, want ErrStyleNotFound", err)
		}
	})

	t.Run("custom asset path overrides card template", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		tplDir := filepath.Join(dir, "templates", "catalog")
		if err := os.MkdirAll(tplDir, 0o755); err != nil {
			t.Fatalf("setup: %v", err)
		}
		files := map[string]string{
			"document.html": `<main>{{range .Cards}}{{.}}{{end}}</main>`,
			"card.html":     `<b>{{esc .Name}}</b>`,
		}
		for name, content := range files {
			if err := os.WriteFile(filepath.Join(tplDir, name), []byte(content), 0o644); err != nil {
				t.Fatalf("setup: %v", err)
			}
		}

		conv := newTestConverter(t, &mockPDFConverter{}, WithAssetPath(dir))
		res, err := conv.Convert(context.Background(), Input{Products: sampleProducts(), HTMLOnly: true})
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if res.HTML != "<main><b>Caixa Kraft</b><b>Saco de papel</b></main>" {
			t.Errorf("HTML = %q", res.HTML)
		}
	})
}

func TestWithTimeout(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, &mockPDFConverter{}, WithTimeout(5*time.Second))
	if conv.cfg.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", conv.cfg.timeout)
	}

	defer func() {
		if recover() == nil {
			t.Error("WithTimeout(0) should panic")
		}
	}()
	WithTimeout(0)
}

func TestConverter_Close(t *testing.T) {
	t.Parallel()

	pdf := &mockPDFConverter{}
	conv, err := NewConverter(withPDFConverter(pdf))
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	if err := conv.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if !pdf.closed {
		t.Error("Close() should close the PDF converter")
	}

	var empty Converter
	if err := empty.Close(); err != nil {
		t.Errorf("Close() on zero Converter = %v, want nil", err)
	}
}
