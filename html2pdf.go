package catalog2pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/alnah/go-catalog2pdf/internal/process"
)

// pdfConverter abstracts HTML to PDF conversion to allow different backends.
type pdfConverter interface {
	ToPDF(ctx context.Context, htmlContent string) ([]byte, error)
	Close() error
}

// pdfRenderer abstracts the browser to enable testing without one.
type pdfRenderer interface {
	Render(ctx context.Context, htmlContent string, timeout time.Duration) ([]byte, error)
	Close() error
}

// Compile-time interface checks
var (
	_ pdfConverter = (*rodConverter)(nil)
	_ pdfRenderer  = (*rodRenderer)(nil)
)

// Page geometry: A4 with 14mm margins, 16mm at the bottom for the footer.
const (
	paperWidthInches  = 8.27
	paperHeightInches = 11.69
	marginMM          = 14
	marginBottomMM    = 16
	mmPerInch         = 25.4

	// requestIdleWindow is how long the network must stay quiet before
	// the page counts as loaded.
	requestIdleWindow = 500 * time.Millisecond
)

const (
	headerTemplate = `<div style="font-size:8px; width:100%; text-align:center;"></div>`
	footerTemplate = `<div style="font-size:10px; width:100%; padding:0 12mm; display:flex; justify-content:space-between; color:#6b7280;">` +
		`<span class="date"></span>` +
		`<span>Página <span class="pageNumber"></span>/<span class="totalPages"></span></span>` +
		`</div>`
)

// rodRenderer implements pdfRenderer using go-rod.
// Rod downloads Chromium on first run unless ROD_BROWSER_BIN is set.
// Renders are serialized: one page load and one print at a time.
type rodRenderer struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	pid      int
	logger   *zap.Logger
}

func newRodRenderer(logger *zap.Logger) *rodRenderer {
	return &rodRenderer{logger: logger}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	// The OS sandbox is unavailable in most containers.
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Set("disable-setuid-sandbox").
		Set("disable-dev-shm-usage")

	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	u, err := l.Launch()
	if err != nil {
		// PID is 0 when the process never started; Kill would be a no-op
		// and Cleanup would wait forever.
		if l.PID() > 0 {
			l.Kill()
		}
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.launcher = l
	r.pid = l.PID()

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		r.teardown()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.browser = browser

	r.logger.Debug("browser launched", zap.Int("pid", r.pid))
	return nil
}

// Render loads htmlContent as the document, waits for the network to go
// idle (bounded by timeout and any ctx deadline) and prints it to PDF.
func (r *rodRenderer) Render(ctx context.Context, htmlContent string, timeout time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, context.DeadlineExceeded)
	}

	loading := page.Timeout(timeout)
	defer loading.CancelTimeout()

	waitIdle := loading.WaitRequestIdle(requestIdleWindow, nil, nil, nil)
	if err := loading.SetDocumentContent(htmlContent); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	waitIdle()
	if err := loading.GetContext().Err(); err != nil {
		return nil, fmt.Errorf("%w: network not idle: %v", ErrPageLoad, err)
	}
	if err := loading.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.PDF(printOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdfBuf, nil
}

// printOptions returns the fixed A4 print settings.
func printOptions() *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:          floatPtr(paperWidthInches),
		PaperHeight:         floatPtr(paperHeightInches),
		MarginTop:           floatPtr(mmToInches(marginMM)),
		MarginRight:         floatPtr(mmToInches(marginMM)),
		MarginBottom:        floatPtr(mmToInches(marginBottomMM)),
		MarginLeft:          floatPtr(mmToInches(marginMM)),
		PrintBackground:     true,
		DisplayHeaderFooter: true,
		HeaderTemplate:      headerTemplate,
		FooterTemplate:      footerTemplate,
	}
}

func mmToInches(mm float64) float64 {
	return mm / mmPerInch
}

func floatPtr(v float64) *float64 {
	return &v
}

// Close shuts the browser down. Safe to call more than once.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.teardown()
}

// teardown closes the browser and kills its process group so no renderer
// or GPU helper outlives it. Caller holds r.mu (or owns r exclusively).
func (r *rodRenderer) teardown() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		if r.pid > 0 {
			_ = process.KillTree(r.pid)
			r.launcher.Kill()
			r.launcher.Cleanup()
			r.logger.Debug("browser stopped", zap.Int("pid", r.pid))
		}
		r.launcher = nil
		r.pid = 0
	}
	return err
}

// rodConverter converts HTML to PDF through a pdfRenderer and applies the
// failure policy: any render error tears the browser down so nothing leaks
// and the next call starts from a fresh process.
type rodConverter struct {
	renderer pdfRenderer
	timeout  time.Duration
	logger   *zap.Logger
}

// newRodConverter creates a rodConverter with the production renderer.
func newRodConverter(timeout time.Duration, logger *zap.Logger) *rodConverter {
	return &rodConverter{
		renderer: newRodRenderer(logger),
		timeout:  timeout,
		logger:   logger,
	}
}

// ToPDF renders htmlContent to PDF bytes. No partial output is returned.
func (c *rodConverter) ToPDF(ctx context.Context, htmlContent string) ([]byte, error) {
	pdf, err := c.renderer.Render(ctx, htmlContent, c.timeout)
	if err != nil {
		if closeErr := c.renderer.Close(); closeErr != nil {
			c.logger.Warn("closing browser after failed render", zap.Error(closeErr))
		}
		return nil, err
	}
	return pdf, nil
}

// Close releases browser resources.
func (c *rodConverter) Close() error {
	if c.renderer != nil {
		return c.renderer.Close()
	}
	return nil
}
