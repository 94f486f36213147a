package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrInvalidFlags wraps pflag parse failures.
var ErrInvalidFlags = errors.New("invalid flags")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// sourceFlags selects the product list and images.
type sourceFlags struct {
	data   string
	images string
}

// generateFlags holds all flags for the generate command.
type generateFlags struct {
	common    commonFlags
	source    sourceFlags
	out       string
	title     string
	cols      string // Parsed with catalog2pdf.ParseColumns
	timeout   string
	assetPath string
	style     string
	html      bool
	backupDir string
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common    commonFlags
	source    sourceFlags
	out       string
	addr      string
	staticDir string
	workers   int
	timeout   string
	assetPath string
}

// importFlags holds all flags for the import command.
type importFlags struct {
	common      commonFlags
	data        string
	postgresDSN string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed progress")
}

// addSourceFlags adds product source flags to a FlagSet.
func addSourceFlags(fs *flag.FlagSet, f *sourceFlags) {
	fs.StringVar(&f.data, "data", "", "product list (.json, .yaml, .yml)")
	fs.StringVar(&f.images, "images", "", "directory holding <id>.jpg|.jpeg|.png")
}

// parseGenerateFlags parses generate command flags and returns positional args.
func parseGenerateFlags(args []string) (*generateFlags, []string, error) {
	fs := newFlagSet("generate")
	f := &generateFlags{}

	addCommonFlags(fs, &f.common)
	addSourceFlags(fs, &f.source)
	fs.StringVarP(&f.out, "out", "o", "", "PDF output path")
	fs.StringVar(&f.title, "titulo", "", "catalog title")
	fs.StringVar(&f.cols, "cols", "", "grid columns (1-4)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "page load timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory with custom styles and templates")
	fs.StringVar(&f.style, "style", "", "style name or CSS file path")
	fs.BoolVar(&f.html, "html", false, "also write the composed HTML")
	fs.StringVar(&f.backupDir, "backup-dir", "", "move the previous output into this directory")

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string) (*serveFlags, []string, error) {
	fs := newFlagSet("serve")
	f := &serveFlags{}

	addCommonFlags(fs, &f.common)
	addSourceFlags(fs, &f.source)
	fs.StringVarP(&f.out, "out", "o", "", "PDF output path for POST /api/gerar-pdf")
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address")
	fs.StringVar(&f.staticDir, "static", "", "directory served for unmatched GET requests")
	fs.IntVarP(&f.workers, "workers", "w", 0, "browser pool size (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "page load timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory with custom styles and templates")

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	if f.workers < 0 {
		return nil, nil, fmt.Errorf("%w: --workers must be >= 0, got %d", ErrInvalidFlags, f.workers)
	}
	return f, fs.Args(), nil
}

// parseImportFlags parses import command flags.
func parseImportFlags(args []string) (*importFlags, []string, error) {
	fs := newFlagSet("import")
	f := &importFlags{}

	addCommonFlags(fs, &f.common)
	fs.StringVar(&f.data, "data", "", "product list to import")
	fs.StringVar(&f.postgresDSN, "postgres-dsn", "", "PostgreSQL connection string")

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parse returns flag.ErrHelp unwrapped so callers can print usage.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInvalidFlags, err)
	}
	return nil
}
