package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	catalog2pdf "github.com/alnah/go-catalog2pdf"
	"github.com/alnah/go-catalog2pdf/internal/config"
	"github.com/alnah/go-catalog2pdf/internal/fileutil"
)

// ErrWriteOutput wraps failures to write the PDF or HTML output.
var ErrWriteOutput = errors.New("failed to write output")

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

func runGenerateCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseGenerateFlags(args)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: unexpected argument %q", ErrInvalidFlags, positional[0])
	}
	return runGenerate(ctx, flags, env)
}

// runGenerate loads the product list, renders it with a single browser and
// writes the PDF. The browser is closed on every path.
func runGenerate(ctx context.Context, flags *generateFlags, env *Environment) error {
	cfg, err := loadConfig(flags.common, env)
	if err != nil {
		return err
	}
	mergeGenerateFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common.verbose, false)
	defer func() { _ = logger.Sync() }()
	start := env.Now()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	products, err := st.List(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return catalog2pdf.ErrNoProducts
	}
	logger.Debug("products loaded", zap.Int("count", len(products)), zap.String("source", cfg.Data.Path))

	opts, err := converterOptions(cfg, logger)
	if err != nil {
		return err
	}
	cache, closeCache, err := newCache(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeCache() }()
	if cache != nil {
		opts = append(opts, catalog2pdf.WithCache(cache))
	}

	conv, err := env.NewConverter(opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := conv.Close(); err != nil {
			logger.Warn("closing browser", zap.Error(err))
		}
	}()

	result, err := conv.Convert(ctx, catalog2pdf.Input{
		Title:    cfg.Catalog.Title,
		Columns:  cfg.Catalog.Columns,
		Products: products,
		ImageDir: cfg.Data.Images,
	})
	if err != nil {
		return err
	}

	archiver, err := newArchiver(ctx, cfg, flags.backupDir)
	if err != nil {
		return err
	}
	if archiver != nil {
		location, err := archiver.Archive(ctx, cfg.Output.Path)
		if err != nil {
			return err
		}
		if location != "" {
			logger.Info("previous output archived", zap.String("location", location))
		}
	}

	if err := writeOutputs(cfg, result); err != nil {
		return err
	}

	if !flags.common.quiet {
		fmt.Fprintln(env.Stdout, "PDF gerado em:", absPath(cfg.Output.Path))
	}
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "%d produtos em %v\n", len(products), env.Now().Sub(start).Round(time.Millisecond))
	}
	return nil
}

// mergeGenerateFlags overrides cfg with flags the user actually set.
func mergeGenerateFlags(flags *generateFlags, cfg *config.Config) {
	if flags.source.data != "" {
		cfg.Data.Path = flags.source.data
	}
	if flags.source.images != "" {
		cfg.Data.Images = flags.source.images
	}
	if flags.out != "" {
		cfg.Output.Path = flags.out
	}
	if flags.title != "" {
		cfg.Catalog.Title = flags.title
	}
	if flags.cols != "" {
		cfg.Catalog.Columns = catalog2pdf.ParseColumns(flags.cols)
	}
	if flags.timeout != "" {
		cfg.Render.Timeout = flags.timeout
	}
	if flags.assetPath != "" {
		cfg.Render.AssetPath = flags.assetPath
	}
	if flags.style != "" {
		cfg.Render.Style = flags.style
	}
	if flags.html {
		cfg.Output.HTML = true
	}
}

// writeOutputs writes the PDF, and the HTML next to it when requested.
func writeOutputs(cfg *config.Config, result *catalog2pdf.ConvertResult) error {
	out := cfg.Output.Path
	if err := os.MkdirAll(filepath.Dir(out), dirPermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if err := fileutil.WriteFileAtomic(out, result.PDF, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if cfg.Output.HTML {
		if err := fileutil.WriteFileAtomic(htmlOutputPath(out), []byte(result.HTML), filePermissions); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
	}
	return nil
}

// htmlOutputPath swaps the PDF extension for .html.
func htmlOutputPath(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".html"
}
