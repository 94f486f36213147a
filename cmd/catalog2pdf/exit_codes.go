package main

import (
	"errors"
	"os"

	catalog2pdf "github.com/alnah/go-catalog2pdf"
	"github.com/alnah/go-catalog2pdf/internal/backup"
	"github.com/alnah/go-catalog2pdf/internal/config"
	"github.com/alnah/go-catalog2pdf/internal/store"
)

// Exit codes for the catalog2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or product data
	ExitIO      = 3 // Data file not found, output not writable
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, catalog2pdf.ErrBrowserConnect) ||
		errors.Is(err, catalog2pdf.ErrPageCreate) ||
		errors.Is(err, catalog2pdf.ErrPageLoad) ||
		errors.Is(err, catalog2pdf.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, store.ErrDataNotFound) ||
		errors.Is(err, backup.ErrArchive) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, catalog2pdf.ErrNoProducts) ||
		errors.Is(err, catalog2pdf.ErrDuplicateID) ||
		errors.Is(err, store.ErrInvalidData) ||
		errors.Is(err, catalog2pdf.ErrStyleNotFound) ||
		errors.Is(err, catalog2pdf.ErrTemplateSetNotFound) ||
		errors.Is(err, catalog2pdf.ErrIncompleteTemplateSet) ||
		errors.Is(err, catalog2pdf.ErrInvalidAssetPath) ||
		errors.Is(err, ErrInvalidFlags) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrMissingDSN) {
		return ExitUsage
	}

	return ExitGeneral
}
