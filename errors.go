package catalog2pdf

import (
	"errors"

	"github.com/alnah/go-catalog2pdf/internal/assets"
	"github.com/alnah/go-catalog2pdf/internal/catalog"
)

// Sentinel errors for library operations.
var (
	// Input errors: the browser is never started.
	ErrNoProducts  = errors.New("no products to render")
	ErrDuplicateID = catalog.ErrDuplicateID

	ErrHTMLComposition = errors.New("HTML composition failed")

	// Render errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")

	// Asset loading errors.
	ErrStyleNotFound         = assets.ErrStyleNotFound
	ErrTemplateSetNotFound   = assets.ErrTemplateSetNotFound
	ErrIncompleteTemplateSet = assets.ErrIncompleteTemplateSet
	ErrInvalidAssetPath      = errors.New("invalid asset path")

	// Pool errors.
	ErrPoolClosed = errors.New("converter pool is closed")
)
