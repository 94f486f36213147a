package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"

	"github.com/alnah/go-catalog2pdf/internal/assets"
	"github.com/alnah/go-catalog2pdf/internal/catalog"
)

// Column bounds for the catalog grid.
const (
	MinColumns     = 1
	MaxColumns     = 4
	DefaultColumns = 2
)

// Sentinel errors for document composition.
var (
	ErrTemplateParse   = errors.New("invalid catalog template")
	ErrTemplateExecute = errors.New("failed to render catalog template")
)

// ClampColumns bounds a column count to [MinColumns, MaxColumns].
func ClampColumns(n int) int {
	return max(MinColumns, min(MaxColumns, n))
}

// cardData is what the card template sees.
type cardData struct {
	Name        string
	Description string
	Image       string
	Specs       []SpecPair
}

// documentData is what the document template sees.
// Cards are already-rendered fragments and are inserted verbatim.
type documentData struct {
	Title   string
	Columns int
	Style   string
	Cards   []string
}

// Composer renders product cards and the catalog document.
// Templates are text/template sources with an "esc" function bound to
// Escape; a Composer is safe for concurrent use.
type Composer struct {
	document *template.Template
	card     *template.Template
	style    string
}

// NewComposer parses a template set and binds the print stylesheet.
func NewComposer(ts *assets.TemplateSet, style string) (*Composer, error) {
	if ts == nil {
		return nil, fmt.Errorf("%w: nil template set", ErrTemplateParse)
	}

	funcs := template.FuncMap{"esc": Escape}

	document, err := template.New("document").Funcs(funcs).Option("missingkey=error").Parse(ts.Document)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/document: %v", ErrTemplateParse, ts.Name, err)
	}
	card, err := template.New("card").Funcs(funcs).Option("missingkey=error").Parse(ts.Card)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/card: %v", ErrTemplateParse, ts.Name, err)
	}

	return &Composer{document: document, card: card, style: style}, nil
}

// Card renders one product with its resolved image URI.
// The description paragraph and the specification list are omitted
// when empty.
func (c *Composer) Card(p catalog.Product, image string) (string, error) {
	data := cardData{
		Name:        p.Nome,
		Description: p.Descricao,
		Image:       image,
		Specs:       NormalizeSpecs(p.Especificacoes),
	}

	var buf bytes.Buffer
	if err := c.card.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: card %q: %v", ErrTemplateExecute, p.ID, err)
	}
	return buf.String(), nil
}

// Document renders the full catalog from pre-rendered cards, in order.
// columns is clamped to [MinColumns, MaxColumns].
func (c *Composer) Document(title string, columns int, cards []string) (string, error) {
	data := documentData{
		Title:   title,
		Columns: ClampColumns(columns),
		Style:   c.style,
		Cards:   cards,
	}

	var buf bytes.Buffer
	if err := c.document.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: document: %v", ErrTemplateExecute, err)
	}
	return buf.String(), nil
}
