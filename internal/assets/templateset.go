package assets

// TemplateSet holds the two templates a catalog is rendered from.
type TemplateSet struct {
	Name     string // Identifier (name or directory path)
	Document string // Page skeleton; receives Title, Columns, Style, Cards
	Card     string // One product; receives Name, Description, Image, Specs
}

// DefaultTemplateSetName is the name of the built-in template set.
const DefaultTemplateSetName = "catalog"

// DefaultStyleName is the name of the built-in print stylesheet.
const DefaultStyleName = "catalog"

const (
	documentFile = "document.html"
	cardFile     = "card.html"
)
