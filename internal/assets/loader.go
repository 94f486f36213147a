package assets

// Loader loads stylesheets and template sets by name.
type Loader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplateSet loads the document and card templates stored under name.
	// Returns ErrTemplateSetNotFound if neither template exists and
	// ErrIncompleteTemplateSet if only one does.
	LoadTemplateSet(name string) (*TemplateSet, error)
}
