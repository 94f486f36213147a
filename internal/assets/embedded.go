package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
)

//go:embed styles templates
var embedded embed.FS

// EmbeddedLoader loads the assets compiled into the binary.
type EmbeddedLoader struct {
	fsys fs.FS
}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{fsys: embedded}
}

// LoadStyle loads a CSS style from embedded assets by name.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := fs.ReadFile(e.fsys, "styles/"+name+".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}
	return string(content), nil
}

// LoadTemplateSet loads templates/{name}/document.html and card.html.
func (e *EmbeddedLoader) LoadTemplateSet(name string) (*TemplateSet, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	dir := "templates/" + name + "/"
	document, docErr := fs.ReadFile(e.fsys, dir+documentFile)
	card, cardErr := fs.ReadFile(e.fsys, dir+cardFile)
	return buildTemplateSet(name, document, docErr, card, cardErr)
}

// buildTemplateSet classifies the two read results shared by every loader.
func buildTemplateSet(name string, document []byte, docErr error, card []byte, cardErr error) (*TemplateSet, error) {
	docMissing := errors.Is(docErr, fs.ErrNotExist)
	cardMissing := errors.Is(cardErr, fs.ErrNotExist)

	if docMissing && cardMissing {
		return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, name)
	}
	if docErr != nil && !docMissing {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrAssetRead, documentFile, docErr)
	}
	if cardErr != nil && !cardMissing {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrAssetRead, cardFile, cardErr)
	}
	if docMissing {
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, documentFile)
	}
	if cardMissing {
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, cardFile)
	}

	return &TemplateSet{
		Name:     name,
		Document: string(document),
		Card:     string(card),
	}, nil
}

// Compile-time interface check.
var _ Loader = (*EmbeddedLoader)(nil)
