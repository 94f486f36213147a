package assets

import "errors"

// Resolver combines a custom FilesystemLoader with the embedded assets.
// When a custom path is configured, custom assets win and names missing
// there fall back to the embedded ones.
type Resolver struct {
	custom   Loader // nil if no custom path configured
	embedded Loader
}

// NewResolver creates a Resolver. An empty customBasePath means embedded only.
// Returns an error if customBasePath is set but invalid.
func NewResolver(customBasePath string) (*Resolver, error) {
	r := &Resolver{embedded: NewEmbeddedLoader()}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.custom = fsLoader
	}
	return r, nil
}

// LoadStyle loads a CSS style, trying the custom loader first.
func (r *Resolver) LoadStyle(name string) (string, error) {
	return withFallback(r, func(l Loader) (string, error) {
		return l.LoadStyle(name)
	})
}

// LoadTemplateSet loads a template set, trying the custom loader first.
func (r *Resolver) LoadTemplateSet(name string) (*TemplateSet, error) {
	return withFallback(r, func(l Loader) (*TemplateSet, error) {
		return l.LoadTemplateSet(name)
	})
}

// HasCustomLoader returns true if a custom asset directory is configured.
func (r *Resolver) HasCustomLoader() bool {
	return r.custom != nil
}

// withFallback falls back to embedded assets only on "not found" errors;
// validation and I/O errors from the custom loader are returned as-is.
func withFallback[T any](r *Resolver, load func(Loader) (T, error)) (T, error) {
	if r.custom == nil {
		return load(r.embedded)
	}

	v, err := load(r.custom)
	if err == nil {
		return v, nil
	}
	if !isNotFoundError(err) {
		var zero T
		return zero, err
	}
	return load(r.embedded)
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrTemplateSetNotFound)
}

// Compile-time interface check.
var _ Loader = (*Resolver)(nil)
