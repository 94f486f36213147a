package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/alnah/go-catalog2pdf/internal/catalog"
	"github.com/alnah/go-catalog2pdf/internal/fileutil"
)

// dataFilePerm is the mode of rewritten data files.
const dataFilePerm = 0o644

// JSONStore keeps products in a single file. Reads accept a top-level array
// or a {"produtos": [...]} object; writes always use the wrapped form.
// Files ending in .yaml or .yml are read and written as YAML.
// Every operation re-reads the file, so external edits are picked up.
type JSONStore struct {
	mu     sync.Mutex
	path   string
	format catalog.Format
}

// NewJSONStore creates a store over path. The file is not read until used.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path, format: catalog.FormatFor(path)}
}

// Path returns the backing file.
func (s *JSONStore) Path() string {
	return s.path
}

// List returns all products in file order.
func (s *JSONStore) List(ctx context.Context) ([]catalog.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the product with id.
func (s *JSONStore) Get(ctx context.Context, id catalog.ID) (catalog.Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return catalog.Product{}, err
	}
	idx := indexOf(products, id)
	if idx < 0 {
		return catalog.Product{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return products[idx], nil
}

// Create appends p. Returns ErrDuplicateID if p.ID is already taken.
func (s *JSONStore) Create(ctx context.Context, p catalog.Product) error {
	return s.modify(ctx, func(products []catalog.Product) ([]catalog.Product, error) {
		if indexOf(products, p.ID) >= 0 {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, p.ID)
		}
		return append(products, p), nil
	})
}

// Update replaces the product with id, keeping its position. The stored
// record always carries id.
func (s *JSONStore) Update(ctx context.Context, id catalog.ID, p catalog.Product) error {
	p.ID = id
	return s.modify(ctx, func(products []catalog.Product) ([]catalog.Product, error) {
		idx := indexOf(products, id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		products[idx] = p
		return products, nil
	})
}

// Delete removes every product with id.
func (s *JSONStore) Delete(ctx context.Context, id catalog.ID) error {
	return s.modify(ctx, func(products []catalog.Product) ([]catalog.Product, error) {
		return slices.DeleteFunc(products, func(p catalog.Product) bool { return p.ID == id }), nil
	})
}

// Close is a no-op; the file is never held open.
func (s *JSONStore) Close() error {
	return nil
}

// modify runs fn on the current list and writes the result atomically.
func (s *JSONStore) modify(ctx context.Context, fn func([]catalog.Product) ([]catalog.Product, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return err
	}
	products, err = fn(products)
	if err != nil {
		return err
	}
	data, err := catalog.Encode(products, s.format)
	if err != nil {
		return fmt.Errorf("encoding products: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.path, data, dataFilePerm); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

// load reads and decodes the file. Caller holds s.mu.
func (s *JSONStore) load() ([]catalog.Product, error) {
	data, err := os.ReadFile(s.path) // #nosec G304 -- data path is operator-provided
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDataNotFound, s.path)
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	products, err := catalog.Decode(data, s.format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return products, nil
}

func indexOf(products []catalog.Product, id catalog.ID) int {
	return slices.IndexFunc(products, func(p catalog.Product) bool { return p.ID == id })
}
