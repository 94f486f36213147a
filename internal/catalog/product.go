// Package catalog defines the product records consumed by the PDF pipeline.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors for product validation.
var (
	ErrDuplicateID = errors.New("duplicate product id")
	ErrInvalidID   = errors.New("invalid product id")
)

// ID identifies a product within a catalog run.
// Decoded from a JSON/YAML number or string and used verbatim as the
// basename of the product's image file.
type ID string

// String returns the identifier text.
func (id ID) String() string {
	return string(id)
}

// IsInteger reports whether the identifier is an integer literal.
func (id ID) IsInteger() bool {
	if id == "" {
		return false
	}
	_, err := strconv.ParseInt(string(id), 10, 64)
	return err == nil
}

// MarshalJSON encodes integer identifiers as JSON numbers, others as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsInteger() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts a JSON number, string, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidID, err)
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, data)
	}
	canon, err := canonicalNumber(n.String())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	*id = ID(canon)
	return nil
}

// MarshalYAML mirrors MarshalJSON for YAML data files.
func (id ID) MarshalYAML() (any, error) {
	if id.IsInteger() {
		n, _ := strconv.ParseInt(string(id), 10, 64)
		return n, nil
	}
	return string(id), nil
}

// UnmarshalYAML accepts scalar identifiers.
func (id *ID) UnmarshalYAML(unmarshal func(any) error) error {
	var v any
	if err := unmarshal(&v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	switch t := v.(type) {
	case nil:
		*id = ""
	case string:
		*id = ID(t)
	case float64:
		*id = ID(FormatNumber(t))
	case int, int64, uint64, bool:
		*id = ID(fmt.Sprint(t))
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidID, v)
	}
	return nil
}

// Product is a catalog entry.
// The pipeline treats it as an immutable snapshot for the duration of a render.
type Product struct {
	ID             ID     `json:"id" yaml:"id"`
	Nome           string `json:"nome" yaml:"nome"`
	Descricao      string `json:"descricao,omitempty" yaml:"descricao,omitempty"`
	Especificacoes Specs  `json:"especificacoes,omitempty" yaml:"especificacoes,omitempty"`
}

// CheckUnique returns ErrDuplicateID if two products share an identifier.
func CheckUnique(products []Product) error {
	seen := make(map[ID]struct{}, len(products))
	for i, p := range products {
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("%w: %q (index %d)", ErrDuplicateID, p.ID, i)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// ValidateID rejects identifiers that cannot be used as an image basename.
func ValidateID(id ID) error {
	s := string(id)
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if strings.ContainsAny(s, "/\\\x00") || s == "." || s == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return nil
}
