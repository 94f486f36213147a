package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alnah/go-catalog2pdf/internal/yamlutil"
)

// ErrDecode indicates the product list could not be parsed.
var ErrDecode = errors.New("failed to decode product list")

// Format identifies the encoding of a product list file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks the format from a file extension (JSON by default).
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// document is the wrapped form: {"produtos": [...]}.
type document struct {
	Produtos []Product `json:"produtos" yaml:"produtos"`
}

// Decode parses a product list. Both a top-level array and an object
// with a "produtos" field are accepted. An object without the field
// yields an empty list.
func Decode(data []byte, format Format) ([]Product, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}

	if format == FormatYAML {
		return decodeYAML(trimmed)
	}
	return decodeJSON(trimmed)
}

func decodeJSON(data []byte) ([]Product, error) {
	if data[0] == '[' {
		var list []Product
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return list, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return doc.Produtos, nil
}

func decodeYAML(data []byte) ([]Product, error) {
	if data[0] == '-' || data[0] == '[' {
		var list []Product
		if err := yamlutil.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return list, nil
	}

	var doc document
	if err := yamlutil.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return doc.Produtos, nil
}

// Encode writes products in the wrapped {"produtos": [...]} form.
func Encode(products []Product, format Format) ([]byte, error) {
	if products == nil {
		products = []Product{}
	}
	doc := document{Produtos: products}

	if format == FormatYAML {
		return yamlutil.Marshal(doc)
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding products: %w", err)
	}
	return append(out, '\n'), nil
}
