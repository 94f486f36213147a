package pipeline

import (
	"strings"

	"github.com/alnah/go-catalog2pdf/internal/catalog"
)

// SpecPair is one displayed specification line.
type SpecPair struct {
	Label string
	Value string
}

var specLabels = map[string]string{
	"type":      "Tipo",
	"size":      "Tamanho",
	"thickness": "Espessura",
	"gsm":       "GSM",
}

// LabelFor returns the display label for a specification key.
// Unknown keys are their own label.
func LabelFor(key string) string {
	if label, ok := specLabels[key]; ok {
		return label
	}
	return key
}

// NormalizeSpecs converts specs into labeled pairs in source order,
// dropping nil values and values that are blank once coerced to text.
// Retained values are not trimmed.
func NormalizeSpecs(specs catalog.Specs) []SpecPair {
	pairs := make([]SpecPair, 0, len(specs))
	for _, s := range specs {
		if s.Value == nil {
			continue
		}
		value := Text(s.Value)
		if strings.TrimSpace(value) == "" {
			continue
		}
		pairs = append(pairs, SpecPair{Label: LabelFor(s.Key), Value: value})
	}
	return pairs
}
