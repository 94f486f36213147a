package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatNumber prints f the way the catalog has always shown numbers:
// shortest round-trip digits, plain notation between 1e-6 and 1e21,
// exponent notation outside that range ("1e+21", "1.5e-7").
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		s = strings.Replace(s, "e+0", "e+", 1)
		return strings.Replace(s, "e-0", "e-", 1)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// canonicalNumber rewrites a JSON number literal with FormatNumber.
// Integer literals are returned unchanged so large values keep every digit.
func canonicalNumber(lit string) (string, error) {
	if isIntegerLiteral(lit) {
		if lit == "-0" {
			return "0", nil
		}
		return lit, nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return "", fmt.Errorf("invalid number %q: %w", lit, err)
	}
	return FormatNumber(f), nil
}

func isIntegerLiteral(s string) bool {
	digits := strings.TrimPrefix(s, "-")
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NormalizeID maps a textual identifier, such as a URL path segment, to the
// form stored for decoded products: integer text loses leading zeros and a
// plus sign, so "01" and "+1" both name product 1. Other text is kept.
func NormalizeID(s string) ID {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ID(strconv.FormatInt(n, 10))
	}
	return ID(s)
}
