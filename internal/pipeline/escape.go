package pipeline

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/alnah/go-catalog2pdf/internal/catalog"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Escape returns v as text safe for HTML content and quoted attributes.
// nil becomes the empty string; other values are coerced with Text.
func Escape(v any) string {
	return htmlEscaper.Replace(Text(v))
}

// Text coerces a decoded value to its display string.
// Decoded numbers are already canonical; float64 values are printed with
// catalog.FormatNumber. Nested JSON stays compact JSON.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case json.RawMessage:
		return string(t)
	case []byte:
		return string(t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return catalog.FormatNumber(t)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
