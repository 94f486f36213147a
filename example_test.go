package catalog2pdf_test

import (
	"context"
	"fmt"
	"strings"

	catalog2pdf "github.com/alnah/go-catalog2pdf"
	"github.com/alnah/go-catalog2pdf/internal/pipeline"
)

// Example composes a catalog without rendering it.
// For PDF output, leave HTMLOnly unset (requires Chrome).
func Example() {
	conv, err := catalog2pdf.NewConverter()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer conv.Close()

	result, err := conv.Convert(context.Background(), catalog2pdf.Input{
		Title:   "Catálogo YMR Industrial",
		Columns: 3,
		Products: []catalog2pdf.Product{
			{ID: "1", Nome: "Caixa Kraft", Especificacoes: catalog2pdf.Specs{
				{Key: "type", Value: "Caixa"},
				{Key: "size", Value: ""},
			}},
		},
		HTMLOnly: true,
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	if strings.Contains(result.HTML, "Caixa Kraft") && len(result.PDF) == 0 {
		fmt.Println("HTML generated successfully")
	}
	// Output: HTML generated successfully
}

// Example_missingImage shows the placeholder used when no image file exists
// for a product.
func Example_missingImage() {
	conv, err := catalog2pdf.NewConverter()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer conv.Close()

	html, err := conv.ComposeHTML(context.Background(), catalog2pdf.Input{
		Products: []catalog2pdf.Product{{ID: "sem-foto", Nome: "Saco de papel"}},
		ImageDir: "/nonexistent",
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(strings.Contains(html, pipeline.Placeholder(pipeline.CaptionMissing)))
	// Output: true
}

// ExampleParseColumns shows how textual column counts are normalized.
func ExampleParseColumns() {
	for _, s := range []string{"3", "0", "9", "abc"} {
		fmt.Printf("%q -> %d\n", s, catalog2pdf.ParseColumns(s))
	}
	// Output:
	// "3" -> 3
	// "0" -> 1
	// "9" -> 4
	// "abc" -> 2
}
