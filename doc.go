// Package catalog2pdf renders product catalogs to print-ready PDF using
// headless Chrome.
//
// # Quick Start
//
//	conv, err := catalog2pdf.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, catalog2pdf.Input{
//	    Title:    "Catálogo de Produtos",
//	    Columns:  2,
//	    Products: products,
//	    ImageDir: "./imagens",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("catalogo.pdf", result.PDF, 0o644)
//
// The result carries both the PDF bytes and the composed HTML. Set
// Input.HTMLOnly to skip the browser entirely.
//
// # Pipeline
//
//  1. Validation (at least one product, unique identifiers)
//  2. Per-product cards, built concurrently: image lookup in ImageDir
//     (<id>.jpg, <id>.jpeg, <id>.png, else a placeholder), labeled
//     specifications, escaped text
//  3. Document composition: title header, A4 print stylesheet, a grid of
//     1 to 4 columns, cards in input order
//  4. PDF rendering via headless Chrome (go-rod): A4, background graphics,
//     page counter footer
//
// Steps 1-3 are deterministic: the same input always produces the same HTML.
//
// # Configuration
//
//	conv, err := catalog2pdf.NewConverter(
//	    catalog2pdf.WithTimeout(2 * time.Minute),
//	    catalog2pdf.WithAssetPath("/path/to/custom/assets"),
//	    catalog2pdf.WithLogger(logger),
//	    catalog2pdf.WithCache(catalog2pdf.NewRedisCache(client, time.Hour)),
//	)
//
// # Parallel Processing
//
// Each Converter owns one browser and renders one document at a time. For
// servers, ConverterPool hands out converters, creating them lazily:
//
//	pool := catalog2pdf.NewConverterPool(catalog2pdf.ResolvePoolSize(0))
//	defer pool.Close()
//
//	conv, err := pool.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
//
// # Browser
//
// Chromium is launched with the OS sandbox disabled so it runs in
// containers. ROD_BROWSER_BIN selects a pre-installed binary; otherwise rod
// downloads one on first use. A failed render tears the browser down and
// the next call launches a fresh one.
package catalog2pdf
