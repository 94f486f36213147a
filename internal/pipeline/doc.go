// Package pipeline turns product records into the HTML catalog document.
//
// Stages, leaf-first:
//   - Escape: makes any value safe for HTML text and attribute context
//   - AssetResolver: finds a product image on disk and inlines it as a
//     data URI, or substitutes a placeholder graphic
//   - NormalizeSpecs: turns the free-form specification mapping into
//     ordered, labeled pairs
//   - Composer: renders cards and the full document from templates
//
// PDF rasterization is handled by the root catalog2pdf package using
// headless Chrome (go-rod). Everything here is pure string work over an
// immutable product snapshot, so the same input always yields the same HTML.
package pipeline
