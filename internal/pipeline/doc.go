// Package pipeline implements the HTML normalization pipeline.
//
// A host renderer turns a note into an HTML fragment full of host-specific
// shapes. The stages in this package make that fragment portable:
//   - Embed expansion (recursive transclusion with cycle detection)
//   - Link and path resolution of the host URI scheme
//   - Header block removal
//   - Diagram styling and rasterization
//
// Metadata extraction, CSS assembly and the standalone document wrapper
// live here too. Emitting the result (file write, converter, browser) is
// handled by the root mdexport package.
package pipeline
