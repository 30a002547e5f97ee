// Package xml provides a mutable view over the WordprocessingML tree of a DOCX
// main document part.
//
// The tree itself is a github.com/beevik/etree document, so every element the
// package does not understand survives a load/save round trip untouched. On top
// of it the package exposes thin typed handles for the parts the report engine
// works with:
//
//   - document.go: Document, body traversal and namespace bookkeeping
//   - paragraph.go: Paragraph, text extraction, run merging and alignment
//   - run.go: Run and TextNode, run properties and font references
//   - table.go: Table, Row and Cell, row insertion and cell widths
//   - drawing.go: inline image paragraphs and unit conversions
//
// # Key Concepts
//
// Block: an element that can appear in a body or a table cell (w:p, w:tbl,
// w:sdt). Blocks are walked in document order.
//
// TextNode: a w:t element. Placeholders are matched against the concatenated
// text of a paragraph's text nodes, so a token split across runs is still seen
// as one token.
//
// Handles are cheap value wrappers around *etree.Element. Mutating through a
// handle mutates the underlying tree.
//
// # Units
//
// Drawing sizes are expressed in EMU (914400 per inch, 9525 per pixel at 96
// DPI). Table and page sizes are expressed in twips (1440 per inch).
package xml
