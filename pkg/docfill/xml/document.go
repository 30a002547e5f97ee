package xml

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/beevik/etree"
)

// Document is the parsed main document part (word/document.xml).
type Document struct {
	doc  *etree.Document
	body *etree.Element

	nextDrawingID int
}

// ParseDocument parses a Word main document part.
func ParseDocument(data []byte) (*Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		PreserveCData: true,
	}
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	root := doc.Root()
	NormalizePrefixes(root)
	if !isW(root, "document") {
		return nil, fmt.Errorf("failed to parse document: missing w:document root")
	}
	body := childW(root, "body")
	if body == nil {
		return nil, fmt.Errorf("failed to parse document: missing w:body")
	}

	return &Document{doc: doc, body: body}, nil
}

// Bytes serializes the tree back to XML.
func (d *Document) Bytes() ([]byte, error) {
	return d.doc.WriteToBytes()
}

// Root returns the w:document element.
func (d *Document) Root() *etree.Element {
	return d.doc.Root()
}

// Body returns the w:body element.
func (d *Document) Body() *etree.Element {
	return d.body
}

// SectionProperties returns the body-level w:sectPr, or nil.
func (d *Document) SectionProperties() *etree.Element {
	return childW(d.body, "sectPr")
}

// Paragraphs returns the paragraphs that are direct children of the body.
func (d *Document) Paragraphs() []Paragraph {
	var out []Paragraph
	for _, e := range childrenW(d.body, "p") {
		out = append(out, Paragraph{E: e})
	}
	return out
}

// Tables returns the tables that are direct children of the body.
func (d *Document) Tables() []Table {
	var out []Table
	for _, e := range childrenW(d.body, "tbl") {
		out = append(out, Table{E: e})
	}
	return out
}

// AllParagraphs returns every paragraph reachable through block content in
// document order: body paragraphs, paragraphs in table cells (including nested
// tables) and paragraphs in structured document tags.
func (d *Document) AllParagraphs() []Paragraph {
	var out []Paragraph
	walkBlocks(d.body, func(p Paragraph) {
		out = append(out, p)
	})
	return out
}

// TextNodes returns every text node of every paragraph in document order.
func (d *Document) TextNodes() []TextNode {
	var out []TextNode
	for _, p := range d.AllParagraphs() {
		out = append(out, p.TextNodes()...)
	}
	return out
}

func walkBlocks(container *etree.Element, fn func(Paragraph)) {
	for _, c := range container.ChildElements() {
		switch {
		case isW(c, "p"):
			fn(Paragraph{E: c})
		case isW(c, "tbl"):
			for _, row := range (Table{E: c}).Rows() {
				for _, cell := range row.Cells() {
					walkBlocks(cell.E, fn)
				}
			}
		case isW(c, "sdt"):
			if content := childW(c, "sdtContent"); content != nil {
				walkBlocks(content, fn)
			}
		case isW(c, "customXml"):
			walkBlocks(c, fn)
		}
	}
}

// EnsureNamespace declares the conventional prefix for uri on the root
// element when it is missing.
func (d *Document) EnsureNamespace(uri string) {
	prefix := prefixFor(uri)
	if prefix == "" {
		return
	}
	root := d.Root()
	key := "xmlns:" + prefix
	if root.SelectAttr(key) == nil {
		root.CreateAttr(key, uri)
	}
}

// NextDrawingID returns a drawing object id (wp:docPr/@id) that is unique
// within the document.
func (d *Document) NextDrawingID() int {
	if d.nextDrawingID == 0 {
		maxID := 0
		for _, e := range d.body.FindElements(".//docPr") {
			if id, err := strconv.Atoi(e.SelectAttrValue("id", "")); err == nil && id > maxID {
				maxID = id
			}
		}
		d.nextDrawingID = maxID + 1
	}
	id := d.nextDrawingID
	d.nextDrawingID++
	return id
}

// FontReferences returns the sorted, deduplicated font family names named by
// w:rFonts anywhere in the tree.
func (d *Document) FontReferences() []string {
	return FontReferences(d.Root())
}

// FontReferences collects w:rFonts family names under root. It is also used
// for the styles part, which shares the run-properties vocabulary.
func FontReferences(root *etree.Element) []string {
	if root == nil {
		return nil
	}
	seen := make(map[string]bool)
	for _, rf := range root.FindElements(".//rFonts") {
		if rf.Space != "w" {
			continue
		}
		for _, key := range []string{"ascii", "hAnsi", "cs", "eastAsia"} {
			if name := wAttr(rf, key); name != "" {
				seen[name] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
