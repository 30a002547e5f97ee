package docfill

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/reportkit/go-docfill/pkg/docfill/xml"
)

const (
	documentPart     = "word/document.xml"
	documentRelsPart = "word/_rels/document.xml.rels"
	contentTypesPart = "[Content_Types].xml"
	fontTablePart    = "word/fontTable.xml"
	stylesPart       = "word/styles.xml"

	imageRelationshipType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relationshipsNS       = "http://schemas.openxmlformats.org/package/2006/relationships"
	contentTypesNS        = "http://schemas.openxmlformats.org/package/2006/content-types"
)

// Relationship represents a relationship in the DOCX package
type Relationship struct {
	ID         string
	Type       string
	Target     string
	TargetMode string
}

// Package is an opened DOCX file. The main document, its relationships and
// the content types are held as parsed trees; every other part is kept as
// raw bytes and written back unchanged.
type Package struct {
	names []string
	parts map[string][]byte

	doc   *xml.Document
	rels  *etree.Document
	types *etree.Document
}

// OpenPackage reads a DOCX from memory.
func OpenPackage(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, NewDocumentError("open", "", fmt.Errorf("failed to read zip file: %w", err))
	}

	p := &Package{parts: make(map[string][]byte)}
	for _, file := range zr.File {
		if file.FileInfo().IsDir() {
			continue
		}
		content, err := readZipFile(file)
		if err != nil {
			return nil, NewDocumentError("read", file.Name, err)
		}
		p.names = append(p.names, file.Name)
		p.parts[file.Name] = content
	}

	docXML, ok := p.parts[documentPart]
	if !ok {
		return nil, NewDocumentError("open", documentPart, fmt.Errorf("not a valid DOCX file: missing %s", documentPart))
	}
	if p.doc, err = xml.ParseDocument(docXML); err != nil {
		return nil, NewDocumentError("parse", documentPart, err)
	}
	if p.rels, err = p.parseOrCreate(documentRelsPart, "Relationships", relationshipsNS); err != nil {
		return nil, err
	}
	if p.types, err = p.parseOrCreate(contentTypesPart, "Types", contentTypesNS); err != nil {
		return nil, err
	}
	return p, nil
}

// OpenPackageFile reads a DOCX from a file path.
func OpenPackageFile(path string) (*Package, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDocumentError("open", path, err)
	}
	return OpenPackage(content)
}

func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open part: %w", err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (p *Package) parseOrCreate(name, rootTag, ns string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if data, ok := p.parts[name]; ok {
		if err := doc.ReadFromBytes(data); err != nil {
			return nil, NewDocumentError("parse", name, err)
		}
		if doc.Root() != nil {
			return doc, nil
		}
	}
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	doc.CreateElement(rootTag).CreateAttr("xmlns", ns)
	if _, ok := p.parts[name]; !ok {
		p.names = append(p.names, name)
	}
	return doc, nil
}

// Document returns the main document tree.
func (p *Package) Document() *xml.Document {
	return p.doc
}

// Part returns the raw bytes of a part as read from the template. Parsed
// parts are returned as they were before any change.
func (p *Package) Part(name string) ([]byte, bool) {
	data, ok := p.parts[name]
	return data, ok
}

// PartNames returns the part names in package order.
func (p *Package) PartNames() []string {
	return append([]string(nil), p.names...)
}

// Relationships returns the main document's relationships.
func (p *Package) Relationships() []Relationship {
	var out []Relationship
	for _, e := range p.rels.Root().SelectElements("Relationship") {
		out = append(out, Relationship{
			ID:         e.SelectAttrValue("Id", ""),
			Type:       e.SelectAttrValue("Type", ""),
			Target:     e.SelectAttrValue("Target", ""),
			TargetMode: e.SelectAttrValue("TargetMode", ""),
		})
	}
	return out
}

// nextRelationshipID returns an rId one above the highest numeric rId in use.
func (p *Package) nextRelationshipID() string {
	maxID := 0
	for _, rel := range p.Relationships() {
		if n, err := strconv.Atoi(strings.TrimPrefix(rel.ID, "rId")); err == nil && n > maxID {
			maxID = n
		}
	}
	return fmt.Sprintf("rId%d", maxID+1)
}

// AddImage stores data as a new media part, relates it to the main document
// and registers the extension's content type. It returns the relationship id
// to embed.
func (p *Package) AddImage(data []byte, ext, contentType string) (string, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" || contentType == "" {
		return "", NewDocumentError("add image", "", fmt.Errorf("extension and content type are required"))
	}

	target := "media/" + uuid.NewString() + "." + ext
	partName := "word/" + target
	p.parts[partName] = data
	p.names = append(p.names, partName)

	relID := p.nextRelationshipID()
	rel := p.rels.Root().CreateElement("Relationship")
	rel.CreateAttr("Id", relID)
	rel.CreateAttr("Type", imageRelationshipType)
	rel.CreateAttr("Target", target)

	p.ensureDefaultContentType(ext, contentType)
	return relID, nil
}

func (p *Package) ensureDefaultContentType(ext, contentType string) {
	root := p.types.Root()
	for _, d := range root.SelectElements("Default") {
		if strings.EqualFold(d.SelectAttrValue("Extension", ""), ext) {
			return
		}
	}
	d := etree.NewElement("Default")
	d.CreateAttr("Extension", ext)
	d.CreateAttr("ContentType", contentType)
	// Default entries precede Override entries
	if first := root.SelectElement("Override"); first != nil {
		root.InsertChildAt(first.Index(), d)
		return
	}
	root.AddChild(d)
}

// ContentType returns the content type registered for a part name.
func (p *Package) ContentType(partName string) string {
	root := p.types.Root()
	for _, o := range root.SelectElements("Override") {
		if strings.TrimPrefix(o.SelectAttrValue("PartName", ""), "/") == partName {
			return o.SelectAttrValue("ContentType", "")
		}
	}
	ext := strings.TrimPrefix(path.Ext(partName), ".")
	for _, d := range root.SelectElements("Default") {
		if strings.EqualFold(d.SelectAttrValue("Extension", ""), ext) {
			return d.SelectAttrValue("ContentType", "")
		}
	}
	return ""
}

// Media resolves an image relationship of the main document to the bytes
// and content type of its part.
func (p *Package) Media(relID string) ([]byte, string, bool) {
	for _, rel := range p.Relationships() {
		if rel.ID != relID || rel.TargetMode == "External" {
			continue
		}
		name := resolveTarget(rel.Target)
		data, ok := p.parts[name]
		if !ok {
			return nil, "", false
		}
		return data, p.ContentType(name), true
	}
	return nil, "", false
}

// resolveTarget turns a relationship target of word/document.xml into a
// part name.
func resolveTarget(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean("word/" + target)
}

// FontFamilies returns the families the document refers to: run fonts in the
// main document, then the font table, then run fonts in the styles part.
func (p *Package) FontFamilies() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(names ...string) {
		for _, n := range names {
			if n != "" && !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}

	add(p.doc.FontReferences()...)
	if root := p.parsePart(fontTablePart); root != nil {
		for _, f := range root.SelectElements("font") {
			add(f.SelectAttrValue("w:name", ""))
		}
	}
	if root := p.parsePart(stylesPart); root != nil {
		add(xml.FontReferences(root)...)
	}
	return out
}

func (p *Package) parsePart(name string) *etree.Element {
	data, ok := p.parts[name]
	if !ok {
		return nil
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil
	}
	xml.NormalizePrefixes(doc.Root())
	return doc.Root()
}

// Bytes writes the package back to a DOCX.
func (p *Package) Bytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	for _, name := range p.names {
		var (
			content []byte
			err     error
		)
		switch name {
		case documentPart:
			content, err = p.doc.Bytes()
		case documentRelsPart:
			content, err = p.rels.WriteToBytes()
		case contentTypesPart:
			content, err = p.types.WriteToBytes()
		default:
			content = p.parts[name]
		}
		if err != nil {
			return nil, NewDocumentError("serialize", name, err)
		}

		fw, err := w.Create(name)
		if err != nil {
			return nil, NewDocumentError("write", name, fmt.Errorf("failed to create %s: %w", name, err))
		}
		if _, err := fw.Write(content); err != nil {
			return nil, NewDocumentError("write", name, fmt.Errorf("failed to write %s: %w", name, err))
		}
	}

	if err := w.Close(); err != nil {
		return nil, NewDocumentError("write", "", fmt.Errorf("failed to close zip: %w", err))
	}
	return buf.Bytes(), nil
}
