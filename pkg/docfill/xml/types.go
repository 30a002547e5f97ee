package xml

import (
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// Namespace URIs used when new elements are created.
const (
	NamespaceW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NamespaceR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NamespaceWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	NamespaceA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NamespacePic = "http://schemas.openxmlformats.org/drawingml/2006/picture"
)

// prefixFor returns the conventional prefix for a namespace URI.
func prefixFor(uri string) string {
	switch uri {
	case NamespaceW:
		return "w"
	case NamespaceR:
		return "r"
	case NamespaceWP:
		return "wp"
	case NamespaceA:
		return "a"
	case NamespacePic:
		return "pic"
	}
	return ""
}

// NormalizePrefixes moves the elements and attributes of the namespaces
// above onto their conventional prefixes and declares the prefixes it moved
// onto on root. Afterwards a "w" prefix means WordprocessingML, whatever
// prefix (or default namespace) the producer used.
func NormalizePrefixes(root *etree.Element) {
	if root == nil {
		return
	}
	type rename struct {
		e      *etree.Element
		attr   int
		prefix string
	}
	var renames []rename
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		if p := prefixFor(e.NamespaceURI()); p != "" && e.Space != p {
			renames = append(renames, rename{e: e, attr: -1, prefix: p})
		}
		for i := range e.Attr {
			a := &e.Attr[i]
			if a.Space == "" || a.Space == "xmlns" {
				continue
			}
			if p := prefixFor(a.NamespaceURI()); p != "" && a.Space != p {
				renames = append(renames, rename{e: e, attr: i, prefix: p})
			}
		}
		for _, c := range e.ChildElements() {
			walk(c)
		}
	}
	walk(root)

	// URIs are resolved before any prefix changes.
	declare := make(map[string]bool)
	for _, r := range renames {
		if r.attr < 0 {
			r.e.Space = r.prefix
		} else {
			r.e.Attr[r.attr].Space = r.prefix
		}
		declare[r.prefix] = true
	}
	for _, uri := range []string{NamespaceW, NamespaceR, NamespaceWP, NamespaceA, NamespacePic} {
		if p := prefixFor(uri); declare[p] {
			root.CreateAttr("xmlns:"+p, uri)
		}
	}
}

// isW reports whether e is the WordprocessingML element with the given local
// name. Trees are passed through NormalizePrefixes first, so the prefix
// identifies the namespace.
func isW(e *etree.Element, local string) bool {
	return e != nil && e.Space == "w" && e.Tag == local
}

// wAttr returns the value of the w:-prefixed attribute key, or "".
func wAttr(e *etree.Element, key string) string {
	if e == nil {
		return ""
	}
	return e.SelectAttrValue("w:"+key, "")
}

// childW returns the first child element w:<local> of e.
func childW(e *etree.Element, local string) *etree.Element {
	if e == nil {
		return nil
	}
	for _, c := range e.ChildElements() {
		if isW(c, local) {
			return c
		}
	}
	return nil
}

// childrenW returns all child elements w:<local> of e.
func childrenW(e *etree.Element, local string) []*etree.Element {
	if e == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range e.ChildElements() {
		if isW(c, local) {
			out = append(out, c)
		}
	}
	return out
}

// replaceElement puts repl where old is in old's parent and detaches old.
// It returns false when old has no parent.
func replaceElement(old, repl *etree.Element) bool {
	parent := old.Parent()
	if parent == nil {
		return false
	}
	parent.InsertChildAt(old.Index(), repl)
	parent.RemoveChild(old)
	return true
}

// signature renders an element subtree into a canonical string so two
// property blocks can be compared for equality. Attribute order is ignored.
func signature(e *etree.Element) string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	writeSignature(&sb, e)
	return sb.String()
}

func writeSignature(sb *strings.Builder, e *etree.Element) {
	sb.WriteString("<")
	sb.WriteString(e.FullTag())
	attrs := make([]string, 0, len(e.Attr))
	for _, a := range e.Attr {
		attrs = append(attrs, a.FullKey()+"="+a.Value)
	}
	sort.Strings(attrs)
	for _, a := range attrs {
		sb.WriteString(" ")
		sb.WriteString(a)
	}
	sb.WriteString(">")
	for _, c := range e.ChildElements() {
		writeSignature(sb, c)
	}
	if text := strings.TrimSpace(e.Text()); text != "" {
		sb.WriteString(text)
	}
	sb.WriteString("</>")
}
