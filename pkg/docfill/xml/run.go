package xml

import (
	"strings"

	"github.com/beevik/etree"
)

// Run is a handle on a w:r element.
type Run struct {
	E *etree.Element
}

// Properties returns w:rPr, or nil.
func (r Run) Properties() *etree.Element {
	return childW(r.E, "rPr")
}

// TextNodes returns the run's w:t children.
func (r Run) TextNodes() []TextNode {
	var out []TextNode
	for _, e := range childrenW(r.E, "t") {
		out = append(out, TextNode{E: e})
	}
	return out
}

// Text returns the concatenated text of the run.
func (r Run) Text() string {
	var sb strings.Builder
	for _, n := range r.TextNodes() {
		sb.WriteString(n.Text())
	}
	return sb.String()
}

// IsTextOnly reports whether the run holds nothing but run properties and
// text. Runs with tabs, breaks, drawings or fields are never merged.
func (r Run) IsTextOnly() bool {
	hasText := false
	for _, c := range r.E.ChildElements() {
		switch {
		case isW(c, "rPr"):
		case isW(c, "t"):
			hasText = true
		default:
			return false
		}
	}
	return hasText
}

// appendText folds s into the run's first text node and removes the others.
func (r Run) appendText(s string) {
	nodes := r.TextNodes()
	if len(nodes) == 0 {
		t := r.E.CreateElement("w:t")
		TextNode{E: t}.SetText(s)
		return
	}
	first := nodes[0]
	text := r.Text() + s
	for _, n := range nodes[1:] {
		r.E.RemoveChild(n.E)
	}
	first.SetText(text)
}

// TextNode is a handle on a w:t element.
type TextNode struct {
	E *etree.Element
}

// Text returns the node's character data.
func (t TextNode) Text() string {
	return t.E.Text()
}

// SetText replaces the node's character data. Leading or trailing whitespace
// is marked xml:space="preserve" so consumers keep it.
func (t TextNode) SetText(s string) {
	t.E.SetText(s)
	if s != strings.TrimSpace(s) {
		t.E.CreateAttr("xml:space", "preserve")
	}
}

// Run returns the enclosing run, if the parent is a w:r.
func (t TextNode) Run() (Run, bool) {
	parent := t.E.Parent()
	if isW(parent, "r") {
		return Run{E: parent}, true
	}
	return Run{}, false
}

// Paragraph returns the nearest enclosing paragraph.
func (t TextNode) Paragraph() (Paragraph, bool) {
	for cur := t.E.Parent(); cur != nil; cur = cur.Parent() {
		if isW(cur, "p") {
			return Paragraph{E: cur}, true
		}
	}
	return Paragraph{}, false
}
