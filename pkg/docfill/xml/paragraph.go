package xml

import (
	"strings"

	"github.com/beevik/etree"
)

// Paragraph is a handle on a w:p element.
type Paragraph struct {
	E *etree.Element
}

// NewParagraph creates a detached paragraph holding a single run with text.
func NewParagraph(text string) Paragraph {
	p := etree.NewElement("w:p")
	r := p.CreateElement("w:r")
	t := r.CreateElement("w:t")
	TextNode{E: t}.SetText(text)
	return Paragraph{E: p}
}

// Parent returns the element that directly contains the paragraph.
func (p Paragraph) Parent() *etree.Element {
	return p.E.Parent()
}

// Properties returns w:pPr, or nil when the paragraph has none.
func (p Paragraph) Properties() *etree.Element {
	return childW(p.E, "pPr")
}

// EnsureProperties returns w:pPr, creating it as the first child if needed.
func (p Paragraph) EnsureProperties() *etree.Element {
	if ppr := p.Properties(); ppr != nil {
		return ppr
	}
	ppr := etree.NewElement("w:pPr")
	p.E.InsertChildAt(0, ppr)
	return ppr
}

// Runs returns the runs that are direct children of the paragraph.
func (p Paragraph) Runs() []Run {
	var out []Run
	for _, e := range childrenW(p.E, "r") {
		out = append(out, Run{E: e})
	}
	return out
}

// TextNodes returns the w:t elements of the paragraph in document order.
// Runs inside hyperlinks, smart tags and revisions are included; nested
// paragraphs (text boxes) are not.
func (p Paragraph) TextNodes() []TextNode {
	var out []TextNode
	collectText(p.E, &out)
	return out
}

func collectText(e *etree.Element, out *[]TextNode) {
	for _, c := range e.ChildElements() {
		switch {
		case isW(c, "t"):
			*out = append(*out, TextNode{E: c})
		case isW(c, "p"), isW(c, "txbxContent"), isW(c, "pPr"), isW(c, "rPr"):
		default:
			collectText(c, out)
		}
	}
}

// Text returns the concatenated text of the paragraph.
func (p Paragraph) Text() string {
	var sb strings.Builder
	for _, n := range p.TextNodes() {
		sb.WriteString(n.Text())
	}
	return sb.String()
}

// Contains reports whether e is a descendant of the paragraph.
func (p Paragraph) Contains(e *etree.Element) bool {
	for cur := e; cur != nil; cur = cur.Parent() {
		if cur == p.E {
			return true
		}
	}
	return false
}

// MergeRuns joins adjacent text-only runs whose run properties are identical
// and drops proofing marks between them. Editors often split a typed token
// such as ${name} over several runs; after merging it is usually contiguous
// again. It returns the number of runs removed.
func (p Paragraph) MergeRuns() int {
	for _, pe := range childrenW(p.E, "proofErr") {
		p.E.RemoveChild(pe)
	}

	merged := 0
	children := p.E.ChildElements()
	var prev *Run
	for _, c := range children {
		if !isW(c, "r") {
			prev = nil
			continue
		}
		cur := Run{E: c}
		if !cur.IsTextOnly() {
			prev = nil
			continue
		}
		if prev != nil && signature(prev.Properties()) == signature(cur.Properties()) {
			prev.appendText(cur.Text())
			p.E.RemoveChild(c)
			merged++
			continue
		}
		prev = &cur
	}
	return merged
}

// ReplaceAll replaces every occurrence of old in the paragraph's text with
// repl. An occurrence may span several text nodes: the replacement goes into
// the node where the occurrence starts, and the remaining characters are cut
// from the nodes that follow. Run properties are left alone. It returns the
// number of occurrences replaced.
func (p Paragraph) ReplaceAll(old, repl string) int {
	if old == "" {
		return 0
	}
	nodes := p.TextNodes()
	if len(nodes) == 0 {
		return 0
	}

	texts := make([]string, len(nodes))
	starts := make([]int, len(nodes))
	var sb strings.Builder
	for i, n := range nodes {
		texts[i] = n.Text()
		starts[i] = sb.Len()
		sb.WriteString(texts[i])
	}
	full := sb.String()

	var hits []int
	for from := 0; ; {
		idx := strings.Index(full[from:], old)
		if idx < 0 {
			break
		}
		hits = append(hits, from+idx)
		from += idx + len(old)
	}
	if len(hits) == 0 {
		return 0
	}

	nodeAt := func(pos int) int {
		for i := len(starts) - 1; i >= 0; i-- {
			if starts[i] <= pos && pos < starts[i]+len(texts[i]) {
				return i
			}
		}
		return -1
	}

	changed := make([]bool, len(nodes))
	// Right to left, so positions computed on the original text stay valid.
	for h := len(hits) - 1; h >= 0; h-- {
		s := hits[h]
		e := s + len(old)
		i, j := nodeAt(s), nodeAt(e-1)
		if i < 0 || j < 0 {
			continue
		}
		if i == j {
			off := starts[i]
			texts[i] = texts[i][:s-off] + repl + texts[i][e-off:]
			changed[i] = true
			continue
		}
		texts[i] = texts[i][:s-starts[i]] + repl
		changed[i] = true
		for k := i + 1; k < j; k++ {
			texts[k] = ""
			changed[k] = true
		}
		texts[j] = texts[j][e-starts[j]:]
		changed[j] = true
	}

	for i, n := range nodes {
		if changed[i] {
			n.SetText(texts[i])
		}
	}
	return len(hits)
}

// pPrOrder is the schema order of w:pPr children.
var pPrOrder = []string{
	"pStyle", "keepNext", "keepLines", "pageBreakBefore", "framePr",
	"widowControl", "numPr", "suppressLineNumbers", "pBdr", "shd", "tabs",
	"suppressAutoHyphens", "kinsoku", "wordWrap", "overflowPunct",
	"topLinePunct", "autoSpaceDE", "autoSpaceDN", "bidi", "adjustRightInd",
	"snapToGrid", "spacing", "ind", "contextualSpacing", "mirrorIndents",
	"suppressOverlap", "jc", "textDirection", "textAlignment",
	"textboxTightWrap", "outlineLvl", "divId", "cnfStyle", "rPr", "sectPr",
	"pPrChange",
}

func pPrRank(local string) int {
	for i, name := range pPrOrder {
		if name == local {
			return i
		}
	}
	return len(pPrOrder)
}

// Alignment returns w:pPr/w:jc/@w:val, or "" when unset.
func (p Paragraph) Alignment() string {
	return wAttr(childW(p.Properties(), "jc"), "val")
}

// HasAlignment reports whether the paragraph carries a w:jc element.
func (p Paragraph) HasAlignment() bool {
	return childW(p.Properties(), "jc") != nil
}

// SetAlignment sets w:jc to val. A new w:jc is inserted at its schema
// position within w:pPr.
func (p Paragraph) SetAlignment(val string) {
	ppr := p.EnsureProperties()
	if jc := childW(ppr, "jc"); jc != nil {
		jc.CreateAttr("w:val", val)
		return
	}

	jc := etree.NewElement("w:jc")
	jc.CreateAttr("w:val", val)

	rank := pPrRank("jc")
	pos := -1
	for _, c := range ppr.ChildElements() {
		if c.Space == "w" && pPrRank(c.Tag) > rank {
			pos = c.Index()
			break
		}
	}
	if pos < 0 {
		ppr.AddChild(jc)
		return
	}
	ppr.InsertChildAt(pos, jc)
}

// ReplaceWith puts repl in place of the paragraph.
func (p Paragraph) ReplaceWith(repl Paragraph) bool {
	return replaceElement(p.E, repl.E)
}
