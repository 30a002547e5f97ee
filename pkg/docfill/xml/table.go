package xml

import (
	"strconv"

	"github.com/beevik/etree"
)

// Table is a handle on a w:tbl element.
type Table struct {
	E *etree.Element
}

// Rows returns the table rows in order.
func (t Table) Rows() []Row {
	var out []Row
	for _, e := range childrenW(t.E, "tr") {
		out = append(out, Row{E: e})
	}
	return out
}

// RowCount returns the number of rows.
func (t Table) RowCount() int {
	return len(childrenW(t.E, "tr"))
}

// FirstCellText returns the text of the first paragraph of the first cell of
// the first row. ok is false when the table has no such cell.
func (t Table) FirstCellText() (string, bool) {
	rows := t.Rows()
	if len(rows) == 0 {
		return "", false
	}
	cells := rows[0].Cells()
	if len(cells) == 0 {
		return "", false
	}
	paras := cells[0].Paragraphs()
	if len(paras) == 0 {
		return "", true
	}
	return paras[0].Text(), true
}

// InsertRow inserts row so that it becomes row number idx. An idx past the
// end appends.
func (t Table) InsertRow(idx int, row Row) {
	rows := t.Rows()
	switch {
	case idx < len(rows) && idx >= 0:
		t.E.InsertChildAt(rows[idx].E.Index(), row.E)
	case len(rows) > 0:
		t.E.InsertChildAt(rows[len(rows)-1].E.Index()+1, row.E)
	default:
		t.E.AddChild(row.E)
	}
}

// RemoveRow removes row number idx. It reports false when idx is out of range.
func (t Table) RemoveRow(idx int) bool {
	rows := t.Rows()
	if idx < 0 || idx >= len(rows) {
		return false
	}
	t.E.RemoveChild(rows[idx].E)
	return true
}

// GridColumns returns the w:tblGrid column widths in twips.
func (t Table) GridColumns() []int {
	var out []int
	for _, gc := range childrenW(childW(t.E, "tblGrid"), "gridCol") {
		w, _ := strconv.Atoi(wAttr(gc, "w"))
		out = append(out, w)
	}
	return out
}

// Row is a handle on a w:tr element.
type Row struct {
	E *etree.Element
}

// NewRow creates a detached row from cells.
func NewRow(cells ...Cell) Row {
	tr := etree.NewElement("w:tr")
	for _, c := range cells {
		tr.AddChild(c.E)
	}
	return Row{E: tr}
}

// Cells returns the row's cells in order.
func (r Row) Cells() []Cell {
	var out []Cell
	for _, e := range childrenW(r.E, "tc") {
		out = append(out, Cell{E: e})
	}
	return out
}

// Cell is a handle on a w:tc element.
type Cell struct {
	E *etree.Element
}

// NewCell creates a detached cell holding one paragraph with text. When
// width is non-nil a copy of it becomes the cell's w:tcPr/w:tcW.
func NewCell(text string, width *etree.Element) Cell {
	tc := etree.NewElement("w:tc")
	if width != nil {
		tcPr := tc.CreateElement("w:tcPr")
		tcPr.AddChild(width.Copy())
	}
	tc.AddChild(NewParagraph(text).E)
	return Cell{E: tc}
}

// Paragraphs returns the paragraphs that are direct children of the cell.
func (c Cell) Paragraphs() []Paragraph {
	var out []Paragraph
	for _, e := range childrenW(c.E, "p") {
		out = append(out, Paragraph{E: e})
	}
	return out
}

// ParagraphContaining returns the cell paragraph that holds e.
func (c Cell) ParagraphContaining(e *etree.Element) (Paragraph, bool) {
	for _, p := range c.Paragraphs() {
		if p.Contains(e) {
			return p, true
		}
	}
	return Paragraph{}, false
}

// WidthElement returns w:tcPr/w:tcW, or nil.
func (c Cell) WidthElement() *etree.Element {
	return childW(childW(c.E, "tcPr"), "tcW")
}

// WidthTwips returns the cell width in twips. A w:tcW of type dxa (or with no
// type) is used directly; otherwise the width is summed from the table grid
// columns the cell spans. ok is false when neither source gives a width.
func (c Cell) WidthTwips() (int, bool) {
	if tcW := c.WidthElement(); tcW != nil {
		typ := wAttr(tcW, "type")
		if typ == "" || typ == "dxa" {
			if w, err := strconv.Atoi(wAttr(tcW, "w")); err == nil && w > 0 {
				return w, true
			}
		}
	}
	return c.gridWidth()
}

func (c Cell) gridSpan() int {
	span, err := strconv.Atoi(wAttr(childW(childW(c.E, "tcPr"), "gridSpan"), "val"))
	if err != nil || span < 1 {
		return 1
	}
	return span
}

func (c Cell) gridWidth() (int, bool) {
	tr := c.E.Parent()
	if !isW(tr, "tr") {
		return 0, false
	}
	tbl := tr.Parent()
	if !isW(tbl, "tbl") {
		return 0, false
	}
	cols := Table{E: tbl}.GridColumns()

	start := 0
	for _, sib := range (Row{E: tr}).Cells() {
		if sib.E == c.E {
			break
		}
		start += sib.gridSpan()
	}
	end := start + c.gridSpan()
	if end > len(cols) {
		return 0, false
	}
	total := 0
	for _, w := range cols[start:end] {
		total += w
	}
	return total, total > 0
}
