package render

import (
	"strconv"

	"github.com/beevik/etree"
)

// Paper is a named paper size used when a document does not specify one.
type Paper string

const (
	PaperA4     Paper = "A4"     // 210mm x 297mm
	PaperA5     Paper = "A5"     // 148mm x 210mm
	PaperLetter Paper = "Letter" // 8.5in x 11in
	PaperLegal  Paper = "Legal"  // 8.5in x 14in
)

// IsValid checks if the Paper is a known size
func (p Paper) IsValid() bool {
	switch p {
	case PaperA4, PaperA5, PaperLetter, PaperLegal:
		return true
	}
	return false
}

// Dimensions returns the paper size in millimeters
func (p Paper) Dimensions() (width, height float64) {
	switch p {
	case PaperA5:
		return 148, 210
	case PaperLetter:
		return 215.9, 279.4
	case PaperLegal:
		return 215.9, 355.6
	default:
		return 210, 297
	}
}

// defaultMarginTwips is Word's default page margin (one inch).
const defaultMarginTwips = 1440

// Page is the printable geometry of a document, in inches.
type Page struct {
	Width        float64
	Height       float64
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64
	Landscape    bool
}

// PageFromSection reads w:pgSz and w:pgMar from a section properties element.
// Missing values come from paper and one inch margins.
func PageFromSection(sectPr *etree.Element, paper Paper) Page {
	if paper == "" {
		paper = PaperA4
	}
	w, h := paper.Dimensions()
	page := Page{
		Width:        mmToInches(w),
		Height:       mmToInches(h),
		MarginTop:    twipsToInches(defaultMarginTwips),
		MarginRight:  twipsToInches(defaultMarginTwips),
		MarginBottom: twipsToInches(defaultMarginTwips),
		MarginLeft:   twipsToInches(defaultMarginTwips),
	}
	if sectPr == nil {
		return page
	}

	if pgSz := child(sectPr, "pgSz"); pgSz != nil {
		if v, ok := twipsAttr(pgSz, "w"); ok && v > 0 {
			page.Width = twipsToInches(v)
		}
		if v, ok := twipsAttr(pgSz, "h"); ok && v > 0 {
			page.Height = twipsToInches(v)
		}
		page.Landscape = pgSz.SelectAttrValue("w:orient", "") == "landscape"
	}
	if pgMar := child(sectPr, "pgMar"); pgMar != nil {
		for key, dst := range map[string]*float64{
			"top":    &page.MarginTop,
			"right":  &page.MarginRight,
			"bottom": &page.MarginBottom,
			"left":   &page.MarginLeft,
		} {
			if v, ok := twipsAttr(pgMar, key); ok {
				// negative margins clamp to zero
				*dst = twipsToInches(max(v, 0))
			}
		}
	}
	// Chrome swaps the sides itself when landscape is requested.
	if page.Landscape && page.Width > page.Height {
		page.Width, page.Height = page.Height, page.Width
	}
	return page
}

func child(e *etree.Element, local string) *etree.Element {
	for _, c := range e.ChildElements() {
		if c.Space == "w" && c.Tag == local {
			return c
		}
	}
	return nil
}

func twipsAttr(e *etree.Element, key string) (int, bool) {
	v, err := strconv.Atoi(e.SelectAttrValue("w:"+key, ""))
	return v, err == nil
}

func twipsToInches(twips int) float64 {
	return float64(twips) / 1440
}

// mmToInches converts millimeters to inches
func mmToInches(mm float64) float64 {
	return mm / 25.4
}
