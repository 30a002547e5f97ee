package docfill

import (
	"github.com/reportkit/go-docfill/pkg/docfill/xml"
)

// NormalizeAlignment left-aligns body paragraphs that have paragraph
// properties but no alignment, or a justified one. Paragraphs without w:pPr
// and paragraphs in tables are left alone. Running it twice changes nothing
// the second time. It returns the number of paragraphs changed.
func NormalizeAlignment(doc *xml.Document) int {
	changed := 0
	for _, p := range doc.Paragraphs() {
		if p.Properties() == nil {
			continue
		}
		if p.HasAlignment() {
			switch p.Alignment() {
			case "both", "justify":
			default:
				continue
			}
		}
		p.SetAlignment("left")
		changed++
	}
	return changed
}
