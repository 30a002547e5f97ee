package docfill

import (
	"sort"

	"github.com/reportkit/go-docfill/pkg/docfill/xml"
)

// PrepareRuns merges adjacent runs with identical formatting in every
// paragraph so placeholders split by an editor become contiguous. It returns
// the number of runs removed.
func PrepareRuns(doc *xml.Document) int {
	merged := 0
	for _, p := range doc.AllParagraphs() {
		merged += p.MergeRuns()
	}
	return merged
}

// SubstituteText replaces ${key} with its value for every text key, in every
// paragraph including table cells. Keys are applied in sorted order. It
// returns the number of replacements made.
func SubstituteText(doc *xml.Document, texts map[string]string) int {
	keys := make([]string, 0, len(texts))
	for k := range texts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	paras := doc.AllParagraphs()
	count := 0
	for _, k := range keys {
		token := Token(k)
		for _, p := range paras {
			count += p.ReplaceAll(token, texts[k])
		}
	}
	return count
}
