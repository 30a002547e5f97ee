package docfill

import (
	"regexp"
	"sort"
	"strings"

	"github.com/reportkit/go-docfill/pkg/docfill/xml"
)

var placeholderPattern = regexp.MustCompile(`\$\{[^{}]+\}`)

// Token wraps a key into its placeholder form, ${key}.
func Token(key string) string {
	return "${" + key + "}"
}

// KeyOf strips the ${} wrapper from a token.
func KeyOf(token string) string {
	return strings.TrimSuffix(strings.TrimPrefix(token, "${"), "}")
}

// Scan returns the distinct placeholder tokens in the document, sorted.
// Paragraph text is matched as a whole, so tokens split across runs are
// found. Body paragraphs, table cells at any depth and content controls are
// searched. The document is not modified.
func Scan(doc *xml.Document) []string {
	seen := make(map[string]bool)
	for _, p := range doc.AllParagraphs() {
		for _, tok := range placeholderPattern.FindAllString(p.Text(), -1) {
			seen[tok] = true
		}
	}
	out := make([]string, 0, len(seen))
	for tok := range seen {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// ApplyDefaults inserts blank for every scanned token whose key the data map
// lacks, and returns the keys it filled in.
func ApplyDefaults(tokens []string, data DataMap, blank string) []string {
	var defaulted []string
	for _, tok := range tokens {
		key := KeyOf(tok)
		if _, ok := data[key]; ok {
			continue
		}
		data[key] = Text(blank)
		defaulted = append(defaulted, key)
	}
	return defaulted
}
