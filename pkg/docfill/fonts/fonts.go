// Package fonts maps the font families a document asks for onto physical font
// files available to the renderer.
//
// A Store answers lookups by family name. Resolve builds a fresh Mapping for
// one document: each requested family maps to its own face when the store has
// it, to the fallback family's face otherwise, or stays unmapped.
package fonts

import (
	"os"
	"strings"

	"golang.org/x/text/cases"
)

// DefaultFallback is the family substituted for fonts the store does not have.
const DefaultFallback = "Times New Roman"

// Face is a physical font file.
type Face struct {
	// Family is the family name as stored in the font's name table.
	Family string
	// Path is where the file lives, empty for in-memory faces.
	Path string
	// Format is the detected container type: ttf, otf or ttc.
	Format string
	// Data holds the file contents for in-memory faces.
	Data []byte
}

// Load returns the font file contents.
func (f *Face) Load() ([]byte, error) {
	if f.Data != nil {
		return f.Data, nil
	}
	return os.ReadFile(f.Path)
}

// MIMEType returns the media type used when the face is embedded in CSS.
func (f *Face) MIMEType() string {
	switch f.Format {
	case "otf":
		return "font/otf"
	case "ttc":
		return "font/collection"
	default:
		return "font/ttf"
	}
}

// Store looks up physical faces by family name. Implementations must be safe
// for concurrent use once constructed.
type Store interface {
	Lookup(family string) (*Face, bool)
}

// Key normalizes a family name for lookups: surrounding space is trimmed and
// the name is case folded.
func Key(family string) string {
	return cases.Fold().String(strings.TrimSpace(family))
}

// MapStore is an in-memory Store keyed by folded family name.
type MapStore map[string]*Face

// NewMapStore indexes faces by their Family.
func NewMapStore(faces ...*Face) MapStore {
	s := make(MapStore, len(faces))
	for _, f := range faces {
		s.Add(f)
	}
	return s
}

// Add registers a face. An existing face of the same family is kept.
func (s MapStore) Add(f *Face) {
	if f == nil || f.Family == "" {
		return
	}
	key := Key(f.Family)
	if _, ok := s[key]; !ok {
		s[key] = f
	}
}

// Lookup implements Store.
func (s MapStore) Lookup(family string) (*Face, bool) {
	f, ok := s[Key(family)]
	return f, ok
}

// Len returns the number of families in the store.
func (s MapStore) Len() int {
	return len(s)
}

// Mapping is the resolved font table for one document.
type Mapping struct {
	// Faces maps each resolved family, as spelled in the document, to a face.
	Faces map[string]*Face
	// Substituted lists the families that were resolved to the fallback.
	Substituted []string
	// Unmapped lists the families that have no face at all.
	Unmapped []string
}

// Face returns the face for a requested family.
func (m *Mapping) Face(family string) (*Face, bool) {
	if m == nil {
		return nil, false
	}
	f, ok := m.Faces[family]
	return f, ok
}

// Len returns the number of mapped families.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Faces)
}

// Resolve maps each family onto a face from store. Lookup is exact after case
// folding; a family the store lacks gets the fallback family's face, and when
// the fallback is missing too the family is left unmapped. Families that fold
// to the same key are resolved once. A nil store leaves everything unmapped.
func Resolve(families []string, store Store, fallback string) *Mapping {
	m := &Mapping{Faces: make(map[string]*Face)}

	var fallbackFace *Face
	if store != nil && fallback != "" {
		fallbackFace, _ = store.Lookup(fallback)
	}

	seen := make(map[string]bool)
	for _, family := range families {
		key := Key(family)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		if store != nil {
			if f, ok := store.Lookup(family); ok {
				m.Faces[family] = f
				continue
			}
		}
		if fallbackFace != nil {
			m.Faces[family] = fallbackFace
			m.Substituted = append(m.Substituted, family)
			continue
		}
		m.Unmapped = append(m.Unmapped, family)
	}
	return m
}
