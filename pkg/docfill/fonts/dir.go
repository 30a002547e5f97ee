package fonts

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/multierr"
	"golang.org/x/image/font/sfnt"
)

var ttcMagic = []byte("ttcf")

// DirStore indexes the TrueType and OpenType files found under a set of
// directories. The index is built once by NewDirStore and is read-only
// afterwards.
type DirStore struct {
	MapStore
	// Skipped lists files that looked like fonts but could not be parsed.
	Skipped []string
}

// NewDirStore walks dirs recursively and indexes every font by family name.
// Regular faces win over other styles of the same family. Files that are not
// fonts are ignored; fonts that fail to parse are recorded in Skipped. The
// returned error combines the directories that could not be walked.
func NewDirStore(dirs ...string) (*DirStore, error) {
	s := &DirStore{MapStore: make(MapStore)}
	regular := make(map[string]bool)

	var errs error
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				s.Skipped = append(s.Skipped, path)
				return nil
			}
			format := detectFormat(data)
			if format == "" {
				return nil
			}
			faces, err := parseFaces(data, format)
			if err != nil {
				s.Skipped = append(s.Skipped, path)
				return nil
			}
			for _, pf := range faces {
				s.add(&Face{Family: pf.family, Path: path, Format: format}, pf.regular, regular)
				if pf.typographic != "" && Key(pf.typographic) != Key(pf.family) {
					s.add(&Face{Family: pf.typographic, Path: path, Format: format}, pf.regular, regular)
				}
			}
			return nil
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to scan font directory %s: %w", dir, err))
		}
	}
	return s, errs
}

func (s *DirStore) add(f *Face, isRegular bool, regular map[string]bool) {
	key := Key(f.Family)
	if _, ok := s.MapStore[key]; ok && (regular[key] || !isRegular) {
		return
	}
	s.MapStore[key] = f
	if isRegular {
		regular[key] = true
	}
}

// detectFormat returns ttf, otf or ttc for font data, or "".
func detectFormat(data []byte) string {
	if bytes.HasPrefix(data, ttcMagic) {
		return "ttc"
	}
	switch {
	case filetype.Is(data, "ttf"):
		return "ttf"
	case filetype.Is(data, "otf"):
		return "otf"
	}
	return ""
}

type parsedFace struct {
	family      string
	typographic string
	regular     bool
}

func parseFaces(data []byte, format string) ([]parsedFace, error) {
	var fonts []*sfnt.Font
	if format == "ttc" {
		c, err := sfnt.ParseCollection(data)
		if err != nil {
			return nil, err
		}
		for i := 0; i < c.NumFonts(); i++ {
			f, err := c.Font(i)
			if err != nil {
				return nil, err
			}
			fonts = append(fonts, f)
		}
	} else {
		f, err := sfnt.Parse(data)
		if err != nil {
			return nil, err
		}
		fonts = append(fonts, f)
	}

	var buf sfnt.Buffer
	out := make([]parsedFace, 0, len(fonts))
	for _, f := range fonts {
		family, err := f.Name(&buf, sfnt.NameIDFamily)
		if err != nil || family == "" {
			continue
		}
		typographic, _ := f.Name(&buf, sfnt.NameIDTypographicFamily)
		sub, _ := f.Name(&buf, sfnt.NameIDSubfamily)
		out = append(out, parsedFace{
			family:      family,
			typographic: typographic,
			regular:     sub == "" || strings.EqualFold(sub, "Regular"),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no family name")
	}
	return out, nil
}
