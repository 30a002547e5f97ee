package docfill

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/beevik/etree"
	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/reportkit/go-docfill/pkg/docfill/xml"
)

// imageSite is where a matched image placeholder lives. It is resolved once
// per match and is one of cellSite or freeSite.
type imageSite interface {
	target() xml.Paragraph
}

// cellSite is a placeholder paragraph directly inside a table cell.
type cellSite struct {
	cell xml.Cell
	para xml.Paragraph
}

// freeSite is a placeholder paragraph directly inside the body.
type freeSite struct {
	para xml.Paragraph
}

func (s cellSite) target() xml.Paragraph { return s.para }
func (s freeSite) target() xml.Paragraph { return s.para }

func isElement(e *etree.Element, space, tag string) bool {
	return e != nil && e.Space == space && e.Tag == tag
}

// classifySite decides where the text node sits.
func classifySite(node xml.TextNode) (imageSite, error) {
	para, ok := node.Paragraph()
	if !ok {
		return nil, newStructureError(KindUnsupportedParent, "text node is not inside a paragraph")
	}
	parent := para.Parent()
	switch {
	case isElement(parent, "w", "tc"):
		cell := xml.Cell{E: parent}
		p, ok := cell.ParagraphContaining(node.E)
		if !ok {
			return nil, newStructureError(KindNotInCell, "cell does not contain the matched run")
		}
		return cellSite{cell: cell, para: p}, nil
	case isElement(parent, "w", "body"):
		return freeSite{para: para}, nil
	case parent == nil:
		return nil, newStructureError(KindUnsupportedParent, "paragraph is detached")
	default:
		return nil, newStructureError(KindUnsupportedParent, "paragraph parent is %s", parent.FullTag())
	}
}

// preparedImage is image data ready to be stored in the package.
type preparedImage struct {
	data        []byte
	ext         string
	contentType string
}

// prepareImage checks that data is a decodable image. PNG, JPEG and GIF are
// stored as they are; other formats are converted to PNG.
func prepareImage(img Image) (*preparedImage, error) {
	if len(img.Data) == 0 {
		return nil, errors.New("image data is empty")
	}
	decoded, err := imaging.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	kind, _ := filetype.Match(img.Data)
	switch kind.Extension {
	case "png", "jpg", "gif":
		return &preparedImage{data: img.Data, ext: kind.Extension, contentType: kind.MIME.Value}, nil
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, decoded, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to convert image to png: %w", err)
	}
	return &preparedImage{data: buf.Bytes(), ext: "png", contentType: "image/png"}, nil
}

// findImageNodes returns the text nodes whose whole text is ${key}.
func findImageNodes(doc *xml.Document, key string) []xml.TextNode {
	token := Token(key)
	var out []xml.TextNode
	for _, n := range doc.TextNodes() {
		if n.Text() == token {
			out = append(out, n)
		}
	}
	return out
}

// substituteImages replaces each image placeholder's paragraph with a
// paragraph holding the picture. Keys are handled in sorted order; a failure
// for one key is logged and collected, and the next key is processed. It
// returns the number of pictures placed and the collected failures.
func (f *filler) substituteImages(images map[string]Image) (int, error) {
	keys := make([]string, 0, len(images))
	for k := range images {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	placed := 0
	var warnings error
	for _, key := range keys {
		n, err := f.substituteImage(key, images[key])
		placed += n
		if err != nil {
			warnings = multierr.Append(warnings, err)
		}
	}
	return placed, warnings
}

func (f *filler) substituteImage(key string, img Image) (int, error) {
	log := f.logger.With(zap.String("key", key))

	nodes := findImageNodes(f.doc, key)
	if len(nodes) == 0 {
		log.Warn("no text node holds the image placeholder; skipping")
		return 0, &ImageError{Key: key, Cause: newStructureError(KindNoMatch, "no text node equals %s", Token(key))}
	}

	var (
		sites []imageSite
		errs  error
	)
	for _, n := range nodes {
		site, err := classifySite(n)
		if err != nil {
			log.Warn("image placeholder is not in a supported position; skipping match", zap.Error(err))
			errs = multierr.Append(errs, &ImageError{Key: key, Cause: err})
			continue
		}
		sites = append(sites, site)
	}
	if len(sites) == 0 {
		return 0, errs
	}

	prepared, err := prepareImage(img)
	if err != nil {
		log.Warn("image could not be prepared; skipping", zap.Error(err))
		return 0, multierr.Append(errs, &ImageError{Key: key, Cause: err})
	}

	relID, err := f.pkg.AddImage(prepared.data, prepared.ext, prepared.contentType)
	if err != nil {
		log.Warn("image part could not be added; skipping", zap.Error(err))
		return 0, multierr.Append(errs, &ImageError{Key: key, Cause: err})
	}
	f.doc.EnsureNamespace(xml.NamespaceWP)
	f.doc.EnsureNamespace(xml.NamespaceR)

	name := img.Name
	if name == "" {
		name = key
	}

	placed := 0
	replaced := make(map[*etree.Element]bool)
	for _, site := range sites {
		target := site.target()
		if replaced[target.E] {
			continue
		}
		w, h := f.siteSize(site, log)
		para := xml.NewImageParagraph(xml.InlineImage{
			RelID:      relID,
			ID:         f.doc.NextDrawingID(),
			Name:       name,
			WidthPx:    w,
			HeightPx:   h,
			Properties: target.Properties(),
		})
		if !target.ReplaceWith(para) {
			continue
		}
		replaced[target.E] = true
		placed++
	}
	log.Debug("image placed", zap.Int("sites", placed), zap.String("rel_id", relID))
	return placed, errs
}

// siteSize returns the picture size in pixels for a site.
func (f *filler) siteSize(site imageSite, log *zap.Logger) (int, int) {
	switch s := site.(type) {
	case cellSite:
		twips, ok := s.cell.WidthTwips()
		px := xml.TwipsToPixels(twips)
		if !ok || px <= f.cfg.CellImageMargin {
			log.Info("cell width unknown or too narrow; using default image size",
				zap.Int("width_twips", twips))
			return f.cfg.FreeImageWidth, f.cfg.FreeImageHeight
		}
		return px - f.cfg.CellImageMargin, px
	default:
		return f.cfg.FreeImageWidth, f.cfg.FreeImageHeight
	}
}
