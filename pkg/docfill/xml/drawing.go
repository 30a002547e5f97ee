package xml

import (
	"strconv"

	"github.com/beevik/etree"
)

const (
	// EMUPerPixel is the number of English Metric Units in one pixel at 96 DPI.
	EMUPerPixel = 9525

	twipsPerInch  = 1440
	pixelsPerInch = 96

	pictureURI = "http://schemas.openxmlformats.org/drawingml/2006/picture"
)

// PixelsToEMU converts pixels to EMU.
func PixelsToEMU(px int) int64 {
	return int64(px) * EMUPerPixel
}

// TwipsToPixels converts twips to pixels with integer division.
func TwipsToPixels(twips int) int {
	return twips * pixelsPerInch / twipsPerInch
}

// InlineImage describes an image to be placed inline in a new paragraph.
type InlineImage struct {
	RelID    string // relationship id of the media part, e.g. "rId7"
	ID       int    // drawing object id, unique in the document
	Name     string
	WidthPx  int
	HeightPx int
	// Properties is copied into the new paragraph as its w:pPr when set.
	Properties *etree.Element
}

// NewImageParagraph builds a detached paragraph containing one run with an
// inline picture. Each call produces a fresh element tree.
func NewImageParagraph(img InlineImage) Paragraph {
	cx := strconv.FormatInt(PixelsToEMU(img.WidthPx), 10)
	cy := strconv.FormatInt(PixelsToEMU(img.HeightPx), 10)
	id := strconv.Itoa(img.ID)

	p := etree.NewElement("w:p")
	if img.Properties != nil {
		p.AddChild(img.Properties.Copy())
	}
	r := p.CreateElement("w:r")
	drawing := r.CreateElement("w:drawing")

	inline := drawing.CreateElement("wp:inline")
	for _, k := range []string{"distT", "distB", "distL", "distR"} {
		inline.CreateAttr(k, "0")
	}
	extent := inline.CreateElement("wp:extent")
	extent.CreateAttr("cx", cx)
	extent.CreateAttr("cy", cy)
	effect := inline.CreateElement("wp:effectExtent")
	for _, k := range []string{"l", "t", "r", "b"} {
		effect.CreateAttr(k, "0")
	}
	docPr := inline.CreateElement("wp:docPr")
	docPr.CreateAttr("id", id)
	docPr.CreateAttr("name", img.Name)

	frame := inline.CreateElement("wp:cNvGraphicFramePr")
	locks := frame.CreateElement("a:graphicFrameLocks")
	locks.CreateAttr("xmlns:a", NamespaceA)
	locks.CreateAttr("noChangeAspect", "1")

	graphic := inline.CreateElement("a:graphic")
	graphic.CreateAttr("xmlns:a", NamespaceA)
	data := graphic.CreateElement("a:graphicData")
	data.CreateAttr("uri", pictureURI)

	pic := data.CreateElement("pic:pic")
	pic.CreateAttr("xmlns:pic", NamespacePic)
	nv := pic.CreateElement("pic:nvPicPr")
	cNvPr := nv.CreateElement("pic:cNvPr")
	cNvPr.CreateAttr("id", "0")
	cNvPr.CreateAttr("name", img.Name)
	nv.CreateElement("pic:cNvPicPr")

	fill := pic.CreateElement("pic:blipFill")
	blip := fill.CreateElement("a:blip")
	blip.CreateAttr("r:embed", img.RelID)
	fill.CreateElement("a:stretch").CreateElement("a:fillRect")

	spPr := pic.CreateElement("pic:spPr")
	xfrm := spPr.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", "0")
	off.CreateAttr("y", "0")
	ext := xfrm.CreateElement("a:ext")
	ext.CreateAttr("cx", cx)
	ext.CreateAttr("cy", cy)
	geom := spPr.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")

	return Paragraph{E: p}
}

// Extent reads wp:extent of the first inline drawing under e, in EMU.
func Extent(e *etree.Element) (cx, cy int64, ok bool) {
	ext := e.FindElement(".//inline/extent")
	if ext == nil {
		return 0, 0, false
	}
	x, err1 := strconv.ParseInt(ext.SelectAttrValue("cx", ""), 10, 64)
	y, err2 := strconv.ParseInt(ext.SelectAttrValue("cy", ""), 10, 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return x, y, true
}

// EmbeddedRelIDs returns the r:embed ids of every picture under e.
func EmbeddedRelIDs(e *etree.Element) []string {
	var out []string
	for _, blip := range e.FindElements(".//blip") {
		if id := blip.SelectAttrValue("r:embed", ""); id != "" {
			out = append(out, id)
		}
	}
	return out
}
