package render

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/reportkit/go-docfill/pkg/docfill/fonts"
	"github.com/reportkit/go-docfill/pkg/docfill/xml"
)

const baseCSS = `body{margin:0;font-size:11pt}` +
	`p{margin:0;white-space:pre-wrap;min-height:1em}` +
	`table{border-collapse:collapse}` +
	`td{vertical-align:top;padding:0 5.4pt}` +
	`table.grid td{border:0.5pt solid #000}` +
	`img{display:inline-block}`

// BuildHTML converts the document body into a standalone HTML page with the
// mapped fonts embedded.
func BuildHTML(in *Input) (string, error) {
	if err := Validate(in); err != nil {
		return "", err
	}

	css, err := fontFaceCSS(in.Fonts)
	if err != nil {
		return "", err
	}
	if in.DefaultFont != "" {
		css += "body{font-family:'" + cssName(in.DefaultFont) + "'}"
	}

	doc := etree.NewDocument()
	doc.WriteSettings.CanonicalText = true
	html := doc.CreateElement("html")
	head := html.CreateElement("head")
	head.CreateElement("meta").CreateAttr("charset", "UTF-8")
	if in.Title != "" {
		head.CreateElement("title").SetText(in.Title)
	}
	head.CreateElement("style").SetText(baseCSS + css)
	body := html.CreateElement("body")

	c := &converter{media: in.Media}
	c.blocks(in.Document.Body(), body)
	if len(body.Child) == 0 {
		body.SetText("\u00a0")
	}

	out, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("failed to serialize html: %w", err)
	}
	return "<!DOCTYPE html>" + out, nil
}

func fontFaceCSS(m *fonts.Mapping) (string, error) {
	families := make([]string, 0, m.Len())
	for family := range m.Faces {
		families = append(families, family)
	}
	sort.Strings(families)

	var sb strings.Builder
	for _, family := range families {
		face := m.Faces[family]
		data, err := face.Load()
		if err != nil {
			return "", NewRenderError(ErrCodeRenderFailed, "failed to load font for "+family, err)
		}
		fmt.Fprintf(&sb, "@font-face{font-family:'%s';src:url(data:%s;base64,%s)}",
			cssName(family), face.MIMEType(), base64.StdEncoding.EncodeToString(data))
	}
	return sb.String(), nil
}

func cssName(family string) string {
	return strings.NewReplacer("'", "", "\\", "", "\n", " ").Replace(family)
}

type converter struct {
	media MediaSource
}

// isW matches on the prefix; xml.ParseDocument has already moved
// WordprocessingML onto "w".
func isW(e *etree.Element, local string) bool {
	return e.Space == "w" && e.Tag == local
}

func (c *converter) blocks(src, dst *etree.Element) {
	for _, e := range src.ChildElements() {
		switch {
		case isW(e, "p"):
			dst.AddChild(c.paragraph(e))
		case isW(e, "tbl"):
			dst.AddChild(c.table(e))
		case isW(e, "sdt"):
			if content := child(e, "sdtContent"); content != nil {
				c.blocks(content, dst)
			}
		}
	}
}

func (c *converter) paragraph(p *etree.Element) *etree.Element {
	out := etree.NewElement("p")
	if ppr := child(p, "pPr"); ppr != nil {
		if align := textAlign(child(ppr, "jc")); align != "" {
			out.CreateAttr("style", "text-align:"+align)
		}
	}
	c.inline(p, out)
	if len(out.Child) == 0 {
		out.SetText("\u00a0")
	}
	return out
}

func textAlign(jc *etree.Element) string {
	if jc == nil {
		return ""
	}
	switch jc.SelectAttrValue("w:val", "") {
	case "left", "start":
		return "left"
	case "center":
		return "center"
	case "right", "end":
		return "right"
	case "both", "justify", "distribute":
		return "justify"
	}
	return ""
}

func (c *converter) inline(src, dst *etree.Element) {
	for _, e := range src.ChildElements() {
		switch {
		case isW(e, "r"):
			c.run(e, dst)
		case isW(e, "hyperlink"), isW(e, "ins"), isW(e, "smartTag"), isW(e, "fldSimple"):
			c.inline(e, dst)
		case isW(e, "sdt"):
			if content := child(e, "sdtContent"); content != nil {
				c.inline(content, dst)
			}
		}
	}
}

func (c *converter) run(r, dst *etree.Element) {
	span := etree.NewElement("span")
	if style := runStyle(child(r, "rPr")); style != "" {
		span.CreateAttr("style", style)
	}
	for _, e := range r.ChildElements() {
		switch {
		case isW(e, "t"):
			span.CreateText(e.Text())
		case isW(e, "tab"):
			span.CreateText("\t")
		case isW(e, "noBreakHyphen"):
			span.CreateText("\u2011")
		case isW(e, "br"), isW(e, "cr"):
			br := span.CreateElement("br")
			if e.SelectAttrValue("w:type", "") == "page" {
				br.CreateAttr("style", "break-after:page")
			}
		case isW(e, "drawing"):
			if img := c.image(e); img != nil {
				span.AddChild(img)
			}
		}
	}
	if len(span.Child) > 0 {
		dst.AddChild(span)
	}
}

func onOff(e *etree.Element) bool {
	if e == nil {
		return false
	}
	switch e.SelectAttrValue("w:val", "") {
	case "0", "false", "off":
		return false
	}
	return true
}

func runStyle(rPr *etree.Element) string {
	if rPr == nil {
		return ""
	}
	var parts []string
	if rf := child(rPr, "rFonts"); rf != nil {
		family := rf.SelectAttrValue("w:ascii", "")
		if family == "" {
			family = rf.SelectAttrValue("w:hAnsi", "")
		}
		if family != "" {
			parts = append(parts, "font-family:'"+cssName(family)+"'")
		}
	}
	if onOff(child(rPr, "b")) {
		parts = append(parts, "font-weight:bold")
	}
	if onOff(child(rPr, "i")) {
		parts = append(parts, "font-style:italic")
	}
	var deco []string
	if u := child(rPr, "u"); u != nil && u.SelectAttrValue("w:val", "single") != "none" {
		deco = append(deco, "underline")
	}
	if onOff(child(rPr, "strike")) {
		deco = append(deco, "line-through")
	}
	if len(deco) > 0 {
		parts = append(parts, "text-decoration:"+strings.Join(deco, " "))
	}
	if sz := child(rPr, "sz"); sz != nil {
		if half, err := strconv.Atoi(sz.SelectAttrValue("w:val", "")); err == nil && half > 0 {
			parts = append(parts, "font-size:"+strconv.FormatFloat(float64(half)/2, 'f', -1, 64)+"pt")
		}
	}
	if color := child(rPr, "color"); color != nil {
		if v := color.SelectAttrValue("w:val", ""); v != "" && v != "auto" {
			parts = append(parts, "color:#"+v)
		}
	}
	if va := child(rPr, "vertAlign"); va != nil {
		switch va.SelectAttrValue("w:val", "") {
		case "superscript":
			parts = append(parts, "vertical-align:super")
		case "subscript":
			parts = append(parts, "vertical-align:sub")
		}
	}
	return strings.Join(parts, ";")
}

func (c *converter) image(drawing *etree.Element) *etree.Element {
	if c.media == nil {
		return nil
	}
	ids := xml.EmbeddedRelIDs(drawing)
	if len(ids) == 0 {
		return nil
	}
	data, contentType, ok := c.media.Media(ids[0])
	if !ok {
		return nil
	}

	img := etree.NewElement("img")
	img.CreateAttr("src", "data:"+contentType+";base64,"+base64.StdEncoding.EncodeToString(data))
	if cx, cy, ok := xml.Extent(drawing); ok {
		img.CreateAttr("width", strconv.FormatInt(cx/xml.EMUPerPixel, 10))
		img.CreateAttr("height", strconv.FormatInt(cy/xml.EMUPerPixel, 10))
	}
	if docPr := drawing.FindElement(".//docPr"); docPr != nil {
		img.CreateAttr("alt", docPr.SelectAttrValue("name", ""))
	}
	return img
}

func (c *converter) table(tbl *etree.Element) *etree.Element {
	out := etree.NewElement("table")
	if tblPr := child(tbl, "tblPr"); tblPr != nil {
		if child(tblPr, "tblBorders") != nil || child(tblPr, "tblStyle") != nil {
			out.CreateAttr("class", "grid")
		}
	}
	for _, tr := range tbl.ChildElements() {
		if !isW(tr, "tr") {
			continue
		}
		row := out.CreateElement("tr")
		for _, tc := range tr.ChildElements() {
			if !isW(tc, "tc") {
				continue
			}
			row.AddChild(c.cell(tc))
		}
	}
	return out
}

func (c *converter) cell(tc *etree.Element) *etree.Element {
	td := etree.NewElement("td")
	if tcPr := child(tc, "tcPr"); tcPr != nil {
		if span := child(tcPr, "gridSpan"); span != nil {
			if n, err := strconv.Atoi(span.SelectAttrValue("w:val", "")); err == nil && n > 1 {
				td.CreateAttr("colspan", strconv.Itoa(n))
			}
		}
		if tcW := child(tcPr, "tcW"); tcW != nil {
			typ := tcW.SelectAttrValue("w:type", "dxa")
			if w, err := strconv.Atoi(tcW.SelectAttrValue("w:w", "")); err == nil && w > 0 && typ == "dxa" {
				td.CreateAttr("style", "width:"+strconv.FormatFloat(float64(w)/20, 'f', -1, 64)+"pt")
			}
		}
	}
	c.blocks(tc, td)
	if len(td.Child) == 0 {
		td.SetText("\u00a0")
	}
	return td
}
