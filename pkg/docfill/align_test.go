package docfill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAlignment(t *testing.T) {
	body := `<w:p><w:pPr><w:jc w:val="both"/></w:pPr>` + run("justified") + `</w:p>` +
		`<w:p><w:pPr><w:jc w:val="justify"/></w:pPr>` + run("justify") + `</w:p>` +
		`<w:p><w:pPr><w:pStyle w:val="Body"/><w:rPr><w:b/></w:rPr></w:pPr>` + run("no jc") + `</w:p>` +
		`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>` + run("centered") + `</w:p>` +
		`<w:p><w:pPr><w:jc w:val="right"/></w:pPr>` + run("right") + `</w:p>` +
		para(run("no pPr")) +
		`<w:tbl><w:tr><w:tc><w:p><w:pPr><w:jc w:val="both"/></w:pPr>` + run("cell") + `</w:p></w:tc></w:tr></w:tbl>`

	pkg := openTestPackage(t, body, nil)
	doc := pkg.Document()

	assert.Equal(t, 3, NormalizeAlignment(doc))

	var got []string
	for _, p := range doc.Paragraphs() {
		got = append(got, p.Alignment())
	}
	assert.Equal(t, []string{"left", "left", "left", "center", "right", ""}, got)
	assert.Nil(t, doc.Paragraphs()[5].Properties())

	cell := doc.Tables()[0].Rows()[0].Cells()[0].Paragraphs()[0]
	assert.Equal(t, "both", cell.Alignment())

	// jc goes before rPr within pPr
	ppr := doc.Paragraphs()[2].Properties()
	var order []string
	for _, c := range ppr.ChildElements() {
		order = append(order, c.Tag)
	}
	assert.Equal(t, []string{"pStyle", "jc", "rPr"}, order)
}

func TestNormalizeAlignmentIdempotent(t *testing.T) {
	body := `<w:p><w:pPr><w:jc w:val="both"/></w:pPr>` + run("a") + `</w:p>` +
		`<w:p><w:pPr/>` + run("b") + `</w:p>`
	pkg := openTestPackage(t, body, nil)
	doc := pkg.Document()

	assert.Equal(t, 2, NormalizeAlignment(doc))
	first, err := doc.Bytes()
	assert.NoError(t, err)

	assert.Equal(t, 0, NormalizeAlignment(doc))
	second, err := doc.Bytes()
	assert.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}
