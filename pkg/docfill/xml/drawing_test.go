package xml

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnits(t *testing.T) {
	assert.Equal(t, int64(952500), PixelsToEMU(100))
	assert.Equal(t, 96, TwipsToPixels(1440))
	assert.Equal(t, 160, TwipsToPixels(2400))
	// integer division truncates
	assert.Equal(t, 0, TwipsToPixels(14))
}

func TestNewImageParagraph(t *testing.T) {
	ppr := etree.NewElement("w:pPr")
	ppr.CreateElement("w:jc").CreateAttr("w:val", "center")

	p := NewImageParagraph(InlineImage{
		RelID:      "rId7",
		ID:         3,
		Name:       "photo",
		WidthPx:    200,
		HeightPx:   100,
		Properties: ppr,
	})

	assert.Equal(t, "center", p.Alignment())
	assert.NotSame(t, ppr, p.Properties())

	cx, cy, ok := Extent(p.E)
	require.True(t, ok)
	assert.Equal(t, int64(1905000), cx)
	assert.Equal(t, int64(952500), cy)

	assert.Equal(t, []string{"rId7"}, EmbeddedRelIDs(p.E))
	docPr := p.E.FindElement(".//docPr")
	require.NotNil(t, docPr)
	assert.Equal(t, "3", docPr.SelectAttrValue("id", ""))
	assert.Equal(t, "photo", docPr.SelectAttrValue("name", ""))

	ext := p.E.FindElement(".//xfrm/ext")
	require.NotNil(t, ext)
	assert.Equal(t, "1905000", ext.SelectAttrValue("cx", ""))
}

func TestNewImageParagraphFreshTrees(t *testing.T) {
	a := NewImageParagraph(InlineImage{RelID: "rId1", ID: 1, WidthPx: 1, HeightPx: 1})
	b := NewImageParagraph(InlineImage{RelID: "rId1", ID: 2, WidthPx: 1, HeightPx: 1})

	assert.NotSame(t, a.E.FindElement(".//inline"), b.E.FindElement(".//inline"))
	assert.Nil(t, a.Properties())
}

func TestExtentMissing(t *testing.T) {
	_, _, ok := Extent(NewParagraph("x").E)
	assert.False(t, ok)
}
