package docfill

import (
	"bytes"
	"errors"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/reportkit/go-docfill/pkg/docfill/xml"
)

func imageCell(width string) string {
	tcPr := ""
	if width != "" {
		tcPr = `<w:tcPr><w:tcW w:w="` + width + `" w:type="dxa"/></w:tcPr>`
	}
	return `<w:tbl><w:tr><w:tc>` + tcPr + para(run("${photo}")) + `</w:tc></w:tr></w:tbl>`
}

func TestSubstituteImagesFree(t *testing.T) {
	f, _ := newTestFiller(t, `<w:p><w:pPr><w:jc w:val="center"/></w:pPr>`+run("${logo}")+`</w:p>`)
	png := BuildTestPNG(8, 8)

	placed, err := f.substituteImages(map[string]Image{"logo": {Name: "logo.png", Data: png}})
	require.NoError(t, err)
	assert.Equal(t, 1, placed)

	p := f.doc.Paragraphs()[0]
	assert.Equal(t, "center", p.Alignment())
	cx, cy, ok := xml.Extent(p.E)
	require.True(t, ok)
	assert.Equal(t, xml.PixelsToEMU(200), cx)
	assert.Equal(t, xml.PixelsToEMU(100), cy)

	ids := xml.EmbeddedRelIDs(p.E)
	require.Equal(t, []string{"rId2"}, ids)
	data, contentType, ok := f.pkg.Media("rId2")
	require.True(t, ok)
	assert.Equal(t, png, data)
	assert.Equal(t, "image/png", contentType)

	root := f.doc.Root()
	assert.Equal(t, xml.NamespaceWP, root.SelectAttrValue("xmlns:wp", ""))
	assert.Equal(t, xml.NamespaceR, root.SelectAttrValue("xmlns:r", ""))
}

func TestSubstituteImagesCellSizing(t *testing.T) {
	tests := []struct {
		name   string
		width  string
		wantCX int
		wantCY int
	}{
		{name: "sized from cell", width: "2400", wantCX: 150, wantCY: 160},
		{name: "unknown width", width: "", wantCX: 200, wantCY: 100},
		{name: "narrower than margin", width: "150", wantCX: 200, wantCY: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newTestFiller(t, imageCell(tt.width))

			placed, err := f.substituteImages(map[string]Image{"photo": {Data: BuildTestPNG(2, 2)}})
			require.NoError(t, err)
			assert.Equal(t, 1, placed)

			cell := f.doc.Tables()[0].Rows()[0].Cells()[0]
			paras := cell.Paragraphs()
			require.Len(t, paras, 1)
			cx, cy, ok := xml.Extent(paras[0].E)
			require.True(t, ok)
			assert.Equal(t, xml.PixelsToEMU(tt.wantCX), cx)
			assert.Equal(t, xml.PixelsToEMU(tt.wantCY), cy)
		})
	}
}

func TestSubstituteImagesEverySite(t *testing.T) {
	f, _ := newTestFiller(t, para(run("${logo}"))+para(run("text"))+para(run("${logo}")))

	placed, err := f.substituteImages(map[string]Image{"logo": {Data: BuildTestPNG(2, 2)}})
	require.NoError(t, err)
	assert.Equal(t, 2, placed)

	paras := f.doc.Paragraphs()
	assert.Equal(t, []string{"rId2"}, xml.EmbeddedRelIDs(paras[0].E))
	assert.Equal(t, []string{"rId2"}, xml.EmbeddedRelIDs(paras[2].E))
	assert.NotSame(t, paras[0].E, paras[2].E)

	first := paras[0].E.FindElement(".//docPr").SelectAttrValue("id", "")
	second := paras[2].E.FindElement(".//docPr").SelectAttrValue("id", "")
	assert.NotEqual(t, first, second)
	assert.Len(t, f.pkg.Relationships(), 2)
}

func TestSubstituteImagesWarnings(t *testing.T) {
	tests := []struct {
		name string
		body string
		img  Image
		kind StructureKind
	}{
		{
			name: "token shares the node with other text",
			body: para(run("Logo: ${logo}")),
			img:  Image{Data: BuildTestPNG(2, 2)},
			kind: KindNoMatch,
		},
		{
			name: "no token at all",
			body: para(run("nothing here")),
			img:  Image{Data: BuildTestPNG(2, 2)},
			kind: KindNoMatch,
		},
		{
			name: "paragraph inside a content control",
			body: `<w:sdt><w:sdtContent>` + para(run("${logo}")) + `</w:sdtContent></w:sdt>`,
			img:  Image{Data: BuildTestPNG(2, 2)},
			kind: KindUnsupportedParent,
		},
		{
			name: "undecodable data",
			body: para(run("${logo}")),
			img:  Image{Data: []byte("not an image")},
		},
		{
			name: "empty data",
			body: para(run("${logo}")),
			img:  Image{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, logs := newTestFiller(t, tt.body)
			before, err := f.doc.Bytes()
			require.NoError(t, err)

			placed, err := f.substituteImages(map[string]Image{"logo": tt.img})
			assert.Equal(t, 0, placed)
			require.Error(t, err)
			assert.True(t, IsImageError(err))

			var ie *ImageError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, "logo", ie.Key)

			if tt.kind != "" {
				var se *StructureError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, tt.kind, se.Kind)
			}

			after, err := f.doc.Bytes()
			require.NoError(t, err)
			assert.Equal(t, string(before), string(after))
			assert.Len(t, f.pkg.Relationships(), 1)
			assert.NotZero(t, logs.Len())
		})
	}
}

func TestSubstituteImagesContinuesAfterFailure(t *testing.T) {
	f, _ := newTestFiller(t, para(run("${bad}"))+para(run("${good}")))

	placed, err := f.substituteImages(map[string]Image{
		"bad":  {Data: []byte("garbage")},
		"good": {Data: BuildTestPNG(2, 2)},
	})
	assert.Equal(t, 1, placed)
	require.Len(t, multierr.Errors(err), 1)
	assert.Equal(t, "${bad}", f.doc.Paragraphs()[0].Text())
	assert.NotEmpty(t, xml.EmbeddedRelIDs(f.doc.Paragraphs()[1].E))
}

func TestPrepareImage(t *testing.T) {
	png := BuildTestPNG(3, 3)
	prepared, err := prepareImage(Image{Data: png})
	require.NoError(t, err)
	assert.Equal(t, "png", prepared.ext)
	assert.Equal(t, "image/png", prepared.contentType)
	assert.Equal(t, png, prepared.data)

	var jpg bytes.Buffer
	require.NoError(t, imaging.Encode(&jpg, imaging.New(3, 3, color.White), imaging.JPEG))
	prepared, err = prepareImage(Image{Data: jpg.Bytes()})
	require.NoError(t, err)
	assert.Equal(t, "jpg", prepared.ext)
	assert.Equal(t, "image/jpeg", prepared.contentType)

	var bmp bytes.Buffer
	require.NoError(t, imaging.Encode(&bmp, imaging.New(3, 3, color.Black), imaging.BMP))
	prepared, err = prepareImage(Image{Data: bmp.Bytes()})
	require.NoError(t, err)
	assert.Equal(t, "png", prepared.ext)
	assert.Equal(t, "image/png", prepared.contentType)
	assert.True(t, bytes.HasPrefix(prepared.data, []byte("\x89PNG")))
}
