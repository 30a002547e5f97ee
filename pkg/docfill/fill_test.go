package docfill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/reportkit/go-docfill/pkg/docfill/fonts"
	"github.com/reportkit/go-docfill/pkg/docfill/xml"
)

func openTestPackage(t *testing.T, body string, extra map[string]string) *Package {
	t.Helper()
	pkg, err := OpenPackage(BuildTestDOCX(body, extra))
	require.NoError(t, err)
	return pkg
}

func newTestFiller(t *testing.T, body string) (*filler, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	pkg := openTestPackage(t, body, nil)
	return &filler{
		cfg:    DefaultConfig(),
		pkg:    pkg,
		doc:    pkg.Document(),
		logger: zap.New(core),
	}, logs
}

func run(text string) string {
	return `<w:r><w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

func para(runs ...string) string {
	s := "<w:p>"
	for _, r := range runs {
		s += r
	}
	return s + "</w:p>"
}

func bodyTexts(doc *xml.Document) []string {
	var out []string
	for _, p := range doc.AllParagraphs() {
		out = append(out, p.Text())
	}
	return out
}

func TestFillerRun(t *testing.T) {
	body := para(run("Dear ${na"), run("me},")) +
		`<w:p><w:pPr><w:jc w:val="both"/></w:pPr>` + run("Ref ${ref} on ${date}") + `</w:p>` +
		para(run("${logo}")) +
		`<w:tbl><w:tr><w:tc><w:p>` + run("Item") + `</w:p></w:tc><w:tc><w:p>` + run("Qty") + `</w:p></w:tc></w:tr></w:tbl>`

	f, logs := newTestFiller(t, body)
	f.store = fonts.NewMapStore(&fonts.Face{Family: "Times New Roman", Path: "/fonts/times.ttf"})

	var report Report
	f.run(Request{
		Data: DataMap{
			"name": Text("Ada"),
			"ref":  Text("R-1"),
			"logo": Image{Name: "logo.png", Data: BuildTestPNG(4, 4)},
		},
		Records:      []TableRecord{{"item": "Pen", "qty": "2"}},
		Columns:      ColumnMapping{{Field: "item", Header: "Item"}, {Field: "qty", Header: "Qty"}},
		IncludeTable: true,
	}, &report)

	assert.Equal(t, []string{"${date}", "${logo}", "${name}", "${ref}"}, report.Placeholders)
	assert.Equal(t, []string{"date"}, report.Defaulted)
	assert.Equal(t, 3, report.TextReplacements)
	assert.Equal(t, 1, report.ImagesPlaced)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, TableResult{Injected: true, Rows: 1}, report.Table)
	assert.Equal(t, 1, report.AlignedParagraphs)

	texts := bodyTexts(f.doc)
	assert.Equal(t, "Dear Ada,", texts[0])
	assert.Equal(t, "Ref R-1 on "+DefaultConfig().BlankDefault, texts[1])
	assert.Empty(t, Scan(f.doc))

	assert.Equal(t, 1, logs.FilterMessage("placeholders without data were blanked").Len())
}

func TestFillerRunLeavesCallerDataAlone(t *testing.T) {
	f, _ := newTestFiller(t, para(run("${a} ${b}")))
	data := DataMap{"a": Text("1")}

	var report Report
	f.run(Request{Data: data}, &report)

	assert.Len(t, data, 1)
	assert.Equal(t, []string{"b"}, report.Defaulted)
}

func TestFillerRunTableDisabled(t *testing.T) {
	body := `<w:tbl><w:tr><w:tc><w:p>` + run("Item") + `</w:p></w:tc></w:tr></w:tbl>`
	f, _ := newTestFiller(t, body)

	var report Report
	f.run(Request{
		Records: []TableRecord{{"item": "Pen"}},
		Columns: ColumnMapping{{Field: "item", Header: "Item"}},
	}, &report)

	assert.False(t, report.Table.Injected)
	assert.Equal(t, 1, f.doc.Tables()[0].RowCount())
}

func TestFillerRunReportsMissingTable(t *testing.T) {
	body := `<w:tbl><w:tr><w:tc><w:p>` + run("Serial") + `</w:p></w:tc></w:tr></w:tbl>`
	f, _ := newTestFiller(t, body)

	var report Report
	f.run(Request{
		Records:      []TableRecord{{"item": "Pen"}},
		Columns:      ColumnMapping{{Field: "item", Header: "Item"}},
		IncludeTable: true,
	}, &report)

	assert.False(t, report.Table.Injected)
	require.Len(t, report.Warnings, 1)
	var se *StructureError
	require.ErrorAs(t, report.Warnings[0], &se)
	assert.Equal(t, KindNoTable, se.Kind)
	assert.False(t, IsImageError(report.Warnings[0]))
	assert.Equal(t, 1, f.doc.Tables()[0].RowCount())
}

func TestFillerRunFonts(t *testing.T) {
	body := `<w:p><w:r><w:rPr><w:rFonts w:ascii="Arial" w:hAnsi="Arial"/></w:rPr><w:t>x</w:t></w:r>` +
		`<w:r><w:rPr><w:rFonts w:ascii="Wingdings"/></w:rPr><w:t>y</w:t></w:r></w:p>`
	f, logs := newTestFiller(t, body)
	f.store = fonts.NewMapStore(
		&fonts.Face{Family: "Arial", Path: "/fonts/arial.ttf"},
		&fonts.Face{Family: "Times New Roman", Path: "/fonts/times.ttf"},
	)

	var report Report
	f.run(Request{}, &report)

	face, ok := report.Fonts.Face("Arial")
	require.True(t, ok)
	assert.Equal(t, "/fonts/arial.ttf", face.Path)
	assert.Equal(t, []string{"Wingdings"}, report.Fonts.Substituted)
	assert.Equal(t, 1, logs.FilterMessage("fonts substituted with fallback").Len())
}
