package docfill

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportkit/go-docfill/pkg/docfill/xml"
)

var testColumns = ColumnMapping{
	{Field: "sn", Header: "S/N"},
	{Field: "name", Header: "Name"},
}

// tableXML builds a table with a header row and extra template rows.
func tableXML(first string, extraRows int) string {
	var sb strings.Builder
	sb.WriteString(`<w:tbl><w:tblGrid><w:gridCol w:w="1200"/><w:gridCol w:w="3600"/></w:tblGrid>`)
	sb.WriteString(`<w:tr><w:tc><w:tcPr><w:tcW w:w="1200" w:type="dxa"/></w:tcPr>` + para(run(first)) + `</w:tc>`)
	sb.WriteString(`<w:tc><w:tcPr><w:tcW w:w="3600" w:type="dxa"/></w:tcPr>` + para(run("Name")) + `</w:tc></w:tr>`)
	for i := 0; i < extraRows; i++ {
		fmt.Fprintf(&sb, `<w:tr><w:tc>%s</w:tc><w:tc>%s</w:tc></w:tr>`, para(run(fmt.Sprintf("t%d", i))), para(run("")))
	}
	sb.WriteString(`</w:tbl>`)
	return sb.String()
}

func rowTexts(tbl xml.Table) []string {
	var out []string
	for _, r := range tbl.Rows() {
		var cells []string
		for _, c := range r.Cells() {
			var parts []string
			for _, p := range c.Paragraphs() {
				parts = append(parts, p.Text())
			}
			cells = append(cells, strings.Join(parts, "\n"))
		}
		out = append(out, strings.Join(cells, "|"))
	}
	return out
}

func records(n int) []TableRecord {
	out := make([]TableRecord, n)
	for i := range out {
		out[i] = TableRecord{"sn": fmt.Sprint(i + 1), "name": fmt.Sprintf("n%d", i+1)}
	}
	return out
}

func TestInjectTable(t *testing.T) {
	tests := []struct {
		name      string
		extraRows int
		records   int
		want      []string
		evicted   bool
	}{
		{
			name:      "no template rows",
			extraRows: 0,
			records:   2,
			want:      []string{"S/N|Name", "1|n1", "2|n2"},
		},
		{
			name:      "small table keeps its rows",
			extraRows: 2,
			records:   1,
			want:      []string{"S/N|Name", "1|n1", "t0|", "t1|"},
		},
		{
			name:      "large table evicts the row after the block",
			extraRows: 5,
			records:   2,
			want:      []string{"S/N|Name", "1|n1", "2|n2", "t0|", "t2|", "t3|", "t4|"},
			evicted:   true,
		},
		{
			name:      "no records",
			extraRows: 5,
			records:   0,
			want:      []string{"S/N|Name", "t0|", "t2|", "t3|", "t4|"},
			evicted:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg := openTestPackage(t, tableXML("S/N", tt.extraRows), nil)
			doc := pkg.Document()

			res := InjectTable(doc, records(tt.records), testColumns, 5)

			assert.True(t, res.Injected)
			assert.Equal(t, tt.records, res.Rows)
			assert.Equal(t, tt.evicted, res.Evicted)
			assert.Equal(t, tt.want, rowTexts(doc.Tables()[0]))
		})
	}
}

func TestInjectTableCellWidths(t *testing.T) {
	pkg := openTestPackage(t, tableXML("S/N", 0), nil)
	doc := pkg.Document()

	InjectTable(doc, records(1), testColumns, 5)

	cells := doc.Tables()[0].Rows()[1].Cells()
	require.Len(t, cells, 2)
	w0, ok := cells[0].WidthTwips()
	require.True(t, ok)
	assert.Equal(t, 1200, w0)
	w1, ok := cells[1].WidthTwips()
	require.True(t, ok)
	assert.Equal(t, 3600, w1)
}

func TestInjectTableMissingFields(t *testing.T) {
	pkg := openTestPackage(t, tableXML("S/N", 0), nil)
	doc := pkg.Document()

	InjectTable(doc, []TableRecord{{"name": "only name", "extra": "ignored"}}, testColumns, 5)

	assert.Equal(t, []string{"S/N|Name", "|only name"}, rowTexts(doc.Tables()[0]))
}

func TestInjectTableSelection(t *testing.T) {
	body := tableXML("Unrelated", 0) + tableXML("Name", 0) + tableXML("S/N", 0)
	pkg := openTestPackage(t, body, nil)
	doc := pkg.Document()

	res := InjectTable(doc, records(1), testColumns, 5)
	require.True(t, res.Injected)

	tables := doc.Tables()
	assert.Equal(t, 1, tables[0].RowCount())
	assert.Equal(t, 2, tables[1].RowCount())
	assert.Equal(t, 1, tables[2].RowCount())
}

func TestInjectTableNoMatch(t *testing.T) {
	pkg := openTestPackage(t, tableXML("Serial", 3), nil)
	doc := pkg.Document()
	before, err := doc.Bytes()
	require.NoError(t, err)

	res := InjectTable(doc, records(2), testColumns, 5)

	assert.Equal(t, TableResult{}, res)
	after, err := doc.Bytes()
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestFillerInjectTableLogsMismatch(t *testing.T) {
	f, logs := newTestFiller(t, para(run("no tables")))

	res, err := f.injectTable(records(1), testColumns)

	assert.False(t, res.Injected)
	var se *StructureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindNoTable, se.Kind)
	assert.Equal(t, 1, logs.FilterMessage("no table matches the column headers; table not injected").Len())
}
