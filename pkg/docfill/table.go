package docfill

import (
	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/reportkit/go-docfill/pkg/docfill/xml"
)

// TableResult describes what InjectTable did.
type TableResult struct {
	// Injected is false when no table had a recognized header.
	Injected bool
	// Rows is the number of rows inserted.
	Rows int
	// Evicted is true when the row at index Rows+2 was removed.
	Evicted bool
}

// findTable returns the first body table whose first cell text equals one of
// the column headers.
func findTable(doc *xml.Document, columns ColumnMapping) (xml.Table, bool) {
	for _, tbl := range doc.Tables() {
		text, ok := tbl.FirstCellText()
		if ok && columns.HasHeader(text) {
			return tbl, true
		}
	}
	return xml.Table{}, false
}

// InjectTable inserts one row per record below the header row of the first
// matching body table, in record order. Cells follow the column order, with
// "" for fields a record lacks, and take their width from the header cell
// at the same position.
//
// With n records inserted, if the table then has more than n+1 rows and more
// than minRows rows, the row at index n+2 is removed. Only one header row is
// recognized.
func InjectTable(doc *xml.Document, records []TableRecord, columns ColumnMapping, minRows int) TableResult {
	tbl, ok := findTable(doc, columns)
	if !ok {
		return TableResult{}
	}

	var headerCells []xml.Cell
	if rows := tbl.Rows(); len(rows) > 0 {
		headerCells = rows[0].Cells()
	}

	for i, rec := range records {
		cells := make([]xml.Cell, 0, len(columns))
		for j, col := range columns {
			cells = append(cells, xml.NewCell(rec[col.Field], headerWidth(headerCells, j)))
		}
		tbl.InsertRow(i+1, xml.NewRow(cells...))
	}

	res := TableResult{Injected: true, Rows: len(records)}
	n := len(records)
	rows := tbl.RowCount()
	if rows > n+1 && rows > minRows && n+2 < rows {
		res.Evicted = tbl.RemoveRow(n + 2)
	}
	return res
}

func headerWidth(cells []xml.Cell, i int) *etree.Element {
	if i >= len(cells) {
		return nil
	}
	return cells[i].WidthElement()
}

func (f *filler) injectTable(records []TableRecord, columns ColumnMapping) (TableResult, error) {
	res := InjectTable(f.doc, records, columns, f.cfg.MinTableRows)
	if !res.Injected {
		f.logger.Warn("no table matches the column headers; table not injected",
			zap.Int("records", len(records)))
		return res, newStructureError(KindNoTable, "no table starts with one of the headers %q", columns.Headers())
	}
	f.logger.Debug("table injected",
		zap.Int("rows", res.Rows),
		zap.Bool("evicted", res.Evicted))
	return res, nil
}
