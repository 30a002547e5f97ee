package docfill

import (
	"fmt"
	"maps"
	"strconv"
)

// Value is a data map entry: either Text or Image.
type Value interface {
	isValue()
}

// Text is a scalar substituted into the document as plain text.
type Text string

// Image is picture data substituted for a placeholder.
type Image struct {
	// Name is used for the drawing's description, typically the file name.
	Name string
	Data []byte
}

func (Text) isValue()  {}
func (Image) isValue() {}

// DataMap maps placeholder keys (without the ${} wrapper) to values.
type DataMap map[string]Value

// Clone returns a copy of the map. Image bytes are shared; the engine never
// writes to them.
func (m DataMap) Clone() DataMap {
	if m == nil {
		return DataMap{}
	}
	return maps.Clone(m)
}

// Partition splits the map into text values and images.
func Partition(m DataMap) (map[string]string, map[string]Image) {
	texts := make(map[string]string)
	images := make(map[string]Image)
	for k, v := range m {
		switch v := v.(type) {
		case Text:
			texts[k] = string(v)
		case Image:
			images[k] = v
		case *Image:
			if v != nil {
				images[k] = *v
			}
		}
	}
	return texts, images
}

// TextOf converts a decoded scalar into Text. Strings, booleans, integers and
// floats are accepted; anything else reports false.
func TextOf(v any) (Text, bool) {
	switch v := v.(type) {
	case string:
		return Text(v), true
	case bool:
		return Text(strconv.FormatBool(v)), true
	case int:
		return Text(strconv.Itoa(v)), true
	case int64:
		return Text(strconv.FormatInt(v, 10)), true
	case uint64:
		return Text(strconv.FormatUint(v, 10)), true
	case float64:
		return Text(strconv.FormatFloat(v, 'f', -1, 64)), true
	case float32:
		return Text(strconv.FormatFloat(float64(v), 'f', -1, 32)), true
	case fmt.Stringer:
		return Text(v.String()), true
	}
	return "", false
}

// TableRecord maps column fields to cell text for one table row.
type TableRecord map[string]string

// Column binds a record field to the header text of its table column.
type Column struct {
	Field  string
	Header string
}

// ColumnMapping lists the table columns in order.
type ColumnMapping []Column

// HasHeader reports whether text equals one of the column headers.
func (c ColumnMapping) HasHeader(text string) bool {
	for _, col := range c {
		if col.Header == text {
			return true
		}
	}
	return false
}

// Headers returns the header texts in column order.
func (c ColumnMapping) Headers() []string {
	out := make([]string, len(c))
	for i, col := range c {
		out[i] = col.Header
	}
	return out
}
