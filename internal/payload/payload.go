// Package payload decodes report data documents. A payload is a JSON or YAML
// object whose scalar fields are placeholder values; one list field holds
// the table records and one optional object field lists the table columns.
//
//	{
//	  "name": "Ada Lovelace",
//	  "age": 36,
//	  "tableData": [{"slNo": 1, "name": "Byron", "relationship": "Father"}],
//	  "tableColumns": {"slNo": "S/N", "name": "Name", "relationship": "Relationship"}
//	}
package payload

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/reportkit/go-docfill/pkg/docfill"
)

const (
	DefaultTableKey   = "tableData"
	DefaultColumnsKey = "tableColumns"
)

// Options names the special payload fields.
type Options struct {
	TableKey   string
	ColumnsKey string
}

func (o Options) withDefaults() Options {
	if o.TableKey == "" {
		o.TableKey = DefaultTableKey
	}
	if o.ColumnsKey == "" {
		o.ColumnsKey = DefaultColumnsKey
	}
	return o
}

// Payload is a decoded data document.
type Payload struct {
	// Values holds every scalar field as text. Numbers and booleans keep the
	// literal spelling used in the document.
	Values docfill.DataMap
	// Records are the table rows, in document order.
	Records []docfill.TableRecord
	// Columns is set when the payload carries its own column list, in
	// document order.
	Columns docfill.ColumnMapping
	// Skipped lists fields that were ignored because they are null or not
	// scalars.
	Skipped []string
}

// Decode parses a JSON or YAML payload.
func Decode(data []byte, opts Options) (*Payload, error) {
	opts = opts.withDefaults()

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse payload: %w", err)
	}
	if doc.Kind == 0 {
		return nil, errors.New("payload is empty")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("payload must be an object")
	}

	p := &Payload{Values: docfill.DataMap{}}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i].Value, root.Content[i+1]

		switch key {
		case opts.TableKey:
			records, err := decodeRecords(key, val)
			if err != nil {
				return nil, err
			}
			p.Records = records
			continue
		case opts.ColumnsKey:
			columns, err := decodeColumns(key, val)
			if err != nil {
				return nil, err
			}
			p.Columns = columns
			continue
		}

		text, ok := scalarText(val)
		if !ok {
			p.Skipped = append(p.Skipped, key)
			continue
		}
		p.Values[key] = docfill.Text(text)
	}
	return p, nil
}

// scalarText returns the text of a non-null scalar, following aliases.
func scalarText(n *yaml.Node) (string, bool) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		return "", false
	}
	return n.Value, true
}

func decodeRecords(key string, n *yaml.Node) ([]docfill.TableRecord, error) {
	if n.Tag == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("payload field %q must be a list", key)
	}
	records := make([]docfill.TableRecord, 0, len(n.Content))
	for i, item := range n.Content {
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("payload field %s[%d] must be an object", key, i)
		}
		rec := make(docfill.TableRecord, len(item.Content)/2)
		for j := 0; j+1 < len(item.Content); j += 2 {
			if text, ok := scalarText(item.Content[j+1]); ok {
				rec[item.Content[j].Value] = text
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeColumns(key string, n *yaml.Node) (docfill.ColumnMapping, error) {
	if n.Tag == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("payload field %q must be an object of field to header", key)
	}
	columns := make(docfill.ColumnMapping, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		header, ok := scalarText(n.Content[i+1])
		if !ok {
			return nil, fmt.Errorf("payload field %s.%s must be a string", key, n.Content[i].Value)
		}
		columns = append(columns, docfill.Column{Field: n.Content[i].Value, Header: header})
	}
	return columns, nil
}
