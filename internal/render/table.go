package render

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// TableRenderer describes each record's parameters, one row per parameter.
// A signature without parameters gets a single row with the index column
// left blank.
type TableRenderer struct {
	table *tablewriter.Table
}

// NewTableRenderer returns a TableRenderer writing to w.
func NewTableRenderer(w io.Writer) *TableRenderer {
	table := tablewriter.NewWriter(w)
	table.SetColWidth(48)
	table.SetRowLine(false)
	table.SetHeader([]string{"signature", "#", "kind", "name", "value"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	return &TableRenderer{table: table}
}

// Write appends the rows describing rec.
func (t *TableRenderer) Write(rec Record) error {
	doc := Describe(rec)
	sig := doc.Signature.String()
	if len(doc.Parameters) == 0 {
		t.table.Append([]string{sig, "", "", "", ""})
		return nil
	}
	for i, p := range doc.Parameters {
		t.table.Append([]string{sig, strconv.Itoa(i), p.Kind, p.Name, p.Value})
	}
	return nil
}

// Close renders the table.
func (t *TableRenderer) Close() error {
	t.table.Render()
	return nil
}
