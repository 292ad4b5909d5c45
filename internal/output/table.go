package output

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
)

// Table renders tabular data for text output.
type Table struct {
	title    string
	headers  []string
	rows     [][]string
	noHeader bool
	right    map[int]bool
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{
		headers: headers,
		rows:    [][]string{},
		right:   map[int]bool{},
	}
}

// SetTitle sets a centered title row.
func (t *Table) SetTitle(title string) {
	t.title = title
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// SetNoHeader suppresses the header row.
func (t *Table) SetNoHeader(noHeader bool) {
	t.noHeader = noHeader
}

// AlignRight right-aligns the given 1-based columns.
func (t *Table) AlignRight(columns ...int) {
	for _, c := range columns {
		t.right[c] = true
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render renders the table to the writer.
func (t *Table) Render(w io.Writer) error {
	if len(t.headers) == 0 && len(t.rows) == 0 {
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	if t.title != "" {
		tw.SetTitle(t.title)
		tw.Style().Title.Align = text.AlignCenter
	}
	if !t.noHeader && len(t.headers) > 0 {
		tw.AppendHeader(toRow(t.headers))
	}

	configs := make([]table.ColumnConfig, 0, len(t.right))
	for c := range t.right {
		configs = append(configs, table.ColumnConfig{Number: c, Align: text.AlignRight})
	}
	tw.SetColumnConfigs(configs)

	for _, row := range t.rows {
		tw.AppendRow(toRow(row))
	}
	tw.Render()
	return nil
}

// String returns the table as a string.
func (t *Table) String() string {
	var sb strings.Builder
	_ = t.Render(&sb)
	return sb.String()
}

func toRow(cells []string) table.Row {
	return lo.Map(cells, func(c string, _ int) any { return c })
}
