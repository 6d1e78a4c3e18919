package service

import (
	"fmt"

	"datachat-cli/internal/api"
)

// DefaultMaxRows caps how many rows are rendered. It is a presentation cap:
// the caller keeps the full row set.
const DefaultMaxRows = 200

// CellFormat turns one cell value into display text.
type CellFormat func(v any) string

var (
	// HTMLCell escapes values for insertion into HTML.
	HTMLCell CellFormat = EscapeHTML
	// PlainCell is for surfaces that do not parse markup, like a terminal.
	PlainCell CellFormat = api.FormatValue
)

// RenderedTable is a bounded, display-ready table.
type RenderedTable struct {
	// Visible is false when there are no columns; the table region is hidden.
	Visible bool
	Header  []string
	// Body holds at most maxRows rows, each exactly len(Header) cells.
	Body [][]string
	// RowCount is the total number of rows before truncation.
	RowCount  int
	Truncated bool
	// Notice is set only when Truncated.
	Notice string
}

// Shown is the number of rows materialized in Body.
func (t RenderedTable) Shown() int {
	return len(t.Body)
}

// Summary is the "Rows: N" line, counting all rows.
func (t RenderedTable) Summary() string {
	return fmt.Sprintf("Rows: %d", t.RowCount)
}

// RenderTable renders with HTML escaping.
func RenderTable(columns []string, rows [][]any, maxRows int) RenderedTable {
	return RenderTableWith(HTMLCell, columns, rows, maxRows)
}

// RenderTableWith renders columns and rows with the given cell format,
// keeping at most maxRows rows (DefaultMaxRows when maxRows <= 0). Short
// rows are padded with empty cells, extra cells are dropped.
func RenderTableWith(format CellFormat, columns []string, rows [][]any, maxRows int) RenderedTable {
	if len(columns) == 0 {
		return RenderedTable{}
	}
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	t := RenderedTable{
		Visible:  true,
		Header:   make([]string, len(columns)),
		RowCount: len(rows),
	}
	for i, c := range columns {
		t.Header[i] = format(c)
	}

	shown := rows
	if len(rows) > maxRows {
		shown = rows[:maxRows]
		t.Truncated = true
		t.Notice = fmt.Sprintf("Showing first %d of %d rows", maxRows, len(rows))
	}

	t.Body = make([][]string, len(shown))
	for r, row := range shown {
		cells := make([]string, len(columns))
		for i := range columns {
			if i < len(row) {
				cells[i] = format(row[i])
			} else {
				cells[i] = format(nil)
			}
		}
		t.Body[r] = cells
	}
	return t
}
