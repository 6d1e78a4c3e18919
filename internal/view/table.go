package view

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"datachat-cli/internal/service"
)

const (
	defaultTableWidth = 100
	minColWidth       = 6
)

// Table draws a rendered table with box-drawing borders, fitting columns
// into width and wrapping cells that do not fit. With styled false the
// output carries no escape sequences.
func Table(tbl service.RenderedTable, width int, styled bool) string {
	if !tbl.Visible {
		return ""
	}
	if width <= 0 {
		width = defaultTableWidth
	}

	paint := func(st func(string) string, s string) string {
		if !styled {
			return s
		}
		return st(s)
	}
	border := func(s string) string { return borderStyle.Render(s) }
	header := func(s string) string { return headerCellStyle.Render(s) }
	body := func(s string) string { return bodyCellStyle.Render(s) }

	numCols := len(tbl.Header)
	widths := make([]int, numCols)
	for i, h := range tbl.Header {
		widths[i] = cellWidth(h)
	}
	for _, row := range tbl.Body {
		for i, cell := range row {
			if w := cellWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	fitWidths(widths, width)

	sepLine := func(left, mid, right string) string {
		var sb strings.Builder
		sb.WriteString(left)
		for i, w := range widths {
			sb.WriteString(strings.Repeat("─", w+2))
			if i < len(widths)-1 {
				sb.WriteString(mid)
			}
		}
		sb.WriteString(right)
		return paint(border, sb.String())
	}

	var out strings.Builder
	writeRow := func(cells []string, style func(string) string) {
		wrapped := make([][]string, numCols)
		height := 1
		for i := range cells {
			wrapped[i] = wrapCell(cells[i], widths[i])
			if len(wrapped[i]) > height {
				height = len(wrapped[i])
			}
		}
		for line := 0; line < height; line++ {
			out.WriteString(paint(border, "│"))
			for i := range cells {
				cell := ""
				if line < len(wrapped[i]) {
					cell = wrapped[i][line]
				}
				pad := strings.Repeat(" ", max(0, widths[i]-runewidth.StringWidth(cell)))
				out.WriteString(" " + paint(style, cell) + pad + " ")
				out.WriteString(paint(border, "│"))
			}
			out.WriteString("\n")
		}
	}

	out.WriteString(sepLine("┌", "┬", "┐") + "\n")
	writeRow(tbl.Header, header)
	out.WriteString(sepLine("├", "┼", "┤") + "\n")
	if len(tbl.Body) == 0 {
		empty := make([]string, numCols)
		empty[0] = "(no rows)"
		writeRow(empty, body)
	}
	for _, row := range tbl.Body {
		writeRow(row, body)
	}
	out.WriteString(sepLine("└", "┴", "┘"))
	return out.String()
}

func cellWidth(s string) int {
	return runewidth.StringWidth(flatten(s))
}

func flatten(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

// fitWidths shrinks the widest columns until the table fits in total.
func fitWidths(widths []int, total int) {
	numCols := len(widths)
	// Each column costs a border and two padding spaces, plus the final border.
	available := total - (3*numCols + 1)
	if available < numCols*minColWidth {
		available = numCols * minColWidth
	}

	sum, widest := 0, 0
	for i, w := range widths {
		if w < 1 {
			widths[i] = 1
			w = 1
		}
		sum += w
		widest = max(widest, w)
	}
	if sum <= available {
		return
	}

	// Smallest per-column cap that keeps the total within available.
	lo, hi := minColWidth, widest
	colCap := widest
	for lo <= hi {
		mid := (lo + hi) / 2
		t := 0
		for _, w := range widths {
			t += min(w, mid)
		}
		if t <= available {
			colCap = mid
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}
	for i, w := range widths {
		widths[i] = min(w, colCap)
	}
}

// wrapCell splits text into lines no wider than width, preferring word
// boundaries and hard-breaking long words.
func wrapCell(text string, width int) []string {
	text = flatten(text)
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return []string{text}
	}
	var lines []string
	for _, line := range strings.Split(wordwrap.String(text, width), "\n") {
		line = strings.TrimRight(line, " ")
		for runewidth.StringWidth(line) > width {
			head := runewidth.Truncate(line, width, "")
			if head == "" {
				_, size := utf8.DecodeRuneInString(line)
				head = line[:size]
			}
			lines = append(lines, head)
			line = line[len(head):]
		}
		lines = append(lines, line)
	}
	return lines
}
