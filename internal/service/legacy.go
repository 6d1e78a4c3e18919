package service

import "strings"

const (
	legacySQLMarker  = "SQL:"
	legacyDataMarker = "\n\nDATA"
	legacyColumnSep  = " | "
)

// LegacyAnswer is what ParseLegacyAnswer recovers from an answer string.
type LegacyAnswer struct {
	AnswerText string
	SQL        string
	Columns    []string
	Rows       [][]string
}

// ParseLegacyAnswer recovers SQL and a pipe-delimited table from the older
// answer format:
//
//	<answer text>
//	SQL:
//	<statement>
//
//	DATA (top N):
//	col_a | col_b
//	1 | 2
//
// It never fails. Text without a SQL: marker comes back trimmed as the
// answer; a DATA block without a header line yields no table.
func ParseLegacyAnswer(text string) LegacyAnswer {
	if text == "" {
		return LegacyAnswer{AnswerText: text}
	}

	sqlIdx := strings.Index(text, legacySQLMarker)
	if sqlIdx < 0 {
		return LegacyAnswer{AnswerText: strings.TrimSpace(text)}
	}
	sqlStart := sqlIdx + len(legacySQLMarker)

	out := LegacyAnswer{AnswerText: strings.TrimSpace(text[:sqlIdx])}

	dataIdx := strings.Index(text, legacyDataMarker)
	if dataIdx < sqlStart {
		out.SQL = strings.TrimSpace(text[sqlStart:])
		return out
	}
	out.SQL = strings.TrimSpace(text[sqlStart:dataIdx])
	out.Columns, out.Rows = parseDataBlock(text[dataIdx:])
	return out
}

func parseDataBlock(block string) ([]string, [][]string) {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	header := -1
	for i, line := range lines {
		if strings.Contains(line, legacyColumnSep) {
			header = i
			break
		}
	}
	if header < 0 {
		return nil, nil
	}

	columns := splitCells(lines[header])
	var rows [][]string
	for _, line := range lines[header+1:] {
		if strings.Contains(line, legacyColumnSep) {
			rows = append(rows, splitCells(line))
		}
	}
	return columns, rows
}

func splitCells(line string) []string {
	parts := strings.Split(line, legacyColumnSep)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
