package service

import (
	"strings"

	"datachat-cli/internal/api"
)

// Source records where a Result's table came from.
type Source int

const (
	SourceNone Source = iota
	SourceFlat
	SourceData
	SourceMeta
	SourceLegacy
)

func (s Source) String() string {
	switch s {
	case SourceFlat:
		return "flat"
	case SourceData:
		return "data"
	case SourceMeta:
		return "meta"
	case SourceLegacy:
		return "legacy"
	default:
		return "none"
	}
}

// Result is the one shape the rest of the program renders, whatever shape
// the backend replied with.
type Result struct {
	AnswerText string
	SQL        string
	Columns    []string
	Rows       [][]any

	Notes string
	Agent string
	Mode  string

	Source Source
	// Legacy is true when the answer text was run through ParseLegacyAnswer.
	Legacy bool
}

// HasTable reports whether there is a table to show.
func (r Result) HasTable() bool {
	return len(r.Columns) > 0
}

type tableCandidate struct {
	source  Source
	columns api.Columns
	rows    api.Rows
}

// Normalize reconciles the response shapes into a Result. First non-empty
// value wins:
//
//	sql:          sql, meta.sql, meta.query, legacy answer text
//	columns/rows: flat, data.*, meta.*, legacy answer text
//
// The legacy parser runs at most once, and only when the response carries
// no structured sql, columns or rows but does have an answer.
func Normalize(resp *api.ChatResponse) Result {
	if resp == nil {
		return Result{}
	}

	var res Result
	meta := resp.Meta
	if meta == nil {
		meta = &api.Meta{}
	}
	res.Notes = string(meta.Notes)
	res.Agent = string(meta.Agent)
	res.Mode = string(meta.Mode)

	res.SQL = firstNonBlank(string(resp.SQL), string(meta.SQL), string(meta.Query))

	candidates := []tableCandidate{
		{SourceFlat, resp.Columns, resp.Rows},
	}
	if resp.Data != nil {
		candidates = append(candidates, tableCandidate{SourceData, resp.Data.Columns, resp.Data.Rows})
	}
	candidates = append(candidates, tableCandidate{SourceMeta, meta.Columns, meta.Rows})

	if c, ok := pickTable(candidates); ok {
		res.Source = c.source
		res.Columns = []string(c.columns)
		res.Rows = [][]any(c.rows)
	}

	answer := string(resp.Answer)
	if res.SQL == "" && res.Source == SourceNone && answer != "" {
		legacy := ParseLegacyAnswer(answer)
		res.Legacy = true
		res.AnswerText = legacy.AnswerText
		res.SQL = legacy.SQL
		if len(legacy.Columns) > 0 {
			res.Source = SourceLegacy
			res.Columns = legacy.Columns
			res.Rows = stringRows(legacy.Rows)
		}
		return res
	}

	res.AnswerText = answer
	return res
}

func pickTable(candidates []tableCandidate) (tableCandidate, bool) {
	for _, c := range candidates {
		if len(c.columns) > 0 {
			return c, true
		}
	}
	for _, c := range candidates {
		if len(c.rows) > 0 {
			return c, true
		}
	}
	return tableCandidate{}, false
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func stringRows(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, c := range row {
			cells[j] = c
		}
		out[i] = cells
	}
	return out
}
