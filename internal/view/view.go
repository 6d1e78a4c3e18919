// Package view turns session state into terminal text.
package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"

	"datachat-cli/internal/service"
	"datachat-cli/internal/session"
)

const defaultWidth = 100

// Markdown renders answer text with glamour, falling back to the text as
// is when the renderer cannot be built.
func Markdown(text string, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

// TabBar shows both tabs with the active one highlighted.
func TabBar(active session.Tab) string {
	tabs := []session.Tab{session.TabPretty, session.TabRaw}
	parts := make([]string, len(tabs))
	for i, t := range tabs {
		label := " " + strings.ToUpper(t.String()[:1]) + t.String()[1:] + " "
		if t == active {
			parts[i] = activeTabStyle.Render(label)
		} else {
			parts[i] = inactiveTabStyle.Render(label)
		}
	}
	return strings.Join(parts, inactiveTabStyle.Render("│"))
}

// Active renders whichever tab is selected.
func Active(s session.State, width int) string {
	if s.Tab == session.TabRaw {
		return Raw(s)
	}
	return Pretty(s, width)
}

// Pretty is the structured view: answer, SQL, meta line, table.
func Pretty(s session.State, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	var b strings.Builder

	if s.Outcome == session.OutcomeFailed {
		b.WriteString(errorStyle.Render(failureLine(s.Err)))
		b.WriteString("\n")
		return strings.TrimRight(b.String(), "\n")
	}
	if s.Outcome == session.OutcomeNone {
		return metaStyle.Render("No results yet")
	}

	res := s.Result
	if res.AnswerText != "" {
		b.WriteString(Markdown(res.AnswerText, width-2))
		b.WriteString("\n\n")
	}

	if res.SQL != "" {
		b.WriteString(labelStyle.Render("SQL"))
		b.WriteString("\n")
		b.WriteString(sqlBoxStyle.Width(min(width-2, sqlWidth(res.SQL)+4)).Render(res.SQL))
		b.WriteString("\n\n")
	}

	if meta := metaLine(res); meta != "" {
		b.WriteString(metaStyle.Render(meta))
		b.WriteString("\n")
	}
	if res.Notes != "" {
		b.WriteString(metaStyle.Render("Notes: " + res.Notes))
		b.WriteString("\n")
	}

	tbl := s.Table(service.PlainCell)
	if tbl.Visible {
		b.WriteString(Table(tbl, width, true))
		b.WriteString("\n")
		b.WriteString(summaryStyle.Render(tbl.Summary()))
		b.WriteString("\n")
		if tbl.Truncated {
			b.WriteString(noticeStyle.Render(tbl.Notice))
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// Raw is the response body, indented, or the error text.
func Raw(s session.State) string {
	if s.Raw == "" {
		if s.Outcome == session.OutcomeNone {
			return metaStyle.Render("No results yet")
		}
		return metaStyle.Render("(empty response)")
	}
	if s.Outcome == session.OutcomeFailed {
		return errorStyle.Render(s.Raw)
	}
	return s.Raw
}

// PlainText is the active tab as unstyled text, for the clipboard.
func PlainText(s session.State, width int) string {
	if s.Tab == session.TabRaw {
		return s.Raw
	}
	if s.Outcome == session.OutcomeFailed {
		return failureLine(s.Err)
	}

	res := s.Result
	var parts []string
	if res.AnswerText != "" {
		parts = append(parts, res.AnswerText)
	}
	if res.SQL != "" {
		parts = append(parts, "SQL:\n"+res.SQL)
	}
	if res.Notes != "" {
		parts = append(parts, "Notes: "+res.Notes)
	}
	tbl := s.Table(service.PlainCell)
	if tbl.Visible {
		table := Table(tbl, width, false) + "\n" + tbl.Summary()
		if tbl.Truncated {
			table += "\n" + tbl.Notice
		}
		parts = append(parts, table)
	}
	return ansi.Strip(strings.Join(parts, "\n\n"))
}

func failureLine(err error) string {
	if err == nil {
		return "✗ request failed"
	}
	return fmt.Sprintf("✗ %s: %v", session.ErrorLabel(err), err)
}

func metaLine(res service.Result) string {
	var parts []string
	if res.Agent != "" {
		parts = append(parts, "Agent: "+res.Agent)
	}
	if res.Mode != "" {
		parts = append(parts, "Mode: "+res.Mode)
	}
	if res.Legacy && res.Source == service.SourceLegacy {
		parts = append(parts, "parsed from answer text")
	}
	return strings.Join(parts, " · ")
}

func sqlWidth(sql string) int {
	w := 0
	for _, line := range strings.Split(sql, "\n") {
		w = max(w, ansi.StringWidth(line))
	}
	return w
}
