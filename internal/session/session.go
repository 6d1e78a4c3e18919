// Package session holds the state of one chat surface: at most one request
// in flight, the last rendered result, and which view tab is showing.
//
// State is a value. Every transition takes a State and returns the next
// one, so surfaces (terminal UI, web handler, one-shot command) share the
// same rules and tests need no terminal or browser.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"datachat-cli/internal/api"
	"datachat-cli/internal/service"
)

// Tab selects the view of the last result.
type Tab int

const (
	TabPretty Tab = iota
	TabRaw
)

func (t Tab) String() string {
	if t == TabRaw {
		return "raw"
	}
	return "pretty"
}

// ParseTab accepts "pretty" or "raw".
func ParseTab(s string) (Tab, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pretty", "structured":
		return TabPretty, true
	case "raw":
		return TabRaw, true
	}
	return TabPretty, false
}

type Phase int

const (
	Idle Phase = iota
	Sending
)

// Outcome is how the last request ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSuccess
	OutcomeFailed
)

const emptyInputNotice = "Please enter a question"

type State struct {
	Phase Phase
	Tab   Tab
	// Seq identifies the most recent ask. Replies carrying an older Seq
	// are stale and ignored.
	Seq uint64

	Question string
	Agent    string

	Outcome Outcome
	Result  service.Result
	// Raw is the indented response body, or the error text on failure.
	Raw string
	Err error

	// Notice is a transient message (empty input, clipboard result).
	Notice string

	MaxRows int
}

// New returns an idle state. maxRows <= 0 uses service.DefaultMaxRows.
func New(maxRows int) State {
	if maxRows <= 0 {
		maxRows = service.DefaultMaxRows
	}
	return State{MaxRows: maxRows}
}

// Loading reports whether a request is outstanding.
func (s State) Loading() bool {
	return s.Phase == Sending
}

// SubmitEnabled reports whether the submit control should look active.
func (s State) SubmitEnabled() bool {
	return s.Phase == Idle
}

// Stale reports whether a reply for seq has been superseded.
func (s State) Stale(seq uint64) bool {
	return seq != s.Seq
}

// Table renders the current result's table with the given cell format.
func (s State) Table(format service.CellFormat) service.RenderedTable {
	return service.RenderTableWith(format, s.Result.Columns, s.Result.Rows, s.MaxRows)
}

// Ask starts a new request. A blank question leaves the state as it was
// apart from the notice and returns api.ErrEmptyInput. Otherwise the
// previous result is cleared and the returned request must be sent with
// the new s.Seq.
func Ask(s State, question, agent string) (State, api.ChatRequest, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		s.Notice = emptyInputNotice
		return s, api.ChatRequest{}, api.ErrEmptyInput
	}

	s.Seq++
	s.Phase = Sending
	s.Tab = TabPretty
	s.Question = question
	s.Agent = agent
	s.Outcome = OutcomeNone
	s.Result = service.Result{}
	s.Raw = ""
	s.Err = nil
	s.Notice = ""
	return s, api.NewChatRequest(question, agent), nil
}

// Receive applies a successful reply. The pretty tab is selected when
// there is a table, the raw tab otherwise.
func Receive(s State, seq uint64, resp *api.ChatResponse, raw []byte) State {
	if s.Stale(seq) {
		return s
	}
	s.Phase = Idle
	s.Outcome = OutcomeSuccess
	s.Result = service.Normalize(resp)
	s.Raw = indentJSON(raw)
	s.Err = nil
	if s.Result.HasTable() {
		s.Tab = TabPretty
	} else {
		s.Tab = TabRaw
	}
	return s
}

// Fail applies a failed reply and selects the raw tab. raw is whatever
// body the server sent, if any.
func Fail(s State, seq uint64, err error, raw []byte) State {
	if s.Stale(seq) {
		return s
	}
	s.Phase = Idle
	s.Outcome = OutcomeFailed
	s.Result = service.Result{}
	s.Err = err
	s.Tab = TabRaw

	text := "Error: " + err.Error()
	var re *api.RequestError
	if errors.As(err, &re) && re.Kind == api.KindMalformed && len(raw) > 0 {
		text += "\n\n" + string(raw)
	}
	s.Raw = text
	return s
}

// Complete routes a client reply to Receive or Fail.
func Complete(s State, seq uint64, resp *api.ChatResponse, raw []byte, err error) State {
	if err != nil {
		return Fail(s, seq, err, raw)
	}
	return Receive(s, seq, resp, raw)
}

func SelectTab(s State, tab Tab) State {
	s.Tab = tab
	return s
}

func ToggleTab(s State) State {
	if s.Tab == TabPretty {
		s.Tab = TabRaw
	} else {
		s.Tab = TabPretty
	}
	return s
}

func Notify(s State, notice string) State {
	s.Notice = notice
	return s
}

func ClearNotice(s State) State {
	s.Notice = ""
	return s
}

// ErrorLabel names the kind of a session error for display and logs.
func ErrorLabel(err error) string {
	var re *api.RequestError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, api.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.As(err, &re):
		return re.Kind.String()
	default:
		return "error"
	}
}

func indentJSON(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
