package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"datachat-cli/internal/api"
	"datachat-cli/internal/config"
	"datachat-cli/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// mockAPI implements api.ChatAPI for testing.
type mockAPI struct {
	resp *api.ChatResponse
	raw  []byte
	err  error

	requests []api.ChatRequest
}

func (m *mockAPI) Chat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, []byte, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.raw, m.err
	}
	return m.resp, m.raw, nil
}

// Verify mockAPI satisfies the interface at compile time.
var _ api.ChatAPI = (*mockAPI)(nil)

func newTestModel(t *testing.T) model {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	m := initialModel("test", "")
	m.cfg = &config.Config{
		Server:         "http://localhost:8000",
		Agent:          "auto",
		TimeoutSeconds: 30,
		MaxRows:        200,
	}
	m.client = &mockAPI{}
	m.ready = true
	m.width = 80
	m.height = 24
	return m
}

func TestDispatchCommand(t *testing.T) {
	tests := []struct {
		input   string
		wantCmd bool
	}{
		{"/help", true},
		{"/config", true},
		{"/clear", true},
		{"/agents", true},
		{"/agent", true},
		{"/quit", true},
		{"/unknown", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m := newTestModel(t)
			result, cmd := m.dispatchCommand(tt.input)
			rm := result.(model)
			if rm.state.Loading() {
				t.Error("commands should not start a request")
			}
			if (cmd != nil) != tt.wantCmd {
				t.Errorf("cmd = %v, wantCmd %v", cmd, tt.wantCmd)
			}
		})
	}
}

func TestDispatchInput(t *testing.T) {
	t.Run("question mark shows help", func(t *testing.T) {
		m := newTestModel(t)
		result, cmd := m.dispatchInput("?")
		if result.(model).state.Loading() || cmd == nil {
			t.Error("? should print help without asking")
		}
	})

	t.Run("plain text asks", func(t *testing.T) {
		m := newTestModel(t)
		result, cmd := m.dispatchInput("How many orders last week?")
		rm := result.(model)
		if !rm.state.Loading() {
			t.Error("state should be loading")
		}
		if rm.state.Question != "How many orders last week?" {
			t.Errorf("Question = %q", rm.state.Question)
		}
		if rm.cancel == nil {
			t.Error("in-flight request should be cancellable")
		}
		if cmd == nil {
			t.Error("expected request cmd")
		}
	})

	t.Run("no client shows error", func(t *testing.T) {
		m := newTestModel(t)
		m.client = nil
		result, cmd := m.dispatchInput("test question")
		rm := result.(model)
		if rm.state.Loading() {
			t.Error("should not be loading without a client")
		}
		if cmd == nil {
			t.Error("expected error message cmd, got nil")
		}
	})
}

func TestEmptyInputNotice(t *testing.T) {
	m := newTestModel(t)
	result, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm := result.(model)

	if rm.state.Loading() || rm.state.Seq != 0 {
		t.Error("blank input must not send a request")
	}
	if rm.state.Notice == "" {
		t.Error("blank input should set a notice")
	}
	if cmd != nil {
		t.Error("blank input should not produce a command")
	}
	if hints := rm.renderHints(); !strings.Contains(hints, rm.state.Notice) {
		t.Errorf("hint bar %q should show the notice", hints)
	}
}

func TestSendChat(t *testing.T) {
	mock := &mockAPI{
		resp: &api.ChatResponse{Answer: "42"},
		raw:  []byte(`{"answer":"42"}`),
	}
	req := api.NewChatRequest("meaning", "policy")
	msg := sendChat(context.Background(), mock, 7, req)()

	res, ok := msg.(chatResultMsg)
	if !ok {
		t.Fatalf("msg = %T, want chatResultMsg", msg)
	}
	if res.seq != 7 || res.err != nil || res.resp.Answer != "42" {
		t.Errorf("result = %+v", res)
	}
	if len(mock.requests) != 1 || *mock.requests[0].ForceAgent != "policy" {
		t.Errorf("requests = %+v", mock.requests)
	}
}

func TestAgentIsSent(t *testing.T) {
	m := newTestModel(t)
	result, _ := m.cmdAgent([]string{"text2sql"})
	m = result.(model)
	if m.agent != "text2sql" {
		t.Fatalf("agent = %q", m.agent)
	}

	result, _ = m.cmdAsk("revenue")
	m = result.(model)
	if m.state.Agent != "text2sql" {
		t.Errorf("state.Agent = %q, want text2sql", m.state.Agent)
	}

	result, _ = m.cmdAgent([]string{"bogus"})
	if result.(model).agent != "text2sql" {
		t.Error("unknown agent should be rejected")
	}
}

func TestHandleChatResult(t *testing.T) {
	t.Run("table result shows pretty", func(t *testing.T) {
		m := newTestModel(t)
		result, _ := m.cmdAsk("top cities")
		m = result.(model)

		resp := &api.ChatResponse{Answer: "ok", Columns: api.Columns{"city"}, Rows: api.Rows{{"Oslo"}}}
		result, cmd := m.handleChatResult(chatResultMsg{seq: m.state.Seq, resp: resp, raw: []byte(`{}`)})
		rm := result.(model)

		if rm.state.Loading() || rm.cancel != nil {
			t.Error("request should be finished")
		}
		if rm.state.Tab != session.TabPretty {
			t.Errorf("Tab = %v, want pretty", rm.state.Tab)
		}
		if cmd == nil {
			t.Error("expected print cmd")
		}
	})

	t.Run("server error shows raw", func(t *testing.T) {
		m := newTestModel(t)
		result, _ := m.cmdAsk("top cities")
		m = result.(model)

		err := &api.RequestError{Kind: api.KindTransport, StatusCode: 500, Body: "internal error"}
		result, _ = m.handleChatResult(chatResultMsg{seq: m.state.Seq, err: err, raw: []byte("internal error")})
		rm := result.(model)

		if rm.state.Outcome != session.OutcomeFailed || rm.state.Tab != session.TabRaw {
			t.Errorf("outcome/tab = %v/%v", rm.state.Outcome, rm.state.Tab)
		}
		if !strings.Contains(rm.state.Raw, "internal error") {
			t.Errorf("Raw = %q", rm.state.Raw)
		}
	})
}

func TestMostRecentQuestionWins(t *testing.T) {
	m := newTestModel(t)
	result, _ := m.cmdAsk("slow question")
	m = result.(model)
	first := m.state.Seq

	result, _ = m.cmdAsk("fast question")
	m = result.(model)
	second := m.state.Seq

	result, _ = m.handleChatResult(chatResultMsg{seq: second, resp: &api.ChatResponse{Answer: "fast"}})
	m = result.(model)

	result, cmd := m.handleChatResult(chatResultMsg{seq: first, err: context.Canceled})
	m = result.(model)

	if cmd != nil {
		t.Error("stale reply should print nothing")
	}
	if m.state.Result.AnswerText != "fast" || m.state.Outcome != session.OutcomeSuccess {
		t.Errorf("state = %+v, want the second answer", m.state.Result)
	}
}

func TestStaleReplyKeepsLoading(t *testing.T) {
	m := newTestModel(t)
	result, _ := m.cmdAsk("one")
	m = result.(model)
	first := m.state.Seq
	result, _ = m.cmdAsk("two")
	m = result.(model)

	result, _ = m.handleChatResult(chatResultMsg{seq: first, resp: &api.ChatResponse{Answer: "one"}})
	m = result.(model)
	if !m.state.Loading() || m.cancel == nil {
		t.Error("stale reply must not finish the current request")
	}
}

func TestTabSwitching(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.cmdToggleTab()
	if cmd == nil {
		t.Error("toggle without results should print a hint")
	}

	result, _ := m.cmdAsk("q")
	m = result.(model)
	result, _ = m.handleChatResult(chatResultMsg{seq: m.state.Seq, resp: &api.ChatResponse{Answer: "hi"}, raw: []byte(`{"answer":"hi"}`)})
	m = result.(model)
	if m.state.Tab != session.TabRaw {
		t.Fatalf("Tab = %v, want raw for answer-only reply", m.state.Tab)
	}

	result, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = result.(model)
	if m.state.Tab != session.TabPretty {
		t.Errorf("Tab key: Tab = %v, want pretty", m.state.Tab)
	}

	result, _ = m.dispatchCommand("/raw")
	if result.(model).state.Tab != session.TabRaw {
		t.Error("/raw should select the raw tab")
	}
	result, _ = m.dispatchCommand("/pretty")
	if result.(model).state.Tab != session.TabPretty {
		t.Error("/pretty should select the pretty tab")
	}
}

func TestCopyCommand(t *testing.T) {
	orig := writeClipboard
	defer func() { writeClipboard = orig }()

	var copied string
	writeClipboard = func(text string) error {
		copied = text
		return nil
	}

	m := newTestModel(t)
	result, _ := m.cmdCopy(nil)
	if n := result.(model).state.Notice; n != "Nothing to copy" {
		t.Errorf("Notice = %q before any result", n)
	}

	result, _ = m.cmdAsk("q")
	m = result.(model)
	resp := &api.ChatResponse{Answer: "a", SQL: "SELECT 1"}
	result, _ = m.handleChatResult(chatResultMsg{seq: m.state.Seq, resp: resp, raw: []byte(`{"sql":"SELECT 1"}`)})
	m = result.(model)

	result, _ = m.cmdCopy([]string{"sql"})
	if copied != "SELECT 1" {
		t.Errorf("copied = %q, want SQL", copied)
	}
	if n := result.(model).state.Notice; n != "Copied SQL" {
		t.Errorf("Notice = %q", n)
	}

	result, _ = m.cmdCopy(nil)
	if !strings.Contains(copied, `"sql": "SELECT 1"`) {
		t.Errorf("copied = %q, want the raw view", copied)
	}

	writeClipboard = func(string) error { return errors.New("no clipboard utility") }
	result, cmd := m.cmdCopy([]string{"sql"})
	rm := result.(model)
	if !strings.Contains(rm.state.Notice, "Clipboard unavailable") {
		t.Errorf("Notice = %q, want clipboard failure", rm.state.Notice)
	}
	if cmd != nil || rm.state.Outcome != session.OutcomeSuccess {
		t.Error("clipboard failure should only set the notice")
	}
}

func TestRowsCommand(t *testing.T) {
	m := newTestModel(t)
	result, _ := m.cmdRows([]string{"25"})
	if got := result.(model).state.MaxRows; got != 25 {
		t.Errorf("MaxRows = %d, want 25", got)
	}
	result, _ = m.cmdRows([]string{"-3"})
	if got := result.(model).state.MaxRows; got != 200 {
		t.Errorf("MaxRows = %d, want unchanged 200", got)
	}
}

func TestMatchCommands(t *testing.T) {
	if got := matchCommands("/"); len(got) != len(slashCommands) {
		t.Errorf("matchCommands(/) = %d commands, want all", len(got))
	}
	got := matchCommands("/ag")
	if len(got) != 2 || got[0].name != "/agent" || got[1].name != "/agents" {
		t.Errorf("matchCommands(/ag) = %v", got)
	}
	if got := matchCommands("/zzz"); len(got) != 0 {
		t.Errorf("matchCommands(/zzz) = %v, want none", got)
	}
}

func TestViewShowsSpinnerWhileLoading(t *testing.T) {
	m := newTestModel(t)
	if strings.Contains(m.View(), "Asking") {
		t.Error("idle view should not show the spinner line")
	}
	result, _ := m.cmdAsk("q")
	m = result.(model)
	if !strings.Contains(m.View(), "Asking auto") {
		t.Errorf("loading view = %q", m.View())
	}
}

func TestRenderWelcome(t *testing.T) {
	out := renderWelcome("1.2.3", "http://localhost:8000", "auto", 80)
	for _, want := range []string{"datachat", "v1.2.3", "localhost:8000", "agent auto"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderWelcome() missing %q:\n%s", want, out)
		}
	}
	if out := renderWelcome("1", "", "auto", 80); !strings.Contains(out, "set server") {
		t.Errorf("renderWelcome() without server = %q", out)
	}
}

func TestIndentText(t *testing.T) {
	if got := indentText("a\nb", "  "); got != "  a\n  b" {
		t.Errorf("indentText() = %q", got)
	}
}
