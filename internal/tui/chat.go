package tui

import (
	"context"
	"time"

	"datachat-cli/internal/api"
	"datachat-cli/internal/logger"
	"datachat-cli/internal/session"
	"datachat-cli/internal/view"

	tea "github.com/charmbracelet/bubbletea"
)

// chatResultMsg carries a reply tagged with the ask it answers.
type chatResultMsg struct {
	seq     uint64
	resp    *api.ChatResponse
	raw     []byte
	err     error
	elapsed time.Duration
}

func sendChat(ctx context.Context, client api.ChatAPI, seq uint64, req api.ChatRequest) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		resp, raw, err := client.Chat(ctx, req)
		return chatResultMsg{seq: seq, resp: resp, raw: raw, err: err, elapsed: time.Since(start)}
	}
}

// cmdAsk sends a question. A request still in flight is cancelled and its
// reply, if it arrives anyway, is dropped.
func (m model) cmdAsk(question string) (tea.Model, tea.Cmd) {
	next, req, err := session.Ask(m.state, question, m.agent)
	if err != nil {
		m.state = next
		return m, nil
	}
	if m.client == nil {
		return m, tea.Println(errorMsgStyle.Render("  ✗ No usable server configured. Run: datachat set server <url>"))
	}
	m.state = next

	if m.cancel != nil {
		logger.Debugf("superseding request %d", next.Seq-1)
		m.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	return m, tea.Batch(
		tea.Sequence(
			tea.Println(""),
			tea.Println(userPromptStyle.Render("  ❯ "+next.Question)),
		),
		sendChat(ctx, m.client, next.Seq, req),
		m.spinner.Tick,
	)
}

func (m model) handleChatResult(msg chatResultMsg) (tea.Model, tea.Cmd) {
	if m.state.Stale(msg.seq) {
		logger.WithFields(logger.Fields{"seq": msg.seq, "current": m.state.Seq}).Debug("dropping stale reply")
		return m, nil
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}

	m.state = session.Complete(m.state, msg.seq, msg.resp, msg.raw, msg.err)
	if msg.err != nil {
		logger.WithError(msg.err).WithField("kind", session.ErrorLabel(msg.err)).Warn("chat request failed")
	}

	cmds := []tea.Cmd{tea.Println("")}
	if m.state.Outcome == session.OutcomeFailed {
		cmds = append(cmds, tea.Println(errorMsgStyle.Render("  ✗ "+m.state.Err.Error())))
	}
	cmds = append(cmds, m.printActiveView()...)
	cmds = append(cmds, tea.Println(dimStyle.Render("  "+footer(m.state, msg.elapsed))), tea.Println(""))
	return m, tea.Sequence(cmds...)
}

// printActiveView prints the tab bar and the selected view.
func (m model) printActiveView() []tea.Cmd {
	width := m.width - 4
	if width <= 0 {
		width = 96
	}
	return []tea.Cmd{
		tea.Println("  " + view.TabBar(m.state.Tab)),
		tea.Println(indentText(view.Active(m.state, width), "  ")),
	}
}

func footer(s session.State, elapsed time.Duration) string {
	text := ""
	if s.Result.Agent != "" {
		text = s.Result.Agent + " · "
	}
	text += elapsed.Round(time.Millisecond).String() + " · Tab switches view · /copy to clipboard"
	return text
}
