package tui

import (
	"fmt"
	"strconv"
	"strings"

	"datachat-cli/internal/api"
	"datachat-cli/internal/config"
	"datachat-cli/internal/logger"
	"datachat-cli/internal/session"
	"datachat-cli/internal/view"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// ─── Input dispatcher ───────────────────────────────────────────────────────

func (m model) dispatchInput(input string) (tea.Model, tea.Cmd) {
	if input == "?" {
		return m.cmdHelp()
	}
	if strings.HasPrefix(input, "/") {
		return m.dispatchCommand(input)
	}
	return m.cmdAsk(input)
}

func (m model) dispatchCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "/help", "/h":
		return m.cmdHelp()
	case "/agent":
		return m.cmdAgent(args)
	case "/agents":
		return m.cmdAgents()
	case "/pretty":
		return m.cmdSelectTab(session.TabPretty)
	case "/raw":
		return m.cmdSelectTab(session.TabRaw)
	case "/tab":
		return m.cmdToggleTab()
	case "/copy":
		return m.cmdCopy(args)
	case "/rows":
		return m.cmdRows(args)
	case "/config":
		return m.cmdConfig()
	case "/clear":
		return m.cmdClear()
	case "/quit", "/exit", "/q":
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		return m, tea.Quit
	default:
		return m, tea.Println(errorMsgStyle.Render(fmt.Sprintf("  ✗ Unknown command: %s. Type /help", cmd)))
	}
}

// ─── /help ──────────────────────────────────────────────────────────────────

func (m model) cmdHelp() (tea.Model, tea.Cmd) {
	pad := func(s string, w int) string {
		for len(s) < w {
			s += " "
		}
		return s
	}
	row := func(key, desc string) tea.Cmd {
		return tea.Println("  " + pad(hintKeyStyle.Render(key), 30) + dimStyle.Render(desc))
	}

	lines := []tea.Cmd{
		tea.Println(""),
		tea.Println(dimStyle.Render("  Shortcuts:")),
		tea.Println(""),
		row("/agent [key]", "Show or set the agent for new questions"),
		row("/agents", "List available agents"),
		row("/pretty, /raw", "Show the structured view or the raw response"),
		row("/tab  (or Tab)", "Switch between pretty and raw"),
		row("/copy [sql]", "Copy the current view, or just the SQL"),
		row("/rows <n>", "Show at most n table rows"),
		row("/config", "Show current configuration"),
		row("/clear", "Clear the screen"),
		row("/quit", "Exit datachat"),
		tea.Println(""),
		tea.Println(dimStyle.Render("  Or just type a question about your data.")),
		tea.Println(""),
	}
	return m, tea.Sequence(lines...)
}

// ─── /agent, /agents ────────────────────────────────────────────────────────

func (m model) cmdAgent(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m, tea.Println(dimStyle.Render("  Agent: ") + agentStyle.Render(m.agent))
	}
	key := strings.ToLower(args[0])
	if !api.ValidAgent(key) {
		return m, tea.Println(errorMsgStyle.Render(fmt.Sprintf("  ✗ Unknown agent %q. Type /agents", args[0])))
	}
	m.agent = key
	return m, tea.Println(successMsgStyle.Render("  ✓ Agent set to " + key))
}

func (m model) cmdAgents() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tea.Println(""), tea.Println(dimStyle.Render("  Agents:"))}
	for _, a := range api.Agents {
		marker := "  "
		if a.Key == m.agent {
			marker = "▸ "
		}
		cmds = append(cmds, tea.Println("  "+marker+agentStyle.Render(fmt.Sprintf("%-10s", a.Key))+" "+dimStyle.Render(a.Desc)))
	}
	cmds = append(cmds, tea.Println(""))
	return m, tea.Sequence(cmds...)
}

// ─── Tabs ───────────────────────────────────────────────────────────────────

func (m model) cmdSelectTab(tab session.Tab) (tea.Model, tea.Cmd) {
	m.state = session.SelectTab(m.state, tab)
	return m.reprint()
}

func (m model) cmdToggleTab() (tea.Model, tea.Cmd) {
	m.state = session.ToggleTab(m.state)
	return m.reprint()
}

func (m model) reprint() (tea.Model, tea.Cmd) {
	if m.state.Outcome == session.OutcomeNone {
		return m, tea.Println(dimStyle.Render("  No results yet. Ask a question first."))
	}
	cmds := append([]tea.Cmd{tea.Println("")}, m.printActiveView()...)
	return m, tea.Sequence(cmds...)
}

// ─── /copy ──────────────────────────────────────────────────────────────────

func (m model) cmdCopy(args []string) (tea.Model, tea.Cmd) {
	what := m.state.Tab.String() + " view"
	var text string
	if len(args) > 0 && strings.EqualFold(args[0], "sql") {
		what = "SQL"
		text = m.state.Result.SQL
	} else if m.state.Outcome != session.OutcomeNone {
		text = view.PlainText(m.state, m.width-4)
	}

	if text == "" {
		m.state = session.Notify(m.state, "Nothing to copy")
		return m, nil
	}
	if err := writeClipboard(text); err != nil {
		logger.WithError(err).Warn("clipboard write failed")
		m.state = session.Notify(m.state, "Clipboard unavailable: "+err.Error())
		return m, nil
	}
	m.state = session.Notify(m.state, "Copied "+what)
	return m, nil
}

// ─── /rows ──────────────────────────────────────────────────────────────────

func (m model) cmdRows(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m, tea.Println(dimStyle.Render(fmt.Sprintf("  Showing at most %d rows", m.state.MaxRows)))
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return m, tea.Println(errorMsgStyle.Render("  ✗ Usage: /rows <positive number>"))
	}
	m.state.MaxRows = n
	return m, tea.Println(successMsgStyle.Render(fmt.Sprintf("  ✓ Showing at most %d rows", n)))
}

// ─── /config ────────────────────────────────────────────────────────────────

func (m model) cmdConfig() (tea.Model, tea.Cmd) {
	if m.cfg == nil {
		return m, tea.Println(warnMsgStyle.Render("  ! No configuration loaded. Run: datachat set server <url>"))
	}

	val := func(s string) string {
		if s == "" {
			return dimStyle.Render("(not set)")
		}
		return s
	}
	logPath, _ := config.LogPath()

	return m, tea.Sequence(
		tea.Println(""),
		tea.Println(dimStyle.Render("  Configuration:")),
		tea.Println(fmt.Sprintf("    Profile:   %s", config.ProfileName(m.profile))),
		tea.Println(fmt.Sprintf("    Server:    %s", val(m.cfg.Server))),
		tea.Println(fmt.Sprintf("    Agent:     %s", val(m.agent))),
		tea.Println(fmt.Sprintf("    Timeout:   %ds", m.cfg.TimeoutSeconds)),
		tea.Println(fmt.Sprintf("    Max rows:  %d", m.state.MaxRows)),
		tea.Println(fmt.Sprintf("    Log file:  %s", val(logPath))),
		tea.Println(""),
	)
}

func (m model) cmdClear() (tea.Model, tea.Cmd) {
	return m, tea.ClearScreen
}
