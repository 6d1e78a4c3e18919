package tui

import (
	"context"
	"strings"

	"datachat-cli/internal/api"
	"datachat-cli/internal/config"
	"datachat-cli/internal/logger"
	"datachat-cli/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const inputPlaceholder = "Ask a question about your data or type /help..."

// ─── Slash command registry ─────────────────────────────────────────────────

type slashCmd struct {
	name string
	desc string
}

var slashCommands = []slashCmd{
	{"/agent", "Show or set the agent for new questions"},
	{"/agents", "List available agents"},
	{"/clear", "Clear the screen"},
	{"/config", "Show current configuration"},
	{"/copy", "Copy the current view (or /copy sql)"},
	{"/help", "Show all commands"},
	{"/pretty", "Show the structured view"},
	{"/quit", "Exit datachat"},
	{"/raw", "Show the raw response"},
	{"/rows", "Set how many table rows are shown"},
	{"/tab", "Switch between pretty and raw"},
}

// ─── Model ──────────────────────────────────────────────────────────────────

type model struct {
	width  int
	height int

	// Bubble Tea components
	input   textinput.Model
	spinner spinner.Model

	// App state
	cfg     *config.Config
	client  api.ChatAPI
	version string
	profile string
	agent   string

	// Chat state. cancel aborts the request for state.Seq, if any.
	state  session.State
	cancel context.CancelFunc

	// UI state
	ready        bool
	cmdMenuIdx   int    // selected index in command menu
	cmdMenuOpen  bool   // whether the command menu is visible
	lastInputVal string // track input changes to reset menu index

	// Command history
	history      []string
	historyIdx   int // -1 = not browsing
	historySaved string
}

func initialModel(version, profile string) model {
	ti := textinput.New()
	ti.Placeholder = inputPlaceholder
	ti.Focus()
	ti.CharLimit = 4096
	ti.Prompt = "❯ "
	ti.PromptStyle = promptSymbol
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(colorOrange)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorOrange)

	cfg, err := config.Load(profile)
	if err != nil {
		logger.WithError(err).Warn("loading config")
	}

	var client api.ChatAPI
	agent := config.DefaultAgent
	maxRows := 0
	if cfg != nil {
		if err := cfg.Validate(); err == nil {
			client = api.NewClient(cfg)
		} else {
			logger.WithError(err).Warn("invalid config")
		}
		if cfg.Agent != "" {
			agent = cfg.Agent
		}
		maxRows = cfg.MaxRows
	}

	return model{
		input:      ti,
		spinner:    sp,
		version:    version,
		profile:    profile,
		cfg:        cfg,
		client:     client,
		agent:      agent,
		state:      session.New(maxRows),
		history:    make([]string, 0),
		historyIdx: -1,
	}
}

// ─── Init ───────────────────────────────────────────────────────────────────

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
	)
}

// ─── Update ─────────────────────────────────────────────────────────────────

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = m.width - 6

		if !m.ready {
			m.ready = true
			// Print welcome header on first render
			welcome := renderWelcome(m.version, serverStr(m.cfg), m.agent, m.width)
			cmds = append(cmds, tea.Println(welcome))
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			if m.cancel != nil {
				m.cancel()
				m.cancel = nil
			}
			return m, tea.Quit

		case tea.KeyEsc:
			if m.cmdMenuOpen {
				m.cmdMenuOpen = false
				m.cmdMenuIdx = 0
				return m, nil
			}

		case tea.KeyUp:
			if m.cmdMenuOpen {
				matches := matchCommands(m.input.Value())
				if len(matches) > 0 {
					m.cmdMenuIdx--
					if m.cmdMenuIdx < 0 {
						m.cmdMenuIdx = len(matches) - 1
					}
					return m, nil
				}
			} else if len(m.history) > 0 {
				if m.historyIdx == -1 {
					// Entering history mode - save current input
					m.historySaved = m.input.Value()
					m.historyIdx = len(m.history) - 1
				} else {
					m.historyIdx--
					if m.historyIdx < 0 {
						m.historyIdx = 0
					}
				}
				m.input.SetValue(m.history[m.historyIdx])
				m.input.CursorEnd()
				return m, nil
			}

		case tea.KeyDown:
			if m.cmdMenuOpen {
				matches := matchCommands(m.input.Value())
				if len(matches) > 0 {
					m.cmdMenuIdx++
					if m.cmdMenuIdx >= len(matches) {
						m.cmdMenuIdx = 0
					}
					return m, nil
				}
			} else if m.historyIdx != -1 {
				m.historyIdx++
				if m.historyIdx >= len(m.history) {
					// Exit history mode - restore saved input
					m.historyIdx = -1
					m.input.SetValue(m.historySaved)
					m.historySaved = ""
				} else {
					m.input.SetValue(m.history[m.historyIdx])
				}
				m.input.CursorEnd()
				return m, nil
			}

		case tea.KeyTab:
			if m.cmdMenuOpen {
				matches := matchCommands(m.input.Value())
				if len(matches) > 0 {
					idx := m.cmdMenuIdx
					if idx < 0 || idx >= len(matches) {
						idx = 0
					}
					m.input.SetValue(matches[idx].name + " ")
					m.input.CursorEnd()
					m.cmdMenuOpen = false
					m.cmdMenuIdx = 0
				}
				return m, nil
			}
			if m.input.Value() == "" {
				return m.cmdToggleTab()
			}

		case tea.KeyEnter:
			// If command menu is open and an item is selected, pick it
			if m.cmdMenuOpen && m.cmdMenuIdx >= 0 {
				matches := matchCommands(m.input.Value())
				if m.cmdMenuIdx < len(matches) && matches[m.cmdMenuIdx].name != strings.TrimSpace(m.input.Value()) {
					m.input.SetValue(matches[m.cmdMenuIdx].name + " ")
					m.input.CursorEnd()
					m.cmdMenuOpen = false
					m.cmdMenuIdx = 0
					return m, nil
				}
			}

			value := strings.TrimSpace(m.input.Value())
			if value == "" {
				return m.cmdAsk(value)
			}

			// Add to history (avoid duplicates if same as last command)
			if len(m.history) == 0 || m.history[len(m.history)-1] != value {
				m.history = append(m.history, value)
				if len(m.history) > 1000 {
					m.history = m.history[len(m.history)-1000:]
				}
			}
			m.historyIdx = -1
			m.historySaved = ""

			m.input.SetValue("")
			m.lastInputVal = ""
			m.cmdMenuOpen = false
			m.cmdMenuIdx = 0

			return m.dispatchInput(value)
		}

	// ── Async results ─────────────────────────────────────────────────
	case chatResultMsg:
		return m.handleChatResult(msg)
	}

	// Update sub-components
	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)

	// Track input changes to open/close command menu and reset selection
	newVal := m.input.Value()
	if newVal != m.lastInputVal {
		m.lastInputVal = newVal
		m.state = session.ClearNotice(m.state)
		if m.historyIdx != -1 {
			if m.historyIdx < len(m.history) && m.history[m.historyIdx] != newVal {
				m.historyIdx = -1
				m.historySaved = ""
			}
		}
		m.cmdMenuOpen = strings.HasPrefix(newVal, "/")
		m.cmdMenuIdx = 0
	}

	return m, tea.Batch(cmds...)
}

// ─── View ───────────────────────────────────────────────────────────────────
//
// Inline mode: View() only shows the status line, input prompt and hints.
// All output is printed above via tea.Println.

func (m model) View() string {
	if !m.ready {
		return ""
	}

	var s strings.Builder

	if m.state.Loading() {
		s.WriteString(m.spinner.View() + " " + statusStyle.Render("Asking "+m.agent+"..."))
		s.WriteString("\n")
	}
	s.WriteString(m.input.View())
	s.WriteString("\n")

	sepWidth := min(m.width, 80)
	if sepWidth < 20 {
		sepWidth = 20
	}
	s.WriteString(separatorStyle.Render(strings.Repeat("─", sepWidth)))
	s.WriteString("\n")

	s.WriteString(m.renderHints())

	return s.String()
}

// ─── Hint bar ───────────────────────────────────────────────────────────────

func (m model) renderHints() string {
	if m.cmdMenuOpen {
		matches := matchCommands(m.input.Value())
		if len(matches) > 0 {
			return m.renderCommandMenu(matches)
		}
	}

	if m.state.Notice != "" {
		return warnMsgStyle.Render("  ! " + m.state.Notice)
	}

	if m.state.Loading() {
		return hintBarStyle.Render("  Enter asks again (replaces the pending question)")
	}

	hints := "  ? for help · agent " + agentStyle.Render(m.agent)
	if m.state.Outcome != session.OutcomeNone {
		hints += hintBarStyle.Render(" · Tab " + m.state.Tab.String() + "/" + session.ToggleTab(m.state).Tab.String())
	}
	return hintBarStyle.Render(hints)
}

// renderCommandMenu renders a vertical list of matching commands.
func (m model) renderCommandMenu(matches []slashCmd) string {
	maxLen := 0
	for _, c := range matches {
		if len(c.name) > maxLen {
			maxLen = len(c.name)
		}
	}

	var lines []string
	for i, c := range matches {
		padded := c.name
		for len(padded) < maxLen {
			padded += " "
		}

		var line string
		if i == m.cmdMenuIdx {
			line = "  " + cmdSelectedNameStyle.Render(padded) + "  " + cmdSelectedDescStyle.Render(c.desc)
		} else {
			line = "  " + cmdNameStyle.Render(padded) + "  " + cmdDescStyle.Render(c.desc)
		}
		lines = append(lines, line)
	}

	lines = append(lines, hintBarStyle.Render("  ↑↓ navigate  Tab/Enter select"))

	return strings.Join(lines, "\n")
}

// matchCommands returns all slash commands matching a prefix.
func matchCommands(prefix string) []slashCmd {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "/" {
		return slashCommands
	}
	var matches []slashCmd
	for _, c := range slashCommands {
		if strings.HasPrefix(c.name, prefix) {
			matches = append(matches, c)
		}
	}
	return matches
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func serverStr(cfg *config.Config) string {
	if cfg == nil {
		return ""
	}
	return cfg.Server
}
