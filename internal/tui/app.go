package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run launches the interactive mode (inline: answers are printed above the
// prompt and stay in the terminal scrollback).
func Run(version, profile string) error {
	m := initialModel(version, profile)

	p := tea.NewProgram(m)

	final, err := p.Run()
	if fm, ok := final.(model); ok && fm.cancel != nil {
		fm.cancel()
	}
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
