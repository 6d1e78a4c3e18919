package display

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
	Gray    = "\033[90m"
)

func Header(text string) {
	fmt.Printf("\n%s%s%s\n", Bold+Cyan, text, Reset)
	fmt.Println(strings.Repeat("─", min(len(text)+4, 80)))
}

func SubHeader(text string) {
	fmt.Printf("%s%s%s\n", Bold+White, text, Reset)
}

func Success(text string) {
	fmt.Printf("%s✓%s %s\n", Green, Reset, text)
}

func Error(text string) {
	fmt.Fprintf(os.Stderr, "%s✗%s %s\n", Red, Reset, text)
}

func Warn(text string) {
	fmt.Printf("%s!%s %s\n", Yellow, Reset, text)
}

func Info(label, value string) {
	fmt.Printf("  %s%-20s%s %s\n", Dim, label, Reset, value)
}

func Spinner(text string) {
	fmt.Printf("\r%s⟳%s %s", Yellow, Reset, text)
}

func ClearLine() {
	fmt.Print("\r\033[K")
}

// KindLabel colors an error kind name as returned by session.ErrorLabel.
func KindLabel(kind string) string {
	labels := map[string]string{
		"empty_input":        Yellow + "empty input" + Reset,
		"transport":          Red + "transport error" + Reset,
		"malformed_response": Red + "malformed response" + Reset,
		"timeout":            Red + "timed out" + Reset,
		"cancelled":          Gray + "cancelled" + Reset,
		"clipboard":          Yellow + "clipboard unavailable" + Reset,
	}
	if label, ok := labels[kind]; ok {
		return label
	}
	return Gray + kind + Reset
}

// AgentLabel shows the automatic agent distinctly from forced ones.
func AgentLabel(agent string) string {
	if agent == "" || agent == "auto" {
		return Gray + "auto" + Reset
	}
	return Cyan + agent + Reset
}

// Duration formats a request duration for the one-shot command.
func Duration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
