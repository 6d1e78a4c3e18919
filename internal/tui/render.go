package tui

import (
	"fmt"
	"strings"
)

// ─── Welcome Screen ─────────────────────────────────────────────────────────

func renderWelcome(version, server, agent string, width int) string {
	mark := logoMarkStyle.Render("▍▌▋")
	titleLine := mark + " " + logoTitleStyle.Render("datachat") + " " + versionStyle.Render("v"+version)

	var infoLine string
	if server == "" {
		infoLine = welcomeHintStyle.Render("Run: datachat set server <url> to get started")
	} else {
		serverDisplay := server
		if len(serverDisplay) > 40 {
			serverDisplay = serverDisplay[:37] + "..."
		}
		infoLine = welcomeInfoLabel.Render(fmt.Sprintf("%s · agent %s", serverDisplay, agent))
	}

	hint := welcomeHintStyle.Render("Ask about your data in plain language. Tab switches pretty/raw.")
	if width > 0 && width < 60 {
		hint = welcomeHintStyle.Render("Type a question or /help")
	}
	return fmt.Sprintf("\n%s\n%s\n%s\n", titleLine, infoLine, hint)
}

func indentText(text, prefix string) string {
	lines := strings.Split(text, "\n")
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(prefix)
		b.WriteString(line)
	}
	return b.String()
}
