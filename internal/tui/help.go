package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type keyMap struct {
	Send      key.Binding
	Interrupt key.Binding
	Quit      key.Binding
	PopupUp   key.Binding
	PopupDown key.Binding
	Complete  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Interrupt: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "interrupt request"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "save and quit"),
		),
		PopupUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "previous suggestion"),
		),
		PopupDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "next suggestion"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "complete command"),
		),
	}
}

// welcomeText is the /help panel body, shown on startup too.
func welcomeText() string {
	var b strings.Builder

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent2))
	section := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent))
	cmd := lipgloss.NewStyle().Foreground(lipgloss.Color(colorPrompt))
	desc := lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted))

	b.WriteString(title.Render("LLM Chat - Interactive Chat Tool"))
	b.WriteString("\n\n")
	b.WriteString("Type your message and press Enter to chat.\n\n")

	b.WriteString(section.Render("commands"))
	b.WriteString("\n")
	rows := []struct{ c, d string }{
		{"/help", "show this help message"},
		{"/history", "show conversation history"},
		{"/stats", "show conversation statistics"},
		{"/clear", "clear conversation history"},
		{"/system <msg>", "set system prompt (no arg: show current)"},
		{"/stream", "toggle streaming mode"},
		{"/session", "manage sessions (list/switch/new/delete/rename)"},
		{"/config", "configure API key, base URL, model"},
		{"/exit", "save history and quit"},
	}
	for _, r := range rows {
		b.WriteString("  " + cmd.Render(padRight(r.c, 15)) + " " + desc.Render(r.d) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(section.Render("input tips"))
	b.WriteString("\n")
	b.WriteString("  " + cmd.Render(padRight("@filename", 15)) + " " + desc.Render("load message from file (shows content first)") + "\n")
	b.WriteString("  " + cmd.Render(padRight("@", 15)) + " " + desc.Render("load from the default input file") + "\n")

	return b.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
