package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

type slashPopupItem struct {
	Label       string
	Description string
	InsertText  string
}

var baseCommands = []slashPopupItem{
	{Label: "/help", Description: "show help", InsertText: "/help"},
	{Label: "/history", Description: "show conversation history", InsertText: "/history"},
	{Label: "/stats", Description: "show conversation statistics", InsertText: "/stats"},
	{Label: "/clear", Description: "clear conversation history", InsertText: "/clear"},
	{Label: "/system", Description: "show or set the system prompt", InsertText: "/system "},
	{Label: "/stream", Description: "toggle streaming mode", InsertText: "/stream"},
	{Label: "/session", Description: "manage sessions", InsertText: "/session "},
	{Label: "/config", Description: "configure API key, base URL, model", InsertText: "/config"},
	{Label: "/exit", Description: "save history and quit", InsertText: "/exit"},
}

var sessionSubcommands = []slashPopupItem{
	{Label: "list", Description: "list all sessions", InsertText: "/session list"},
	{Label: "switch", Description: "switch to a session", InsertText: "/session switch "},
	{Label: "new", Description: "start a new session", InsertText: "/session new"},
	{Label: "delete", Description: "delete a session", InsertText: "/session delete "},
	{Label: "rename", Description: "rename a session", InsertText: "/session rename "},
}

// slashPopupState computes the completion candidates for the current input.
// key changes whenever the candidate set changes, resetting the selection.
func (m *Model) slashPopupState() (key string, items []slashPopupItem) {
	if m.form != nil || m.pending != nil || m.loading {
		return "", nil
	}

	raw := strings.TrimLeft(m.input.Value(), " \t")
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return "", nil
	}
	if strings.ContainsAny(raw, "\n\r") {
		return "", nil
	}

	hasSpace := strings.ContainsAny(raw, " \t")
	parts := strings.Fields(raw)
	if len(parts) == 0 {
		return "", nil
	}

	cmdToken := strings.ToLower(parts[0])
	if cmdToken == "/" {
		cmdToken = ""
	}

	if len(parts) == 1 && !hasSpace {
		key = "cmd:" + cmdToken
		for _, cand := range baseCommands {
			if strings.HasPrefix(cand.Label, cmdToken) {
				items = append(items, cand)
			}
		}
		return key, items
	}

	if cmdToken == "/session" && len(parts) <= 2 {
		subPrefix := ""
		if len(parts) == 2 {
			subPrefix = strings.ToLower(parts[1])
		}
		key = "session:" + subPrefix
		for _, cand := range sessionSubcommands {
			if strings.HasPrefix(cand.Label, subPrefix) {
				items = append(items, cand)
			}
		}
		return key, items
	}

	return "", nil
}

func (m *Model) updateSlashPopup() {
	key, items := m.slashPopupState()
	if key != m.slashKey {
		m.slashKey = key
		m.slashIndex = 0
	}
	if len(items) == 0 {
		m.slashIndex = 0
		return
	}
	if m.slashIndex >= len(items) {
		m.slashIndex = len(items) - 1
	}
}

func (m *Model) renderSlashPopup() string {
	_, items := m.slashPopupState()
	if len(items) == 0 {
		return ""
	}

	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorAccent)).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorFg))
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted))

	idx := m.slashIndex
	if idx < 0 || idx >= len(items) {
		idx = 0
	}

	width := m.width - 4
	if width < 24 {
		width = 24
	}
	labelW := 12

	var b strings.Builder
	b.WriteString(descStyle.Render("↑/↓ select • tab complete"))
	b.WriteString("\n")
	for i, item := range items {
		prefix := "  "
		style := labelStyle
		if i == idx {
			prefix = "› "
			style = activeStyle
		}
		label := truncate.StringWithTail(item.Label, uint(labelW), "…")
		desc := truncate.StringWithTail(item.Description, uint(width-labelW-4), "…")
		b.WriteString(prefix + style.Render(padRight(label, labelW)) + " " + descStyle.Render(desc))
		if i < len(items)-1 {
			b.WriteString("\n")
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(colorBorder)).
		Padding(0, 1).
		Render(b.String())
}
