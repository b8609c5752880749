package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"llm-chat/internal/app"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// configForm is the inline /config editor. Enter advances through the
// fields; the last Enter applies, Esc cancels.
type configForm struct {
	fields []textinput.Model
	labels []string
	focus  int
}

func newConfigForm(info app.ClientInfo) *configForm {
	apiKey := textinput.New()
	apiKey.Placeholder = "sk-..."
	apiKey.EchoMode = textinput.EchoPassword
	apiKey.EchoCharacter = '*'
	apiKey.Focus()

	baseURL := textinput.New()
	baseURL.Placeholder = "https://api.deepseek.com"
	baseURL.SetValue(info.BaseURL)

	model := textinput.New()
	model.Placeholder = "deepseek-chat"
	model.SetValue(info.Model)

	return &configForm{
		fields: []textinput.Model{apiKey, baseURL, model},
		labels: []string{"API Key", "Base URL", "Model"},
		focus:  0,
	}
}

func (f *configForm) values() (apiKey, baseURL, model string) {
	return strings.TrimSpace(f.fields[0].Value()),
		strings.TrimSpace(f.fields[1].Value()),
		strings.TrimSpace(f.fields[2].Value())
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form

	switch msg.String() {
	case "esc", "ctrl+c":
		m.form = nil
		m.appendInfo("Configuration cancelled.")
		return m, nil

	case "enter":
		if f.focus < len(f.fields)-1 {
			f.fields[f.focus].Blur()
			f.focus++
			f.fields[f.focus].Focus()
			return m, textinput.Blink
		}
		apiKey, baseURL, model := f.values()
		m.form = nil
		m.app.UpdateClientConfig(apiKey, baseURL, model)
		info := m.app.ClientInfo()
		if !info.Configured {
			m.appendInfo("No API key provided; client not configured.")
			return m, nil
		}
		m.appendInfo(fmt.Sprintf("Configuration updated: %s @ %s", info.Model, info.BaseURL))
		return m, m.validateCmd()

	case "up", "shift+tab":
		if f.focus > 0 {
			f.fields[f.focus].Blur()
			f.focus--
			f.fields[f.focus].Focus()
		}
		return m, textinput.Blink

	case "down", "tab":
		if f.focus < len(f.fields)-1 {
			f.fields[f.focus].Blur()
			f.focus++
			f.fields[f.focus].Focus()
		}
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	f.fields[f.focus], cmd = f.fields[f.focus].Update(msg)
	return m, cmd
}

func (f *configForm) View() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent2))
	label := lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted))
	active := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent))

	var b strings.Builder
	b.WriteString(title.Render("Configuration"))
	b.WriteString("\n\n")
	for i, field := range f.fields {
		style := label
		if i == f.focus {
			style = active
		}
		b.WriteString(style.Render(padRight(f.labels[i], 10)))
		b.WriteString(field.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(label.Render("enter next/apply • tab move • esc cancel"))

	return panelStyle.Render(b.String())
}

type validateMsg bool

// validateCmd probes the endpoint off the event loop after /config applies.
func (m *Model) validateCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return validateMsg(m.app.ValidateConnection(ctx))
	}
}

// Run starts the interactive chat program and blocks until it exits.
func Run(application *app.Application) error {
	model := New(application)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
