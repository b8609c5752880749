package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"llm-chat/internal/app"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// entry is one rendered transcript item. Roles beyond the chat roles are
// presentation-only ("error", "info", "panel").
type entry struct {
	Role      string
	Content   string
	Timestamp time.Time
}

type sendResult struct {
	reply string
	err   error
}

type fragmentMsg string

type sendDoneMsg sendResult

type spinMsg struct{}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Model is the bubbletea chat interface. All conversation state lives in the
// Application; the model holds only presentation state.
type Model struct {
	app      *app.Application
	input    textarea.Model
	keys     keyMap
	markdown *MarkdownRenderer

	entries []entry
	width   int
	height  int

	loading    bool
	spin       int
	streamText string
	fragments  chan string
	results    chan sendResult
	cancel     context.CancelFunc

	slashKey   string
	slashIndex int

	pending *pendingFile
	form    *configForm

	quitting bool
}

// pendingFile is an @file load awaiting send confirmation.
type pendingFile struct {
	Path    string
	Content string
}

func New(application *app.Application) *Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message, /help for commands"
	ta.Focus()
	ta.CharLimit = 0
	ta.SetWidth(80)
	ta.SetHeight(2)
	ta.Prompt = "▍ "
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()

	m := &Model{
		app:      application,
		input:    ta,
		keys:     defaultKeyMap(),
		markdown: NewMarkdownRenderer(),
		width:    80,
		height:   24,
	}
	m.entries = append(m.entries, entry{Role: "panel", Content: welcomeText(), Timestamp: time.Now()})
	if !application.Configured() {
		m.entries = append(m.entries, entry{
			Role:      "info",
			Content:   "No API key configured. Use /config to set one, or export OPENAI_API_KEY.",
			Timestamp: time.Now(),
		})
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(msg.Width - 6)
		return m, nil

	case fragmentMsg:
		m.streamText += string(msg)
		return m, m.waitStream()

	case sendDoneMsg:
		return m.finishSend(sendResult(msg))

	case validateMsg:
		if bool(msg) {
			m.appendInfo("Connection verified.")
		} else {
			m.appendError("Connection check failed; verify the API key and base URL.")
		}
		return m, nil

	case spinMsg:
		if m.loading {
			m.spin = (m.spin + 1) % len(spinnerFrames)
			return m, m.spinCmd()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.updateSlashPopup()
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form != nil {
		return m.updateForm(msg)
	}
	if m.pending != nil {
		return m.updateConfirm(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Interrupt):
		if m.loading && m.cancel != nil {
			m.cancel()
			return m, nil
		}
		m.appendInfo("Interrupted. Type /exit to quit.")
		return m, nil

	case key.Matches(msg, m.keys.Quit):
		m.app.Close()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.PopupUp):
		if _, items := m.slashPopupState(); len(items) > 0 {
			m.slashIndex = (m.slashIndex - 1 + len(items)) % len(items)
			return m, nil
		}

	case key.Matches(msg, m.keys.PopupDown):
		if _, items := m.slashPopupState(); len(items) > 0 {
			m.slashIndex = (m.slashIndex + 1) % len(items)
			return m, nil
		}

	case key.Matches(msg, m.keys.Complete):
		if _, items := m.slashPopupState(); len(items) > 0 {
			idx := m.slashIndex
			if idx < 0 || idx >= len(items) {
				idx = 0
			}
			m.input.SetValue(items[idx].InsertText)
			m.input.CursorEnd()
			m.updateSlashPopup()
			return m, nil
		}

	case key.Matches(msg, m.keys.Send):
		if m.loading {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		m.updateSlashPopup()
		return m.submit(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.updateSlashPopup()
	return m, cmd
}

func (m *Model) submit(text string) (tea.Model, tea.Cmd) {
	if strings.HasPrefix(text, "@") {
		content, path, err := m.app.LoadInputFile(strings.TrimPrefix(text, "@"))
		if err != nil {
			m.appendError(err.Error())
			return m, nil
		}
		if m.app.Config().ConfirmBeforeSend {
			m.pending = &pendingFile{Path: path, Content: content}
			return m, nil
		}
		return m.sendMessage(content)
	}

	if cmd, ok := app.ParseCommand(text); ok {
		return m.runCommand(cmd)
	}

	return m.sendMessage(text)
}

func (m *Model) runCommand(cmd app.Command) (tea.Model, tea.Cmd) {
	if cmd.Kind == app.CmdConfig {
		info := m.app.ClientInfo()
		m.form = newConfigForm(info)
		return m, nil
	}

	res := m.app.Execute(cmd)
	m.renderResult(res)
	if res.Exit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) renderResult(res app.CommandResult) {
	if res.Err != nil {
		m.appendError(res.Err.Error())
		return
	}

	switch res.Kind {
	case app.CmdHelp:
		m.entries = append(m.entries, entry{Role: "panel", Content: welcomeText(), Timestamp: time.Now()})

	case app.CmdHistory:
		m.entries = append(m.entries, entry{Role: "panel", Content: formatHistory(res.History), Timestamp: time.Now()})

	case app.CmdStats:
		m.entries = append(m.entries, entry{Role: "panel", Content: formatStats(res.Stats), Timestamp: time.Now()})

	case app.CmdSession:
		if res.Sessions != nil {
			m.entries = append(m.entries, entry{Role: "panel", Content: formatSessions(res.Sessions), Timestamp: time.Now()})
			return
		}
		m.appendInfo(res.Info)

	case app.CmdSystem:
		if res.Info == "" {
			m.appendInfo("Current system prompt: " + res.System)
			return
		}
		m.appendInfo(res.Info)

	default:
		if res.Info != "" {
			m.appendInfo(res.Info)
		}
	}
}

func (m *Model) sendMessage(text string) (tea.Model, tea.Cmd) {
	if !m.app.Configured() {
		m.appendError("Model client not configured. Use /config to set an API key.")
		return m, nil
	}

	m.entries = append(m.entries, entry{Role: "user", Content: text, Timestamp: time.Now()})
	m.loading = true
	m.spin = 0
	m.streamText = ""
	m.fragments = make(chan string, 16)
	m.results = make(chan sendResult, 1)

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	fragments, results := m.fragments, m.results
	go func() {
		reply, err := m.app.Send(ctx, text, func(frag string) {
			fragments <- frag
		})
		close(fragments)
		results <- sendResult{reply: reply, err: err}
	}()

	return m, tea.Batch(m.waitStream(), m.spinCmd())
}

// waitStream delivers the next fragment, or the final result once the
// fragment channel is drained and closed.
func (m *Model) waitStream() tea.Cmd {
	fragments, results := m.fragments, m.results
	return func() tea.Msg {
		if frag, ok := <-fragments; ok {
			return fragmentMsg(frag)
		}
		return sendDoneMsg(<-results)
	}
}

func (m *Model) finishSend(res sendResult) (tea.Model, tea.Cmd) {
	m.loading = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	partial := m.streamText
	m.streamText = ""

	if res.err != nil {
		if partial != "" {
			m.entries = append(m.entries, entry{Role: "assistant", Content: partial, Timestamp: time.Now()})
		}
		m.appendError(res.err.Error())
		return m, nil
	}

	m.entries = append(m.entries, entry{Role: "assistant", Content: res.reply, Timestamp: time.Now()})
	return m, nil
}

func (m *Model) spinCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return spinMsg{}
	})
}

func (m *Model) appendInfo(text string) {
	m.entries = append(m.entries, entry{Role: "info", Content: text, Timestamp: time.Now()})
}

func (m *Model) appendError(text string) {
	m.entries = append(m.entries, entry{Role: "error", Content: text, Timestamp: time.Now()})
}

// updateConfirm handles the y/n prompt for @file content.
func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y":
		pending := m.pending
		m.pending = nil
		m.appendInfo(fmt.Sprintf("Loaded from %s", pending.Path))
		return m.sendMessage(pending.Content)
	case "n", "esc", "ctrl+c":
		m.pending = nil
		m.appendInfo("Cancelled")
		return m, nil
	}
	return m, nil
}

func (m *Model) View() string {
	if m.quitting {
		return "Chat history saved. Goodbye!\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	for _, e := range m.entries {
		b.WriteString(m.renderEntry(e))
		b.WriteString("\n")
	}

	if m.loading {
		if m.streamText != "" {
			b.WriteString(assistantLabelStyle.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(m.streamText)
			b.WriteString("\n")
		}
		b.WriteString(loadingStyle.Render(spinnerFrames[m.spin] + " Thinking..."))
		b.WriteString("\n")
	}

	if m.pending != nil {
		b.WriteString(m.renderConfirm())
		b.WriteString("\n")
	}

	if m.form != nil {
		b.WriteString(m.form.View())
		b.WriteString("\n")
	} else {
		b.WriteString(inputBoxStyle.Width(m.width - 4).Render(m.input.View()))
		b.WriteString("\n")
		if popup := m.renderSlashPopup(); popup != "" {
			b.WriteString(popup)
			b.WriteString("\n")
		}
	}

	b.WriteString(footerStyle.Render("enter send • ctrl+c interrupt • /exit quit"))
	return b.String()
}

func (m *Model) renderHeader() string {
	info := m.app.ClientInfo()
	mode := "sync"
	if m.app.Streaming() {
		mode = "streaming"
	}
	model := info.Model
	if model == "" {
		model = "unconfigured"
	}
	left := headerStyle.Render("LLM Chat")
	right := headerMutedStyle.Render(fmt.Sprintf("session %s • %s • %s",
		m.app.Chat().CurrentSession(), model, mode))
	return left + "  " + right
}

func (m *Model) renderEntry(e entry) string {
	ts := timestampStyle.Render(e.Timestamp.Format("15:04:05"))
	width := m.width - 4

	switch e.Role {
	case "user":
		return userLabelStyle.Render("You") + " " + ts + "\n" + e.Content
	case "assistant":
		return assistantLabelStyle.Render("Assistant") + " " + ts + "\n" + m.markdown.Render(e.Content, width)
	case "error":
		return errorStyle.Render("✗ " + e.Content)
	case "info":
		return infoStyle.Render(e.Content)
	case "panel":
		return panelStyle.Width(width).Render(e.Content)
	}
	return e.Content
}

func (m *Model) renderConfirm() string {
	content := m.pending.Content
	if len(content) > 2000 {
		content = content[:2000] + "\n..."
	}
	body := fmt.Sprintf("File content (%s):\n\n%s\n\n%s",
		m.pending.Path, content, infoStyle.Render("Send this? (y/n)"))
	return panelStyle.Width(m.width - 4).Render(body)
}

func formatHistory(history []app.Message) string {
	if len(history) == 0 {
		return "No conversation history."
	}
	var b strings.Builder
	b.WriteString(tableHeaderStyle.Render("Conversation History"))
	b.WriteString("\n")
	for i, msg := range history {
		label := strings.ToUpper(string(msg.Role))
		b.WriteString(fmt.Sprintf("\n[%d] %s (%s)\n%s\n", i+1, label, msg.Timestamp, msg.Content))
		b.WriteString(strings.Repeat("-", 40))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatStats(stats *app.SessionStats) string {
	var b strings.Builder
	b.WriteString(tableHeaderStyle.Render("Session Statistics"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%-20s %s\n", "Session", stats.Session))
	b.WriteString(fmt.Sprintf("%-20s %d\n", "Total Messages", stats.Total))
	b.WriteString(fmt.Sprintf("%-20s %d\n", "User Messages", stats.User))
	b.WriteString(fmt.Sprintf("%-20s %d\n", "Assistant Messages", stats.Assistant))
	b.WriteString(fmt.Sprintf("%-20s %d", "System Messages", stats.System))
	return b.String()
}

func formatSessions(sessions []app.SessionInfo) string {
	var b strings.Builder
	b.WriteString(tableHeaderStyle.Render("Available Sessions"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%-32s %-10s %s\n", "Name", "Messages", "Active"))
	for _, s := range sessions {
		active := ""
		if s.Active {
			active = activeMarkStyle.Render("✓")
		}
		b.WriteString(fmt.Sprintf("%-32s %-10d %s\n", s.Name, s.Messages, active))
	}
	return strings.TrimRight(b.String(), "\n")
}
