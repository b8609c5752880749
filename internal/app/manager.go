package app

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"llm-chat/internal/llm"
)

// ChatManager owns the in-memory session set and the current-session
// pointer, and applies the context-window and retention-trim policies on
// top of the HistoryStore. It is driven by a single control loop, so no
// locking is needed.
type ChatManager struct {
	store      *HistoryStore
	logger     *Logger
	sessions   map[string][]Message
	current    string
	maxContext int
	maxHistory int
}

// NewChatManager hydrates sessions from the store (falling back to a default
// set on corruption) and always starts a fresh timestamp-named session;
// prior sessions are kept but not auto-resumed.
func NewChatManager(store *HistoryStore, maxContext, maxHistory int, logger *Logger) *ChatManager {
	if maxContext <= 0 {
		maxContext = 20
	}
	if maxHistory <= 0 {
		maxHistory = 1000
	}
	sessions, err := store.Load()
	if err != nil {
		logger.Warn("history load failed, using fallback", map[string]interface{}{"error": err.Error()})
	}

	name := "chat_" + time.Now().Format("20060102_150405")
	if _, exists := sessions[name]; exists {
		name = name + "_" + uuid.NewString()[:8]
	}
	sessions[name] = []Message{}

	return &ChatManager{
		store:      store,
		logger:     logger,
		sessions:   sessions,
		current:    name,
		maxContext: maxContext,
		maxHistory: maxHistory,
	}
}

func (m *ChatManager) CurrentSession() string { return m.current }

// Len reports the current session's message count.
func (m *ChatManager) Len() int { return len(m.sessions[m.current]) }

// AddMessage appends a timestamped message to the current session and then
// applies the retention trim. The hysteresis band (trim only past twice the
// retention cap, down to the cap) amortizes the cost across appends.
func (m *ChatManager) AddMessage(role Role, content string) Message {
	msg := NewMessage(role, content)
	m.sessions[m.current] = append(m.sessions[m.current], msg)
	m.trim()
	return msg
}

func (m *ChatManager) trim() {
	msgs := m.sessions[m.current]
	if len(msgs) > m.maxHistory*2 {
		trimmed := make([]Message, m.maxHistory)
		copy(trimmed, msgs[len(msgs)-m.maxHistory:])
		m.sessions[m.current] = trimmed
	}
}

// contextWindow returns the suffix of msgs of length min(len(msgs), max),
// stripped of timestamps. Pure; it never alters stored history.
func contextWindow(msgs []Message, max int) []llm.Message {
	if max > 0 && len(msgs) > max {
		msgs = msgs[len(msgs)-max:]
	}
	out := make([]llm.Message, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, llm.Message{Role: string(msg.Role), Content: msg.Content})
	}
	return out
}

// Context returns the bounded message window sent to the model per request.
func (m *ChatManager) Context() []llm.Message {
	return contextWindow(m.sessions[m.current], m.maxContext)
}

// MessagesForAPI returns the full current-session history in wire shape.
// Unbounded; used for export and debugging, not per-request context.
func (m *ChatManager) MessagesForAPI() []llm.Message {
	return contextWindow(m.sessions[m.current], 0)
}

// History returns a copy of the current session's full transcript.
func (m *ChatManager) History() []Message {
	msgs := m.sessions[m.current]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// ClearHistory resets the current session to empty and persists.
func (m *ChatManager) ClearHistory() error {
	m.sessions[m.current] = []Message{}
	return m.Save()
}

// SwitchSession activates name, creating it empty if absent. Idempotent.
func (m *ChatManager) SwitchSession(name string) {
	if _, ok := m.sessions[name]; !ok {
		m.sessions[name] = []Message{}
	}
	m.current = name
}

// NewSessionName generates a short unique name for /session new.
func (m *ChatManager) NewSessionName() string {
	for {
		name := "session_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		if _, ok := m.sessions[name]; !ok {
			return name
		}
	}
}

// DeleteSession removes a non-active session and persists. Deleting the
// active session or a missing one is rejected without mutating state.
func (m *ChatManager) DeleteSession(name string) error {
	if _, ok := m.sessions[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if name == m.current {
		return fmt.Errorf("%w: cannot delete the active session %q, switch away first", ErrInvalidOperation, name)
	}
	delete(m.sessions, name)
	return m.Save()
}

// RenameSession re-keys old to new, updates the current-session pointer if
// it referenced old, and persists. Conflicting or missing names are rejected
// without mutating state.
func (m *ChatManager) RenameSession(oldName, newName string) error {
	if _, ok := m.sessions[oldName]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, oldName)
	}
	if _, ok := m.sessions[newName]; ok {
		return fmt.Errorf("%w: %q", ErrConflict, newName)
	}
	m.sessions[newName] = m.sessions[oldName]
	delete(m.sessions, oldName)
	if m.current == oldName {
		m.current = newName
	}
	return m.Save()
}

// ListSessions returns all sessions sorted by name, flagging the active one.
func (m *ChatManager) ListSessions() []SessionInfo {
	names := make([]string, 0, len(m.sessions))
	for name := range m.sessions {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]SessionInfo, 0, len(names))
	for _, name := range names {
		out = append(out, SessionInfo{
			Name:     name,
			Messages: len(m.sessions[name]),
			Active:   name == m.current,
		})
	}
	return out
}

// Stats tallies the current session by role.
func (m *ChatManager) Stats() SessionStats {
	stats := SessionStats{Session: m.current}
	for _, msg := range m.sessions[m.current] {
		stats.Total++
		switch msg.Role {
		case RoleUser:
			stats.User++
		case RoleAssistant:
			stats.Assistant++
		case RoleSystem:
			stats.System++
		}
	}
	return stats
}

// Save flushes the full session mapping to the store.
func (m *ChatManager) Save() error {
	return m.store.Save(m.sessions)
}
