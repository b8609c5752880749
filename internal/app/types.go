package app

import "time"

// Role is the closed set of message authors. Free-form strings are rejected
// at construction so an invalid role never reaches storage or the API.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleAssistant, RoleSystem:
		return Role(s), true
	}
	return "", false
}

// TimestampLayout is the persisted timestamp format (ISO-8601).
const TimestampLayout = time.RFC3339

// Message is one immutable transcript entry. Ordering is defined by append
// order within its session.
type Message struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().Format(TimestampLayout),
	}
}

// SessionInfo is a read-only listing entry for one session.
type SessionInfo struct {
	Name     string
	Messages int
	Active   bool
}

// SessionStats are per-session role tallies.
type SessionStats struct {
	Session   string
	Total     int
	User      int
	Assistant int
	System    int
}
