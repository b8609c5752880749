package app

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// HistoryStore persists all sessions as a single JSON document mapping
// session name to its ordered message list. Saves replace the whole
// document; a temp-file rename keeps the replace atomic for readers.
type HistoryStore struct {
	Path string
}

// DefaultSessionName is the fallback session registered when the persisted
// document cannot be read or parsed.
const DefaultSessionName = "default"

func NewHistoryStore(path string) *HistoryStore {
	if strings.TrimSpace(path) == "" {
		path = ".chat_history"
	}
	return &HistoryStore{Path: path}
}

// Load reads the persisted document. A missing file yields an empty mapping
// and no error. A read or parse failure yields a single empty "default"
// session together with a PersistenceError the caller should report; it is
// never fatal.
func (s *HistoryStore) Load() (map[string][]Message, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string][]Message{}, nil
		}
		return fallbackSessions(), &PersistenceError{Op: "load", Path: s.Path, Err: err}
	}
	var sessions map[string][]Message
	if err := json.Unmarshal(data, &sessions); err != nil {
		return fallbackSessions(), &PersistenceError{Op: "load", Path: s.Path, Err: err}
	}
	if sessions == nil {
		sessions = map[string][]Message{}
	}
	return sessions, nil
}

// Save serializes the full mapping, overwriting the prior document.
func (s *HistoryStore) Save(sessions map[string][]Message) error {
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "save", Path: s.Path, Err: err}
	}
	dir := filepath.Dir(s.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &PersistenceError{Op: "save", Path: s.Path, Err: err}
		}
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &PersistenceError{Op: "save", Path: s.Path, Err: err}
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		_ = os.Remove(tmp)
		return &PersistenceError{Op: "save", Path: s.Path, Err: err}
	}
	return nil
}

func fallbackSessions() map[string][]Message {
	return map[string][]Message{DefaultSessionName: {}}
}
