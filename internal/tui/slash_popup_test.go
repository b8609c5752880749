package tui

import (
	"testing"

	"llm-chat/internal/app"

	"github.com/charmbracelet/bubbles/textarea"
)

func popupModel(value string) *Model {
	m := &Model{input: textarea.New()}
	m.input.SetValue(value)
	return m
}

func popupLabels(items []slashPopupItem) []string {
	labels := make([]string, 0, len(items))
	for _, item := range items {
		labels = append(labels, item.Label)
	}
	return labels
}

func TestSlashPopupState(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"plain text", "hello", nil},
		{"empty", "", nil},
		{"bare slash lists everything", "/", []string{"/help", "/history", "/stats", "/clear", "/system", "/stream", "/session", "/config", "/exit"}},
		{"prefix filter", "/s", []string{"/stats", "/system", "/stream", "/session"}},
		{"narrow prefix", "/se", []string{"/session"}},
		{"no match", "/zzz", nil},
		{"session subcommands", "/session ", []string{"list", "switch", "new", "delete", "rename"}},
		{"session sub prefix", "/session s", []string{"switch"}},
		{"complete sub with arg", "/session switch work", nil},
		{"multiline suppressed", "/he\nllo", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, items := popupModel(tt.value).slashPopupState()
			got := popupLabels(items)
			if len(got) != len(tt.want) {
				t.Fatalf("labels = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("labels = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSlashPopupSuppressedWhileBusy(t *testing.T) {
	m := popupModel("/")
	m.loading = true
	if _, items := m.slashPopupState(); items != nil {
		t.Fatal("popup offered while a request is in flight")
	}

	m = popupModel("/")
	m.pending = &pendingFile{}
	if _, items := m.slashPopupState(); items != nil {
		t.Fatal("popup offered during the file confirm prompt")
	}

	m = popupModel("/")
	m.form = newConfigForm(app.ClientInfo{})
	if _, items := m.slashPopupState(); items != nil {
		t.Fatal("popup offered while the config form is open")
	}
}

func TestSlashPopupSelectionResetsOnKeyChange(t *testing.T) {
	m := popupModel("/s")
	m.updateSlashPopup()
	m.slashIndex = 2

	m.input.SetValue("/se")
	m.updateSlashPopup()
	if m.slashIndex != 0 {
		t.Fatalf("index = %d, want reset to 0 after the candidate set changed", m.slashIndex)
	}
}
