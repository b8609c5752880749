package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		ok   bool
		kind CommandKind
		arg  string
	}{
		{"hello there", false, CmdUnknown, ""},
		{"", false, CmdUnknown, ""},
		{"/help", true, CmdHelp, ""},
		{"/HELP", true, CmdHelp, ""},
		{"/history", true, CmdHistory, ""},
		{"/stats", true, CmdStats, ""},
		{"/clear", true, CmdClear, ""},
		{"/system", true, CmdSystem, ""},
		{"/system You are a pirate", true, CmdSystem, "You are a pirate"},
		{"/stream", true, CmdStream, ""},
		{"/config", true, CmdConfig, ""},
		{"/exit", true, CmdExit, ""},
		{"/quit", true, CmdExit, ""},
		{"/bogus", true, CmdUnknown, ""},
		{"  /help  ", true, CmdHelp, ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, ok := ParseCommand(tt.line)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if cmd.Kind != tt.kind {
				t.Errorf("kind = %d, want %d", cmd.Kind, tt.kind)
			}
			if cmd.Arg != tt.arg {
				t.Errorf("arg = %q, want %q", cmd.Arg, tt.arg)
			}
		})
	}
}

func TestParseSessionCommand(t *testing.T) {
	tests := []struct {
		line  string
		op    SessionOp
		names []string
	}{
		{"/session", SessionList, nil},
		{"/session list", SessionList, nil},
		{"/session switch work", SessionSwitch, []string{"work"}},
		{"/session switch", SessionBadUsage, nil},
		{"/session switch a b", SessionBadUsage, nil},
		{"/session new", SessionNew, nil},
		{"/session new work", SessionNew, []string{"work"}},
		{"/session new a b", SessionBadUsage, nil},
		{"/session delete work", SessionDelete, []string{"work"}},
		{"/session delete", SessionBadUsage, nil},
		{"/session rename old new", SessionRename, []string{"old", "new"}},
		{"/session rename old", SessionBadUsage, nil},
		{"/session frobnicate", SessionBadUsage, nil},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, ok := ParseCommand(tt.line)
			if !ok || cmd.Kind != CmdSession {
				t.Fatalf("parse = (%+v, %v), want a session command", cmd, ok)
			}
			if cmd.Op != tt.op {
				t.Fatalf("op = %d, want %d", cmd.Op, tt.op)
			}
			if len(cmd.Names) != len(tt.names) {
				t.Fatalf("names = %v, want %v", cmd.Names, tt.names)
			}
			for i := range tt.names {
				if cmd.Names[i] != tt.names[i] {
					t.Fatalf("names = %v, want %v", cmd.Names, tt.names)
				}
			}
			if tt.op == SessionBadUsage && cmd.Usage == "" {
				t.Error("bad usage without a usage line")
			}
		})
	}
}

func execLine(t *testing.T, a *Application, line string) CommandResult {
	t.Helper()
	cmd, ok := ParseCommand(line)
	if !ok {
		t.Fatalf("%q did not parse as a command", line)
	}
	return a.Execute(cmd)
}

func TestExecuteBasicCommands(t *testing.T) {
	a := newTestApplication(t, nil, Config{Streaming: true, SystemPrompt: "initial"})
	a.Chat().AddMessage(RoleUser, "q")
	a.Chat().AddMessage(RoleAssistant, "a")

	t.Run("history", func(t *testing.T) {
		res := execLine(t, a, "/history")
		if res.Err != nil || len(res.History) != 2 {
			t.Fatalf("history = %+v (%v), want 2 entries", res.History, res.Err)
		}
	})

	t.Run("stats", func(t *testing.T) {
		res := execLine(t, a, "/stats")
		if res.Err != nil || res.Stats == nil {
			t.Fatalf("stats = %+v (%v)", res.Stats, res.Err)
		}
		if res.Stats.Total != 2 || res.Stats.User != 1 || res.Stats.Assistant != 1 {
			t.Fatalf("stats = %+v", res.Stats)
		}
	})

	t.Run("system show", func(t *testing.T) {
		res := execLine(t, a, "/system")
		if res.System != "initial" || res.Info != "" {
			t.Fatalf("res = %+v, want current prompt echoed", res)
		}
	})

	t.Run("system set", func(t *testing.T) {
		res := execLine(t, a, "/system be terse")
		if res.Err != nil || a.SystemPrompt() != "be terse" {
			t.Fatalf("prompt = %q (%v)", a.SystemPrompt(), res.Err)
		}
	})

	t.Run("stream toggle", func(t *testing.T) {
		res := execLine(t, a, "/stream")
		if res.Streaming || !strings.Contains(res.Info, "disabled") {
			t.Fatalf("res = %+v, want streaming disabled", res)
		}
		res = execLine(t, a, "/stream")
		if !res.Streaming || !strings.Contains(res.Info, "enabled") {
			t.Fatalf("res = %+v, want streaming enabled", res)
		}
	})

	t.Run("clear", func(t *testing.T) {
		res := execLine(t, a, "/clear")
		if res.Err != nil || a.Chat().Len() != 0 {
			t.Fatalf("len = %d (%v), want 0", a.Chat().Len(), res.Err)
		}
	})

	t.Run("config", func(t *testing.T) {
		res := execLine(t, a, "/config")
		if res.Client == nil || res.Client.Configured {
			t.Fatalf("client info = %+v, want unconfigured", res.Client)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		res := execLine(t, a, "/bogus")
		if !errors.Is(res.Err, ErrUnknownCommand) {
			t.Fatalf("err = %v, want ErrUnknownCommand", res.Err)
		}
	})
}

func TestExecuteSessionCommands(t *testing.T) {
	a := newTestApplication(t, nil, Config{})
	start := a.Chat().CurrentSession()

	t.Run("new with name", func(t *testing.T) {
		res := execLine(t, a, "/session new work")
		if res.Err != nil || a.Chat().CurrentSession() != "work" {
			t.Fatalf("current = %q (%v), want work", a.Chat().CurrentSession(), res.Err)
		}
	})

	t.Run("new generates name", func(t *testing.T) {
		res := execLine(t, a, "/session new")
		if res.Err != nil {
			t.Fatalf("err = %v", res.Err)
		}
		if !strings.HasPrefix(a.Chat().CurrentSession(), "session_") {
			t.Fatalf("current = %q, want generated session_ name", a.Chat().CurrentSession())
		}
	})

	t.Run("switch back", func(t *testing.T) {
		res := execLine(t, a, "/session switch "+start)
		if res.Err != nil || a.Chat().CurrentSession() != start {
			t.Fatalf("current = %q (%v), want %q", a.Chat().CurrentSession(), res.Err, start)
		}
	})

	t.Run("list", func(t *testing.T) {
		res := execLine(t, a, "/session list")
		if res.Err != nil || len(res.Sessions) < 3 {
			t.Fatalf("sessions = %+v (%v), want at least 3", res.Sessions, res.Err)
		}
	})

	t.Run("delete active rejected", func(t *testing.T) {
		res := execLine(t, a, "/session delete "+start)
		if !errors.Is(res.Err, ErrInvalidOperation) {
			t.Fatalf("err = %v, want ErrInvalidOperation", res.Err)
		}
	})

	t.Run("delete inactive", func(t *testing.T) {
		res := execLine(t, a, "/session delete work")
		if res.Err != nil {
			t.Fatalf("err = %v", res.Err)
		}
	})

	t.Run("rename", func(t *testing.T) {
		res := execLine(t, a, "/session rename "+start+" primary")
		if res.Err != nil || a.Chat().CurrentSession() != "primary" {
			t.Fatalf("current = %q (%v), want primary", a.Chat().CurrentSession(), res.Err)
		}
	})

	t.Run("bad usage", func(t *testing.T) {
		res := execLine(t, a, "/session switch")
		if !errors.Is(res.Err, ErrInvalidOperation) {
			t.Fatalf("err = %v, want ErrInvalidOperation", res.Err)
		}
		if !strings.Contains(res.Err.Error(), "usage:") {
			t.Fatalf("err = %v, want a usage line", res.Err)
		}
	})
}

func TestExecuteExitSavesAndFlagsExit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	a := newTestApplication(t, nil, Config{HistoryFile: path})
	a.Chat().AddMessage(RoleUser, "bye")

	res := execLine(t, a, "/exit")
	if !res.Exit {
		t.Fatal("exit flag not set")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("history not saved on exit: %v", err)
	}

	res = execLine(t, a, "/quit")
	if !res.Exit {
		t.Fatal("/quit should behave like /exit")
	}
}
