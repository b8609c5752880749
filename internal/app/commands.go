package app

import (
	"fmt"
	"strings"
)

type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdHelp
	CmdHistory
	CmdStats
	CmdClear
	CmdSystem
	CmdStream
	CmdSession
	CmdConfig
	CmdExit
)

type SessionOp int

const (
	SessionList SessionOp = iota
	SessionSwitch
	SessionNew
	SessionDelete
	SessionRename
	SessionBadUsage
)

// Command is a parsed slash command.
type Command struct {
	Kind CommandKind
	Raw  string
	// Arg is the remainder after the command token (/system text, session
	// sub-arguments before splitting).
	Arg string
	// Session sub-operation fields.
	Op    SessionOp
	Names []string
	// Usage holds the usage line for malformed session sub-commands.
	Usage string
}

// CommandResult is the structured outcome of executing a command. The core
// never renders; the Presenter decides how to display each field.
type CommandResult struct {
	Kind      CommandKind
	Info      string
	Err       error
	Stats     *SessionStats
	Sessions  []SessionInfo
	History   []Message
	System    string
	Streaming bool
	Client    *ClientInfo
	Exit      bool
}

// ParseCommand recognizes a slash command. The second return is false when
// the line is not a command at all (no "/" prefix).
func ParseCommand(line string) (Command, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return Command{}, false
	}

	head, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	cmd := Command{Raw: line, Arg: rest}

	switch strings.ToLower(head) {
	case "/help":
		cmd.Kind = CmdHelp
	case "/history":
		cmd.Kind = CmdHistory
	case "/stats":
		cmd.Kind = CmdStats
	case "/clear":
		cmd.Kind = CmdClear
	case "/system":
		cmd.Kind = CmdSystem
	case "/stream":
		cmd.Kind = CmdStream
	case "/config":
		cmd.Kind = CmdConfig
	case "/exit", "/quit":
		cmd.Kind = CmdExit
	case "/session":
		cmd.Kind = CmdSession
		parseSessionArgs(&cmd)
	default:
		cmd.Kind = CmdUnknown
	}
	return cmd, true
}

func parseSessionArgs(cmd *Command) {
	if cmd.Arg == "" {
		cmd.Op = SessionList
		return
	}
	parts := strings.Fields(cmd.Arg)
	sub, args := parts[0], parts[1:]

	switch strings.ToLower(sub) {
	case "list":
		cmd.Op = SessionList
	case "switch":
		if len(args) != 1 {
			cmd.Op = SessionBadUsage
			cmd.Usage = "usage: /session switch <name>"
			return
		}
		cmd.Op = SessionSwitch
		cmd.Names = args
	case "new":
		if len(args) > 1 {
			cmd.Op = SessionBadUsage
			cmd.Usage = "usage: /session new [name]"
			return
		}
		cmd.Op = SessionNew
		cmd.Names = args
	case "delete":
		if len(args) != 1 {
			cmd.Op = SessionBadUsage
			cmd.Usage = "usage: /session delete <name>"
			return
		}
		cmd.Op = SessionDelete
		cmd.Names = args
	case "rename":
		if len(args) != 2 {
			cmd.Op = SessionBadUsage
			cmd.Usage = "usage: /session rename <old> <new>"
			return
		}
		cmd.Op = SessionRename
		cmd.Names = args
	default:
		cmd.Op = SessionBadUsage
		cmd.Usage = fmt.Sprintf("unknown session subcommand: %s", sub)
	}
}

// Execute runs a parsed command against the application. Help and config
// carry no payload; the Presenter owns their interaction.
func (a *Application) Execute(cmd Command) CommandResult {
	res := CommandResult{Kind: cmd.Kind}

	switch cmd.Kind {
	case CmdHelp:
		// Rendered by the Presenter.

	case CmdHistory:
		res.History = a.chat.History()

	case CmdStats:
		stats := a.chat.Stats()
		res.Stats = &stats

	case CmdClear:
		if err := a.chat.ClearHistory(); err != nil {
			res.Err = err
			return res
		}
		res.Info = "Chat history cleared."

	case CmdSystem:
		if cmd.Arg == "" {
			res.System = a.systemPrompt
			return res
		}
		a.SetSystemPrompt(cmd.Arg)
		res.Info = "System prompt updated."

	case CmdStream:
		res.Streaming = a.ToggleStreaming()
		if res.Streaming {
			res.Info = "Streaming mode enabled"
		} else {
			res.Info = "Streaming mode disabled"
		}

	case CmdSession:
		return a.executeSession(cmd)

	case CmdConfig:
		info := a.ClientInfo()
		res.Client = &info

	case CmdExit:
		a.Close()
		res.Info = "Chat history saved."
		res.Exit = true

	default:
		res.Err = fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Raw)
	}
	return res
}

func (a *Application) executeSession(cmd Command) CommandResult {
	res := CommandResult{Kind: CmdSession}

	switch cmd.Op {
	case SessionList:
		res.Sessions = a.chat.ListSessions()

	case SessionSwitch:
		a.chat.SwitchSession(cmd.Names[0])
		res.Info = fmt.Sprintf("Switched to session: %s", cmd.Names[0])

	case SessionNew:
		name := ""
		if len(cmd.Names) == 1 {
			name = cmd.Names[0]
		} else {
			name = a.chat.NewSessionName()
		}
		a.chat.SwitchSession(name)
		res.Info = fmt.Sprintf("Switched to session: %s", name)

	case SessionDelete:
		if err := a.chat.DeleteSession(cmd.Names[0]); err != nil {
			res.Err = err
			return res
		}
		res.Info = fmt.Sprintf("Session %q deleted.", cmd.Names[0])

	case SessionRename:
		if err := a.chat.RenameSession(cmd.Names[0], cmd.Names[1]); err != nil {
			res.Err = err
			return res
		}
		res.Info = fmt.Sprintf("Session renamed from %q to %q.", cmd.Names[0], cmd.Names[1])

	case SessionBadUsage:
		res.Err = fmt.Errorf("%w: %s", ErrInvalidOperation, cmd.Usage)
	}
	return res
}
