package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"llm-chat/internal/app"
)

// runREPL is the plain line-oriented fallback for terminals where the TUI
// is unwanted. Ctrl+C interrupts an in-flight request instead of exiting.
func runREPL(application *app.Application) error {
	fmt.Printf("llmchat v%s - type /help for commands, /exit to quit\n", version)
	fmt.Printf("session: %s\n\n", application.Chat().CurrentSession())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT)
	defer signal.Stop(sigs)

	reader := bufio.NewScanner(os.Stdin)
	reader.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !reader.Scan() {
			application.Close()
			fmt.Println("\nChat history saved. Goodbye!")
			return reader.Err()
		}
		line := strings.TrimSpace(reader.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "@") {
			content, path, err := application.LoadInputFile(strings.TrimPrefix(line, "@"))
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if application.Config().ConfirmBeforeSend {
				fmt.Printf("--- %s ---\n%s\n--- end ---\nSend this? (y/n): ", path, content)
				if !reader.Scan() || !strings.EqualFold(strings.TrimSpace(reader.Text()), "y") {
					fmt.Println("Cancelled")
					continue
				}
			}
			line = content
		} else if cmd, ok := app.ParseCommand(line); ok {
			if cmd.Kind == app.CmdConfig {
				configPrompt(application, reader)
				continue
			}
			res := application.Execute(cmd)
			printResult(res)
			if res.Exit {
				return nil
			}
			continue
		}

		sendREPL(application, sigs, line)
	}
}

func sendREPL(application *app.Application, sigs <-chan os.Signal, text string) {
	// Drop any interrupt that arrived while sitting at the prompt.
	select {
	case <-sigs:
	default:
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancel()
		case <-done:
		}
	}()

	fmt.Print("assistant: ")
	reply, err := application.Send(ctx, text, func(frag string) {
		fmt.Print(frag)
	})
	close(done)
	cancel()

	if application.Streaming() {
		fmt.Println()
	} else if err == nil {
		fmt.Println(reply)
	}
	if err != nil {
		fmt.Println("error:", err)
	}
}

func configPrompt(application *app.Application, reader *bufio.Scanner) {
	info := application.ClientInfo()

	ask := func(label, current string) string {
		fmt.Printf("%s [%s]: ", label, current)
		if !reader.Scan() {
			return ""
		}
		return strings.TrimSpace(reader.Text())
	}

	apiKey := ask("API key", info.APIKeyHint)
	baseURL := ask("Base URL", info.BaseURL)
	model := ask("Model", info.Model)

	application.UpdateClientConfig(apiKey, baseURL, model)
	info = application.ClientInfo()
	if !info.Configured {
		fmt.Println("No API key provided; client not configured.")
		return
	}
	fmt.Printf("Configuration updated: %s @ %s\n", info.Model, info.BaseURL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if application.ValidateConnection(ctx) {
		fmt.Println("Connection verified.")
	} else {
		fmt.Println("Connection check failed; verify the API key and base URL.")
	}
}

func printResult(res app.CommandResult) {
	if res.Err != nil {
		fmt.Println("error:", res.Err)
		return
	}

	switch res.Kind {
	case app.CmdHelp:
		printHelp()

	case app.CmdHistory:
		if len(res.History) == 0 {
			fmt.Println("No conversation history.")
			return
		}
		for i, msg := range res.History {
			fmt.Printf("[%d] %s (%s)\n%s\n", i+1, strings.ToUpper(string(msg.Role)), msg.Timestamp, msg.Content)
		}

	case app.CmdStats:
		s := res.Stats
		fmt.Printf("Session: %s\nTotal: %d  User: %d  Assistant: %d  System: %d\n",
			s.Session, s.Total, s.User, s.Assistant, s.System)

	case app.CmdSession:
		if res.Sessions != nil {
			fmt.Printf("%-32s %-10s %s\n", "NAME", "MESSAGES", "ACTIVE")
			for _, s := range res.Sessions {
				active := ""
				if s.Active {
					active = "*"
				}
				fmt.Printf("%-32s %-10d %s\n", s.Name, s.Messages, active)
			}
			return
		}
		fmt.Println(res.Info)

	case app.CmdSystem:
		if res.Info == "" {
			fmt.Println("Current system prompt:", res.System)
			return
		}
		fmt.Println(res.Info)

	default:
		if res.Info != "" {
			fmt.Println(res.Info)
		}
	}
}

func printHelp() {
	fmt.Print(`Commands:
  /help                      show this help message
  /history                   show conversation history
  /stats                     show conversation statistics
  /clear                     clear conversation history
  /system <msg>              set system prompt (no arg: show current)
  /stream                    toggle streaming mode
  /session list              list all sessions
  /session switch <name>     switch to a session
  /session new [name]        start a new session
  /session delete <name>     delete a session
  /session rename <old> <new> rename a session
  /config                    configure API key, base URL, model
  /exit, /quit               save history and quit

Input:
  @filename                  load message from file (shows content first)
  @                          load from the default input file
`)
}
