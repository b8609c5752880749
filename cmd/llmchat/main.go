package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"llm-chat/internal/app"
	"llm-chat/internal/llm"
	"llm-chat/internal/tui"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

func main() {
	var (
		noTUI      bool
		configPath string
		mockMode   bool
	)

	root := &cobra.Command{
		Use:     "llmchat",
		Short:   "Interactive terminal chat with OpenAI-compatible LLM APIs",
		Long:    "llmchat is an interactive terminal chat client for OpenAI-compatible APIs.\n\nIt keeps named conversation sessions on disk, supports streaming responses,\nand offers slash commands for session and configuration management.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = app.DefaultConfigPath()
			}
			cfg, err := app.LoadConfig(configPath)
			if err != nil {
				return err
			}
			cfg = app.ApplyEnv(cfg)

			logger := app.NewLogger(openLogFile())

			store := app.NewHistoryStore(cfg.HistoryFile)
			chat := app.NewChatManager(store, cfg.MaxContextMsgs, cfg.MaxHistoryMsgs, logger)

			var client llm.Client
			switch {
			case mockMode:
				client = &llm.MockClient{FragmentDelay: 30 * time.Millisecond}
			case cfg.APIKey != "":
				client = llm.NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens)
			}

			application := app.NewApplication(cfg, chat, client, logger)
			defer application.Close()

			if noTUI {
				return runREPL(application)
			}
			return tui.Run(application)
		},
	}

	root.Flags().BoolVarP(&noTUI, "no-tui", "n", false, "Use a plain REPL instead of the TUI")
	root.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	root.Flags().BoolVarP(&mockMode, "mock", "m", false, "Use a mock model client (no network)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openLogFile returns the log destination. Logging is best-effort; if the
// file cannot be opened, log output is discarded.
func openLogFile() io.Writer {
	dir, err := os.UserConfigDir()
	if err != nil {
		return io.Discard
	}
	path := filepath.Join(dir, "llmchat", "llmchat.log")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return io.Discard
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return io.Discard
	}
	return f
}
