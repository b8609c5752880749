package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"llm-chat/internal/llm"
)

const defaultTemperature = 0.7

// Application is the conversation orchestrator: it takes one user message
// to completion (append, context build, model call, assistant append,
// auto-save) before the control loop accepts the next. The model client may
// be nil until /config supplies credentials.
type Application struct {
	cfg    Config
	chat   *ChatManager
	client llm.Client
	logger *Logger

	systemPrompt string
	streaming    bool
}

func NewApplication(cfg Config, chat *ChatManager, client llm.Client, logger *Logger) *Application {
	return &Application{
		cfg:          cfg,
		chat:         chat,
		client:       client,
		logger:       logger,
		systemPrompt: cfg.SystemPrompt,
		streaming:    cfg.Streaming,
	}
}

func (a *Application) Chat() *ChatManager { return a.chat }
func (a *Application) Config() Config     { return a.cfg }
func (a *Application) Logger() *Logger    { return a.logger }

func (a *Application) Configured() bool { return a.client != nil }

func (a *Application) Streaming() bool { return a.streaming }

// ToggleStreaming flips streaming mode and reports the new state.
func (a *Application) ToggleStreaming() bool {
	a.streaming = !a.streaming
	return a.streaming
}

func (a *Application) SystemPrompt() string { return a.systemPrompt }

func (a *Application) SetSystemPrompt(prompt string) {
	a.systemPrompt = prompt
}

// Send runs one user message through the model. The user message is always
// recorded first and is retained even when the request fails, so the
// transcript reflects that a request was made. The assistant message is
// appended only on success. sink receives streaming fragments; it is unused
// in non-streaming mode.
func (a *Application) Send(ctx context.Context, text string, sink FragmentSink) (string, error) {
	if a.client == nil {
		return "", ErrNotConfigured
	}

	a.chat.AddMessage(RoleUser, text)

	req := llm.Request{
		Messages:     a.chat.Context(),
		SystemPrompt: a.systemPrompt,
		Temperature:  defaultTemperature,
		MaxTokens:    a.cfg.MaxTokens,
	}

	var reply string
	var err error
	if a.streaming {
		reply, err = a.sendStreaming(ctx, req, sink)
	} else {
		reply, err = a.client.Complete(ctx, req)
	}
	if err != nil {
		a.logger.Error("chat request failed", map[string]interface{}{
			"session": a.chat.CurrentSession(),
			"error":   err.Error(),
		})
		return reply, err
	}

	a.chat.AddMessage(RoleAssistant, reply)
	a.maybeAutoSave()
	return reply, nil
}

func (a *Application) sendStreaming(ctx context.Context, req llm.Request, sink FragmentSink) (string, error) {
	stream, err := a.client.Stream(ctx, req)
	if err != nil {
		return "", err
	}
	return AggregateStream(stream, sink)
}

func (a *Application) maybeAutoSave() {
	every := a.cfg.AutoSaveEvery
	if every <= 0 {
		every = 4
	}
	if a.chat.Len()%every != 0 {
		return
	}
	if err := a.chat.Save(); err != nil {
		a.logger.Error("auto-save failed", map[string]interface{}{"error": err.Error()})
	}
}

// UpdateClientConfig applies new credentials at runtime, initializing the
// client if none was configured at startup. Empty fields keep current values.
func (a *Application) UpdateClientConfig(apiKey, baseURL, model string) {
	if c, ok := a.client.(*llm.OpenAIClient); ok {
		c.Configure(apiKey, baseURL, model)
		return
	}
	if strings.TrimSpace(apiKey) == "" {
		return
	}
	if baseURL == "" {
		baseURL = a.cfg.BaseURL
	}
	if model == "" {
		model = a.cfg.Model
	}
	a.client = llm.NewOpenAIClient(apiKey, baseURL, model, a.cfg.MaxTokens)
}

// ClientInfo describes the active client for /config display.
type ClientInfo struct {
	Configured bool
	APIKeyHint string
	BaseURL    string
	Model      string
}

func (a *Application) ClientInfo() ClientInfo {
	info := ClientInfo{Configured: a.client != nil}
	if c, ok := a.client.(*llm.OpenAIClient); ok {
		info.APIKeyHint = c.APIKeyHint()
		info.BaseURL = c.BaseURL()
		info.Model = c.Model()
	} else if info.Configured {
		info.Model = "mock"
	}
	return info
}

func (a *Application) ValidateConnection(ctx context.Context) bool {
	if a.client == nil {
		return false
	}
	return a.client.ValidateConnection(ctx)
}

// LoadInputFile reads a message body for the "@" input form. An empty path
// falls back to the configured default input file. The caller is responsible
// for confirmation before sending when confirm_before_send is set.
func (a *Application) LoadInputFile(path string) (content, resolved string, err error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = a.cfg.InputFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", path, fmt.Errorf("read %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), path, nil
}

// Close flushes history once more. Save failures are reported, not raised;
// in-memory state was authoritative for the whole run anyway.
func (a *Application) Close() {
	if err := a.chat.Save(); err != nil {
		a.logger.Error("final save failed", map[string]interface{}{"error": err.Error()})
	}
}

// IsServiceError reports whether err came from the remote model boundary.
func IsServiceError(err error) bool {
	var se *llm.ServiceError
	return errors.As(err, &se)
}
