package llm

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
)

const (
	DefaultBaseURL = "https://api.deepseek.com"
	DefaultModel   = "deepseek-chat"
)

// OpenAIClient talks to any OpenAI-compatible chat-completion endpoint
// (OpenAI, DeepSeek, MiniMax, Kimi, ...) selected by base URL.
type OpenAIClient struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    openai.Client
}

func NewOpenAIClient(apiKey, baseURL, model string, maxTokens int) *OpenAIClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	c := &OpenAIClient{
		apiKey:    apiKey,
		baseURL:   baseURL,
		model:     model,
		maxTokens: maxTokens,
	}
	c.rebuild()
	return c
}

func (c *OpenAIClient) rebuild() {
	opts := []option.RequestOption{option.WithAPIKey(c.apiKey)}
	if c.baseURL != "" {
		opts = append(opts, option.WithBaseURL(c.baseURL))
	}
	c.client = openai.NewClient(opts...)
}

// Configure replaces any non-empty field and rebuilds the underlying client.
// Empty arguments keep the current values.
func (c *OpenAIClient) Configure(apiKey, baseURL, model string) {
	if strings.TrimSpace(apiKey) != "" {
		c.apiKey = apiKey
	}
	if strings.TrimSpace(baseURL) != "" {
		c.baseURL = baseURL
	}
	if strings.TrimSpace(model) != "" {
		c.model = model
	}
	c.rebuild()
}

func (c *OpenAIClient) BaseURL() string { return c.baseURL }
func (c *OpenAIClient) Model() string   { return c.model }

// APIKeyHint returns a redacted form of the configured key for display.
func (c *OpenAIClient) APIKeyHint() string {
	key := strings.TrimSpace(c.apiKey)
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return key[:1] + "..."
	}
	return key[:8] + "..."
}

func (c *OpenAIClient) params(req Request) openai.ChatCompletionNewParams {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		msgs = append(msgs, openai.SystemMessage(req.SystemPrompt))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case "assistant":
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		case "system":
			msgs = append(msgs, openai.SystemMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.model),
		Messages:  msgs,
		MaxTokens: openai.Int(int64(maxTokens)),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	return params
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, c.params(req))
	if err != nil {
		return "", &ServiceError{Err: err}
	}
	if len(completion.Choices) == 0 {
		return "", serviceErr("empty completion response")
	}
	return completion.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) Stream(ctx context.Context, req Request) (Stream, error) {
	stream := c.client.Chat.Completions.NewStreaming(ctx, c.params(req))
	if err := stream.Err(); err != nil {
		return nil, &ServiceError{Err: err}
	}
	return &sseStream{stream: stream}, nil
}

func (c *OpenAIClient) ValidateConnection(ctx context.Context) bool {
	_, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.model),
		Messages:  []openai.ChatCompletionMessageParamUnion{openai.UserMessage("Hello")},
		MaxTokens: openai.Int(10),
	})
	return err == nil
}

// sseStream adapts the SDK's SSE stream to the Stream interface, yielding
// only non-empty text deltas.
type sseStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
}

func (s *sseStream) Recv() (string, error) {
	for s.stream.Next() {
		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 {
			// Final chunk may only carry usage.
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
	if err := s.stream.Err(); err != nil && !errors.Is(err, io.EOF) {
		return "", &ServiceError{Err: err}
	}
	return "", io.EOF
}
