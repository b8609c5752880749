package llm

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// MockClient is an offline stand-in used when no API key is configured and
// in tests. Replies are deterministic and stream in small fragments.
type MockClient struct {
	// FragmentDelay paces streamed fragments so the live display is visible.
	// Zero means no pacing (tests).
	FragmentDelay time.Duration
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (c *MockClient) reply(req Request) string {
	last := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			last = strings.TrimSpace(req.Messages[i].Content)
			break
		}
	}
	if last == "" {
		return "Hello! I am a mock model. Configure an API key to talk to a real one."
	}
	return fmt.Sprintf("[mock] You said: %s\n\nThis is a canned reply produced without a network call. Use /config to point the client at a real endpoint.", last)
}

func (c *MockClient) Complete(_ context.Context, req Request) (string, error) {
	return c.reply(req), nil
}

func (c *MockClient) Stream(_ context.Context, req Request) (Stream, error) {
	return &mockStream{
		fragments: splitFragments(c.reply(req)),
		delay:     c.FragmentDelay,
	}, nil
}

func (c *MockClient) ValidateConnection(context.Context) bool { return true }

type mockStream struct {
	fragments []string
	pos       int
	delay     time.Duration
}

func (s *mockStream) Recv() (string, error) {
	if s.pos >= len(s.fragments) {
		return "", io.EOF
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	frag := s.fragments[s.pos]
	s.pos++
	return frag, nil
}

// splitFragments cuts text into word-sized fragments, keeping the separators
// so concatenation reproduces the input exactly.
func splitFragments(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if r == ' ' || r == '\n' {
			out = append(out, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}
