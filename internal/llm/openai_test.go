package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

type capturedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	MaxTokens int64 `json:"max_tokens"`
	Stream    bool  `json:"stream"`
}

func completionBody(content string) string {
	return fmt.Sprintf(`{"id":"cmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`, content)
}

func TestCompleteSendsContextAndReturnsReply(t *testing.T) {
	var captured capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody("Hi there"))
	}))
	defer srv.Close()

	client := NewOpenAIClient("sk-test", srv.URL, "test-model", 64)
	reply, err := client.Complete(context.Background(), Request{
		Messages: []Message{
			{Role: "user", Content: "earlier"},
			{Role: "assistant", Content: "noted"},
			{Role: "user", Content: "hello"},
		},
		SystemPrompt: "be helpful",
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if reply != "Hi there" {
		t.Fatalf("reply = %q, want %q", reply, "Hi there")
	}

	if captured.Model != "test-model" {
		t.Errorf("model = %q", captured.Model)
	}
	if captured.MaxTokens != 64 {
		t.Errorf("max_tokens = %d, want 64", captured.MaxTokens)
	}
	if len(captured.Messages) != 4 {
		t.Fatalf("sent %d messages, want system + 3", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || captured.Messages[0].Content != "be helpful" {
		t.Errorf("first message = %+v, want the system prompt", captured.Messages[0])
	}
	if captured.Messages[3].Content != "hello" {
		t.Errorf("last message = %+v, want the newest user message", captured.Messages[3])
	}
}

func TestCompleteErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	client := NewOpenAIClient("sk-bad", srv.URL, "test-model", 64)
	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})

	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *ServiceError", err)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"cmpl-1","object":"chat.completion","choices":[]}`)
	}))
	defer srv.Close()

	client := NewOpenAIClient("sk-test", srv.URL, "test-model", 64)
	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})

	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *ServiceError", err)
	}
}

func TestStreamYieldsDeltas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, delta := range []string{"Hel", "lo, ", "world"} {
			fmt.Fprintf(w, "data: {\"id\":\"cmpl-1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", delta)
		}
		fmt.Fprint(w, "data: {\"id\":\"cmpl-1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	client := NewOpenAIClient("sk-test", srv.URL, "test-model", 64)
	stream, err := client.Stream(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "greet"}},
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	var fragments []string
	for {
		frag, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		fragments = append(fragments, frag)
	}

	if len(fragments) != 3 {
		t.Fatalf("fragments = %v, want 3 deltas", fragments)
	}
	joined := ""
	for _, f := range fragments {
		joined += f
	}
	if joined != "Hello, world" {
		t.Fatalf("joined = %q, want %q", joined, "Hello, world")
	}
}

func TestStreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"overloaded"}}`)
	}))
	defer srv.Close()

	client := NewOpenAIClient("sk-test", srv.URL, "test-model", 64)
	stream, err := client.Stream(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "greet"}},
	})
	if err == nil {
		// The failure may surface on the first read instead.
		_, err = stream.Recv()
	}

	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *ServiceError", err)
	}
}

func TestValidateConnection(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, completionBody("ok"))
		}))
		defer srv.Close()

		client := NewOpenAIClient("sk-test", srv.URL, "test-model", 64)
		if !client.ValidateConnection(context.Background()) {
			t.Fatal("ValidateConnection = false against a healthy endpoint")
		}
	})

	t.Run("failing", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewOpenAIClient("sk-test", srv.URL, "test-model", 64)
		if client.ValidateConnection(context.Background()) {
			t.Fatal("ValidateConnection = true against a failing endpoint")
		}
	})
}

func TestConfigure(t *testing.T) {
	client := NewOpenAIClient("sk-original", "", "", 0)
	if client.BaseURL() != DefaultBaseURL || client.Model() != DefaultModel {
		t.Fatalf("defaults not applied: %q %q", client.BaseURL(), client.Model())
	}

	client.Configure("", "https://other.example.com", "other-model")
	if client.BaseURL() != "https://other.example.com" || client.Model() != "other-model" {
		t.Fatalf("configure lost values: %q %q", client.BaseURL(), client.Model())
	}
	// An empty key keeps the existing one.
	if client.APIKeyHint() != "sk-origi..." {
		t.Fatalf("key hint = %q, want the original key retained", client.APIKeyHint())
	}
}

func TestAPIKeyHint(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"short", "s..."},
		{"sk-1234567890", "sk-12345..."},
	}
	for _, tt := range tests {
		client := NewOpenAIClient(tt.key, "", "", 0)
		if got := client.APIKeyHint(); got != tt.want {
			t.Errorf("APIKeyHint(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
