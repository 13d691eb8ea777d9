package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func chatCompletionBody(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "llama3-70b-8192",
		"choices": []map[string]any{
			{
				"index": 0,
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]int{
			"prompt_tokens":     10,
			"completion_tokens": 8,
			"total_tokens":      18,
		},
	}
}

func TestOpenAIClient_Chat(t *testing.T) {
	t.Run("successful chat", func(t *testing.T) {
		var payload map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/chat/completions" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if r.Method != http.MethodPost {
				t.Errorf("unexpected method: %s", r.Method)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
				t.Errorf("unexpected authorization: %s", auth)
			}
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, &payload); err != nil {
				t.Errorf("unmarshal body: %v", err)
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(chatCompletionBody("Photosynthesis feeds the biosphere."))
		}))
		defer server.Close()

		client := NewOpenAIClient(OpenAIConfig{
			APIKey:  "test-key",
			BaseURL: server.URL,
		})

		temp := 0.0
		req := UserPrompt("Describe photosynthesis.")
		req.Temperature = &temp
		req.MaxTokens = 500

		result, err := client.Chat(context.Background(), req)
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if result.Content != "Photosynthesis feeds the biosphere." {
			t.Errorf("Content = %q", result.Content)
		}
		if result.TotalTokens != 18 {
			t.Errorf("TotalTokens = %d, want 18", result.TotalTokens)
		}
		if result.Provider != GroqName {
			t.Errorf("Provider = %q, want %q", result.Provider, GroqName)
		}
		if result.RequestID == "" {
			t.Error("expected generated request ID")
		}

		if got, _ := payload["model"].(string); got != GroqDefaultModel {
			t.Errorf("model = %q, want %q", got, GroqDefaultModel)
		}
		if got, ok := payload["temperature"].(float64); !ok || got != 0 {
			t.Errorf("temperature = %v, want explicit 0", payload["temperature"])
		}
		if got, _ := payload["max_tokens"].(float64); got != 500 {
			t.Errorf("max_tokens = %v, want 500", payload["max_tokens"])
		}
	})

	t.Run("omits temperature when unset", func(t *testing.T) {
		var payload map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			json.Unmarshal(body, &payload)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(chatCompletionBody("ok"))
		}))
		defer server.Close()

		client := NewOpenAIClient(OpenAIConfig{APIKey: "k", BaseURL: server.URL})
		if _, err := client.Chat(context.Background(), UserPrompt("hi")); err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if _, ok := payload["temperature"]; ok {
			t.Errorf("expected temperature to be omitted, got %v", payload["temperature"])
		}
	})

	t.Run("server error maps to StatusError", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
		}))
		defer server.Close()

		client := NewOpenAIClient(OpenAIConfig{APIKey: "k", BaseURL: server.URL})
		_, err := client.Chat(context.Background(), UserPrompt("hi"))
		if err == nil {
			t.Fatal("expected error")
		}
		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("expected *StatusError, got %T: %v", err, err)
		}
		if se.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("StatusCode = %d", se.StatusCode)
		}
		if !se.Retryable() {
			t.Error("expected 503 to be retryable")
		}
		if calls != 1 {
			t.Errorf("expected exactly one request (SDK retries disabled), got %d", calls)
		}
	})

	t.Run("empty choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := chatCompletionBody("")
			body["choices"] = []map[string]any{}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(body)
		}))
		defer server.Close()

		client := NewOpenAIClient(OpenAIConfig{APIKey: "k", BaseURL: server.URL})
		_, err := client.Chat(context.Background(), UserPrompt("hi"))
		if !errors.Is(err, ErrEmptyResponse) {
			t.Fatalf("expected ErrEmptyResponse, got %v", err)
		}
	})
}

func TestOpenAIClient_ChatStream(t *testing.T) {
	fragments := []string{"The ", "answer ", "", "is 42."}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if stream, _ := req["stream"].(bool); !stream {
			t.Errorf("expected stream=true in request")
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for _, f := range fragments {
			chunk := map[string]any{
				"id":      "chatcmpl-stream",
				"object":  "chat.completion.chunk",
				"created": 1700000000,
				"model":   "llama3-70b-8192",
				"choices": []map[string]any{
					{"index": 0, "delta": map[string]any{"content": f}},
				},
			}
			b, _ := json.Marshal(chunk)
			fmt.Fprintf(w, "data: %s\n\n", b)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIConfig{APIKey: "k", BaseURL: server.URL})
	stream, err := client.ChatStream(context.Background(), UserPrompt("count"))
	if err != nil {
		t.Fatalf("ChatStream() error = %v", err)
	}
	defer stream.Close()

	var got []string
	for stream.Next() {
		got = append(got, stream.Current())
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if strings.Join(got, "") != "The answer is 42." {
		t.Errorf("joined fragments = %q", strings.Join(got, ""))
	}
	if len(got) != len(fragments) {
		t.Errorf("got %d fragments, want %d", len(got), len(fragments))
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"3", true},
		{"garbage", false},
		{"-1", false},
	}
	for _, tt := range tests {
		got := parseRetryAfter(tt.in)
		if (got > 0) != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v", tt.in, got)
		}
	}
}

func TestOpenAIClient_Integration(t *testing.T) {
	cfg := LoadTestConfig()
	if !cfg.HasGroq() {
		t.Skip("GROQ_API_KEY not set - skipping integration test")
	}

	client := cfg.NewGroqClient()

	t.Run("simple chat", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		req := UserPrompt("Reply with exactly the word: pong")
		req.MaxTokens = 10
		result, err := client.Chat(ctx, req)
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if !strings.Contains(strings.ToLower(result.Content), "pong") {
			t.Errorf("Content = %q", result.Content)
		}
	})

	t.Run("stream", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		req := UserPrompt("Count from 1 to 5, separated by spaces.")
		req.MaxTokens = 30
		stream, err := client.ChatStream(ctx, req)
		if err != nil {
			t.Fatalf("ChatStream() error = %v", err)
		}
		defer stream.Close()

		var b strings.Builder
		for stream.Next() {
			b.WriteString(stream.Current())
		}
		if err := stream.Err(); err != nil {
			t.Fatalf("stream error = %v", err)
		}
		if !strings.Contains(b.String(), "3") {
			t.Errorf("streamed %q", b.String())
		}
	})
}
