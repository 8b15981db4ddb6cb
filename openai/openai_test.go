package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header: %q", got)
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("request body: %v", err)
		}
		if req.Model != "gpt-4o" || len(req.Messages) != 2 {
			t.Errorf("unexpected request: %+v", req)
		}
		if req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("unexpected message roles: %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "generated text"}},
			},
		})
	}))
	defer server.Close()

	client := NewClientWithEndpoint("test-key", "gpt-4o", server.URL)
	got, err := client.Generate(context.Background(), "system prompt", "user payload")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "generated text" {
		t.Errorf("unexpected response: %q", got)
	}
}

// The transport always carries a timeout so a stalled completion
// cannot hang a request whose context has no deadline.
func TestClientTimeoutSet(t *testing.T) {
	client := NewClient("test-key", "gpt-4o")
	if client.client.Timeout == 0 {
		t.Error("http client has no timeout")
	}
}

func TestGenerateNotConfigured(t *testing.T) {
	client := NewClient("", "gpt-4o")
	_, err := client.Generate(context.Background(), "system", "user")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestGenerateErrors(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "api error", status: http.StatusTooManyRequests, body: `{"error": "rate limit"}`},
		{name: "no choices", status: http.StatusOK, body: `{"choices": []}`},
		{name: "not json", status: http.StatusOK, body: "internal proxy error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := NewClientWithEndpoint("test-key", "gpt-4o", server.URL)
			if _, err := client.Generate(context.Background(), "system", "user"); err == nil {
				t.Error("expected error")
			}
		})
	}
}
