package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rakshana0506/ET-project-deployment/internal/ai"
)

func TestChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("expected /api/chat, got %s", r.URL.Path)
		}
		var payload struct {
			Model    string       `json:"model"`
			Messages []ai.Message `json:"messages"`
			Format   string       `json:"format"`
			Stream   bool         `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if payload.Format != "json" || payload.Stream {
			t.Errorf("unexpected format/stream %q/%v", payload.Format, payload.Stream)
		}
		if len(payload.Messages) != 2 || payload.Messages[0].Role != "system" {
			t.Errorf("unexpected messages %+v", payload.Messages)
		}
		w.Write([]byte(`{"message":{"role":"assistant","content":" verdict "}}`))
	}))
	defer server.Close()

	out, err := New(server.URL).Chat(context.Background(), "llama3", "sys",
		[]ai.Message{{Role: ai.RoleUser, Content: "hi"}}, ai.Options{JSON: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "verdict" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestChatStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()
	if _, err := New(server.URL).Chat(context.Background(), "llama3", "", nil, ai.Options{}); err == nil {
		t.Fatal("expected status error")
	}
}
