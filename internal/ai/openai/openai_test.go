package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Rakshana0506/ET-project-deployment/internal/ai"
)

func noDelay(int) time.Duration { return 0 }

func TestChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("expected /v1/chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected Authorization header %q", r.Header.Get("Authorization"))
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("unexpected model %q", req.Model)
		}
		if len(req.Messages) != 3 || req.Messages[0].Role != "system" || req.Messages[2].Role != ai.RoleAssistant {
			t.Errorf("unexpected messages %+v", req.Messages)
		}
		if req.ResponseFormat["type"] != "json_object" {
			t.Errorf("expected json_object response format, got %v", req.ResponseFormat)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  {\"ok\":true}  "}}]}`))
	}))
	defer server.Close()

	c := New("test-key", server.URL)
	out, err := c.Chat(context.Background(), "gpt-4o-mini", "be brief",
		[]ai.Message{{Role: ai.RoleUser, Content: "hi"}, {Role: ai.RoleAssistant, Content: "hello"}},
		ai.Options{JSON: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"ok":true}` {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestChatRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Retry-After", "5")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"finally"}}]}`))
	}))
	defer server.Close()

	c := New("test-key", server.URL)
	c.backoffFunc = noDelay
	out, err := c.Chat(context.Background(), "m", "", []ai.Message{{Role: ai.RoleUser, Content: "x"}}, ai.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "finally" || calls.Load() != 3 {
		t.Fatalf("expected success on third call, got %q after %d calls", out, calls.Load())
	}
}

func TestChatDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer server.Close()

	c := New("test-key", server.URL)
	c.backoffFunc = noDelay
	_, err := c.Chat(context.Background(), "m", "", nil, ai.Options{})
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401 error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("client errors should not be retried, got %d calls", calls.Load())
	}
}

func TestChatMissingKey(t *testing.T) {
	if _, err := New("", "").Chat(context.Background(), "m", "", nil, ai.Options{}); err == nil {
		t.Fatal("expected missing key error")
	}
}
