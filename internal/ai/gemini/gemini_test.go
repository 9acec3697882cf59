package gemini

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Rakshana0506/ET-project-deployment/internal/ai"
)

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty API key")
	}
}

func TestChat(t *testing.T) {
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "models/gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":" {\"scores\":{}} "}]}}]}`))
	}))
	defer server.Close()

	c, err := NewWithBaseURL(context.Background(), "test-key", server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	out, err := c.Chat(context.Background(), "", "judge fairly",
		[]ai.Message{{Role: ai.RoleUser, Content: "transcript"}}, ai.Options{JSON: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"scores":{}}` {
		t.Fatalf("unexpected output %q", out)
	}
	for _, want := range []string{"judge fairly", "transcript", "application/json"} {
		if !strings.Contains(body, want) {
			t.Fatalf("request body missing %q: %s", want, body)
		}
	}
}
