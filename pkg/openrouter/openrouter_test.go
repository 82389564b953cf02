package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCompleterSendsSystemAndUserMessages(t *testing.T) {
	t.Parallel()

	var body struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var gotReferer string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotReferer = r.Header.Get("HTTP-Referer")
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"x","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  hello there "}}]}`)
	}))
	t.Cleanup(server.Close)

	maxTokens := 100
	c, err := NewCompleter(Config{
		BaseURL:            server.URL,
		APIKey:             "key",
		Model:              "openai/gpt-4o-mini",
		MaxCompletionToken: &maxTokens,
		SiteURL:            "https://trips.example",
	}, "be brief")
	if err != nil {
		t.Fatalf("NewCompleter() error = %v", err)
	}

	got, err := c.Complete(context.Background(), "plan it")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "hello there" {
		t.Fatalf("Complete() = %q, want %q", got, "hello there")
	}
	if body.Model != "openai/gpt-4o-mini" || len(body.Messages) != 2 {
		t.Fatalf("request body = %+v", body)
	}
	if body.Messages[0].Role != "system" || body.Messages[1].Content != "plan it" {
		t.Fatalf("messages = %+v", body.Messages)
	}
	if gotReferer != "https://trips.example" {
		t.Fatalf("HTTP-Referer = %q", gotReferer)
	}
}

func TestNewCompleterRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := NewCompleter(Config{Model: "m"}, ""); err == nil {
		t.Fatal("NewCompleter() error = nil, want error")
	}
}
