package qstash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPublishSendsAuthorizedJSON(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		fmt.Fprint(w, `{"messageId":"msg_1"}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{URL: server.URL, Token: "token"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	client.WithHTTPClient(server.Client())

	id, err := client.Publish(context.Background(), "travel-plans", map[string]string{"session_id": "s1"})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if id != "msg_1" {
		t.Fatalf("Publish() = %q, want msg_1", id)
	}
	if gotPath != "/v2/publish/travel-plans" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer token" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotBody["session_id"] != "s1" {
		t.Fatalf("body = %v", gotBody)
	}
}

func TestPublishSurfacesStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid token"}`)
	}))
	t.Cleanup(server.Close)

	client := MustNew(Config{URL: server.URL, Token: "bad"}).WithHTTPClient(server.Client())
	_, err := client.Publish(context.Background(), "travel-plans", struct{}{})
	if err == nil || !strings.Contains(err.Error(), "invalid token") {
		t.Fatalf("Publish() error = %v, want invalid token", err)
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{URL: "https://qstash.upstash.io"}); err == nil {
		t.Fatal("NewClient() error = nil, want error")
	}
}

func TestConfigEnabled(t *testing.T) {
	t.Parallel()

	if (Config{Token: "t"}).Enabled() {
		t.Fatal("Enabled() = true without destination")
	}
	if !(Config{Token: "t", Destination: "d"}).Enabled() {
		t.Fatal("Enabled() = false with token and destination")
	}
}
