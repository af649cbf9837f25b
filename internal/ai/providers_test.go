package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIProviderRequest(t *testing.T) {
	var got map[string]any
	var auth, title string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		title = r.Header.Get("X-Title")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"done"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenRouterProvider(srv.URL+"/v1/", "key-1", "gpt-test", "https://portal.example.com", "Portal")
	out, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, Options{Temperature: 0.3, MaxTokens: 2500, JSON: true})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if out != "done" {
		t.Fatalf("out = %q", out)
	}
	if auth != "Bearer key-1" || title != "Portal" {
		t.Fatalf("unexpected headers auth=%q title=%q", auth, title)
	}
	if got["model"] != "gpt-test" || got["temperature"] != 0.3 || got["max_tokens"] != float64(2500) {
		t.Fatalf("unexpected body: %v", got)
	}
	rf, _ := got["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", got["response_format"])
	}
}

func TestOpenAIProviderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("rate limited"))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL, "key", "m")
	_, err := p.Chat(context.Background(), nil, Options{})
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

func TestOpenAIProviderRequiresKey(t *testing.T) {
	p := NewOpenAIProvider("http://unused", "", "m")
	if _, err := p.Chat(context.Background(), nil, Options{}); err == nil {
		t.Fatalf("expected missing key error")
	}
}

func TestOllamaProviderRequest(t *testing.T) {
	var got ollamaChatReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"pong"}}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	out, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "ping"}}, Options{Temperature: 0.8, MaxTokens: 400, JSON: true})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if out != "pong" {
		t.Fatalf("out = %q", out)
	}
	if got.Format != "json" || got.Options == nil || got.Options.NumPredict != 400 || got.Stream {
		t.Fatalf("unexpected request: %+v", got)
	}
}
