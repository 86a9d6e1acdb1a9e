package interpret

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ansium/paperdigest/internal/config"
)

func testConfig(baseURL string) config.InterpreterConfig {
	return config.InterpreterConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "deepseek-chat",
		Timeout: 5 * time.Second,
	}
}

func chatReply(text string) string {
	quoted, _ := json.Marshal(text)
	return `{"choices":[{"message":{"role":"assistant","content":` + string(quoted) + `}}]}`
}

func TestInterpretNotConfigured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("server should not be called without an API key")
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.APIKey = ""
	c := NewHTTPClient(cfg)

	got, err := c.Interpret(context.Background(), "some content")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != NotConfiguredMessage {
		t.Errorf("expected not-configured message, got %q", got)
	}
}

func TestInterpretSuccess(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected Authorization header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatReply("This paper studies tidal locking.")))
	}))
	defer srv.Close()

	c := NewHTTPClient(testConfig(srv.URL))
	got, err := c.Interpret(context.Background(), "On the rotation of exoplanets")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "This paper studies tidal locking." {
		t.Errorf("unexpected interpretation %q", got)
	}

	if gotReq.Model != "deepseek-chat" {
		t.Errorf("unexpected model %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" {
		t.Errorf("first message role = %q", gotReq.Messages[0].Role)
	}
	if !strings.Contains(gotReq.Messages[1].Content, "On the rotation of exoplanets") {
		t.Error("user message does not carry the content")
	}
}

func TestInterpretTruncatesLongContent(t *testing.T) {
	var userPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		userPrompt = req.Messages[1].Content
		w.Write([]byte(chatReply("ok")))
	}))
	defer srv.Close()

	c := NewHTTPClient(testConfig(srv.URL))
	long := strings.Repeat("x", ContentCap+1000)
	if _, err := c.Interpret(context.Background(), long); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(userPrompt, truncationNotice) {
		t.Error("expected truncation notice in user prompt")
	}
	if strings.Contains(userPrompt, long) {
		t.Error("full content should not survive truncation")
	}
}

func TestInterpretServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(testConfig(srv.URL))
	got, err := c.Interpret(context.Background(), "content")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if got != "" {
		t.Errorf("expected empty text on failure, got %q", got)
	}
}

func TestInterpretTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewHTTPClient(testConfig(srv.URL))
	if _, err := c.Interpret(context.Background(), "content"); err == nil {
		t.Fatal("expected error when service is unreachable")
	}
}

func TestInterpretEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(testConfig(srv.URL))
	got, err := c.Interpret(context.Background(), "content")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != NoResultMessage {
		t.Errorf("expected no-result message, got %q", got)
	}
}

func TestInterpretMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewHTTPClient(testConfig(srv.URL))
	got, err := c.Interpret(context.Background(), "content")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != NoResultMessage {
		t.Errorf("expected no-result message, got %q", got)
	}
}
