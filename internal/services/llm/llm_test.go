package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/genai"

	"mediabuddy/internal/config"
)

func chatResponse(content string) map[string]any {
	return map[string]any{
		"id":      "cmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "demo-model",
		"choices": []any{
			map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
	}
}

func TestOpenRouterComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Errorf("unexpected auth header %q", got)
		}
		if got := r.Header.Get("X-Title"); got != "mediabuddy" {
			t.Errorf("unexpected title header %q", got)
		}
		var payload chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(payload.Messages) != 2 || payload.Messages[0].Role != "system" {
			t.Errorf("unexpected messages %+v", payload.Messages)
		}
		if payload.MaxTokens != 120 {
			t.Errorf("max_tokens = %d, want 120", payload.MaxTokens)
		}
		_ = json.NewEncoder(w).Encode(chatResponse("  generated text  "))
	}))
	defer server.Close()

	backend := NewOpenRouter(config.LLMConfig{APIKey: "test", BaseURL: server.URL, Model: "demo-model", Title: "mediabuddy"})
	resp, err := backend.Complete(context.Background(), Completion{System: "sys", Prompt: "user", MaxOutputTokens: 120})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if resp.Text != "generated text" {
		t.Fatalf("Text = %q", resp.Text)
	}
	if resp.FinishReason != "stop" {
		t.Fatalf("FinishReason = %q", resp.FinishReason)
	}
}

func TestOpenRouterClassifiesStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		retryAfter string
		transient  bool
		wantDelay  time.Duration
	}{
		{"rate limited", http.StatusTooManyRequests, "2", true, 2 * time.Second},
		{"server error", http.StatusBadGateway, "", true, 0},
		{"timeout", http.StatusRequestTimeout, "", true, 0},
		{"unauthorized", http.StatusUnauthorized, "", false, 0},
		{"bad request", http.StatusBadRequest, "", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `{"error":{"message":"nope"}}`)
			}))
			defer server.Close()

			backend := NewOpenRouter(config.LLMConfig{APIKey: "test", BaseURL: server.URL, Model: "m"})
			_, err := backend.Complete(context.Background(), Completion{Prompt: "hi"})
			if err == nil {
				t.Fatal("expected error")
			}
			var failure *Failure
			if !errors.As(err, &failure) {
				t.Fatalf("expected *Failure, got %T", err)
			}
			if failure.StatusCode != tt.status {
				t.Fatalf("StatusCode = %d, want %d", failure.StatusCode, tt.status)
			}
			if IsTransient(err) != tt.transient {
				t.Fatalf("IsTransient = %v, want %v", IsTransient(err), tt.transient)
			}
			delay, ok := RetryAfterHint(err)
			if ok != (tt.wantDelay > 0) || delay != tt.wantDelay {
				t.Fatalf("RetryAfterHint = %v, %v; want %v", delay, ok, tt.wantDelay)
			}
		})
	}
}

func TestOpenRouterEmptyContentIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse("   "))
	}))
	defer server.Close()

	backend := NewOpenRouter(config.LLMConfig{APIKey: "test", BaseURL: server.URL, Model: "m"})
	_, err := backend.Complete(context.Background(), Completion{Prompt: "hi"})
	if !IsTransient(err) {
		t.Fatalf("expected transient failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "empty content") {
		t.Fatalf("expected empty content detail, got %v", err)
	}
}

func TestOpenRouterMalformedBodyIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>gateway</html>")
	}))
	defer server.Close()

	backend := NewOpenRouter(config.LLMConfig{APIKey: "test", BaseURL: server.URL, Model: "m"})
	_, err := backend.Complete(context.Background(), Completion{Prompt: "hi"})
	if !IsTransient(err) {
		t.Fatalf("expected transient failure, got %v", err)
	}
}

func TestOpenRouterAPIErrorIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"error":{"message":"model not found"}}`)
	}))
	defer server.Close()

	backend := NewOpenRouter(config.LLMConfig{APIKey: "test", BaseURL: server.URL, Model: "m"})
	_, err := backend.Complete(context.Background(), Completion{Prompt: "hi"})
	if err == nil || IsTransient(err) {
		t.Fatalf("expected permanent failure, got %v", err)
	}
}

func TestOpenRouterClientTimeoutIsTransient(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	backend := NewOpenRouter(config.LLMConfig{APIKey: "test", BaseURL: server.URL, Model: "m"},
		WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	_, err := backend.Complete(context.Background(), Completion{Prompt: "hi"})
	if !IsTransient(err) {
		t.Fatalf("expected transient timeout failure, got %v", err)
	}
}

func TestCallerCancellationIsNotClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse("late"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	backend := NewOpenRouter(config.LLMConfig{APIKey: "test", BaseURL: server.URL, Model: "m"})
	_, err := backend.Complete(ctx, Completion{Prompt: "hi"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var failure *Failure
	if errors.As(err, &failure) {
		t.Fatalf("cancellation should not be a Failure: %v", err)
	}
}

func TestOpenRouterHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse("OK"))
	}))
	defer server.Close()

	backend := NewOpenRouter(config.LLMConfig{APIKey: "test", BaseURL: server.URL, Model: "m"})
	if err := backend.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestOpenAIComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse("sdk text"))
	}))
	defer server.Close()

	backend := NewOpenAI(config.LLMConfig{APIKey: "test", BaseURL: server.URL, Model: "gpt-test"})
	resp, err := backend.Complete(context.Background(), Completion{System: "sys", Prompt: "hi", MaxOutputTokens: 50})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if resp.Text != "sdk text" {
		t.Fatalf("Text = %q", resp.Text)
	}
}

func TestOpenAIStatusClassification(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer server.Close()

	backend := NewOpenAI(config.LLMConfig{APIKey: "bad", BaseURL: server.URL, Model: "gpt-test"})
	_, err := backend.Complete(context.Background(), Completion{Prompt: "hi"})
	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *Failure, got %v", err)
	}
	if failure.Transient || failure.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected classification %+v", failure)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("SDK retried: %d calls", n)
	}
}

func TestNewBackendSelectsProvider(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{config.ProviderOpenRouter, "openrouter:m"},
		{config.ProviderOpenAI, "openai:m"},
		{config.ProviderGemini, "gemini:m"},
	}
	for _, tt := range tests {
		backend, err := NewBackend(context.Background(), config.LLMConfig{Provider: tt.provider, APIKey: "k", Model: "m"})
		if err != nil {
			t.Fatalf("NewBackend(%s) returned error: %v", tt.provider, err)
		}
		if backend.Name() != tt.want {
			t.Fatalf("Name() = %q, want %q", backend.Name(), tt.want)
		}
	}
	if _, err := NewBackend(context.Background(), config.LLMConfig{Provider: "nope", APIKey: "k"}); err == nil {
		t.Fatal("expected unsupported provider error")
	}
	if _, err := NewBackend(context.Background(), config.LLMConfig{Provider: config.ProviderOpenAI}); err == nil {
		t.Fatal("expected missing api key error")
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("3"); !ok || d != 3*time.Second {
		t.Fatalf("parseRetryAfter(3) = %v, %v", d, ok)
	}
	if _, ok := parseRetryAfter("-1"); ok {
		t.Fatal("negative Retry-After accepted")
	}
	if _, ok := parseRetryAfter("soon"); ok {
		t.Fatal("garbage Retry-After accepted")
	}
	future := time.Now().Add(10 * time.Second).UTC().Format(http.TimeFormat)
	if d, ok := parseRetryAfter(future); !ok || d <= 0 {
		t.Fatalf("parseRetryAfter(date) = %v, %v", d, ok)
	}
}

func newGeminiTestBackend(t *testing.T, status int, body string) (*Gemini, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if !strings.Contains(r.URL.Path, "gemini-test:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)

	backend, err := NewGemini(context.Background(), config.LLMConfig{APIKey: "test", BaseURL: server.URL, Model: "gemini-test"})
	if err != nil {
		t.Fatalf("NewGemini returned error: %v", err)
	}
	return backend, &calls
}

func TestGeminiComplete(t *testing.T) {
	backend, _ := newGeminiTestBackend(t, http.StatusOK,
		`{"candidates":[{"finishReason":"STOP","content":{"role":"model","parts":[{"text":"genai text"}]}}]}`)

	resp, err := backend.Complete(context.Background(), Completion{System: "sys", Prompt: "hi", MaxOutputTokens: 50})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if resp.Text != "genai text" || resp.FinishReason != "STOP" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestGeminiStatusClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		transient bool
		code      int
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`, true, 429},
		{"server error", http.StatusServiceUnavailable, `{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`, true, 503},
		{"bad key", http.StatusUnauthorized, `{"error":{"code":401,"message":"API key not valid","status":"UNAUTHENTICATED"}}`, false, 401},
		{"bad request", http.StatusBadRequest, `{"error":{"code":400,"message":"invalid argument","status":"INVALID_ARGUMENT"}}`, false, 400},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, true, 0},
		{"blocked prompt", http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, calls := newGeminiTestBackend(t, tt.status, tt.body)
			_, err := backend.Complete(context.Background(), Completion{Prompt: "hi"})
			var failure *Failure
			if !errors.As(err, &failure) {
				t.Fatalf("expected *Failure, got %v", err)
			}
			if failure.Transient != tt.transient || failure.StatusCode != tt.code {
				t.Fatalf("unexpected classification %+v", failure)
			}
			if IsTransient(err) != tt.transient {
				t.Fatalf("IsTransient = %v, want %v", IsTransient(err), tt.transient)
			}
			if n := calls.Load(); n != 1 {
				t.Fatalf("expected one request, got %d", n)
			}
		})
	}
}

func TestTranslateGeminiError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"value", genai.APIError{Code: 429, Message: "quota"}, 429, "quota"},
		{"pointer", &genai.APIError{Code: 500, Message: "internal"}, 500, "internal"},
		{"wrapped value", fmt.Errorf("call: %w", genai.APIError{Code: 403, Message: "denied"}), 403, "denied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			translated := translateGeminiError(tt.err)
			var statusErr *httpStatusError
			if !errors.As(translated, &statusErr) {
				t.Fatalf("expected status error, got %v", translated)
			}
			if statusErr.StatusCode != tt.code {
				t.Fatalf("StatusCode = %d, want %d", statusErr.StatusCode, tt.code)
			}
			if statusErr.Body != tt.message {
				t.Fatalf("Body = %q, want %q", statusErr.Body, tt.message)
			}
			if !strings.Contains(translated.Error(), tt.err.Error()) {
				t.Fatalf("translated error lost the cause: %v", translated)
			}
		})
	}

	plain := errors.New("dial failed")
	if got := translateGeminiError(plain); got != plain {
		t.Fatalf("non-API error changed: %v", got)
	}
}
