package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"mediabuddy/internal/config"
)

const defaultOpenRouterURL = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouter talks to an OpenAI-compatible chat completions endpoint over
// plain HTTP.
type OpenRouter struct {
	cfg        config.LLMConfig
	httpClient *http.Client
}

// NewOpenRouter constructs the HTTP backend.
func NewOpenRouter(cfg config.LLMConfig, opts ...Option) *OpenRouter {
	o := buildOptions(cfg, opts)
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultOpenRouterURL
	}
	return &OpenRouter{cfg: cfg, httpClient: o.httpClient}
}

// Name identifies the backend in logs.
func (c *OpenRouter) Name() string { return config.ProviderOpenRouter + ":" + c.cfg.Model }

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatCompletionMessage `json:"message"`
		// Some providers return the streaming schema (delta) even when
		// stream=false.
		Delta        chatCompletionMessage `json:"delta"`
		Text         string                `json:"text"`
		FinishReason string                `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

type chatCompletionMessage struct {
	Content string `json:"content"`
	Refusal string `json:"refusal"`
}

// Complete issues a single chat completion request.
func (c *OpenRouter) Complete(ctx context.Context, req Completion) (Response, error) {
	const op = "complete"
	if strings.TrimSpace(req.Prompt) == "" {
		return Response{}, &Failure{Backend: c.Name(), Op: op, Err: errors.New("prompt required")}
	}
	messages := make([]chatMessage, 0, 2)
	if system := strings.TrimSpace(req.System); system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	payload := chatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxOutputTokens,
	}
	resp, err := c.send(ctx, payload)
	if err != nil {
		return Response{}, classify(ctx, c.Name(), op, err)
	}
	return resp, nil
}

// HealthCheck issues a minimal completion to verify the key and model.
func (c *OpenRouter) HealthCheck(ctx context.Context) error {
	_, err := c.Complete(ctx, Completion{Prompt: healthPrompt, MaxOutputTokens: 8})
	if err != nil {
		return fmt.Errorf("llm health: %w", err)
	}
	return nil
}

func (c *OpenRouter) send(ctx context.Context, payload chatCompletionRequest) (Response, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("encode body: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return Response{}, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.Referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.cfg.Referer)
		httpReq.Header.Set("Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		httpReq.Header.Set("X-Title", c.cfg.Title)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("http error (timeout=%s): %w", c.httpClient.Timeout, err)
	}
	defer httpResp.Body.Close()
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, &malformedResponseError{err: fmt.Errorf("read body: %w", err)}
	}
	if httpResp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(httpResp.Header.Get("Retry-After"))
		return Response{}, &httpStatusError{
			StatusCode: httpResp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return Response{}, &malformedResponseError{err: fmt.Errorf("decode response: %w (snippet: %s)", err, summarizePayloadSnippet(string(body)))}
	}
	if completion.Error != nil {
		return Response{}, fmt.Errorf("api error: %s", strings.TrimSpace(completion.Error.Message))
	}

	content, finishReason, refusal := extractCompletion(completion)
	if content == "" {
		return Response{}, &emptyContentError{
			FinishReason: finishReason,
			Refusal:      refusal,
			Snippet:      summarizePayloadSnippet(string(body)),
		}
	}
	model := completion.Model
	if model == "" {
		model = c.cfg.Model
	}
	return Response{Text: content, FinishReason: finishReason, Model: model}, nil
}

func extractCompletion(completion chatCompletionResponse) (content, finishReason, refusal string) {
	for _, choice := range completion.Choices {
		if finishReason == "" {
			finishReason = strings.TrimSpace(choice.FinishReason)
		}
		if refusal == "" {
			refusal = firstNonEmpty(choice.Message.Refusal, choice.Delta.Refusal)
		}
		if text := firstNonEmpty(choice.Message.Content, choice.Delta.Content, choice.Text); text != "" {
			return text, finishReason, refusal
		}
	}
	return "", finishReason, refusal
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
