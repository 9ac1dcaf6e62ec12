package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"mediabuddy/internal/config"
)

// OpenAI uses the official openai-go SDK. SDK retries are disabled so the
// generation client's policy is the only one in play.
type OpenAI struct {
	cfg    config.LLMConfig
	client openai.Client
}

// NewOpenAI constructs the SDK backend.
func NewOpenAI(cfg config.LLMConfig, opts ...Option) *OpenAI {
	o := buildOptions(cfg, opts)
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(o.httpClient),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(base))
	}
	return &OpenAI{cfg: cfg, client: openai.NewClient(reqOpts...)}
}

// Name identifies the backend in logs.
func (c *OpenAI) Name() string { return config.ProviderOpenAI + ":" + c.cfg.Model }

// Complete issues a single chat completion.
func (c *OpenAI) Complete(ctx context.Context, req Completion) (Response, error) {
	const op = "complete"
	if strings.TrimSpace(req.Prompt) == "" {
		return Response{}, &Failure{Backend: c.Name(), Op: op, Err: errors.New("prompt required")}
	}
	var msgs []openai.ChatCompletionMessageParamUnion
	if system := strings.TrimSpace(req.System); system != "" {
		msgs = append(msgs, openai.SystemMessage(system))
	}
	msgs = append(msgs, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.cfg.Model),
		Messages:    msgs,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxOutputTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxOutputTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, classify(ctx, c.Name(), op, translateOpenAIError(err))
	}
	var finish, refusal string
	for _, choice := range resp.Choices {
		if finish == "" {
			finish = string(choice.FinishReason)
		}
		if refusal == "" {
			refusal = strings.TrimSpace(choice.Message.Refusal)
		}
		if text := strings.TrimSpace(choice.Message.Content); text != "" {
			return Response{Text: text, FinishReason: finish, Model: resp.Model}, nil
		}
	}
	return Response{}, classify(ctx, c.Name(), op, &emptyContentError{
		FinishReason: finish,
		Refusal:      refusal,
		Snippet:      fmt.Sprintf("%d choices", len(resp.Choices)),
	})
}

// HealthCheck issues a minimal completion to verify the key and model.
func (c *OpenAI) HealthCheck(ctx context.Context) error {
	if _, err := c.Complete(ctx, Completion{Prompt: healthPrompt, MaxOutputTokens: 16}); err != nil {
		return fmt.Errorf("llm health: %w", err)
	}
	return nil
}

// translateOpenAIError maps SDK API errors onto httpStatusError so status
// classification is shared across backends.
func translateOpenAIError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	statusErr := &httpStatusError{StatusCode: apiErr.StatusCode, Body: apiErr.Message}
	if apiErr.Response != nil {
		statusErr.RetryAfter, _ = parseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
	}
	if statusErr.StatusCode == 0 {
		statusErr.StatusCode = http.StatusBadGateway
	}
	return fmt.Errorf("%w: %w", statusErr, err)
}
