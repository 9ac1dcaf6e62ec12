package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"mediabuddy/internal/config"
)

// Gemini uses the google.golang.org/genai SDK against the Gemini API.
type Gemini struct {
	cfg    config.LLMConfig
	client *genai.Client
}

// NewGemini constructs the genai backend.
func NewGemini(ctx context.Context, cfg config.LLMConfig, opts ...Option) (*Gemini, error) {
	o := buildOptions(cfg, opts)
	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: o.httpClient,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("llm gemini: new client: %w", err)
	}
	return &Gemini{cfg: cfg, client: client}, nil
}

// Name identifies the backend in logs.
func (g *Gemini) Name() string { return config.ProviderGemini + ":" + g.cfg.Model }

// Complete issues a single GenerateContent call.
func (g *Gemini) Complete(ctx context.Context, req Completion) (Response, error) {
	const op = "complete"
	if strings.TrimSpace(req.Prompt) == "" {
		return Response{}, &Failure{Backend: g.Name(), Op: op, Err: errors.New("prompt required")}
	}
	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxOutputTokens > 0 {
		genCfg.MaxOutputTokens = int32(req.MaxOutputTokens)
	}
	if system := strings.TrimSpace(req.System); system != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model,
		[]*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)},
		genCfg,
	)
	if err != nil {
		return Response{}, classify(ctx, g.Name(), op, translateGeminiError(err))
	}

	var finish string
	for _, candidate := range resp.Candidates {
		if candidate == nil {
			continue
		}
		if finish == "" {
			finish = string(candidate.FinishReason)
		}
		if candidate.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range candidate.Content.Parts {
			if part != nil && !part.Thought {
				b.WriteString(part.Text)
			}
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			return Response{Text: text, FinishReason: finish, Model: g.cfg.Model}, nil
		}
	}
	var blocked string
	if resp.PromptFeedback != nil {
		blocked = string(resp.PromptFeedback.BlockReason)
	}
	empty := &emptyContentError{
		FinishReason: finish,
		Refusal:      blocked,
		Snippet:      fmt.Sprintf("%d candidates", len(resp.Candidates)),
	}
	if blocked != "" {
		// A blocked prompt will be blocked again.
		return Response{}, &Failure{Backend: g.Name(), Op: op, Err: empty}
	}
	return Response{}, classify(ctx, g.Name(), op, empty)
}

// HealthCheck issues a minimal completion to verify the key and model.
func (g *Gemini) HealthCheck(ctx context.Context) error {
	if _, err := g.Complete(ctx, Completion{Prompt: healthPrompt, MaxOutputTokens: 16}); err != nil {
		return fmt.Errorf("llm health: %w", err)
	}
	return nil
}

func translateGeminiError(err error) error {
	code := 0
	message := ""
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code, message = apiErr.Code, apiErr.Message
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		code, message = apiErrPtr.Code, apiErrPtr.Message
	default:
		return err
	}
	return fmt.Errorf("%w: %w", &httpStatusError{StatusCode: code, Body: message}, err)
}
