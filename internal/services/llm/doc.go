// Package llm provides the hosted text-generation backends.
//
// Three backends share one Backend interface:
//   - openrouter: raw HTTP chat completions against OpenRouter or any
//     OpenAI-compatible gateway
//   - openai: the official openai-go SDK
//   - gemini: the google.golang.org/genai SDK
//
// # Entry Points
//
// NewBackend: construct the backend named by config.LLMConfig.Provider.
// Backend.Complete: send one system/user prompt pair, receive text.
// Backend.HealthCheck: verify the API key and model are usable.
//
// # Failure Classification
//
// Backends make exactly one attempt per call; retrying is the caller's job.
// Every error they return is a *Failure that records whether the condition is
// transient (timeouts, HTTP 408/429/5xx, empty content) or permanent (other
// 4xx, authentication, malformed request), plus any Retry-After hint.
// Context cancellation is returned unwrapped so callers stop immediately.
package llm
