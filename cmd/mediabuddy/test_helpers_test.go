package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"mediabuddy/internal/prompt"
	"mediabuddy/internal/textutil"
)

var scenarioCorpus = map[string]string{
	"swim.md":   "I love swimming and hate mornings.",
	"coffee.md": "Mornings are the worst, though coffee helps.",
	"early.txt": "I can't stand getting up early.",
}

// fakeLLM is an OpenRouter-compatible endpoint that answers with the words of
// the CONTENT section cycled to the requested length.
type fakeLLM struct {
	server *httptest.Server

	mu      sync.Mutex
	prompts []string
}

func newFakeLLM(t *testing.T) *fakeLLM {
	t.Helper()
	f := &fakeLLM{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.Messages) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		userPrompt := payload.Messages[len(payload.Messages)-1].Content
		f.mu.Lock()
		f.prompts = append(f.prompts, userPrompt)
		f.mu.Unlock()

		answer := "ok"
		var target int
		if _, err := fmt.Sscanf(prompt.ExtractSection(userPrompt, prompt.SectionLength), "Write approximately %d words", &target); err == nil {
			source := textutil.Words(prompt.ExtractSection(userPrompt, prompt.SectionContent))
			out := make([]string, target)
			for i := range out {
				out[i] = source[i%len(source)]
			}
			answer = strings.Join(out, " ")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "demo",
			"choices": []any{map[string]any{
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": answer},
			}},
		})
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeLLM) allPrompts() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.prompts, "\n")
}

type cliTestEnv struct {
	baseDir    string
	corpusDir  string
	outputDir  string
	configPath string
	llm        *fakeLLM
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, name := range []string{"MEDIABUDDY_API_KEY", "OPENROUTER_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY"} {
		t.Setenv(name, "")
	}

	env := &cliTestEnv{
		baseDir:    base,
		corpusDir:  filepath.Join(base, "corpus"),
		outputDir:  filepath.Join(base, "out"),
		configPath: filepath.Join(base, "mediabuddy.toml"),
		llm:        newFakeLLM(t),
	}
	if err := os.MkdirAll(env.corpusDir, 0o755); err != nil {
		t.Fatalf("mkdir corpus: %v", err)
	}
	for name, body := range scenarioCorpus {
		if err := os.WriteFile(filepath.Join(env.corpusDir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write sample: %v", err)
		}
	}
	writeTestConfig(t, env)
	return env
}

func writeTestConfig(t *testing.T, env *cliTestEnv) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
corpus_dir = %q
output_dir = %q
data_dir = %q
log_dir = %q

[generation]
provider = "openrouter"
api_key = "test"
base_url = %q
model = "demo"
retry_base_delay_ms = 1
retry_max_delay_ms = 1

[logging]
level = "error"
`,
		env.corpusDir,
		env.outputDir,
		filepath.Join(env.baseDir, "data"),
		filepath.Join(env.baseDir, "logs"),
		env.llm.server.URL,
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(strings.ToLower(output), strings.ToLower(substr)) {
		t.Fatalf("expected output not to contain %q:\n%s", substr, output)
	}
}
