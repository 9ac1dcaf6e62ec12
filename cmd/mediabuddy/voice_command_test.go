package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediabuddy/internal/output"
	"mediabuddy/internal/services"
)

func TestVoiceCommandGeneratesAndSaves(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"voice", "--length", "30", "--json", "Traffic congestion downtown keeps getting worse"}, env.configPath)
	if err != nil {
		t.Fatalf("voice: %v", err)
	}
	var payload voiceJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if payload.Words != 30 || payload.TargetWords != 30 {
		t.Fatalf("unexpected lengths: %+v", payload)
	}
	if payload.Warning != "" {
		t.Fatalf("unexpected warning %q", payload.Warning)
	}
	if payload.Mode != "rewrite" || payload.RequestID == "" || payload.CorpusVersion == "" {
		t.Fatalf("unexpected metadata: %+v", payload)
	}
	requireNotContains(t, payload.Text, "swimming")
	requireNotContains(t, payload.Text, "coffee")
	requireNotContains(t, env.llm.allPrompts(), "swimming")
	requireNotContains(t, env.llm.allPrompts(), "coffee")
	requireContains(t, env.llm.allPrompts(), "Traffic congestion downtown")

	if filepath.Dir(payload.Path) != env.outputDir {
		t.Fatalf("output written to %q, want dir %q", payload.Path, env.outputDir)
	}
	doc, err := output.Read(payload.Path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if doc.RequestID != payload.RequestID || doc.Text != payload.Text {
		t.Fatalf("saved document mismatch: %+v", doc)
	}
}

func TestVoiceCommandPlainOutput(t *testing.T) {
	env := setupCLITestEnv(t)

	out, stderr, err := runCLI(t, []string{"voice", "-n", "12", "--no-save", "bus fares"}, env.configPath)
	if err != nil {
		t.Fatalf("voice: %v", err)
	}
	if got := len(strings.Fields(out)); got != 12 {
		t.Fatalf("expected 12 words on stdout, got %d: %q", got, out)
	}
	if strings.Contains(stderr, "Saved") {
		t.Fatalf("--no-save still wrote a file: %s", stderr)
	}
	entries, _ := os.ReadDir(env.outputDir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".md") {
			t.Fatalf("unexpected output file %s", e.Name())
		}
	}
}

func TestVoiceCommandRejectsZeroLengthWithoutCalls(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"voice", "--length", "0", "traffic"}, env.configPath)
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if env.llm.calls() != 0 {
		t.Fatalf("expected no backend calls, got %d", env.llm.calls())
	}
}

func TestVoiceCommandSynthesizeUsesSources(t *testing.T) {
	env := setupCLITestEnv(t)
	source := filepath.Join(env.baseDir, "commute.txt")
	if err := os.WriteFile(source, []byte("Average commute times rose again this quarter."), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := runCLI(t, []string{"voice", "--mode", "synthesize", "--source", source, "--no-save", "-n", "20", "commuting"}, env.configPath)
	if err != nil {
		t.Fatalf("voice synthesize: %v", err)
	}
	requireContains(t, env.llm.allPrompts(), "SOURCE 1: commute")
	requireContains(t, env.llm.allPrompts(), "Average commute times rose")
}

func TestVoiceCommandRequiresAPIKey(t *testing.T) {
	env := setupCLITestEnv(t)
	data, err := os.ReadFile(env.configPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(env.configPath, []byte(strings.Replace(string(data), `api_key = "test"`, `api_key = ""`, 1)), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err = runCLI(t, []string{"voice", "traffic"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "generation.api_key is required") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}
