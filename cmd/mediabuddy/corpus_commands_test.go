package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestCorpusList(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"corpus", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("corpus list: %v", err)
	}
	requireContains(t, out, "3 samples")
	requireContains(t, out, "swim.md")

	out, _, err = runCLI(t, []string{"corpus", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("corpus list --json: %v", err)
	}
	var payload corpusListJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(payload.Samples) != 3 || payload.Version == "" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	// Lexical path order.
	if payload.Samples[0].Source != "coffee.md" {
		t.Fatalf("unexpected first sample %+v", payload.Samples[0])
	}
}

func TestCorpusStyleHasNoTopicalWords(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"corpus", "style", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("corpus style: %v", err)
	}
	var payload corpusStyleJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if payload.Descriptor.SampleCount != 3 {
		t.Fatalf("unexpected sample count %d", payload.Descriptor.SampleCount)
	}
	for _, word := range []string{"swimming", "coffee", "mornings"} {
		requireNotContains(t, payload.Rendered, word)
	}
}

func TestCorpusEmptyDirectoryFails(t *testing.T) {
	env := setupCLITestEnv(t)
	for name := range scenarioCorpus {
		if err := os.Remove(filepath.Join(env.corpusDir, name)); err != nil {
			t.Fatal(err)
		}
	}
	if _, _, err := runCLI(t, []string{"corpus", "list"}, env.configPath); err == nil {
		t.Fatal("expected error for empty corpus")
	}
}

func TestCorpusAdd(t *testing.T) {
	env := setupCLITestEnv(t)
	src := filepath.Join(env.baseDir, "new-sample.md")
	if err := os.WriteFile(src, []byte("I rarely plan ahead, and it shows."), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"corpus", "add", src}, env.configPath)
	if err != nil {
		t.Fatalf("corpus add: %v", err)
	}
	requireContains(t, out, "Added")
	if _, err := os.Stat(filepath.Join(env.corpusDir, "new-sample.md")); err != nil {
		t.Fatalf("expected copied sample: %v", err)
	}

	if _, _, err := runCLI(t, []string{"corpus", "add", src}, env.configPath); err == nil {
		t.Fatal("expected error when the sample already exists")
	}

	bad := filepath.Join(env.baseDir, "notes.pdf")
	if err := os.WriteFile(bad, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, []string{"corpus", "add", bad}, env.configPath); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
