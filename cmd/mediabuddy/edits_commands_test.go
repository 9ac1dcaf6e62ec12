package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"mediabuddy/internal/editlog"
)

func TestEditsRecordSuggestList(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"voice", "--length", "40", "--json", "city parking rules"}, env.configPath)
	if err != nil {
		t.Fatalf("voice: %v", err)
	}
	var generated voiceJSON
	if err := json.Unmarshal([]byte(out), &generated); err != nil {
		t.Fatalf("decode voice json: %v", err)
	}

	edited := filepath.Join(env.baseDir, "edited.txt")
	if err := os.WriteFile(edited, []byte("Parking rules, honestly, are a mess."), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err = runCLI(t, []string{"edits", "record", "--generated", generated.Path, "--edited", edited, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("edits record: %v", err)
	}
	var session editSessionJSON
	if err := json.Unmarshal([]byte(out), &session); err != nil {
		t.Fatalf("decode session json: %v", err)
	}
	if session.RequestID != generated.RequestID || session.Mode != "rewrite" {
		t.Fatalf("session lost generation metadata: %+v", session)
	}
	if session.Topic != "city parking rules" {
		t.Fatalf("unexpected topic %q", session.Topic)
	}
	if session.Analysis.OriginalWords != 40 || session.Analysis.EditedWords != 6 {
		t.Fatalf("unexpected analysis %+v", session.Analysis)
	}
	if !containsType(session.Analysis.EditTypes, editlog.EditLengthAdjustment) {
		t.Fatalf("expected length adjustment, got %v", session.Analysis.EditTypes)
	}

	out, _, err = runCLI(t, []string{"edits", "suggest", "--length", "100", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("edits suggest: %v", err)
	}
	var rec editlog.Recommendations
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("decode recommendations: %v", err)
	}
	if rec.Sessions != 1 || rec.SuggestedLength >= 100 {
		t.Fatalf("unexpected recommendations %+v", rec)
	}
	requireContains(t, out, "prefers shorter")

	out, _, err = runCLI(t, []string{"edits", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("edits list: %v", err)
	}
	requireContains(t, out, shortID(session.ID))
	requireContains(t, out, "city parking rules")
	requireContains(t, out, "Rewrite")

	if !session.Significant {
		t.Fatalf("expected a significant edit, magnitude %.3f", session.Analysis.Magnitude)
	}
	out, _, err = runCLI(t, []string{"edits", "list", "--examples", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("edits list --examples: %v", err)
	}
	var examples []editSessionJSON
	if err := json.Unmarshal([]byte(out), &examples); err != nil {
		t.Fatalf("decode examples: %v", err)
	}
	if len(examples) != 1 || examples[0].ID != session.ID {
		t.Fatalf("unexpected examples %+v", examples)
	}
}

func TestEditsListExamplesSkipsMinorEdits(t *testing.T) {
	env := setupCLITestEnv(t)
	text := filepath.Join(env.baseDir, "same.txt")
	if err := os.WriteFile(text, []byte("Parking downtown is honestly a mess these days."), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, []string{"edits", "record", "--generated", text, "--edited", text, "--topic", "parking"}, env.configPath); err != nil {
		t.Fatalf("edits record: %v", err)
	}

	out, _, err := runCLI(t, []string{"edits", "list", "--examples"}, env.configPath)
	if err != nil {
		t.Fatalf("edits list --examples: %v", err)
	}
	requireContains(t, out, "No significant edit sessions recorded")

	out, _, err = runCLI(t, []string{"edits", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("edits list: %v", err)
	}
	requireContains(t, out, "parking")
}

func TestEditsListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"edits", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("edits list: %v", err)
	}
	requireContains(t, out, "No edit sessions recorded")
}

func TestEditsRecordRequiresFiles(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"edits", "record", "--generated", "x.md"}, env.configPath); err == nil {
		t.Fatal("expected error without --edited")
	}
}

func TestModeLabel(t *testing.T) {
	if got := modeLabel("synthesize"); got != "Synthesize" {
		t.Fatalf("modeLabel = %q", got)
	}
	if got := modeLabel(""); got != "-" {
		t.Fatalf("modeLabel(\"\") = %q", got)
	}
}

func TestEditTypesLabel(t *testing.T) {
	if got := editTypesLabel(nil); got != "general_improvement" {
		t.Fatalf("editTypesLabel(nil) = %q", got)
	}
	got := editTypesLabel([]editlog.EditType{editlog.EditLengthAdjustment, editlog.EditAddedPauses})
	if got != "length_adjustment, added_pauses" {
		t.Fatalf("editTypesLabel = %q", got)
	}
}

func containsType(types []editlog.EditType, want editlog.EditType) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}
