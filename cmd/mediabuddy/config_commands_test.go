package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, "Provider:    openrouter (demo)")
	requireContains(t, out, "Configuration valid")
	requireNotContains(t, out, "API key")
}

func TestConfigValidateWarnsWithoutAPIKey(t *testing.T) {
	env := setupCLITestEnv(t)
	missing := filepath.Join(env.baseDir, "missing.toml")

	out, _, err := runCLI(t, []string{"config", "validate"}, missing)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "defaults were used")
	requireContains(t, out, "[WARN] not set")
	requireContains(t, out, "Configuration valid")
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	env := setupCLITestEnv(t)
	bad := filepath.Join(env.baseDir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[generation]\nprovider = \"carrier-pigeon\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := runCLI(t, []string{"config", "validate"}, bad); err == nil {
		t.Fatal("expected validation error for unknown provider")
	}
}

func TestConfigInit(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "nested", "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration to "+target)
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config: %v", err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config exists")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("validate sample config: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}
