package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DEFAULT_PROVIDER", "")
	t.Setenv("GENERATION_TIMEOUT", "")
	c := FromEnv()
	if c.Port != "8080" {
		t.Fatalf("expected port 8080, got %s", c.Port)
	}
	if c.DefaultProvider != "gemini" {
		t.Fatalf("expected gemini, got %s", c.DefaultProvider)
	}
	if c.GenerationTimeout != 60*time.Second || c.EvaluationTimeout != 90*time.Second {
		t.Fatalf("unexpected timeouts %v/%v", c.GenerationTimeout, c.EvaluationTimeout)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DEFAULT_PROVIDER", "Ollama")
	t.Setenv("GENERATION_TIMEOUT", "15s")
	t.Setenv("EVALUATION_TIMEOUT", "not-a-duration")
	t.Setenv("EXPORT_ENABLED", "true")
	c := FromEnv()
	if c.DefaultProvider != "ollama" {
		t.Fatalf("provider should be lowercased, got %s", c.DefaultProvider)
	}
	if c.GenerationTimeout != 15*time.Second {
		t.Fatalf("expected 15s, got %v", c.GenerationTimeout)
	}
	if c.EvaluationTimeout != 90*time.Second {
		t.Fatalf("bad duration should fall back to default, got %v", c.EvaluationTimeout)
	}
	if !c.ExportEnabled {
		t.Fatal("export should be enabled")
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("JUDGE_MODEL", "")
	path := filepath.Join(t.TempDir(), "debatecoach.yaml")
	yml := "judge_model: gemini-2.5-pro\nevaluation_timeout: 2m\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Port != "9000" {
		t.Fatalf("env value should survive the overlay, got %s", c.Port)
	}
	if c.JudgeModel != "gemini-2.5-pro" {
		t.Fatalf("expected overlay judge model, got %s", c.JudgeModel)
	}
	if c.EvaluationTimeout != 2*time.Minute {
		t.Fatalf("expected 2m, got %v", c.EvaluationTimeout)
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DEFAULT_PROVIDER", "watson")
	t.Setenv("CONFIG_FILE", "")
	if _, err := Load(""); err == nil {
		t.Fatal("expected validation error")
	}
}
