package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("QA_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("QA_TOP_K", "")
	t.Setenv("QA_OVERFETCH_FLOOR", "")
	t.Setenv("GROQ_MODEL", "")

	cfg := Load()
	if cfg.QATopK != 5 {
		t.Fatalf("expected default top k 5, got %d", cfg.QATopK)
	}
	if cfg.QAOverfetchFloor != 20 {
		t.Fatalf("expected default overfetch floor 20, got %d", cfg.QAOverfetchFloor)
	}
	if cfg.GroqModel != "llama-3.3-70b-versatile" {
		t.Fatalf("expected default model, got %q", cfg.GroqModel)
	}
	if cfg.NATSSubject != "qa.questions" {
		t.Fatalf("expected default subject, got %q", cfg.NATSSubject)
	}
}

func TestLoadFileAndEnvLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	file := strings.Join([]string{
		"qa_top_k: 8",
		"groq_model: from-file",
		"api_port: \"9999\"",
	}, "\n")
	if err := os.WriteFile(path, []byte(file), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("QA_CONFIG_PATH", path)
	t.Setenv("GROQ_MODEL", "from-env")
	t.Setenv("QA_TOP_K", "")
	t.Setenv("API_PORT", "")

	cfg := Load()
	if cfg.QATopK != 8 {
		t.Fatalf("expected file top k 8, got %d", cfg.QATopK)
	}
	if cfg.APIPort != "9999" {
		t.Fatalf("expected file port, got %q", cfg.APIPort)
	}
	if cfg.GroqModel != "from-env" {
		t.Fatalf("env must win over file, got %q", cfg.GroqModel)
	}
}

func TestValidateReportsMissingCredentials(t *testing.T) {
	cfg := Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, key := range []string{"GROQ_API_KEY", "PINECONE_API_KEY", "PINECONE_INDEX_URL"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s in error, got %v", key, err)
		}
	}

	cfg = Config{GroqAPIKey: "g", PineconeAPIKey: "p", PineconeIndexURL: "https://idx"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}
