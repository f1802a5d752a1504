package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadParsesAndDefaults(t *testing.T) {
	path := writeConfig(t, `
port: "8080"
logLevel: debug
sessionSecret: test-secret
generationModel: gpt-4o-mini
sessionTTL: 12h
aiTimeout: 30s
videoRenderDelay: 2s
maxUploadBytes: 1048576
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.DatabaseURL != "" {
		t.Fatal("databaseURL should default to empty (memory store)")
	}
	if got := cfg.SessionTTLDuration(); got != 12*time.Hour {
		t.Fatalf("sessionTTL = %v", got)
	}
	if got := cfg.AITimeoutDuration(); got != 30*time.Second {
		t.Fatalf("aiTimeout = %v", got)
	}
	if got := cfg.VideoRenderDelayDuration(); got != 2*time.Second {
		t.Fatalf("videoRenderDelay = %v", got)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
port: "8080"
sessionSecret: from-file
generationModel: gpt-4o-mini
openaiAPIKey: file-key
`)
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("SESSION_SECRET", "env-secret")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OpenAIAPIKey != "env-key" {
		t.Fatalf("openaiAPIKey = %q, want env override", cfg.OpenAIAPIKey)
	}
	if cfg.SessionSecret != "env-secret" {
		t.Fatalf("sessionSecret = %q, want env override", cfg.SessionSecret)
	}
}

func TestLoadRejectsMissingRequiredFields(t *testing.T) {
	cases := map[string]string{
		"missing port":   "sessionSecret: s\ngenerationModel: m\n",
		"missing secret": "port: \"8080\"\ngenerationModel: m\n",
		"missing model":  "port: \"8080\"\nsessionSecret: s\n",
		"bad ttl":        "port: \"8080\"\nsessionSecret: s\ngenerationModel: m\nsessionTTL: nope\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
