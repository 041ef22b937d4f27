package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "generator.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigReadsSecretsList(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
endpoint: http://localhost:8080/webhooks/acme
secrets:
  - whsec_bmV3LXNlY3JldC1rZXk=
  - " whsec_b2xkLXNlY3JldC1rZXk= "
service: billing-api
environment: staging
interval: 5s
`)
	cfg, interval, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if interval != 5*time.Second {
		t.Fatalf("unexpected interval %s", interval)
	}
	if len(cfg.Secrets) != 2 || cfg.Secrets[1] != "whsec_b2xkLXNlY3JldC1rZXk=" {
		t.Fatalf("unexpected secrets %#v", cfg.Secrets)
	}
	if cfg.Kind != "service.deployed" {
		t.Fatalf("expected default kind, got %q", cfg.Kind)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"missing secrets", "endpoint: http://x\nservice: a\nenvironment: b\n"},
		{"bad interval", "endpoint: http://x\nsecrets: [whsec_eA==]\nservice: a\nenvironment: b\ninterval: soon\n"},
		{"negative interval", "endpoint: http://x\nsecrets: [whsec_eA==]\nservice: a\nenvironment: b\ninterval: -1s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, _, err := loadConfig(writeConfig(t, tt.content)); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	if _, _, err := loadConfig(""); err == nil {
		t.Fatal("expected missing path error")
	}
}
