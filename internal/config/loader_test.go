package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/labhub-io/labhub-go/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
logger:
  env: dev
  level: debug
api:
  address: https://labhub.example.com
  key: sekrit
  pageSize: 25
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.Address != "https://labhub.example.com" {
		t.Fatalf("unexpected address: %q", cfg.API.Address)
	}
	if cfg.API.PageSize != 25 {
		t.Fatalf("unexpected page size: %d", cfg.API.PageSize)
	}
	// defaults fill what the file omits
	if cfg.API.TimeoutSeconds != 60 || cfg.API.MaxRetries != 2 {
		t.Fatalf("defaults not applied: %+v", cfg.API)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
api:
  key: from-file
`)
	t.Setenv("APP_API_KEY", "from-env")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.Key != "from-env" {
		t.Fatalf("expected env override, got %q", cfg.API.Key)
	}
}
