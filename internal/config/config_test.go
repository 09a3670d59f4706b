package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	def := DefaultConfig()
	if cfg.Lists != def.Lists {
		t.Errorf("expected default lists config %+v, got %+v", def.Lists, cfg.Lists)
	}
	if cfg.IsConfigured() {
		t.Error("expected an empty config to be unconfigured")
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `server:
  url: http://school.test
  token: abc
lists:
  page_size: 50
  search_debounce: 150ms
logging:
  level: DEBUG
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.IsConfigured() {
		t.Error("expected config to be configured")
	}
	if cfg.Lists.PageSize != 50 {
		t.Errorf("expected page size 50, got %d", cfg.Lists.PageSize)
	}
	if cfg.Lists.SearchDebounce != 150*time.Millisecond {
		t.Errorf("expected 150ms debounce, got %v", cfg.Lists.SearchDebounce)
	}
	if cfg.Lists.FetchTimeout != DefaultConfig().Lists.FetchTimeout {
		t.Errorf("expected default fetch timeout, got %v", cfg.Lists.FetchTimeout)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("expected DEBUG, got %q", cfg.Logging.Level)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CAMPUS_SERVER_TOKEN", "from-env")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Token != "from-env" {
		t.Errorf("expected token from environment, got %q", cfg.Server.Token)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Server.URL = "http://school.test"
	cfg.Server.Token = "secret"
	cfg.Lists.PageSize = 5
	cfg.DevServer.JWTSecret = "dev"

	if err := Save(dir, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Server != cfg.Server {
		t.Errorf("expected server %+v, got %+v", cfg.Server, loaded.Server)
	}
	if loaded.Lists.PageSize != 5 {
		t.Errorf("expected page size 5, got %d", loaded.Lists.PageSize)
	}
	if loaded.DevServer.JWTSecret != "dev" {
		t.Errorf("expected jwt secret to persist, got %q", loaded.DevServer.JWTSecret)
	}
}
