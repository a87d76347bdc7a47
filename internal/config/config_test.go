package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"echopages/internal/config"
)

func TestLoadDefaultsWithEnvFallbacks(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co/")
	t.Setenv("SUPABASE_ANON_KEY", "anon")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "echopages")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Gemini.APIKey != "env-key" {
		t.Fatalf("expected Gemini key from env, got %q", cfg.Gemini.APIKey)
	}
	if cfg.Supabase.URL != "https://example.supabase.co" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Supabase.URL)
	}
	if cfg.Supabase.CuratedTable != "admin_poems" || cfg.Supabase.CommunityTable != "echoes" {
		t.Fatalf("unexpected table defaults: %q %q", cfg.Supabase.CuratedTable, cfg.Supabase.CommunityTable)
	}
	if cfg.Moderation.MinLength != 10 || cfg.Moderation.MaxLength != 2000 {
		t.Fatalf("unexpected length bounds: %d %d", cfg.Moderation.MinLength, cfg.Moderation.MaxLength)
	}
	if cfg.Moderation.DailyLimit != 10 || cfg.Moderation.MinIntervalSeconds != 60 {
		t.Fatalf("unexpected rate defaults: %d %d", cfg.Moderation.DailyLimit, cfg.Moderation.MinIntervalSeconds)
	}
	if cfg.Moderation.HistoryLimit != 20 {
		t.Fatalf("unexpected history cap: %d", cfg.Moderation.HistoryLimit)
	}
	if len(cfg.Moderation.Blacklist) == 0 {
		t.Fatal("expected default blacklist")
	}
}

func TestLoadParsesFileAndNormalizesAdminEmails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[supabase]
url = "https://proj.supabase.co"
anon_key = "key"

[admin]
emails = [" Poet@Example.COM "]

[logging]
format = "JSON"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if !cfg.IsAdminEmail("poet@example.com") {
		t.Fatal("expected normalized admin email match")
	}
	if cfg.IsAdminEmail("other@example.com") {
		t.Fatal("unexpected admin match")
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected lowered log format, got %q", cfg.Logging.Format)
	}
}

func TestValidateRejectsInvertedLengthBounds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[moderation]
min_length = 500
max_length = 100
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation failure")
	}
}
