package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"tetsu/internal/config"
)

func TestLoadDefaultConfigUsesEnvCredentialsAndExpandsPaths(t *testing.T) {
	t.Setenv("ANIDB_USERNAME", "  alice ")
	t.Setenv("ANIDB_PASSWORD", "secret")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

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

	wantDB := filepath.Join(tempHome, ".local", "share", "tetsu", "index.db")
	if cfg.Paths.Database != wantDB {
		t.Fatalf("unexpected database path: got %q want %q", cfg.Paths.Database, wantDB)
	}
	if cfg.Paths.LogDir != filepath.Join(tempHome, ".local", "share", "tetsu", "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.AniDB.Username != "alice" {
		t.Fatalf("expected username from env, got %q", cfg.AniDB.Username)
	}
	if cfg.AniDB.Password != "secret" {
		t.Fatalf("expected password from env, got %q", cfg.AniDB.Password)
	}
	if !cfg.HasAniDBCredentials() {
		t.Fatal("expected credentials to be present")
	}
	if cfg.AniDB.Server != "api.anidb.net:9000" {
		t.Fatalf("unexpected server: %q", cfg.AniDB.Server)
	}
	if cfg.RequestInterval() != 2*time.Second {
		t.Fatalf("unexpected request interval: %s", cfg.RequestInterval())
	}
	if cfg.RequestTimeout() != 10*time.Second {
		t.Fatalf("unexpected request timeout: %s", cfg.RequestTimeout())
	}
	if cfg.AniDB.Retries != 2 {
		t.Fatalf("unexpected retries: %d", cfg.AniDB.Retries)
	}
	if cfg.Hashing.Workers != 0 {
		t.Fatalf("expected hashing workers default 0, got %d", cfg.Hashing.Workers)
	}
	if cfg.Scan.SkipUnreadable {
		t.Fatal("expected skip_unreadable disabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("ANIDB_USERNAME", "")
	t.Setenv("ANIDB_PASSWORD", "")

	configPath := filepath.Join(t.TempDir(), "config.toml")
	payload := struct {
		Paths struct {
			Database string `toml:"database"`
		} `toml:"paths"`
		AniDB struct {
			Username          string `toml:"username"`
			Password          string `toml:"password"`
			RequestIntervalMS int    `toml:"request_interval_ms"`
			Retries           int    `toml:"retries"`
		} `toml:"anidb"`
		Hashing struct {
			Workers int `toml:"workers"`
		} `toml:"hashing"`
		Scan struct {
			SkipUnreadable bool `toml:"skip_unreadable"`
		} `toml:"scan"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}{}
	payload.Paths.Database = "~/media/index.db"
	payload.AniDB.Username = "bob"
	payload.AniDB.Password = "hunter2"
	payload.AniDB.RequestIntervalMS = 4000
	payload.AniDB.Retries = 5
	payload.Hashing.Workers = 3
	payload.Scan.SkipUnreadable = true
	payload.Logging.Format = "JSON"
	payload.Logging.Level = " Debug "

	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.Database != filepath.Join(tempHome, "media", "index.db") {
		t.Fatalf("unexpected database path: %q", cfg.Paths.Database)
	}
	if cfg.AniDB.Username != "bob" || cfg.AniDB.Password != "hunter2" {
		t.Fatalf("unexpected credentials: %q/%q", cfg.AniDB.Username, cfg.AniDB.Password)
	}
	if cfg.RequestInterval() != 4*time.Second {
		t.Fatalf("unexpected request interval: %s", cfg.RequestInterval())
	}
	if cfg.AniDB.Retries != 5 {
		t.Fatalf("unexpected retries: %d", cfg.AniDB.Retries)
	}
	if cfg.Hashing.Workers != 3 {
		t.Fatalf("unexpected workers: %d", cfg.Hashing.Workers)
	}
	if !cfg.Scan.SkipUnreadable {
		t.Fatal("expected skip_unreadable to be true")
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging values, got %+v", cfg.Logging)
	}
	// Unset fields keep their defaults.
	if cfg.AniDB.Server != config.Default().AniDB.Server {
		t.Fatalf("unexpected server: %q", cfg.AniDB.Server)
	}
}

func TestConfigFileCredentialsTakePrecedenceOverEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ANIDB_USERNAME", "env-user")
	t.Setenv("ANIDB_PASSWORD", "env-pass")

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := "[anidb]\nusername = \"file-user\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.AniDB.Username != "file-user" {
		t.Fatalf("expected file username, got %q", cfg.AniDB.Username)
	}
	if cfg.AniDB.Password != "env-pass" {
		t.Fatalf("expected env password fallback, got %q", cfg.AniDB.Password)
	}
}

func TestLoadMissingCustomPathUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	missing := filepath.Join(t.TempDir(), "absent.toml")

	cfg, resolved, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected missing config to report exists=false")
	}
	if resolved != missing {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.AniDB.Client != "tetsu" {
		t.Fatalf("unexpected client: %q", cfg.AniDB.Client)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[anidb\nusername = "), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("ANIDB_USERNAME", "")
	t.Setenv("ANIDB_PASSWORD", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	for _, section := range []string{"[paths]", "[anidb]", "[hashing]", "[scan]", "[logging]"} {
		if !strings.Contains(string(data), section) {
			t.Fatalf("sample config missing %s", section)
		}
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if cfg.HasAniDBCredentials() {
		t.Fatal("sample config should not carry credentials")
	}
	if err := cfg.RequireAniDBCredentials(); err == nil {
		t.Fatal("expected missing credentials error")
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"server", func(c *config.Config) { c.AniDB.Server = "api.anidb.net" }, "anidb.server"},
		{"client version", func(c *config.Config) { c.AniDB.ClientVersion = 0 }, "anidb.client_version"},
		{"local port", func(c *config.Config) { c.AniDB.LocalPort = 70000 }, "anidb.local_port"},
		{"interval", func(c *config.Config) { c.AniDB.RequestIntervalMS = -1 }, "anidb.request_interval_ms"},
		{"timeout", func(c *config.Config) { c.AniDB.TimeoutSeconds = 0 }, "anidb.timeout_seconds"},
		{"retries", func(c *config.Config) { c.AniDB.Retries = -1 }, "anidb.retries"},
		{"workers", func(c *config.Config) { c.Hashing.Workers = -2 }, "hashing.workers"},
		{"format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestRequireAniDBCredentials(t *testing.T) {
	cfg := config.Default()
	if err := cfg.RequireAniDBCredentials(); err == nil {
		t.Fatal("expected error without credentials")
	}
	cfg.AniDB.Username = "user"
	cfg.AniDB.Password = "pass"
	if err := cfg.RequireAniDBCredentials(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureDirectoriesCreatesParents(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Database = filepath.Join(base, "data", "index.db")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{filepath.Join(base, "data"), cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q, err=%v", dir, err)
		}
	}
}

func TestExpandPathHandlesTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := config.ExpandPath("~/a/b")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if got != filepath.Join(home, "a", "b") {
		t.Fatalf("unexpected expansion: %q", got)
	}
	empty, err := config.ExpandPath("")
	if err != nil || empty != "" {
		t.Fatalf("expected empty path passthrough, got %q err=%v", empty, err)
	}
}
