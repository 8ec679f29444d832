package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"tetsu/internal/catalog"
	"tetsu/internal/config"
	"tetsu/internal/store"
	"tetsu/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("ANIDB_USERNAME", "")
	t.Setenv("ANIDB_PASSWORD", "")

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--config", env.configPath, "--log-level", "error"}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// seedIndex writes file records and path entries, then closes the store so
// the command under test opens it fresh.
func seedIndex(t *testing.T, cfg *config.Config, seed func(*store.Store)) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(cfg.Paths.Database), 0o755); err != nil {
		t.Fatalf("mkdir data: %v", err)
	}
	st, err := store.Open(cfg.Paths.Database)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	seed(st)
	if err := st.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}
}

func putEntity[T any](t *testing.T, st *store.Store, codec store.Codec[T], value T) {
	t.Helper()
	if _, err := store.Put(context.Background(), st, codec, value); err != nil {
		t.Fatalf("store.Put: %v", err)
	}
}

func sampleFile(fid, size int64) catalog.File {
	return catalog.File{
		FID:             fid,
		AID:             1,
		EID:             2,
		GID:             3,
		Size:            size,
		ED2K:            strings.Repeat("ab", 16),
		Quality:         "very high",
		Source:          "Blu-ray",
		VideoCodec:      "H264/AVC",
		VideoResolution: "1920x1080",
		AudioCodecs:     []string{"FLAC"},
		DubLanguage:     "japanese",
		SubLanguage:     "english",
		LengthSeconds:   1440,
	}
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n--- output ---\n%s", needle, haystack)
	}
}
