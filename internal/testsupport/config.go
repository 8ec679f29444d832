package testsupport

import (
	"path/filepath"
	"testing"

	"tetsu/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Database = filepath.Join(base, "data", "index.db")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.AniDB.Username = "test"
	cfgVal.AniDB.Password = "test"
	cfgVal.AniDB.Server = "127.0.0.1:9"
	cfgVal.AniDB.RequestIntervalMS = 0
	cfgVal.AniDB.TimeoutSeconds = 1
	cfgVal.Hashing.Workers = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAniDBServer points the test config at a local UDP listener.
func WithAniDBServer(addr string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.AniDB.Server = addr
	}
}

// WithCredentials overrides the AniDB credentials; empty values clear them.
func WithCredentials(username, password string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.AniDB.Username = username
		b.cfg.AniDB.Password = password
	}
}

// WithSkipUnreadable enables the lenient I/O policy for reconciliation.
func WithSkipUnreadable() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan.SkipUnreadable = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
