package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"tetsu/internal/anidb"
	"tetsu/internal/config"
	"tetsu/internal/logging"
	"tetsu/internal/store"
)

type globalFlags struct {
	config   string
	database string
	json     bool
	logLevel string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if err := c.applyOverrides(cfg); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = fmt.Errorf("invalid config: %w", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) applyOverrides(cfg *config.Config) error {
	if db := strings.TrimSpace(c.flags.database); db != "" {
		expanded, err := config.ExpandPath(db)
		if err != nil {
			return fmt.Errorf("resolve --database: %w", err)
		}
		cfg.Paths.Database = expanded
	}
	if level := strings.TrimSpace(c.flags.logLevel); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
	return nil
}

func (c *commandContext) jsonOutput() bool {
	return c.flags.json
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// withStore opens the index database for the duration of fn.
func (c *commandContext) withStore(fn func(*config.Config, *store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Paths.Database)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer st.Close()
	return fn(cfg, st)
}

// newSession builds an AniDB client. Nothing is sent until the first lookup.
func (c *commandContext) newSession(cfg *config.Config, logger *slog.Logger) (*anidb.Client, error) {
	if err := cfg.RequireAniDBCredentials(); err != nil {
		return nil, err
	}
	client, err := anidb.NewFromConfig(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("anidb client: %w", err)
	}
	return client, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
