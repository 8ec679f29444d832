package config

import (
	"errors"
	"fmt"
	"net"
)

// Validate ensures the configuration is usable. AniDB credentials are not
// checked here because offline commands never open a session; see
// RequireAniDBCredentials.
func (c *Config) Validate() error {
	if err := c.validateAniDB(); err != nil {
		return err
	}
	if err := c.validateHashing(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// RequireAniDBCredentials returns an error describing how to configure
// credentials when none are set.
func (c *Config) RequireAniDBCredentials() error {
	if c.HasAniDBCredentials() {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("anidb.username and anidb.password are required. Set ANIDB_USERNAME/ANIDB_PASSWORD or edit %s (create with 'tetsu config init')", defaultPath)
}

func (c *Config) validateAniDB() error {
	if _, _, err := net.SplitHostPort(c.AniDB.Server); err != nil {
		return fmt.Errorf("anidb.server must be host:port: %w", err)
	}
	if c.AniDB.ClientVersion <= 0 {
		return errors.New("anidb.client_version must be positive")
	}
	if c.AniDB.LocalPort < 0 || c.AniDB.LocalPort > 65535 {
		return errors.New("anidb.local_port must be between 0 and 65535")
	}
	if c.AniDB.RequestIntervalMS < 0 {
		return errors.New("anidb.request_interval_ms must not be negative")
	}
	if c.AniDB.TimeoutSeconds <= 0 {
		return errors.New("anidb.timeout_seconds must be positive")
	}
	if c.AniDB.Retries < 0 {
		return errors.New("anidb.retries must not be negative")
	}
	return nil
}

func (c *Config) validateHashing() error {
	if c.Hashing.Workers < 0 {
		return errors.New("hashing.workers must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
