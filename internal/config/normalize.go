package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAniDB()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.Database) == "" {
		c.Paths.Database = defaultDatabasePath
	}
	if c.Paths.Database, err = expandPath(strings.TrimSpace(c.Paths.Database)); err != nil {
		return fmt.Errorf("paths.database: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAniDB() {
	c.AniDB.Username = strings.TrimSpace(c.AniDB.Username)
	if c.AniDB.Username == "" {
		if value, ok := os.LookupEnv("ANIDB_USERNAME"); ok {
			c.AniDB.Username = strings.TrimSpace(value)
		}
	}
	if c.AniDB.Password == "" {
		if value, ok := os.LookupEnv("ANIDB_PASSWORD"); ok {
			c.AniDB.Password = value
		}
	}
	c.AniDB.Client = strings.ToLower(strings.TrimSpace(c.AniDB.Client))
	if c.AniDB.Client == "" {
		c.AniDB.Client = defaultAniDBClient
	}
	c.AniDB.Server = strings.TrimSpace(c.AniDB.Server)
	if c.AniDB.Server == "" {
		c.AniDB.Server = defaultAniDBServer
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
