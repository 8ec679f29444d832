package config

const (
	defaultConfigPath        = "~/.config/tetsu/config.toml"
	defaultDatabasePath      = "~/.local/share/tetsu/index.db"
	defaultLogDir            = "~/.local/share/tetsu/logs"
	defaultAniDBClient       = "tetsu"
	defaultAniDBClientVer    = 1
	defaultAniDBServer       = "api.anidb.net:9000"
	defaultRequestIntervalMS = 2000
	defaultTimeoutSeconds    = 10
	defaultRetries           = 2
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Database: defaultDatabasePath,
			LogDir:   defaultLogDir,
		},
		AniDB: AniDB{
			Client:            defaultAniDBClient,
			ClientVersion:     defaultAniDBClientVer,
			Server:            defaultAniDBServer,
			RequestIntervalMS: defaultRequestIntervalMS,
			TimeoutSeconds:    defaultTimeoutSeconds,
			Retries:           defaultRetries,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
