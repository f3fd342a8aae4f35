package config

type Config interface {
	EnvConfig
	SessionConfig
	GoogleConfig
}

type EnvConfig interface {
	GetBaseURL() string
	GetAppName() string
	GetDataFolder() string
	GetLogLevel() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Session
	Google
}

func New() Config {
	return mainConfig{}
}
