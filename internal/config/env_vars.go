package config

import (
	"os"
	"path/filepath"
)

const (
	appNameVar   = "APP_NAME"
	folderEnvVar = "FOLDER"
	baseURLVar   = "API_BASE_URL"
	logLevelVar  = "LOG_LEVEL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "zeropapel")
}

// GetBaseURL returns the base URL of the signing-platform API
// (e.g., "https://zeropapel.com.br/api"). All endpoint paths are
// resolved against it.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:5000/api")
}

func (EnvVars) GetDataFolder() string {
	folder := GetEnv(folderEnvVar, "")
	if folder != "" {
		return folder
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".zeropapel"
	}
	return filepath.Join(home, ".zeropapel")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
