package config

import (
	"os"
	"strings"
)

const (
	apiURLEnvVar    = "PORTAL_API_URL"
	appNameVar      = "PORTAL_APP_NAME"
	logLevelEnvVar  = "PORTAL_LOG_LEVEL"
	logFormatEnvVar = "PORTAL_LOG_FORMAT"
	fakeAddrEnvVar  = "PORTAL_FAKE_ADDR"

	DefaultAPIURL = "http://localhost:8080/api"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

// GetAPIURL returns the backend base URL without a trailing slash
func (EnvVars) GetAPIURL() string {
	return strings.TrimRight(GetEnv(apiURLEnvVar, DefaultAPIURL), "/")
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "College Portal")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelEnvVar, "warn")
}

// GetLogFormat is "text" (console) or "json"
func (EnvVars) GetLogFormat() string {
	return strings.ToLower(GetEnv(logFormatEnvVar, "text"))
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetFakeBackendAddr is the listen address of the emulated backend
func (EnvVars) GetFakeBackendAddr() string {
	return GetEnv(fakeAddrEnvVar, ":8080")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
