package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-college-portal/internal/config"
	"github.com/stretchr/testify/require"
)

func TestEnvVars_Defaults(t *testing.T) {
	t.Setenv("PORTAL_API_URL", "")
	t.Setenv("ENV", "")
	t.Setenv("PORTAL_FAKE_ADDR", "")

	c := config.New()
	require.Equal(t, config.DefaultAPIURL, c.GetAPIURL())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "warn", c.GetLogLevel())
	require.Equal(t, 30*time.Second, c.GetRequestTimeout())
	require.Equal(t, config.SessionBackendFile, c.GetSessionBackend())
	require.Equal(t, ":8080", c.GetFakeBackendAddr())
}

func TestEnvVars_Overrides(t *testing.T) {
	t.Setenv("PORTAL_API_URL", "https://erp.example.edu/api/")
	t.Setenv("PORTAL_REQUEST_TIMEOUT", "5s")
	t.Setenv("PORTAL_SESSION_BACKEND", "REDIS")
	t.Setenv("PORTAL_REDIS_DB", "3")

	c := config.New()
	require.Equal(t, "https://erp.example.edu/api", c.GetAPIURL())
	require.Equal(t, 5*time.Second, c.GetRequestTimeout())
	require.Equal(t, config.SessionBackendRedis, c.GetSessionBackend())
	require.Equal(t, 3, c.GetRedisDB())
}

func TestClient_InvalidTimeoutFallsBack(t *testing.T) {
	t.Setenv("PORTAL_REQUEST_TIMEOUT", "soon")
	require.Equal(t, 30*time.Second, config.Client{}.GetRequestTimeout())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "portal.env")
	require.NoError(t, os.WriteFile(envFile, []byte("PORTAL_APP_NAME=Test Portal\n"), 0o600))

	os.Unsetenv("PORTAL_APP_NAME")
	t.Cleanup(func() { os.Unsetenv("PORTAL_APP_NAME") })

	require.NoError(t, config.LoadDotEnv(envFile))
	require.Equal(t, "Test Portal", config.New().GetAppName())

	require.NoError(t, config.LoadDotEnv(filepath.Join(dir, "missing.env")))
}
