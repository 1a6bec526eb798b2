package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DECAL_API_URL", "https://api.decal.example/v1")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 15*time.Second, cfg.DecalAPITimeout)
	assert.Equal(t, "*/15 * * * *", cfg.WarmupCron)
	assert.Equal(t, ":9091", cfg.WorkerMetricsAddr)
	assert.Zero(t, cfg.AnalyticsCacheTTL)
	assert.False(t, cfg.CacheEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRequiresDecalAPI(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DECAL_API_URL", "")

	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("DECAL_API_URL", "not a url")
	_, err = LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DECAL_API_URL")
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(
		"DECAL_API_URL=http://localhost:5000/api\nANALYTICS_CACHE_TTL=5m\nAPP_ADDR=:9090\n"), 0o600))
	t.Setenv("APP_ADDR", ":7070")
	for _, key := range []string{"DECAL_API_URL", "ANALYTICS_CACHE_TTL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/api", cfg.DecalAPIURL)
	assert.Equal(t, 5*time.Minute, cfg.AnalyticsCacheTTL)
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, ":7070", cfg.AppAddr)
}

func TestLoadConfigRejectsNegativeTTL(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DECAL_API_URL", "http://localhost:5000")
	t.Setenv("ANALYTICS_CACHE_TTL", "-1m")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestInTestMode(t *testing.T) {
	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	assert.True(t, InTestMode())

	t.Setenv(testModeEnv, "")
	RefreshTestMode()
	assert.False(t, InTestMode())
}
