package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/git-tracker/internal/domain"
)

// isolate runs the test from an empty directory with no git-tracker env set.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{
		"GIT_TRACKER_CONFIG", "GIT_TRACKER_API_URL", "GIT_TRACKER_TIMEOUT",
		"GIT_TRACKER_PLATFORM", "GIT_TRACKER_LOG_FILE", "GIT_TRACKER_VERIFY_UPSTREAM", "GITHUB_TOKEN",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, domain.PlatformLinkedIn, cfg.Platform())
}

func TestLoadLayering(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: http://tracker.local:8080\ntimeout: 5s\ndefault_platform: x\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GIT_TRACKER_LOG_FILE=from-dotenv.log\nGITHUB_TOKEN=dotenv-token\n"), 0o644))
	t.Setenv("GITHUB_TOKEN", "env-token")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://tracker.local:8080", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, domain.PlatformX, cfg.Platform())
	assert.Equal(t, "from-dotenv.log", cfg.LogFile)
	assert.Equal(t, "env-token", cfg.GitHubToken, "process env wins over .env")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("api_url: http://file:1\n"), 0o644))
	t.Setenv("GIT_TRACKER_API_URL", "http://env:2")
	t.Setenv("GIT_TRACKER_VERIFY_UPSTREAM", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://env:2", cfg.APIURL)
	assert.True(t, cfg.VerifyUpstream)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name    string
		yaml    string
		missing bool
	}{
		{name: "explicit file missing", missing: true},
		{name: "relative api url", yaml: "api_url: localhost:5000\n"},
		{name: "zero timeout", yaml: "timeout: 0s\n"},
		{name: "unknown platform", yaml: "default_platform: mastodon\n"},
		{name: "malformed yaml", yaml: "api_url: [\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := isolate(t)
			path := filepath.Join(dir, "cfg.yaml")
			if !tc.missing {
				require.NoError(t, os.WriteFile(path, []byte(tc.yaml), 0o644))
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("values fill the environment", func(t *testing.T) {
		dir := isolate(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GIT_TRACKER_PLATFORM=x\n"), 0o644))

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, domain.PlatformX, cfg.Platform())
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		dir := isolate(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GIT_TRACKER_API_URL=\"http://unterminated\n"), 0o644))

		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config: load .env")
	})
}

func TestWriteDefault(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "starter.yaml")

	require.NoError(t, WriteDefault(path))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	assert.Error(t, WriteDefault(path), "existing files are not overwritten")
}
