package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8765", cfg.ListenAddr)
	assert.Equal(t, "https://web.telegram.org/a/", cfg.EntryURL)
	assert.True(t, cfg.Headless)
	assert.Equal(t, "accounts.db", cfg.StorePath)
	assert.Equal(t, 30*time.Second, cfg.StepTimeout.Std())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telegate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr: ":9000"
headless: false
store_path: /var/lib/telegate/accounts.db
step_timeout: 45s
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.False(t, cfg.Headless)
	assert.Equal(t, "/var/lib/telegate/accounts.db", cfg.StorePath)
	assert.Equal(t, 45*time.Second, cfg.StepTimeout.Std())
	// Untouched fields keep their defaults
	assert.Equal(t, "https://web.telegram.org/a/", cfg.EntryURL)
}

func TestLoad_PortEnvOverride(t *testing.T) {
	t.Setenv("PORT", "8080")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telegate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: \":9000\"\n"), 0o644))
	t.Setenv("PORT", "7001")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7001", cfg.ListenAddr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telegate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: [broken\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telegate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("step_timeout: banana\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid duration")
}

func TestLoad_RejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telegate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("step_timeout: -5s\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "step_timeout")
}
