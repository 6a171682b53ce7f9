package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planforge/internal/config"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ".planforge", cfg.Database.Dir)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, "/v1", cfg.Server.BasePath)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestFromYAMLOverlaysDefaults(t *testing.T) {
	cfg, err := config.FromYAML([]byte("log:\n  level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "/v1", cfg.Server.BasePath)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"base path":  "server:\n  base_path: v1\n",
		"rate burst": "server:\n  rate_limit: 5\n",
		"level":      "log:\n  level: loud\n",
		"format":     "log:\n  format: xml\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.FromYAML([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestLoadOptional(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.LoadOptional(dir)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	_, err = config.Load(dir)
	assert.ErrorContains(t, err, "not found")

	require.NoError(t, os.WriteFile(config.Path(dir), []byte("server:\n  addr: 0.0.0.0:9000\n"), 0o644))
	cfg, err = config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
}
