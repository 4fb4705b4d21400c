package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.False(t, cfg.Verbose)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultHistoryFile, cfg.HistoryFile)

	srv := cfg.GetServerConfig()
	assert.Equal(t, DefaultServerAddr, srv.Addr)
	assert.Equal(t, DefaultReadTimeout, srv.ReadTimeout)
}

func TestLoadConfigFromFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)

	content := []byte("output: json\nverbose: true\nserver:\n  addr: \":9000\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wilk.yaml"), content, 0o600))

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.True(t, cfg.Verbose)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, ":9000", cfg.GetServerConfig().Addr)
	assert.Equal(t, "wilk.yaml", GetConfigFileUsed())
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)

	content := []byte("output: json\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wilk.yaml"), content, 0o600))
	t.Setenv("WILK_OUTPUT", "markdown")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "markdown", cfg.OutputFormat)
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())
	t.Setenv("WILK_OUTPUT", "markdown")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "", "")
	flags.String("addr", "", "")
	require.NoError(t, flags.Parse([]string{"--output", "text", "--addr", ":7000"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.OutputFormat)
	assert.Equal(t, ":7000", cfg.GetServerConfig().Addr)
}

func TestLoadConfigUnchangedFlagsIgnored(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "text", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	// Flag default must not shadow the config default
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
}

func TestLoadConfigExplicitFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("family: poisson\n"), 0o600))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "poisson", cfg.Family)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestGetCurrentConfig(t *testing.T) {
	ResetConfig()
	assert.Nil(t, GetCurrentConfig())

	t.Chdir(t.TempDir())
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Same(t, cfg, GetCurrentConfig())
}
