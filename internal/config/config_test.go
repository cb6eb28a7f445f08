package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustInitDefaultsAndEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Chdir(t.TempDir())
	t.Setenv("PORT", "4100")
	t.Setenv("PRINTER_TYPE", "STAR")
	t.Setenv("LOCKOUT_DURATION", "60000")
	t.Setenv("NODE_ENV", "test")

	require.NotPanics(t, MustInit)

	assert.Equal(t, 4100, viper.GetInt("server.http.port"))
	assert.Equal(t, "STAR", viper.GetString("printer.type"))
	assert.Equal(t, 60000, viper.GetInt("auth.lockout_duration"))
	assert.Equal(t, "test", viper.GetString("app.env"))
	assert.Equal(t, 80, viper.GetInt("printer.paper_size"))
	assert.Equal(t, "8h", viper.GetString("auth.session_ttl"))
	assert.Equal(t, "logs/print-log.txt", viper.GetString("print_log.path"))
}

func TestMustInitReadsConfigFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
printer:
  name: Back office
  paper_size: 58
autoprint:
  poll_interval_seconds: 10
`), 0o600))

	MustInit()

	assert.Equal(t, "Back office", viper.GetString("printer.name"))
	assert.Equal(t, 58, viper.GetInt("printer.paper_size"))
	assert.Equal(t, 10, viper.GetInt("autoprint.poll_interval_seconds"))
	assert.Equal(t, "EPSON", viper.GetString("printer.type"))
}
