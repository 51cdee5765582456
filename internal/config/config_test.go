package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/crickmetrics/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := config.LoadConfig(writeConfig(t, ""), nil)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultWorkers, cfg.Workers)
	assert.Equal(t, config.DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, config.DefaultLogFormat, cfg.Logging.Format)
	assert.Equal(t, config.DefaultLogMaxSizeMB, cfg.Logging.MaxSizeMB)
	assert.Equal(t, filepath.Join(config.HomeDir(), "matches.db"), cfg.DB)
	assert.Empty(t, cfg.VenuesFile)
}

func TestLoadConfig_FileValues(t *testing.T) {
	path := writeConfig(t, `
db: /tmp/t20.db
data_dir: /data/t20s_male_csv
workers: 8
venues_file: venues.yaml
logging:
  level: debug
  format: json
  file: /tmp/crick.log
`)
	cfg, err := config.LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/t20.db", cfg.DB)
	assert.Equal(t, "/data/t20s_male_csv", cfg.DataDir)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "venues.yaml", cfg.VenuesFile)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	opts := cfg.Logging.LoggerOptions()
	assert.Equal(t, "/tmp/crick.log", opts.File)
	assert.Equal(t, config.DefaultLogMaxBackups, opts.MaxBackups)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "workers: 2\n")
	t.Setenv("CRICKMETRICS_WORKERS", "6")
	t.Setenv("CRICKMETRICS_LOGGING_LEVEL", "warn")

	cfg, err := config.LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadConfig_ChangedFlagsWin(t *testing.T) {
	path := writeConfig(t, "db: /from/file.db\nworkers: 2\n")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("db", "/flag/default.db", "")
	fs.Int("workers", 1, "")
	require.NoError(t, fs.Parse([]string{"--workers", "12"}))

	cfg, err := config.LoadConfig(path, fs)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Workers, "explicit flag overrides file")
	assert.Equal(t, "/from/file.db", cfg.DB, "unset flag leaves file value")
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := config.LoadConfig(writeConfig(t, "workers: 0\n"), nil)
	require.Error(t, err)

	_, err = config.LoadConfig(writeConfig(t, "logging:\n  format: xml\n"), nil)
	require.Error(t, err)

	_, err = config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err, "explicit path that does not exist is an error")
}

func TestLoadDotEnv_MissingIsFine(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	assert.NoError(t, config.LoadDotEnv())
}
