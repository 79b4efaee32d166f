package cfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`base-url: https://api.example.com
timeout-seconds: 30
reminder-interval-seconds: 15
log:
  level: debug
  output: stdout
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "taskpilot.yaml"), content, 0o644))

	var c Config
	require.NoError(t, LoadConfig(dir, "taskpilot", "yaml", &c))
	require.Equal(t, "https://api.example.com", c.BaseURL)
	require.Equal(t, 30, c.TimeoutSeconds)
	require.Equal(t, 15, c.ReminderIntervalSeconds)
	require.Equal(t, "debug", c.Log.Level)
}

func TestLoadConfigMissingFile(t *testing.T) {
	var c Config
	require.Error(t, LoadConfig(t.TempDir(), "nope", "yaml", &c))
}

func TestPrepareDefaults(t *testing.T) {
	var c Config
	c.Prepare()
	require.Equal(t, "http://localhost:8000", c.BaseURL)
	require.Equal(t, 60, c.TimeoutSeconds)
	require.Equal(t, 60, c.ReminderIntervalSeconds)

	set := Config{BaseURL: "https://x", TimeoutSeconds: 5, ReminderIntervalSeconds: 10}
	set.Prepare()
	require.Equal(t, "https://x", set.BaseURL)
	require.Equal(t, 5, set.TimeoutSeconds)
	require.Equal(t, 10, set.ReminderIntervalSeconds)
}
