package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseYAML(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.yaml", `
logging:
  level: debug
engine:
  workers: 4
  start_lead: 5m
  end_lead: 2m
calendar:
  enabled: true
  base_url: https://calendar.example.com/api
  sync_interval: 15m
history:
  driver: file
  path: ./remindo_history
tasks:
  - title: standup
    details: daily sync
    start: 2026-12-31T15:00:06Z
    end: 2026-12-31T15:30:00Z
    recurring: true
    frequency_minutes: 1440
`)

	cfg, err := NewManager(path).Parse()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 4, cfg.Engine.Workers)
	require.NotNil(t, cfg.Calendar)
	assert.True(t, cfg.Calendar.Enabled)
	require.NotNil(t, cfg.History)
	assert.Equal(t, "file", cfg.History.Driver)
	require.Len(t, cfg.Tasks, 1)

	tk, err := cfg.Tasks[0].Task()
	require.NoError(t, err)
	assert.Equal(t, "standup", tk.Title)
	assert.True(t, tk.Recurring)
	assert.EqualValues(t, 1440, tk.FrequencyMinutes)
	assert.Equal(t, time.Date(2026, 12, 31, 15, 0, 6, 0, time.UTC), tk.StartTime)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.yaml", `
engine:
  wrokers: 4
`)
	_, err := NewManager(path).Parse()
	assert.Error(t, err)
}

func TestParseRejectsTrailingJSON(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", `{"engine":{"workers":2}}{"extra":true}`)
	_, err := NewManager(path).Parse()
	assert.Error(t, err)
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	t.Parallel()
	m := NewManager(filepath.Join(t.TempDir(), "nope.yaml"))
	cfg, err := m.LoadOrDefault()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.True(t, cfg.ConsoleLogging())
	assert.True(t, cfg.ConsoleNotify())
	assert.Same(t, cfg, m.Get())
}

func TestTaskConfigBadTimestamp(t *testing.T) {
	t.Parallel()
	_, err := TaskConfig{Title: "x", Start: "tomorrow", End: "2026-12-31T15:00:06Z"}.Task()
	assert.Error(t, err)
}

func TestParseDurationField(t *testing.T) {
	t.Parallel()
	d, err := ParseDurationField("engine.start_lead", "5m")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, d)

	_, err = ParseDurationField("engine.start_lead", "five minutes")
	assert.Error(t, err)

	d, err = ParseDurationOrDefault("engine.end_lead", "", 2*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, d)
}
