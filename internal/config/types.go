package config

import (
	"fmt"
	"time"

	"remindo/internal/task"
)

// Config is the root of the remindo config file (YAML or JSON).
//
// All durations are Go duration strings (e.g. "500ms", "10s", "5m").
type Config struct {
	Logging  LoggingConfig   `json:"logging,omitempty"`
	Engine   EngineConfig    `json:"engine,omitempty"`
	Notify   NotifyConfig    `json:"notify,omitempty"`
	Calendar *CalendarConfig `json:"calendar,omitempty"`
	History  *HistoryConfig  `json:"history,omitempty"`

	// Tasks are seeded into the store on startup (watch mode). They go
	// through the same validation as `remindo add`.
	Tasks []TaskConfig `json:"tasks,omitempty"`
}

type LoggingConfig struct {
	Level   string        `json:"level,omitempty"`
	Console *bool         `json:"console,omitempty"` // default true
	File    LogFileConfig `json:"file,omitempty"`
}

type LogFileConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

// EngineConfig controls the reminder engine.
//
// Defaults (when fields are omitted/zero):
//   - workers: 2
//   - queue_size: 64
//   - start_lead: "5m"
//   - end_lead: "2m"
type EngineConfig struct {
	Workers   int    `json:"workers,omitempty"`
	QueueSize int    `json:"queue_size,omitempty"`
	StartLead string `json:"start_lead,omitempty"`
	EndLead   string `json:"end_lead,omitempty"`
}

type NotifyConfig struct {
	Console  *bool           `json:"console,omitempty"` // default true
	Telegram *TelegramConfig `json:"telegram,omitempty"`
}

type TelegramConfig struct {
	Enabled    bool   `json:"enabled"`
	Token      string `json:"token"`
	ChatID     int64  `json:"chat_id"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
}

// CalendarConfig controls the optional external calendar bridge.
type CalendarConfig struct {
	Enabled        bool   `json:"enabled"`
	BaseURL        string `json:"base_url"`
	Token          string `json:"token,omitempty"`
	Timeout        string `json:"timeout,omitempty"`
	SyncInterval   string `json:"sync_interval,omitempty"`
	PushRatePerSec int    `json:"push_rate_per_sec,omitempty"`
	DedupWindow    string `json:"dedup_window,omitempty"`
}

// HistoryConfig controls the optional notification history store.
//
// Example:
//
//	"history": { "driver": "file", "path": "./remindo_history" }
type HistoryConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// TaskConfig is one seeded task. Timestamps are RFC 3339.
type TaskConfig struct {
	Title            string `json:"title"`
	Details          string `json:"details,omitempty"`
	Start            string `json:"start"`
	End              string `json:"end"`
	Recurring        bool   `json:"recurring,omitempty"`
	FrequencyMinutes int64  `json:"frequency_minutes,omitempty"`
}

// Task parses the seeded entry. Validation against "start must be in the
// future" happens at scheduling time, not here.
func (tc TaskConfig) Task() (task.Task, error) {
	start, err := time.Parse(time.RFC3339, tc.Start)
	if err != nil {
		return task.Task{}, fmt.Errorf("task %q: invalid start %q: %w", tc.Title, tc.Start, err)
	}
	end, err := time.Parse(time.RFC3339, tc.End)
	if err != nil {
		return task.Task{}, fmt.Errorf("task %q: invalid end %q: %w", tc.Title, tc.End, err)
	}
	return task.Task{
		Title:            tc.Title,
		Details:          tc.Details,
		StartTime:        start.UTC(),
		EndTime:          end.UTC(),
		Recurring:        tc.Recurring,
		FrequencyMinutes: tc.FrequencyMinutes,
	}, nil
}

// Default returns the config used when no file exists.
func Default() *Config {
	return &Config{}
}

// ConsoleLogging reports whether console logging is on (default true).
func (c *Config) ConsoleLogging() bool {
	return c.Logging.Console == nil || *c.Logging.Console
}

// ConsoleNotify reports whether the console notification sink is on
// (default true).
func (c *Config) ConsoleNotify() bool {
	return c.Notify.Console == nil || *c.Notify.Console
}
