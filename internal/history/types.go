package history

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("history disabled")

// Config configures the history store.
//
// Driver values:
//   - "file": dependency-free file backend (jsonl + snapshot)
//   - "sqlite": SQLite database file (optional build tag)
//
// If Driver is empty or "none", history is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Entry is one recorded notification. Keep it compact and schema-stable.
type Entry struct {
	At     time.Time `json:"at"`
	TaskID int64     `json:"task_id"`
	Kind   string    `json:"kind"`
	Title  string    `json:"title"`
	Text   string    `json:"text"`
}
