// Package calendar mirrors tasks to and from an external calendar service.
//
// The core treats the bridge as an optional side-effect hook: a failed push
// is reported to the caller but never blocks or rolls back the local add, and
// a failed pull leaves the store untouched.
package calendar

import (
	"context"
	"time"

	"remindo/internal/task"
)

// Event is one externally-defined calendar record.
type Event struct {
	UID         string    `json:"uid"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

// Bridge is the external calendar collaborator.
type Bridge interface {
	// Push mirrors a newly added task, best-effort.
	Push(ctx context.Context, t task.Task) error
	// Pull fetches external events for import into the local store.
	Pull(ctx context.Context) ([]Event, error)
}

// Config configures the HTTP bridge client.
type Config struct {
	Enabled        bool
	BaseURL        string
	Token          string
	Timeout        time.Duration // per-request (default 10s)
	PushRatePerSec int           // token bucket on pushes (default 5)
	SyncInterval   time.Duration // watch-mode pull cadence (default 15m)
	DedupWindow    time.Duration // how long imported uids are remembered (default 30d)
}
