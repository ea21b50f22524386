package engine

import (
	"time"

	"remindo/internal/task"
)

// Config controls the reminder engine.
type Config struct {
	Workers   int           // worker pool size (default 2)
	QueueSize int           // due-event queue capacity (default 64)
	StartLead time.Duration // how long before start the first reminder fires (default 5m)
	EndLead   time.Duration // how long before end the second reminder fires (default 2m)
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	if c.StartLead <= 0 {
		c.StartLead = 5 * time.Minute
	}
	if c.EndLead <= 0 {
		c.EndLead = 2 * time.Minute
	}
	return c
}

// Phase is one step of an occurrence's lifecycle state machine:
// start reminder -> end reminder -> complete -> (next occurrence | terminal).
// Phases that are already in the past at evaluation time are skipped silently,
// except completion, which always fires.
type Phase int

const (
	PhaseStartReminder Phase = iota
	PhaseEndReminder
	PhaseComplete
	PhaseNextOccurrence
)

func (p Phase) String() string {
	switch p {
	case PhaseStartReminder:
		return "start-reminder"
	case PhaseEndReminder:
		return "end-reminder"
	case PhaseComplete:
		return "complete"
	case PhaseNextOccurrence:
		return "next-occurrence"
	default:
		return "unknown"
	}
}

// event is one pending fire in some chain.
//
// chain is the id of the occurrence the event belongs to and is the
// cancellation key. For PhaseNextOccurrence the task field holds the
// not-yet-inserted successor while chain still names the predecessor.
type event struct {
	at    time.Time
	phase Phase
	task  task.Task
	chain int64
	index int // heap bookkeeping
}

// Bus event types published by the engine.
const (
	EventReminderFired = "reminder.fired"
	EventChainAdvanced = "chain.advanced"
	EventChainEnded    = "chain.ended"
	EventChainFailed   = "chain.failed"
)

// ChainEvent is the bus payload for chain lifecycle events.
type ChainEvent struct {
	TaskID      int64  `json:"task_id"`
	SuccessorID int64  `json:"successor_id,omitempty"`
	Error       string `json:"error,omitempty"`
}
