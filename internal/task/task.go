package task

import (
	"errors"
	"fmt"
	"time"
)

// Task is the unit of schedulable work. ID 0 is the unassigned placeholder;
// the store hands out real ids at insertion time.
type Task struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Details          string    `json:"details"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	Recurring        bool      `json:"is_recurring"`
	FrequencyMinutes int64     `json:"frequency_minutes,omitempty"`
}

var (
	ErrStartNotFuture = errors.New("start time must be in the future")
	ErrEndNotAfter    = errors.New("end time must be after the start time")
	ErrBadFrequency   = errors.New("frequency_minutes must be a positive number of minutes")
	ErrFrequencySet   = errors.New("frequency_minutes is only valid for recurring tasks")
)

// Validate enforces the creation-time invariants. They are not re-checked
// internally: a task that passed Validate stays valid for its whole lifecycle.
func (t Task) Validate(now time.Time) error {
	if !t.StartTime.After(now) {
		return ErrStartNotFuture
	}
	if !t.EndTime.After(t.StartTime) {
		return ErrEndNotAfter
	}
	if t.Recurring {
		if t.FrequencyMinutes <= 0 {
			return ErrBadFrequency
		}
	} else if t.FrequencyMinutes != 0 {
		return ErrFrequencySet
	}
	return nil
}

// Frequency returns the recurrence interval as a duration.
func (t Task) Frequency() time.Duration {
	return time.Duration(t.FrequencyMinutes) * time.Minute
}

// Next derives the successor of a recurring task: both times shift forward by
// the frequency, everything else is copied, the id resets to the placeholder.
// A duration overflow on the shift is fatal to the chain, not to the process.
func (t Task) Next() (Task, error) {
	if !t.Recurring {
		return Task{}, errors.New("task is not recurring")
	}
	shift := t.Frequency()
	if shift <= 0 {
		return Task{}, fmt.Errorf("frequency overflow: %d minutes", t.FrequencyMinutes)
	}
	next := t
	next.ID = 0
	next.StartTime = t.StartTime.Add(shift)
	next.EndTime = t.EndTime.Add(shift)
	if !next.StartTime.After(t.StartTime) || !next.EndTime.After(t.EndTime) {
		return Task{}, fmt.Errorf("timestamp overflow shifting task %d by %d minutes", t.ID, t.FrequencyMinutes)
	}
	return next, nil
}
