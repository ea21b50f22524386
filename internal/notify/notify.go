// Package notify delivers rendered reminder messages to one or more sinks.
//
// Delivery is best-effort: a failing sink is logged and never blocks the
// reminder engine or the other sinks.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	logx "remindo/pkg/logx"
)

// Notifier is one delivery sink.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Console writes the reminder text as a plain line, the way the CLI prints it.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = logx.Stdout()
	}
	return &Console{out: out}
}

func (c *Console) Notify(_ context.Context, n Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.out, n.Text)
	return err
}

// Fanout delivers to every sink; sink errors are logged, not propagated.
type Fanout struct {
	log   logx.Logger
	sinks []Notifier
}

func NewFanout(log logx.Logger, sinks ...Notifier) *Fanout {
	if log.IsZero() {
		log = logx.Nop()
	}
	kept := make([]Notifier, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &Fanout{log: log, sinks: kept}
}

func (f *Fanout) Notify(ctx context.Context, n Notification) error {
	for _, s := range f.sinks {
		if err := s.Notify(ctx, n); err != nil {
			f.log.Warn("notification sink failed",
				logx.Int64("task_id", n.TaskID),
				logx.String("kind", n.Kind),
				logx.Err(err))
		}
	}
	return nil
}
