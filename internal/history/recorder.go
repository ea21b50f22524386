package history

import (
	"context"
	"sync"

	"remindo/internal/engine"
	"remindo/internal/eventbus"
	"remindo/internal/notify"
	logx "remindo/pkg/logx"
)

// Recorder subscribes to the engine's bus events and appends every fired
// notification to the history store. It is a passive observer: a write
// failure is logged and never reaches the reminder path.
type Recorder struct {
	log   logx.Logger
	store Store
	bus   eventbus.Bus

	mu    sync.Mutex
	unsub func()
	done  chan struct{}
}

func NewRecorder(st Store, bus eventbus.Bus, log logx.Logger) *Recorder {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Recorder{log: log, store: st, bus: bus}
}

// Start begins consuming bus events. A nil store makes Start a no-op.
func (r *Recorder) Start(ctx context.Context) {
	if r.store == nil || r.bus == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done != nil {
		return
	}
	ch, unsub := r.bus.Subscribe(64)
	r.unsub = unsub
	r.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-ch:
				if !ok {
					return
				}
				if e.Type != engine.EventReminderFired {
					continue
				}
				n, ok := e.Data.(notify.Notification)
				if !ok {
					continue
				}
				entry := Entry{At: n.At, TaskID: n.TaskID, Kind: n.Kind, Title: n.Title, Text: n.Text}
				if err := r.store.AppendNotification(ctx, entry); err != nil {
					r.log.Warn("history append failed", logx.Int64("task_id", n.TaskID), logx.Err(err))
				}
			}
		}
	}(r.done)
}

func (r *Recorder) Stop() {
	r.mu.Lock()
	unsub := r.unsub
	done := r.done
	r.unsub = nil
	r.done = nil
	r.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if done != nil {
		<-done
	}
}
