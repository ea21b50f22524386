package engine

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"

	"remindo/internal/clock"
	"remindo/internal/eventbus"
	"remindo/internal/notify"
	"remindo/internal/store"
	"remindo/internal/task"
	logx "remindo/pkg/logx"
)

// Service multiplexes all reminder chains over one dispatcher and a small
// worker pool. It is safe for concurrent use.
type Service struct {
	cfg   Config
	log   logx.Logger
	clk   clock.Clock
	store *store.Store
	sink  notify.Notifier
	bus   eventbus.Bus

	mu        sync.Mutex
	cond      *sync.Cond
	heap      eventHeap
	pending   int            // heap + queued + executing events
	inFlight  map[int64]bool // chains dispatched but not yet finished
	cancelled map[int64]bool // in-flight chains cancelled under them

	wake    chan struct{}
	queue   chan *event
	stopCh  chan struct{}
	started bool
	stopped bool
	wg      sync.WaitGroup
}

func New(cfg Config, st *store.Store, sink notify.Notifier, clk clock.Clock, bus eventbus.Bus, log logx.Logger) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{
		cfg:       cfg.withDefaults(),
		log:       log,
		clk:       clk,
		store:     st,
		sink:      sink,
		bus:       bus,
		inFlight:  map[int64]bool{},
		cancelled: map[int64]bool{},
		wake:      make(chan struct{}, 1),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Start launches the dispatcher and workers. It is idempotent.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.stopped = false
	s.stopCh = make(chan struct{})
	s.queue = make(chan *event, s.cfg.QueueSize)

	s.wg.Add(1)
	go s.dispatcher(ctx)
	for i := 0; i < s.cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}
	s.log.Debug("reminder engine started", logx.Int("workers", s.cfg.Workers))
}

// Stop halts dispatching. Pending chains stay in the heap and would resume on
// a new Start; in practice the process exits right after.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.stopped = true
	close(s.stopCh)
	s.cond.Broadcast()
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Debug("reminder engine stopped")
}

// Schedule launches the reminder lifecycle for a stored task. The engine
// keeps a private copy: later store mutations do not propagate into the
// in-flight chain.
func (s *Service) Schedule(t task.Task) {
	if t.ID == 0 {
		s.log.Error("refusing to schedule task without an assigned id", logx.String("title", t.Title))
		return
	}
	s.push(s.firstEvent(t))
	s.log.Debug("task scheduled",
		logx.Int64("task_id", t.ID),
		logx.Time("start", t.StartTime),
		logx.Bool("recurring", t.Recurring))
}

// Cancel terminates the chain owned by the given occurrence id: its pending
// event is dropped and no successor will be launched. Chains of successors
// already inserted under their own ids are unaffected.
func (s *Service) Cancel(id int64) {
	s.mu.Lock()
	removed := s.heap.removeChain(id)
	s.pending -= removed
	if s.inFlight[id] {
		s.cancelled[id] = true
	}
	if s.pending == 0 {
		s.cond.Broadcast()
	}
	s.mu.Unlock()

	if removed > 0 {
		s.log.Debug("cancelled pending reminder", logx.Int64("task_id", id))
	}
}

// Pending reports how many events are scheduled, queued or executing.
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// AwaitIdle blocks until every chain has run to its terminal state or the
// engine stops. Recurring chains never go idle.
func (s *Service) AwaitIdle(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.mu.Lock()
		for s.pending > 0 && !s.stopped {
			s.cond.Wait()
		}
		s.mu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) push(ev *event) {
	s.mu.Lock()
	heap.Push(&s.heap, ev)
	s.pending++
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Service) finish(chain int64) {
	s.mu.Lock()
	delete(s.inFlight, chain)
	delete(s.cancelled, chain)
	s.pending--
	if s.pending == 0 {
		s.cond.Broadcast()
	}
	s.mu.Unlock()
}

func (s *Service) chainCancelled(chain int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled[chain]
}

// firstEvent picks the earliest applicable phase for an occurrence. Reminder
// points already in the past are skipped silently; completion always fires,
// at the end time or immediately if that too has passed.
func (s *Service) firstEvent(t task.Task) *event {
	now := s.clk.Now()
	if rs := t.StartTime.Add(-s.cfg.StartLead); rs.After(now) {
		return &event{at: rs, phase: PhaseStartReminder, task: t, chain: t.ID}
	}
	if re := t.EndTime.Add(-s.cfg.EndLead); re.After(now) {
		return &event{at: re, phase: PhaseEndReminder, task: t, chain: t.ID}
	}
	at := t.EndTime
	if at.Before(now) {
		at = now
	}
	return &event{at: at, phase: PhaseComplete, task: t, chain: t.ID}
}

func (s *Service) dispatcher(ctx context.Context) {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		now := s.clk.Now()
		var due []*event
		for s.heap.Len() > 0 && !s.heap.peek().at.After(now) {
			ev := heap.Pop(&s.heap).(*event)
			s.inFlight[ev.chain] = true
			due = append(due, ev)
		}
		var timer <-chan time.Time
		if s.heap.Len() > 0 {
			timer = s.clk.After(s.heap.peek().at.Sub(now))
		}
		s.mu.Unlock()

		for _, ev := range due {
			select {
			case s.queue <- ev:
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
		if len(due) > 0 {
			// More entries may have become due while handing these off.
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-s.wake:
		case <-timer:
		}
	}
}

func (s *Service) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case ev := <-s.queue:
			s.exec(ctx, ev)
		}
	}
}

func (s *Service) exec(ctx context.Context, ev *event) {
	defer s.finish(ev.chain)

	if s.chainCancelled(ev.chain) {
		s.log.Debug("dropping event for removed task",
			logx.Int64("task_id", ev.chain),
			logx.String("phase", ev.phase.String()))
		return
	}

	switch ev.phase {
	case PhaseStartReminder:
		s.emit(ctx, notify.KindStartReminder, ev.task,
			fmt.Sprintf("Reminder: '%s' starts in %d minutes!", ev.task.Title, int(s.cfg.StartLead.Minutes())))
	case PhaseEndReminder:
		s.emit(ctx, notify.KindEndReminder, ev.task,
			fmt.Sprintf("Reminder: '%s' ends in %d minutes!", ev.task.Title, int(s.cfg.EndLead.Minutes())))
	case PhaseComplete:
		s.emit(ctx, notify.KindComplete, ev.task,
			fmt.Sprintf("Task '%s' is complete", ev.task.Title))
	case PhaseNextOccurrence:
		s.launchSuccessor(ctx, ev)
		return
	}

	next, ok := s.advance(ev)
	if !ok {
		return
	}
	if s.chainCancelled(ev.chain) {
		return
	}
	s.push(next)
}

// advance computes the chain's next event after ev has fired.
func (s *Service) advance(ev *event) (*event, bool) {
	t := ev.task
	switch ev.phase {
	case PhaseStartReminder:
		now := s.clk.Now()
		if re := t.EndTime.Add(-s.cfg.EndLead); re.After(now) {
			return &event{at: re, phase: PhaseEndReminder, task: t, chain: ev.chain}, true
		}
		fallthrough
	case PhaseEndReminder:
		at := t.EndTime
		if now := s.clk.Now(); at.Before(now) {
			at = now
		}
		return &event{at: at, phase: PhaseComplete, task: t, chain: ev.chain}, true
	case PhaseComplete:
		if !t.Recurring {
			s.publish(EventChainEnded, ChainEvent{TaskID: t.ID})
			return nil, false
		}
		succ, err := t.Next()
		if err != nil {
			// Fatal to this chain only; other chains and the store are untouched.
			s.log.Error("recurrence chain stopped", logx.Int64("task_id", t.ID), logx.Err(err))
			s.publish(EventChainFailed, ChainEvent{TaskID: t.ID, Error: err.Error()})
			return nil, false
		}
		// Wait until the successor's start; a start already in the past fires
		// immediately rather than failing.
		return &event{at: succ.StartTime, phase: PhaseNextOccurrence, task: succ, chain: ev.chain}, true
	default:
		return nil, false
	}
}

// launchSuccessor inserts the successor into the store, announces it and
// re-enqueues its own reminder lifecycle under its freshly assigned id.
func (s *Service) launchSuccessor(ctx context.Context, ev *event) {
	succ := ev.task
	id := s.store.Add(succ)
	succ.ID = id

	s.emit(ctx, notify.KindNextOccurrence, succ,
		fmt.Sprintf("Next recurring task scheduled with ID: %d", id))
	s.publish(EventChainAdvanced, ChainEvent{TaskID: ev.chain, SuccessorID: id})

	if s.chainCancelled(ev.chain) {
		// Removed between insert and handoff: the successor stays in the
		// store under its own id but its reminders never start.
		return
	}
	s.push(s.firstEvent(succ))
}

func (s *Service) emit(ctx context.Context, kind string, t task.Task, text string) {
	n := notify.Notification{
		At:     s.clk.Now(),
		TaskID: t.ID,
		Kind:   kind,
		Title:  t.Title,
		Text:   text,
	}
	if s.sink != nil {
		_ = s.sink.Notify(ctx, n)
	}
	s.publish(EventReminderFired, n)
}

func (s *Service) publish(typ string, data any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(eventbus.Event{Type: typ, Time: s.clk.Now(), Data: data})
}
