package clock

import (
	"sync"
	"time"
)

// Clock is the single time source every timed operation depends on.
// After is the only suspension primitive the engine uses; giving tests a
// deterministic implementation keeps reminder timing testable without sleeping.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type Real struct{}

func (Real) Now() time.Time { return time.Now().UTC() }

func (Real) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Fake is deterministic and test-friendly. Time only moves via Set/Advance;
// pending After waiters fire when the clock passes their deadline.
type Fake struct {
	mu      sync.Mutex
	cond    *sync.Cond
	now     time.Time
	waiters []fakeWaiter
}

type fakeWaiter struct {
	at time.Time
	ch chan time.Time
}

func NewFake(start time.Time) *Fake {
	f := &Fake{now: start.UTC()}
	f.cond = sync.NewCond(&f.mu)
	return f
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if d <= 0 {
		ch <- f.now
		return ch
	}
	f.waiters = append(f.waiters, fakeWaiter{at: f.now.Add(d), ch: ch})
	f.cond.Broadcast()
	return ch
}

func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t.UTC()
	f.fireLocked()
	f.mu.Unlock()
}

func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.fireLocked()
	f.mu.Unlock()
}

// BlockUntil waits until at least n After waiters are registered. Tests use it
// to make sure the engine is parked on its timer before advancing the clock.
func (f *Fake) BlockUntil(n int) {
	f.mu.Lock()
	for len(f.waiters) < n {
		f.cond.Wait()
	}
	f.mu.Unlock()
}

func (f *Fake) fireLocked() {
	remaining := f.waiters[:0]
	for _, w := range f.waiters {
		if w.at.After(f.now) {
			remaining = append(remaining, w)
			continue
		}
		w.ch <- f.now
	}
	f.waiters = remaining
}
