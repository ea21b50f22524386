package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remindo/internal/calendar"
	"remindo/internal/notify"
	"remindo/internal/task"
)

type captureNotifier struct {
	mu   sync.Mutex
	seen []notify.Notification
}

func (c *captureNotifier) Notify(_ context.Context, n notify.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = append(c.seen, n)
	return nil
}

type fakeBridge struct {
	mu     sync.Mutex
	pushed []task.Task
	events []calendar.Event
	pullN  int
}

func (b *fakeBridge) Push(_ context.Context, t task.Task) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pushed = append(b.pushed, t)
	return nil
}

func (b *fakeBridge) Pull(context.Context) ([]calendar.Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pullN++
	return b.events, nil
}

func writeAppConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestApp(t *testing.T, bridge *fakeBridge) (*App, *captureNotifier) {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`
logging:
  console: false
notify:
  console: false
calendar:
  enabled: true
  base_url: http://calendar.test
  dedup_window: 24h
history:
  driver: file
  path: %s
`, filepath.Join(dir, "history"))

	sink := &captureNotifier{}
	a, err := New(writeAppConfig(t, cfg), Options{Notifier: sink, Calendar: bridge})
	require.NoError(t, err)
	return a, sink
}

func TestAddListRemove(t *testing.T) {
	bridge := &fakeBridge{}
	a, _ := newTestApp(t, bridge)
	ctx := context.Background()
	a.Start(ctx)
	defer a.Stop()

	now := a.Clock().Now()
	id, err := a.AddTask(ctx, task.Task{
		Title:     "write report",
		StartTime: now.Add(time.Hour),
		EndTime:   now.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, id)

	tasks := a.ListTasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "write report", tasks[0].Title)

	// Added task was mirrored to the bridge.
	require.Len(t, bridge.pushed, 1)
	assert.EqualValues(t, 1, bridge.pushed[0].ID)

	removed, ok := a.RemoveTask(id)
	require.True(t, ok)
	assert.Equal(t, "write report", removed.Title)
	assert.Empty(t, a.ListTasks())

	// Removal cancels the pending reminders, so the engine drains.
	idleCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	assert.NoError(t, a.AwaitIdle(idleCtx))

	_, ok = a.RemoveTask(999)
	assert.False(t, ok)
}

func TestAddTaskValidation(t *testing.T) {
	a, _ := newTestApp(t, &fakeBridge{})
	ctx := context.Background()
	a.Start(ctx)
	defer a.Stop()

	now := a.Clock().Now()

	_, err := a.AddTask(ctx, task.Task{
		Title:     "stale",
		StartTime: now.Add(-time.Hour),
		EndTime:   now.Add(time.Hour),
	})
	assert.ErrorIs(t, err, task.ErrStartNotFuture)

	_, err = a.AddTask(ctx, task.Task{
		Title:     "inverted",
		StartTime: now.Add(2 * time.Hour),
		EndTime:   now.Add(time.Hour),
	})
	assert.ErrorIs(t, err, task.ErrEndNotAfter)

	assert.Empty(t, a.ListTasks())
}

func TestSyncCalendarImportsOnce(t *testing.T) {
	bridge := &fakeBridge{}
	a, _ := newTestApp(t, bridge)
	ctx := context.Background()
	a.Start(ctx)
	defer a.Stop()

	now := a.Clock().Now()
	bridge.events = []calendar.Event{
		{
			UID:       "ext-1",
			Title:     "dentist",
			StartTime: now.Add(3 * time.Hour),
			EndTime:   now.Add(4 * time.Hour),
		},
		{
			// no uid, not importable
			Title:     "mystery",
			StartTime: now.Add(3 * time.Hour),
			EndTime:   now.Add(4 * time.Hour),
		},
		{
			UID:       "ext-old",
			Title:     "yesterday",
			StartTime: now.Add(-24 * time.Hour),
			EndTime:   now.Add(-23 * time.Hour),
		},
	}

	n, err := a.SyncCalendar(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	tasks := a.ListTasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "dentist", tasks[0].Title)
	assert.False(t, tasks[0].Recurring)

	// A second sync sees the same UID and imports nothing.
	n, err = a.SyncCalendar(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, a.ListTasks(), 1)

	a.RemoveTask(tasks[0].ID)
}

func TestSyncCalendarDisabled(t *testing.T) {
	cfg := `
logging:
  console: false
notify:
  console: false
`
	a, err := New(writeAppConfig(t, cfg), Options{Notifier: &captureNotifier{}})
	require.NoError(t, err)
	a.Start(context.Background())
	defer a.Stop()

	_, err = a.SyncCalendar(context.Background())
	assert.Error(t, err)
}
