// Package app wires the reminder services together behind the CLI.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"remindo/internal/calendar"
	"remindo/internal/clock"
	"remindo/internal/config"
	"remindo/internal/engine"
	"remindo/internal/eventbus"
	"remindo/internal/history"
	"remindo/internal/notify"
	"remindo/internal/store"
	"remindo/internal/task"
	logx "remindo/pkg/logx"
)

// Options tweak construction; the zero value is what the CLI uses.
type Options struct {
	// Clock overrides the wall clock (tests).
	Clock clock.Clock
	// Out overrides where console notifications go (default os.Stdout).
	Out io.Writer
	// Notifier replaces the configured sinks entirely (tests).
	Notifier notify.Notifier
	// Calendar replaces the configured HTTP bridge (tests).
	Calendar calendar.Bridge
}

type App struct {
	cfgm *config.Manager

	log  logx.Logger
	logs *logx.Service
	bus  eventbus.Bus
	clk  clock.Clock

	store  *store.Store
	engine *engine.Service
	engCfg engine.Config
	cal    calendar.Bridge // nil when disabled
	calCfg calendar.Config
	hist   history.Store // nil when disabled
	rec    *history.Recorder
}

func New(cfgPath string, opts Options) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.LoadOrDefault()
	if err != nil {
		return nil, err
	}

	logs, log := logx.New(mapLoggingConfig(cfg))
	log = log.With(logx.String("comp", "app"))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))
	cfgm.SetValidator(validateConfig)

	clk := opts.Clock
	if clk == nil {
		clk = clock.Real{}
	}

	bus := eventbus.New()
	st := store.New()

	engCfg, err := mapEngineConfig(cfg)
	if err != nil {
		return nil, err
	}

	sink := opts.Notifier
	if sink == nil {
		ncfg, err := mapNotifyConfig(cfg)
		if err != nil {
			return nil, err
		}
		var sinks []notify.Notifier
		if ncfg.Console {
			out := opts.Out
			if out == nil {
				out = os.Stdout
			}
			sinks = append(sinks, notify.NewConsole(out))
		}
		if ncfg.Telegram.Enabled {
			tg, err := notify.NewTelegram(ncfg.Telegram, log.With(logx.String("comp", "telegram")))
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, tg)
		}
		sink = notify.NewFanout(log.With(logx.String("comp", "notify")), sinks...)
	}

	eng := engine.New(engCfg, st, sink, clk, bus, log.With(logx.String("comp", "engine")))

	cal := opts.Calendar
	calCfg, calEnabled, err := mapCalendarConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cal == nil && calEnabled {
		client, err := calendar.NewClient(calCfg, log.With(logx.String("comp", "calendar")))
		if err != nil {
			return nil, err
		}
		cal = client
		log.Info("calendar bridge enabled", logx.String("base_url", calCfg.BaseURL))
	}

	histCfg, err := mapHistoryConfig(cfg)
	if err != nil {
		return nil, err
	}
	hist, err := history.Open(histCfg, log.With(logx.String("comp", "history")))
	if err != nil {
		return nil, err
	}
	var rec *history.Recorder
	if hist != nil {
		rec = history.NewRecorder(hist, bus, log.With(logx.String("comp", "history")))
		log.Info("history enabled", logx.String("driver", histCfg.Driver))
	}

	return &App{
		cfgm:   cfgm,
		log:    log,
		logs:   logs,
		bus:    bus,
		clk:    clk,
		store:  st,
		engine: eng,
		engCfg: engCfg,
		cal:    cal,
		calCfg: calCfg,
		hist:   hist,
		rec:    rec,
	}, nil
}

func (a *App) Config() *config.Config   { return a.cfgm.Get() }
func (a *App) Clock() clock.Clock      { return a.clk }
func (a *App) Bus() eventbus.Bus       { return a.bus }
func (a *App) Engine() *engine.Service { return a.engine }

func (a *App) Start(ctx context.Context) {
	a.engine.Start(ctx)
	if a.rec != nil {
		a.rec.Start(ctx)
	}
	a.log.Info("started")
}

func (a *App) Stop() {
	a.engine.Stop()
	if a.rec != nil {
		a.rec.Stop()
	}
	if a.hist != nil {
		if err := a.hist.Close(); err != nil {
			a.log.Warn("history close failed", logx.Err(err))
		}
	}
	a.log.Info("stopped")
	if a.logs != nil {
		_ = a.logs.Close()
	}
}

// AddTask validates, stores and schedules a task, then mirrors it to the
// calendar when the bridge is on. The returned id is already assigned.
// A failed push is logged and reported but the local add stands.
func (a *App) AddTask(ctx context.Context, t task.Task) (int64, error) {
	if err := t.Validate(a.clk.Now()); err != nil {
		return 0, err
	}
	t.ID = a.store.Add(t)
	a.engine.Schedule(t)
	a.log.Info("task added",
		logx.Int64("id", t.ID),
		logx.String("title", t.Title),
		logx.Time("start", t.StartTime),
		logx.Bool("recurring", t.Recurring))

	if a.cal != nil {
		if err := a.cal.Push(ctx, t); err != nil {
			a.log.Warn("calendar push failed", logx.Int64("id", t.ID), logx.Err(err))
			return t.ID, fmt.Errorf("task %d added locally, calendar push failed: %w", t.ID, err)
		}
	}
	return t.ID, nil
}

// ListTasks returns a snapshot of the store ordered by id.
func (a *App) ListTasks() []task.Task {
	return a.store.List()
}

// RemoveTask deletes the task and cancels every reminder still pending for
// it; a removed recurring task spawns no further occurrences.
func (a *App) RemoveTask(id int64) (task.Task, bool) {
	t, ok := a.store.Remove(id)
	if !ok {
		return task.Task{}, false
	}
	a.engine.Cancel(id)
	a.log.Info("task removed", logx.Int64("id", id), logx.String("title", t.Title))
	return t, true
}

// SyncCalendar pulls external events and imports the new ones as tasks.
// Events are deduplicated by UID through the history store, so repeated
// syncs don't multiply imports. Returns how many tasks were imported.
func (a *App) SyncCalendar(ctx context.Context) (int, error) {
	if a.cal == nil {
		return 0, fmt.Errorf("calendar bridge is not enabled")
	}
	events, err := a.cal.Pull(ctx)
	if err != nil {
		return 0, err
	}

	now := a.clk.Now()
	imported := 0
	for _, ev := range events {
		key := calendar.DedupKey(ev)
		if key == "" {
			a.log.Warn("calendar event without uid skipped", logx.String("title", ev.Title))
			continue
		}
		if a.seenCalendarEvent(ctx, key, now) {
			continue
		}

		t := calendar.ToTask(ev)
		if err := t.Validate(now); err != nil {
			// Already-started or malformed events are not importable.
			a.log.Debug("calendar event not importable",
				logx.String("uid", ev.UID), logx.Err(err))
			a.rememberCalendarEvent(ctx, key, now)
			continue
		}

		t.ID = a.store.Add(t)
		a.engine.Schedule(t)
		a.rememberCalendarEvent(ctx, key, now)
		imported++
		a.log.Info("calendar event imported",
			logx.Int64("id", t.ID), logx.String("uid", ev.UID), logx.String("title", t.Title))
	}
	return imported, nil
}

func (a *App) seenCalendarEvent(ctx context.Context, key string, now time.Time) bool {
	if a.hist == nil {
		return false
	}
	until, ok, err := a.hist.GetDedup(ctx, key)
	if err != nil {
		a.log.Warn("dedup lookup failed", logx.String("key", key), logx.Err(err))
		return false
	}
	return ok && until.After(now)
}

func (a *App) rememberCalendarEvent(ctx context.Context, key string, now time.Time) {
	if a.hist == nil {
		return
	}
	if err := a.hist.PutDedup(ctx, key, now.Add(a.calCfg.DedupWindow)); err != nil {
		a.log.Warn("dedup record failed", logx.String("key", key), logx.Err(err))
	}
}

// AwaitIdle blocks until every scheduled chain has run to completion or ctx
// is done. Used by one-shot CLI commands that stay alive for their reminders.
func (a *App) AwaitIdle(ctx context.Context) error {
	return a.engine.AwaitIdle(ctx)
}
