package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	sd "github.com/coreos/go-systemd/v22/daemon"
	"github.com/robfig/cron/v3"

	"remindo/internal/config"
	logx "remindo/pkg/logx"
)

// RunWatch runs the long-lived daemon mode: seed tasks from the config file,
// keep the engine delivering reminders, pull the calendar on a fixed cadence,
// and hot-reload logging when the config file changes. Blocks until ctx is
// canceled.
func (a *App) RunWatch(ctx context.Context) error {
	a.Start(ctx)
	defer a.Stop()

	seeded, skipped := a.seedTasks(ctx)
	a.log.Info("tasks seeded", logx.Int("count", seeded), logx.Int("skipped", skipped))

	var wg sync.WaitGroup

	// Periodic calendar pull.
	var cr *cron.Cron
	if a.cal != nil {
		cr = cron.New()
		spec := fmt.Sprintf("@every %s", a.calCfg.SyncInterval)
		if _, err := cr.AddFunc(spec, func() {
			syncCtx, cancel := context.WithTimeout(ctx, time.Minute)
			defer cancel()
			n, err := a.SyncCalendar(syncCtx)
			if err != nil {
				a.log.Warn("calendar sync failed", logx.Err(err))
				return
			}
			if n > 0 {
				a.log.Info("calendar sync", logx.Int("imported", n))
			}
		}); err != nil {
			return fmt.Errorf("calendar sync schedule: %w", err)
		}
		cr.Start()
		a.log.Info("calendar sync scheduled", logx.Duration("interval", a.calCfg.SyncInterval))
	}

	// Config file watch + hot reload.
	sub := a.cfgm.Subscribe(8)
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := a.cfgm.Watch(ctx); err != nil {
			a.log.Warn("config watch stopped", logx.Err(err))
		}
	}()
	go func() {
		defer wg.Done()
		defer a.cfgm.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				a.applyReload(newCfg)
			}
		}
	}()

	// Under systemd Type=notify, report readiness; ignored elsewhere.
	_, _ = sd.SdNotify(false, sd.SdNotifyReady)

	<-ctx.Done()

	_, _ = sd.SdNotify(false, sd.SdNotifyStopping)
	if cr != nil {
		stopped := cr.Stop()
		select {
		case <-stopped.Done():
		case <-time.After(5 * time.Second):
			a.log.Warn("calendar sync slow to stop")
		}
	}
	wg.Wait()
	return nil
}

// seedTasks schedules the tasks declared in the config file. Entries that
// fail validation (already started, bad frequency) are skipped with a
// warning rather than aborting startup.
func (a *App) seedTasks(ctx context.Context) (seeded, skipped int) {
	cfg := a.cfgm.Get()
	if cfg == nil {
		return 0, 0
	}
	for _, tc := range cfg.Tasks {
		t, err := tc.Task()
		if err != nil {
			a.log.Warn("seed task unparsable", logx.String("title", tc.Title), logx.Err(err))
			skipped++
			continue
		}
		if _, err := a.AddTask(ctx, t); err != nil {
			a.log.Warn("seed task rejected", logx.String("title", tc.Title), logx.Err(err))
			skipped++
			continue
		}
		seeded++
	}
	return seeded, skipped
}

// applyReload applies the hot-reloadable parts of a validated config.
// Engine, calendar and history settings are fixed at startup; a change
// there logs a restart-required warning instead of being silently ignored.
func (a *App) applyReload(cfg *config.Config) {
	if cfg == nil {
		return
	}
	a.logs.Apply(mapLoggingConfig(cfg))

	if engCfg, err := mapEngineConfig(cfg); err == nil {
		if engCfg != a.engCfg {
			a.log.Warn("engine config changed; restart required for changes to take effect")
		}
	}
	_, calEnabled, _ := mapCalendarConfig(cfg)
	if calEnabled != (a.cal != nil) {
		a.log.Warn("calendar config changed; restart required for changes to take effect")
	}

	a.log.Info("config reloaded")
}
