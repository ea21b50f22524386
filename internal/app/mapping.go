package app

import (
	"context"
	"fmt"
	"time"

	"remindo/internal/calendar"
	"remindo/internal/config"
	"remindo/internal/engine"
	"remindo/internal/history"
	"remindo/internal/notify"
	logx "remindo/pkg/logx"
)

func mapLoggingConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.ConsoleLogging(),
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapEngineConfig(cfg *config.Config) (engine.Config, error) {
	if cfg.Engine.Workers < 0 {
		return engine.Config{}, fmt.Errorf("engine.workers must be >= 0")
	}
	if cfg.Engine.QueueSize < 0 {
		return engine.Config{}, fmt.Errorf("engine.queue_size must be >= 0")
	}
	startLead, err := config.ParseDurationField("engine.start_lead", cfg.Engine.StartLead)
	if err != nil {
		return engine.Config{}, err
	}
	endLead, err := config.ParseDurationField("engine.end_lead", cfg.Engine.EndLead)
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		Workers:   cfg.Engine.Workers,
		QueueSize: cfg.Engine.QueueSize,
		StartLead: startLead,
		EndLead:   endLead,
	}, nil
}

func mapNotifyConfig(cfg *config.Config) (notify.Config, error) {
	out := notify.Config{Console: cfg.ConsoleNotify()}
	if tg := cfg.Notify.Telegram; tg != nil && tg.Enabled {
		if tg.Token == "" {
			return notify.Config{}, fmt.Errorf("notify.telegram.token is required when enabled")
		}
		if tg.ChatID == 0 {
			return notify.Config{}, fmt.Errorf("notify.telegram.chat_id is required when enabled")
		}
		out.Telegram = notify.TelegramConfig{
			Enabled:    true,
			Token:      tg.Token,
			ChatID:     tg.ChatID,
			RatePerSec: tg.RatePerSec,
		}
	}
	return out, nil
}

// mapCalendarConfig returns enabled=false when the section is absent or off.
func mapCalendarConfig(cfg *config.Config) (calendar.Config, bool, error) {
	cc := cfg.Calendar
	if cc == nil || !cc.Enabled {
		return calendar.Config{}, false, nil
	}
	if cc.BaseURL == "" {
		return calendar.Config{}, false, fmt.Errorf("calendar.base_url is required when enabled")
	}
	timeout, err := config.ParseDurationField("calendar.timeout", cc.Timeout)
	if err != nil {
		return calendar.Config{}, false, err
	}
	interval, err := config.ParseDurationOrDefault("calendar.sync_interval", cc.SyncInterval, 15*time.Minute)
	if err != nil {
		return calendar.Config{}, false, err
	}
	window, err := config.ParseDurationOrDefault("calendar.dedup_window", cc.DedupWindow, 30*24*time.Hour)
	if err != nil {
		return calendar.Config{}, false, err
	}
	return calendar.Config{
		Enabled:        true,
		BaseURL:        cc.BaseURL,
		Token:          cc.Token,
		Timeout:        timeout,
		PushRatePerSec: cc.PushRatePerSec,
		SyncInterval:   interval,
		DedupWindow:    window,
	}, true, nil
}

func mapHistoryConfig(cfg *config.Config) (history.Config, error) {
	hc := cfg.History
	if hc == nil {
		return history.Config{}, nil
	}
	busy, err := config.ParseDurationField("history.busy_timeout", hc.BusyTimeout)
	if err != nil {
		return history.Config{}, err
	}
	return history.Config{
		Driver:      hc.Driver,
		Path:        hc.Path,
		BusyTimeout: busy,
	}, nil
}

// validateConfig is the hot-reload gate: a config that fails here is rejected
// without touching the running services.
func validateConfig(_ context.Context, cfg *config.Config) error {
	if _, err := mapEngineConfig(cfg); err != nil {
		return err
	}
	if _, err := mapNotifyConfig(cfg); err != nil {
		return err
	}
	if _, _, err := mapCalendarConfig(cfg); err != nil {
		return err
	}
	if _, err := mapHistoryConfig(cfg); err != nil {
		return err
	}
	for _, tc := range cfg.Tasks {
		if _, err := tc.Task(); err != nil {
			return err
		}
	}
	return nil
}
