package notify

import "time"

// Kind labels the reminder lifecycle point a notification belongs to.
const (
	KindStartReminder  = "start-reminder"
	KindEndReminder    = "end-reminder"
	KindComplete       = "complete"
	KindNextOccurrence = "next-occurrence"
)

// Notification is one rendered reminder message.
type Notification struct {
	At     time.Time `json:"at"`
	TaskID int64     `json:"task_id"`
	Kind   string    `json:"kind"`
	Title  string    `json:"title"`
	Text   string    `json:"text"`
}

// Config controls which sinks the fanout carries.
type Config struct {
	Console  bool
	Telegram TelegramConfig
}

type TelegramConfig struct {
	Enabled    bool
	Token      string
	ChatID     int64
	RatePerSec int
}
