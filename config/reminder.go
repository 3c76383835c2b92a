package config

import (
	"time"

	"github.com/spf13/viper"
)

// Reminder due date reminder scan config struct
type Reminder struct {
	Enabled   bool
	Interval  time.Duration
	Window    time.Duration
	Workers   int
	QueueSize int
}

// getReminderConfig returns the reminder config.
func getReminderConfig(v *viper.Viper) *Reminder {
	return &Reminder{
		Enabled:   v.GetBool("reminder.enabled"),
		Interval:  getDurationOrDefault(v, "reminder.interval", 5*time.Minute),
		Window:    getDurationOrDefault(v, "reminder.window", 24*time.Hour),
		Workers:   getIntOrDefault(v, "reminder.workers", 4),
		QueueSize: getIntOrDefault(v, "reminder.queue_size", 256),
	}
}
