// Package notify records user-facing dispatch notifications
package notify

import (
	"log/slog"
	"sync"
	"time"
)

// Level is the severity of a notification
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is one message shown to the operator
type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Feed keeps the most recent notifications in memory and mirrors them to the log
type Feed struct {
	mu     sync.Mutex
	items  []Notification
	limit  int
	logger *slog.Logger
}

// NewFeed creates a feed holding at most limit entries
func NewFeed(limit int, logger *slog.Logger) *Feed {
	if limit <= 0 {
		limit = 100
	}
	return &Feed{
		limit:  limit,
		logger: logger.With("component", "notify"),
	}
}

// Notify records a notification
func (f *Feed) Notify(level Level, message string) {
	switch level {
	case LevelError:
		f.logger.Warn(message)
	default:
		f.logger.Info(message, "level", string(level))
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = append(f.items, Notification{Level: level, Message: message, Time: time.Now()})
	if len(f.items) > f.limit {
		f.items = append([]Notification(nil), f.items[len(f.items)-f.limit:]...)
	}
}

// Recent returns up to n notifications, newest first. n <= 0 returns all.
func (f *Feed) Recent(n int) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	if n <= 0 || n > len(f.items) {
		n = len(f.items)
	}
	out := make([]Notification, 0, n)
	for i := len(f.items) - 1; i >= len(f.items)-n; i-- {
		out = append(out, f.items[i])
	}
	return out
}
