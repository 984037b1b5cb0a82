// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package locations

import (
	"fmt"
	"sync"
	"time"
)

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

var levelNames = map[Level]string{
	LevelInfo:    "info",
	LevelWarning: "warning",
	LevelError:   "error",
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}

	return fmt.Sprintf("Level(%d)", int(l))
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(b []byte) error {
	for level, s := range levelNames {
		if s == string(b) {
			*l = level

			return nil
		}
	}

	return fmt.Errorf("unknown notification level %q", b)
}

// Notification is a transient, user-visible message (a toast).
type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// DefaultNotificationBacklog bounds undelivered notifications per page.
const DefaultNotificationBacklog = 32

// Notifications is a bounded FIFO; the oldest entries are dropped on overflow.
type Notifications struct {
	mu    sync.Mutex
	items []Notification
	max   int
	now   func() time.Time
}

// NewNotifications returns a queue holding at most limit entries.
func NewNotifications(limit int) *Notifications {
	if limit <= 0 {
		limit = DefaultNotificationBacklog
	}

	return &Notifications{max: limit, now: time.Now}
}

// Push queues a notification.
func (n *Notifications) Push(level Level, format string, args ...any) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.items = append(n.items, Notification{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
		At:      n.now(),
	})

	if over := len(n.items) - n.max; over > 0 {
		n.items = n.items[over:]
	}
}

// Drain returns and forgets the queued notifications.
func (n *Notifications) Drain() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	items := n.items
	n.items = nil

	if items == nil {
		return []Notification{}
	}

	return items
}
