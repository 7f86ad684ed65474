// Package notify is the surface through which the form controller talks to
// the user: transient notifications, modal alerts and confirmations.
package notify

import (
	"context"
	"strings"
	"time"
)

// Level classifies a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// String implements fmt.Stringer.
func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// ParseLevel maps a level name to a Level, defaulting to LevelInfo.
func ParseLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "success":
		return LevelSuccess
	case "warning", "warn":
		return LevelWarning
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Notifier shows messages to the user.
//
// Confirm may block until the user answers. Exactly one of onAccept and
// onReject is called, unless ctx ends first, in which case neither is.
type Notifier interface {
	Notify(msg string, level Level, d time.Duration)
	Alert(title, msg string)
	Confirm(ctx context.Context, title, msg string, onAccept, onReject func())
}

// Discard ignores notifications and rejects every confirmation.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(string, Level, time.Duration) {}
func (discard) Alert(string, string) {}
func (discard) Confirm(ctx context.Context, _, _ string, _, onReject func()) {
	if ctx.Err() == nil && onReject != nil {
		onReject()
	}
}
