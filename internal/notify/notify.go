// Package notify carries transient user-facing notifications from the
// controllers to whatever surface is active (TUI status line, CLI output).
package notify

import "github.com/VoxDesk/voxdesk/internal/logger"

// Kind classifies a notification for presentation.
type Kind int

const (
	Info Kind = iota
	Success
	Warning
	Error
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notifier receives user-visible notifications.
type Notifier interface {
	Notify(kind Kind, message string)
}

// Func adapts a function to the Notifier interface.
type Func func(kind Kind, message string)

// Notify implements Notifier.
func (f Func) Notify(kind Kind, message string) {
	f(kind, message)
}

// Log returns a notifier that writes notifications to the default logger.
// Used by plain CLI commands that have no interactive surface.
func Log() Notifier {
	return Func(func(kind Kind, message string) {
		switch kind {
		case Error:
			logger.Error("%s", message)
		case Warning:
			logger.Warn("%s", message)
		default:
			logger.Info("%s", message)
		}
	})
}

// Discard returns a notifier that drops everything.
func Discard() Notifier {
	return Func(func(Kind, string) {})
}
