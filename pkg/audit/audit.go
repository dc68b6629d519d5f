// Package audit emits a structured trail of every mutating operation: who
// submitted what to which flow, and which administrative lifecycle actions
// ran. Events are key/value structured so downstream log shippers can index
// them without parsing message text.
package audit

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Event is one auditable occurrence.
type Event interface {
	// Action is the short machine-readable action name, e.g. "submit".
	Action() string
	// Message is the human-readable summary.
	Message() string
	// Fields returns alternating key/value pairs of structured detail.
	Fields() []interface{}
}

// Logger writes audit events.
type Logger struct {
	log *log.Logger
}

// NewLogger creates an audit logger writing to stderr.
func NewLogger() *Logger {
	return NewLoggerTo(os.Stderr)
}

// NewLoggerTo creates an audit logger writing to w.
func NewLoggerTo(w io.Writer) *Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix:          "audit",
		ReportTimestamp: true,
	})
	return &Logger{log: l}
}

// Log writes one event.
func (l *Logger) Log(e Event) {
	keyvals := append([]interface{}{"action", e.Action()}, e.Fields()...)
	l.log.Info(e.Message(), keyvals...)
}

// Default is the process-wide audit logger.
var Default = NewLogger()

// Log writes an event to the default logger.
func Log(e Event) {
	Default.Log(e)
}
