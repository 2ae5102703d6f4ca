// Package logging wraps log/slog with a component tag and the handler
// choice (text or JSON) driven by configuration.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldError     = "error"
	FieldHorizon   = "horizon"
	FieldStart     = "start"
	FieldDuration  = "duration_ms"
	FieldEvents    = "events"
	FieldGen       = "generation"
	FieldScenario  = "scenario"
)

// Component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
	ComponentRefresher = "refresher"
	ComponentCLI       = "cli"
)

// Logger wraps slog.Logger and stamps every record with its component.
type Logger struct {
	*slog.Logger
	base      *slog.Logger // same attrs, minus the component
	component string
}

type Config struct {
	Level     slog.Level
	Format    string // "text" or "json"
	Component string
	Output    io.Writer // nil = stderr
}

// New creates a logger with the given configuration.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	component := cfg.Component
	if component == "" {
		component = ComponentApp
	}
	return newLogger(slog.New(handler), component)
}

func newLogger(base *slog.Logger, component string) *Logger {
	return &Logger{
		Logger:    base.With(FieldComponent, component),
		base:      base,
		component: component,
	}
}

// Discard returns a logger that drops everything. Used in tests.
func Discard() *Logger {
	return New(Config{Output: io.Discard})
}

// With returns a new logger with the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return newLogger(l.base.With(args...), l.component)
}

// WithComponent returns a child logger tagged with another component.
func (l *Logger) WithComponent(component string) *Logger {
	return newLogger(l.base, component)
}

// Component returns the logger's component name
func (l *Logger) Component() string {
	return l.component
}

// SetDefault installs the logger as slog's default.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}

type contextKey struct{}

// NewContext returns ctx carrying l.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext extracts a logger from ctx, falling back to slog's default.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return l
	}
	return newLogger(slog.Default(), "unknown")
}
