package apiapp

import (
	"log/slog"

	"tinylink/internal/app/links"
)

// linksSlogLogger adapts slog to the application logging port.
type linksSlogLogger struct {
	l *slog.Logger
}

func newLinksLogger(l *slog.Logger) links.Logger {
	if l == nil {
		return links.NopLogger{}
	}

	return linksSlogLogger{l: l}
}

func (l linksSlogLogger) With(kv ...any) links.Logger {
	return linksSlogLogger{l: l.l.With(kv...)}
}

func (l linksSlogLogger) Info(msg string, kv ...any) {
	l.l.Info(msg, kv...)
}

func (l linksSlogLogger) Warn(msg string, kv ...any) {
	l.l.Warn(msg, kv...)
}

func (l linksSlogLogger) Error(msg string, kv ...any) {
	l.l.Error(msg, kv...)
}

var _ links.Logger = linksSlogLogger{}
