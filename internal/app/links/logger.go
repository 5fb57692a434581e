package links

// Logger receives link lifecycle events from Service: creations, generated
// code collisions, exhausted retries and deletions.
type Logger interface {
	With(kv ...any) Logger
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

// NopLogger is the Service default when no logger is configured.
type NopLogger struct{}

func (NopLogger) With(...any) Logger   { return NopLogger{} }
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}
