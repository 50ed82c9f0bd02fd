package vellum

// Logger is the logging interface accepted by Root. Its shape matches
// log/slog.Logger, so a *slog.Logger satisfies it directly. See the
// logger subpackage for adapters to other common logging libraries.
//
// Root logs conflicts and ancestor-committed failures at Warn, backend
// errors encountered during merge at Error, and GC sweep summaries at
// Info. It never logs on the Read/Write/Delete/Create hot path.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
}

// DiscardLogger is the default Logger; all methods are no-ops.
type DiscardLogger struct{}

func (DiscardLogger) Error(string, ...any) {}

func (DiscardLogger) Warn(string, ...any) {}

func (DiscardLogger) Info(string, ...any) {}
