package core

// Logger is a seam for reporting recoverable setup-time diagnostics
// (texture load failures, scene parse warnings) instead of writing to
// stdout directly. No subsystem in this module takes a Logger, and
// NopLogger is its only implementation.
type Logger interface {
	Printf(format string, args ...interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Printf(string, ...interface{}) {}
