package logger

// noopLogger discards everything. Used by FromContext when nothing was
// attached, and in tests that don't care about log output.
type noopLogger struct{}

// NewNop returns a Logger that discards all input.
func NewNop() Logger { return &noopLogger{} }

func (*noopLogger) Debug(string, ...Field) {}
func (*noopLogger) Info(string, ...Field)  {}
func (*noopLogger) Warn(string, ...Field)  {}
func (*noopLogger) Error(string, ...Field) {}
func (*noopLogger) Fatal(string, ...Field) {}
func (l *noopLogger) With(...Field) Logger { return l }
func (*noopLogger) Sync() error            { return nil }
