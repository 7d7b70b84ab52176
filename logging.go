package keyb

import "github.com/getlantern/golog"

// Logger is the session manager's optional diagnostic sink. Failures the
// original would report through LOG_WARNING/LOG(LOG_BIOS,...) -- never
// fatal, a Switch or Load that fails just returns its error -- go through
// here instead of being silently dropped.
type Logger interface {
	Warnf(format string, args ...interface{})
	Infof(format string, args ...interface{})
}

// NopLogger discards everything. It is the default Logger for a Session
// built without an explicit one, and what the core's own unit tests use.
type NopLogger struct{}

func (NopLogger) Warnf(string, ...interface{}) {}
func (NopLogger) Infof(string, ...interface{}) {}

// gologLogger adapts github.com/getlantern/golog to Logger. golog has no
// separate warn tier, so Warnf maps to Error and Infof to Debug.
type gologLogger struct {
	l golog.Logger
}

// NewGoLogger returns a Logger backed by golog.LoggerFor(name).
func NewGoLogger(name string) Logger {
	return gologLogger{l: golog.LoggerFor(name)}
}

func (g gologLogger) Warnf(format string, args ...interface{}) {
	g.l.Errorf(format, args...)
}

func (g gologLogger) Infof(format string, args ...interface{}) {
	g.l.Debugf(format, args...)
}
