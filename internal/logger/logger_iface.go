package logger

import "context"

// ILogger is the leveled logger handed to use cases and adapters.
type ILogger interface {
	Trace() string
	SetLabel(key, value string)
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warningf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Criticalf(format string, v ...interface{})
}

// Provider returns the logger bound to ctx.
type Provider func(ctx context.Context) ILogger
