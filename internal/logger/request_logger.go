package logger

import (
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/logging"
	"github.com/gin-gonic/gin"
)

// Logger stores the needed functionality to print a log.
type Logger struct {
	logging *Logging
	trace   string
	started time.Time

	mu       sync.Mutex
	severity logging.Severity
	labels   map[string]string
}

func newLogger(lg *Logging, trace string) *Logger {
	return &Logger{
		logging: lg,
		trace:   trace,
		started: time.Now(),
		labels:  make(map[string]string),
	}
}

// Trace returns the trace stored in logger.
func (l *Logger) Trace() string {
	return l.trace
}

// SetLabel allows to optionally specify key/value labels for log entry.
func (l *Logger) SetLabel(key, value string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.labels[key] = value
}

// Severity returns the highest severity logged so far.
func (l *Logger) Severity() logging.Severity {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.severity
}

// End writes the summarized request entry to the parent log.
func (l *Logger) End(ctx *gin.Context) {
	if l.logging.parent == nil {
		return
	}

	e := logging.Entry{
		Trace:    l.trace,
		Severity: l.Severity(),
		HTTPRequest: &logging.HTTPRequest{
			Request:      ctx.Request,
			Status:       ctx.Writer.Status(),
			Latency:      time.Since(l.started),
			ResponseSize: int64(ctx.Writer.Size()),
		},
		Labels:   l.copyLabels(),
		Resource: l.logging.resource,
	}

	l.logging.parent.Log(e)
}

func (l *Logger) copyLabels() map[string]string {
	l.mu.Lock()
	defer l.mu.Unlock()

	labels := make(map[string]string, len(l.labels))
	for k, v := range l.labels {
		labels[k] = v
	}

	return labels
}

func (l *Logger) logf(s logging.Severity, format string, v ...interface{}) {
	l.mu.Lock()
	if s > l.severity {
		l.severity = s
	}
	l.mu.Unlock()

	msg := fmt.Sprintf(format, v...)

	l.logging.write(logging.Entry{
		Payload:  msg,
		Severity: s,
		Trace:    l.trace,
		Labels:   l.copyLabels(),
		Resource: l.logging.resource,
	}, msg)
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	l.logf(logging.Debug, format, v...)
}

func (l *Logger) Infof(format string, v ...interface{}) {
	l.logf(logging.Info, format, v...)
}

func (l *Logger) Warningf(format string, v ...interface{}) {
	l.logf(logging.Warning, format, v...)
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.logf(logging.Error, format, v...)
}

func (l *Logger) Criticalf(format string, v ...interface{}) {
	l.logf(logging.Critical, format, v...)
}
