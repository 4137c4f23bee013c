package logging

import (
	"bytes"
	"log"
	"sync"
)

// lineWriter forwards each written line to a structured logger
type lineWriter struct {
	logger Logger
	level  Level
}

func (w *lineWriter) Write(p []byte) (int, error) {
	msg := string(bytes.TrimRight(p, "\r\n"))
	switch w.level {
	case DebugLevel:
		w.logger.Debug(msg)
	case WarnLevel:
		w.logger.Warn(msg)
	case ErrorLevel, FatalLevel:
		w.logger.Error(msg)
	default:
		w.logger.Info(msg)
	}
	return len(p), nil
}

// NewStdLogger adapts a structured logger to *log.Logger for APIs such as
// http.Server.ErrorLog. Every line is logged at level.
func NewStdLogger(logger Logger, level Level) *log.Logger {
	return log.New(&lineWriter{logger: logger, level: level}, "", 0)
}

var (
	globalMu     sync.RWMutex
	globalLogger = New(nil, nil)
)

// SetGlobalLogger sets the logger returned by GetGlobalLogger
func SetGlobalLogger(logger Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}

// GetGlobalLogger returns the process-wide logger
func GetGlobalLogger() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}
