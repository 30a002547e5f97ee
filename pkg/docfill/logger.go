package docfill

import (
	"sync"

	"go.uber.org/zap"
)

var (
	globalLogger   = zap.NewNop()
	globalLoggerMu sync.RWMutex
)

// SetLogger replaces the package logger used by engines created without
// WithLogger. A nil logger silences output.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	globalLoggerMu.Lock()
	globalLogger = l
	globalLoggerMu.Unlock()
}

// GetLogger returns the package logger.
func GetLogger() *zap.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}
