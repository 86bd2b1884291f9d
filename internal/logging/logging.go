// Package logging holds the process-wide diagnostic logger. Adaptation
// warnings and registry misses go through it; everything defaults to a nop
// logger so library consumers opt in explicitly.
package logging

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// #region logger

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// SetLogger replaces the process-wide diagnostic logger. Passing nil
// restores the nop logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// L returns the current diagnostic logger.
func L() *zap.Logger {
	return logger.Load()
}

// #endregion logger
