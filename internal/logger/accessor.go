package logger

import (
	"errors"
	"log"
	"sync"
)

var (
	loggerAccessorMu sync.Mutex
	// globalLogger is levelFiltering -> secretMasking -> raw logger
	globalLogger SFLogger
)

// GetLogger returns the global logger for use by internal packages
func GetLogger() SFLogger {
	loggerAccessorMu.Lock()
	defer loggerAccessorMu.Unlock()
	return globalLogger
}

// SetLogger installs providedLogger as the raw logger and always wraps it with
// secret masking and level filtering. Loggers already wrapped by this package
// are unwrapped first so the layers are never doubled.
func SetLogger(providedLogger SFLogger) error {
	if providedLogger == nil {
		return errors.New("logger cannot be nil")
	}
	if _, isProxy := providedLogger.(*Proxy); isProxy {
		return errors.New("cannot set Proxy as raw logger - it would create infinite recursion")
	}

	raw := providedLogger
	if levelFiltering, ok := raw.(*levelFilteringLogger); ok {
		raw = levelFiltering.inner
	}
	if secretMasking, ok := raw.(*secretMaskingLogger); ok {
		raw = secretMasking.inner
	}

	loggerAccessorMu.Lock()
	defer loggerAccessorMu.Unlock()
	globalLogger = newLevelFilteringLogger(newSecretMaskingLogger(raw))
	return nil
}

func init() {
	if err := SetLogger(newRawLogger()); err != nil {
		log.Panicf("cannot set default logger. %v", err)
	}
}

// CreateDefaultLogger creates a new logrus-backed logger with the standard
// protection layers. It does not change the global logger.
func CreateDefaultLogger() SFLogger {
	return newLevelFilteringLogger(newSecretMaskingLogger(newRawLogger()))
}
