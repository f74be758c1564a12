// Package logger provides the process-wide structured logger
package logger

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

var Logger *log.Logger

func init() {
	Logger = log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "wandmouse",
	})

	// Set log level from environment variable
	if !SetLevel(os.Getenv("LOG_LEVEL")) {
		// Default to INFO level if not specified or invalid
		Logger.SetLevel(log.InfoLevel)
	}
}

// SetLevel applies a level name such as "debug" or "WARN". It returns false
// and leaves the level untouched for an empty or unknown name.
func SetLevel(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		Logger.SetLevel(log.DebugLevel)
	case "INFO":
		Logger.SetLevel(log.InfoLevel)
	case "WARN", "WARNING":
		Logger.SetLevel(log.WarnLevel)
	case "ERROR":
		Logger.SetLevel(log.ErrorLevel)
	case "FATAL":
		Logger.SetLevel(log.FatalLevel)
	default:
		return false
	}
	return true
}

// SetVerbosity lowers the level so that diagnostics requested with -v are
// visible. From 3 on, mapping details are logged at debug level.
func SetVerbosity(verbosity int) {
	if verbosity >= 3 {
		Logger.SetLevel(log.DebugLevel)
		Logger.SetReportTimestamp(true)
	} else if verbosity > 0 && Logger.GetLevel() > log.InfoLevel {
		Logger.SetLevel(log.InfoLevel)
	}
}

// Convenience functions for common operations
func Info(msg interface{}, keyvals ...interface{}) {
	Logger.Info(msg, keyvals...)
}

func Debug(msg interface{}, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

func Warn(msg interface{}, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

func Error(msg interface{}, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
}

func Infof(format string, args ...interface{}) {
	Logger.Infof(format, args...)
}

func Debugf(format string, args ...interface{}) {
	Logger.Debugf(format, args...)
}

func Warnf(format string, args ...interface{}) {
	Logger.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	Logger.Errorf(format, args...)
}
