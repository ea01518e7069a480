// Package log provides the application-wide logging facade, backed by logrus.
package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var logger = NewLogger()

// Logger wraps a logrus logger so call sites stay free of logrus types.
type Logger struct {
	l *logrus.Logger
}

func NewLogger() *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return &Logger{l: l}
}

// SetDebug toggles debug-level output
func SetDebug(debug bool) {
	if debug {
		logger.l.SetLevel(logrus.DebugLevel)
	} else {
		logger.l.SetLevel(logrus.InfoLevel)
	}
}

// SetOutput redirects log output, mainly for tests
func SetOutput(w io.Writer) {
	logger.l.SetOutput(w)
}

func Info(format string, args ...interface{}) {
	logger.l.Infof(format, args...)
}

// Debug logs a message with arguments
func Debug(msg string, args ...interface{}) {
	logger.l.Debugf(msg+": %v", args...)
}

// Debugf logs a formatted message
func Debugf(format string, args ...interface{}) {
	logger.l.Debugf(format, args...)
}

// Error logs an error message with arguments
func Error(msg string, args ...interface{}) {
	logger.l.Errorf(msg+": %v", args...)
}

// Errorf logs a formatted error message
func Errorf(format string, args ...interface{}) {
	logger.l.Errorf(format, args...)
}

// Warn logs a warning message with arguments
func Warn(msg string, args ...interface{}) {
	logger.l.Warnf(msg+": %v", args...)
}

// Warnf logs a formatted warning message
func Warnf(format string, args ...interface{}) {
	logger.l.Warnf(format, args...)
}
