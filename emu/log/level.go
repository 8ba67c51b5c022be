package log

import (
	"io"
	"sync/atomic"

	"gopkg.in/Sirupsen/logrus.v0"
)

type Level = logrus.Level

const (
	PanicLevel = logrus.PanicLevel
	FatalLevel = logrus.FatalLevel
	ErrorLevel = logrus.ErrorLevel
	WarnLevel  = logrus.WarnLevel
	InfoLevel  = logrus.InfoLevel
	DebugLevel = logrus.DebugLevel
)

var disabled atomic.Bool

func init() {
	// Per-module filtering happens before reaching logrus.
	logrus.SetLevel(logrus.DebugLevel)
}

// Disable turns off all logging, warnings and errors included.
func Disable() {
	disabled.Store(true)
	logrus.SetOutput(io.Discard)
}

// SetOutput redirects all logs to w.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}
