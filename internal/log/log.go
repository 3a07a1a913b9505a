// Package log is a thin façade over charmbracelet/log shared by every
// dankfind package. Verbosity comes from the DFIND_LOG environment
// variable (debug, info, warn, error, fatal); the default is info.
package log

import (
	"os"

	charmlog "github.com/charmbracelet/log"
)

var logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: true,
	Level:           charmlog.InfoLevel,
})

func init() {
	if v := os.Getenv("DFIND_LOG"); v != "" {
		if lvl, err := charmlog.ParseLevel(v); err == nil {
			logger.SetLevel(lvl)
		}
	}
}

// SetLevel overrides the level from DFIND_LOG. Unknown names are ignored.
func SetLevel(name string) {
	if lvl, err := charmlog.ParseLevel(name); err == nil {
		logger.SetLevel(lvl)
	}
}

func Debugf(format string, args ...any) { logger.Debugf(format, args...) }
func Infof(format string, args ...any)  { logger.Infof(format, args...) }
func Warnf(format string, args ...any)  { logger.Warnf(format, args...) }
func Errorf(format string, args ...any) { logger.Errorf(format, args...) }

func Fatalf(format string, args ...any) { logger.Fatalf(format, args...) }

func Debug(msg any, keyvals ...any) { logger.Debug(msg, keyvals...) }
func Info(msg any, keyvals ...any)  { logger.Info(msg, keyvals...) }
func Warn(msg any, keyvals ...any)  { logger.Warn(msg, keyvals...) }
func Error(msg any, keyvals ...any) { logger.Error(msg, keyvals...) }
