package common

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lni/dragonboat/v4/logger"
)

// loggerNames lists all package loggers of the application
var loggerNames = []string{"rpc", "transport/rpc", "store", "client"}

// LogOutput receives all log lines. Logs go to stderr so that client output on
// stdout stays clean.
var LogOutput io.Writer = os.Stderr

var installFactory sync.Once

// levelLabels maps the dragonboat levels to the labels printed in a log line
var levelLabels = map[logger.LogLevel]string{
	logger.CRITICAL: "CRIT",
	logger.ERROR:    "ERROR",
	logger.WARNING:  "WARN",
	logger.INFO:     "INFO",
	logger.DEBUG:    "DEBUG",
}

// --------------------------------------------------------------------------
// Line Logger
// --------------------------------------------------------------------------

// lineLogger writes one line per entry: time, level, package and message.
// It satisfies dragonboat's logger.ILogger.
type lineLogger struct {
	mu    sync.Mutex
	pkg   string
	level logger.LogLevel
	out   io.Writer
	now   func() time.Time
}

func newLineLogger(pkg string, out io.Writer) *lineLogger {
	return &lineLogger{pkg: pkg, level: logger.INFO, out: out, now: time.Now}
}

func (l *lineLogger) SetLevel(level logger.LogLevel) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

func (l *lineLogger) Debugf(format string, args ...interface{}) {
	l.write(logger.DEBUG, format, args)
}

func (l *lineLogger) Infof(format string, args ...interface{}) {
	l.write(logger.INFO, format, args)
}

func (l *lineLogger) Warningf(format string, args ...interface{}) {
	l.write(logger.WARNING, format, args)
}

func (l *lineLogger) Errorf(format string, args ...interface{}) {
	l.write(logger.ERROR, format, args)
}

// Panicf logs at critical level and panics regardless of the configured level
func (l *lineLogger) Panicf(format string, args ...interface{}) {
	l.write(logger.CRITICAL, format, args)
	panic(fmt.Sprintf(format, args...))
}

func (l *lineLogger) write(level logger.LogLevel, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level > l.level {
		return
	}
	fmt.Fprintf(l.out, "%s %-5s | %-13s | %s\n",
		l.now().Format("2006/01/02 15:04:05"), levelLabels[level], l.pkg, fmt.Sprintf(format, args...))
}

// CreateLogger is the logger.Factory installed by InitLoggers
func CreateLogger(pkgName string) logger.ILogger {
	return newLineLogger(pkgName, LogOutput)
}

// --------------------------------------------------------------------------
// Setup
// --------------------------------------------------------------------------

// ParseLogLevel converts a level name (debug, info, warn, error) to logger.LogLevel
func ParseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logger.DEBUG, nil
	case "info":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	}
	return logger.INFO, fmt.Errorf("invalid log level %q, use one of debug, info, warn, error", level)
}

// InitLoggers installs CreateLogger as dragonboat's logger factory and applies
// the level to every application logger. It may be called more than once, the
// factory is only installed the first time.
func InitLoggers(level string) error {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return err
	}

	installFactory.Do(func() { logger.SetLoggerFactory(CreateLogger) })

	for _, name := range loggerNames {
		logger.GetLogger(name).SetLevel(lvl)
	}
	return nil
}
