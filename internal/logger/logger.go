// Package logger provides level-based logging (debug, info, warn, error) on top of the
// standard log writer, with colored level tags when stderr is a terminal.
package logger

import (
	"io"
	"log"
	"os"
	"sync"

	"github.com/fatih/color"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu    sync.RWMutex
	level Level = LevelInfo

	debugColor = color.New(color.FgHiBlack)
	infoColor  = color.New(color.FgCyan)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed, color.Bold)
)

// ParseLevel maps a level name to a Level. Unknown names fall back to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetLevel sets the minimum level to log. Default is info.
func SetLevel(s string) {
	mu.Lock()
	defer mu.Unlock()
	level = ParseLevel(s)
}

// SetOutput redirects log output, mostly for tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// Init prepares the process-wide logger: sink (stderr when w is nil), level, and a
// prefix naming the program so lines in the fail2ban log are attributable.
func Init(levelName string, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	log.SetOutput(w)
	log.SetPrefix("f2b-notifier: ")
	log.SetFlags(log.LstdFlags)
	SetLevel(levelName)
}

func getLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

func (l Level) enabled(min Level) bool {
	return l >= min
}

// Debug logs if level is debug or lower.
func Debug(format string, v ...interface{}) {
	if LevelDebug.enabled(getLevel()) {
		logf(debugColor, "[DEBUG]", format, v...)
	}
}

// Info logs if level is info or lower.
func Info(format string, v ...interface{}) {
	if LevelInfo.enabled(getLevel()) {
		logf(infoColor, "[INFO]", format, v...)
	}
}

// Warn logs if level is warn or lower.
func Warn(format string, v ...interface{}) {
	if LevelWarn.enabled(getLevel()) {
		logf(warnColor, "[WARN]", format, v...)
	}
}

// Error logs at every level.
func Error(format string, v ...interface{}) {
	if LevelError.enabled(getLevel()) {
		logf(errorColor, "[ERROR]", format, v...)
	}
}

func logf(c *color.Color, tag, format string, v ...interface{}) {
	log.Printf(c.Sprint(tag)+" "+format, v...)
}
