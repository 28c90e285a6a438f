// SPDX-License-Identifier: MIT
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync/atomic"
)

// Level is the severity of a log message.
type Level uint32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the upper-case name used as the message tag.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a case-insensitive level name to a Level.
// Unknown names yield LevelInfo and false.
func ParseLevel(name string) (Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	case "FATAL":
		return LevelFatal, true
	default:
		return LevelInfo, false
	}
}

var (
	currentLevel atomic.Uint32
	logger       atomic.Pointer[stdlog.Logger]
)

func init() {
	SetOutput(os.Stderr)
	SetLevel(LevelInfo)
}

// SetOutput redirects all log output. The render loop and the ingest
// goroutine may log concurrently, so the swap is atomic.
func SetOutput(w io.Writer) {
	logger.Store(stdlog.New(w, "", stdlog.Ldate|stdlog.Ltime|stdlog.Lmicroseconds))
}

// SetLevel sets the global minimum level.
func SetLevel(level Level) {
	currentLevel.Store(uint32(level))
}

// GetLevel returns the global minimum level.
func GetLevel() Level {
	return Level(currentLevel.Load())
}

func enabled(level Level) bool {
	return level >= GetLevel()
}

func output(level Level, msg string) {
	// Pad single-word tags so messages line up.
	pad := ""
	if len(level.String()) == 4 {
		pad = " "
	}
	logger.Load().Printf("[%s]%s %s", level, pad, msg)
}

// Debugf logs at debug level.
func Debugf(format string, v ...any) {
	if enabled(LevelDebug) {
		output(LevelDebug, fmt.Sprintf(format, v...))
	}
}

// Infof logs at info level.
func Infof(format string, v ...any) {
	if enabled(LevelInfo) {
		output(LevelInfo, fmt.Sprintf(format, v...))
	}
}

// Warnf logs at warn level.
func Warnf(format string, v ...any) {
	if enabled(LevelWarn) {
		output(LevelWarn, fmt.Sprintf(format, v...))
	}
}

// Errorf logs at error level.
func Errorf(format string, v ...any) {
	if enabled(LevelError) {
		output(LevelError, fmt.Sprintf(format, v...))
	}
}

// Fatalf always logs and then exits the process. Only main may call it.
func Fatalf(format string, v ...any) {
	output(LevelFatal, fmt.Sprintf(format, v...))
	os.Exit(1)
}

// Info logs its operands at info level.
func Info(v ...any) {
	if enabled(LevelInfo) {
		output(LevelInfo, fmt.Sprint(v...))
	}
}

// Error logs its operands at error level.
func Error(v ...any) {
	if enabled(LevelError) {
		output(LevelError, fmt.Sprint(v...))
	}
}
