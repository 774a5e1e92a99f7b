package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int32

const (
	// LevelError represents error level messages
	LevelError LogLevel = 0
	// LevelWarn represents warning level messages
	LevelWarn LogLevel = 1
	// LevelInfo represents informational messages
	LevelInfo LogLevel = 2
	// LevelDebug represents debug messages
	LevelDebug LogLevel = 3
	// LevelTrace represents trace messages with high detail
	LevelTrace LogLevel = 4
)

// String converts a LogLevel to a string representation
func (l LogLevel) String() string {
	switch l {
	case LevelError:
		return "ERR"
	case LevelWarn:
		return "WRN"
	case LevelInfo:
		return "INF"
	case LevelDebug:
		return "DBG"
	case LevelTrace:
		return "TRA"
	default:
		return "???"
	}
}

// ANSI color codes
const (
	colorReset = "\033[0m"
	colorError = "\033[31m"
	colorWarn  = "\033[33m"
	colorInfo  = "\033[37m"
	colorDebug = "\033[34m"
	colorTrace = "\033[35m"
)

const timestampLayout = "2006-01-02 15:04:05.000000"

// PlaneLogger writes timestamped lines to an io.Writer, colored when the writer is a terminal
type PlaneLogger struct {
	level        atomic.Int32               // log level
	out          io.Writer                  // destination, guarded by mu
	mu           *sync.Mutex                // shared by clones writing to the same destination
	useColors    bool                       // whether to use colors in output
	storeLastMsg bool                       // whether to store the last message
	lastMsg      atomic.Pointer[LogMessage] // last message printed
}

// LogMessage stores information about a log message
type LogMessage struct {
	Level   LogLevel
	Message string
	Time    time.Time
}

// NewPlaneLogger creates a new logger printing to stdout
func NewPlaneLogger(level LogLevel, storeLastMessage bool) Logger {
	return NewPlaneLoggerWithOutput(os.Stdout, level, storeLastMessage)
}

// NewPlaneLoggerWithOutput creates a new logger printing to out
func NewPlaneLoggerWithOutput(out io.Writer, level LogLevel, storeLastMessage bool) Logger {
	return newPlaneLogger(out, &sync.Mutex{}, level, storeLastMessage)
}

func newPlaneLogger(out io.Writer, mu *sync.Mutex, level LogLevel, storeLastMessage bool) *PlaneLogger {
	logger := &PlaneLogger{
		out:          out,
		mu:           mu,
		useColors:    isTerminal(out),
		storeLastMsg: storeLastMessage,
	}
	logger.level.Store(int32(level))

	return logger
}

// isTerminal reports whether out is a character device, redirected output stays uncolored
func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}

	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}

	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// GetLevel returns the current log level
func (l *PlaneLogger) GetLevel() LogLevel {
	return LogLevel(l.level.Load())
}

// SetLevel sets the log level
func (l *PlaneLogger) SetLevel(level LogLevel) {
	l.level.Store(int32(level))
}

// levelToColor returns the ANSI color code for the given log level
func (l *PlaneLogger) levelToColor(level LogLevel) string {
	if !l.useColors {
		return ""
	}

	switch level {
	case LevelError:
		return colorError
	case LevelWarn:
		return colorWarn
	case LevelInfo:
		return colorInfo
	case LevelDebug:
		return colorDebug
	case LevelTrace:
		return colorTrace
	default:
		return ""
	}
}

// print writes an already formatted message if level passes the filter
func (l *PlaneLogger) print(level LogLevel, message string) {
	if l.GetLevel() < level {
		return
	}

	now := time.Now()

	color := l.levelToColor(level)
	resetColor := ""
	if color != "" {
		resetColor = colorReset
	}

	line := fmt.Sprintf("%s%s  %s: %s%s\n", color, now.Format(timestampLayout), level.String(), message, resetColor)

	l.mu.Lock()
	_, _ = io.WriteString(l.out, line)
	l.mu.Unlock()

	if l.storeLastMsg {
		l.lastMsg.Store(&LogMessage{
			Level:   level,
			Message: message,
			Time:    now,
		})
	}
}

// Log implements the logger.Logger interface
func (l *PlaneLogger) Log(level LogLevel, format string, args ...interface{}) {
	l.print(level, fmt.Sprintf(format, args...))
}

// Error logs an error message
func (l *PlaneLogger) Error(format string, args ...interface{}) {
	l.Log(LevelError, format, args...)
}

// Warn logs a warning message
func (l *PlaneLogger) Warn(format string, args ...interface{}) {
	l.Log(LevelWarn, format, args...)
}

// Info logs an informational message
func (l *PlaneLogger) Info(format string, args ...interface{}) {
	l.Log(LevelInfo, format, args...)
}

// Debug logs a debug message
func (l *PlaneLogger) Debug(format string, args ...interface{}) {
	l.Log(LevelDebug, format, args...)
}

// Trace logs a trace message
func (l *PlaneLogger) Trace(format string, args ...interface{}) {
	l.Log(LevelTrace, format, args...)
}

// GetLastMessage returns the last logged message if storage is enabled
func (l *PlaneLogger) GetLastMessage() *LogMessage {
	if !l.storeLastMsg {
		return nil
	}

	return l.lastMsg.Load()
}

// Clone returns a logger with its own level writing to the same destination
func (l *PlaneLogger) Clone() Logger {
	return newPlaneLogger(l.out, l.mu, l.GetLevel(), l.storeLastMsg)
}
