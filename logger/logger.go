// Package logger provides the leveled loggers shared by the benchmark harness,
// the set benchmark engine and the spell server.
package logger

// Logger is a leveled printf-style logger
type Logger interface {
	Log(level LogLevel, format string, args ...interface{})
	Error(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Info(format string, args ...interface{})
	Debug(format string, args ...interface{})
	Trace(format string, args ...interface{})
	GetLevel() LogLevel
	SetLevel(level LogLevel)
	GetLastMessage() *LogMessage
	Clone() Logger
}

// VerbosityLevel maps the -v count and the quiet flag of a CLI to a level:
// quiet gives errors only, no -v gives warnings, -v info, -vv debug, -vvv trace
func VerbosityLevel(verbose int, quiet bool) LogLevel {
	if quiet {
		return LevelError
	}

	var level = LevelWarn + LogLevel(verbose)
	if level > LevelTrace {
		level = LevelTrace
	}

	return level
}
