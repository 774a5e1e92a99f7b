package logger

import (
	"fmt"
	"io"
	"os"
)

// MainWorkerID identifies the coordinating goroutine rather than a benchmark worker
const MainWorkerID = -1

// WorkerLogger prefixes every message with the id of the worker that logged it
type WorkerLogger struct {
	*PlaneLogger
	workerID int
}

// NewWorkerLogger creates a worker logger printing to stdout
func NewWorkerLogger(level LogLevel, storeLastMessage bool, workerID int) Logger {
	return NewWorkerLoggerWithOutput(os.Stdout, level, storeLastMessage, workerID)
}

// NewWorkerLoggerWithOutput creates a worker logger printing to out
func NewWorkerLoggerWithOutput(out io.Writer, level LogLevel, storeLastMessage bool, workerID int) Logger {
	planeLogger, ok := NewPlaneLoggerWithOutput(out, level, storeLastMessage).(*PlaneLogger)
	if !ok {
		return nil
	}

	return &WorkerLogger{PlaneLogger: planeLogger, workerID: workerID}
}

// ForWorker derives a worker logger from parent, sharing its destination when
// parent is one of the loggers of this package
func ForWorker(parent Logger, workerID int) Logger {
	var plane *PlaneLogger
	switch p := parent.(type) {
	case *PlaneLogger:
		plane = p
	case *WorkerLogger:
		plane = p.PlaneLogger
	default:
		return NewWorkerLogger(parent.GetLevel(), false, workerID)
	}

	return &WorkerLogger{
		PlaneLogger: newPlaneLogger(plane.out, plane.mu, plane.GetLevel(), plane.storeLastMsg),
		workerID:    workerID,
	}
}

func (l *WorkerLogger) prefix() string {
	if l.workerID == MainWorkerID {
		return "main process: "
	}

	return fmt.Sprintf("worker # %03d: ", l.workerID)
}

// Log implements the logger.Logger interface
func (l *WorkerLogger) Log(level LogLevel, format string, args ...interface{}) {
	l.PlaneLogger.print(level, l.prefix()+fmt.Sprintf(format, args...))
}

// Error logs an error message
func (l *WorkerLogger) Error(format string, args ...interface{}) {
	l.Log(LevelError, format, args...)
}

// Warn logs a warning message
func (l *WorkerLogger) Warn(format string, args ...interface{}) {
	l.Log(LevelWarn, format, args...)
}

// Info logs an informational message
func (l *WorkerLogger) Info(format string, args ...interface{}) {
	l.Log(LevelInfo, format, args...)
}

// Debug logs a debug message
func (l *WorkerLogger) Debug(format string, args ...interface{}) {
	l.Log(LevelDebug, format, args...)
}

// Trace logs a trace message
func (l *WorkerLogger) Trace(format string, args ...interface{}) {
	l.Log(LevelTrace, format, args...)
}

// Clone returns a worker logger with its own level for the same worker
func (l *WorkerLogger) Clone() Logger {
	return &WorkerLogger{
		PlaneLogger: newPlaneLogger(l.out, l.mu, l.GetLevel(), l.storeLastMsg),
		workerID:    l.workerID,
	}
}
