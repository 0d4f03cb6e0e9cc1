package logger

import "github.com/harrison/flattener/internal/models"

// EventLogger receives the events of a flattening run.
// ConsoleLogger, FileLogger and NoOpLogger all satisfy it.
type EventLogger interface {
	LogFileEnter(path string, depth int)
	LogIncludeResolved(rec models.IncludeRecord)
	LogFailure(err error)
	LogSummary(result models.FlattenResult)
}

// MultiLogger fans every event out to a list of loggers in order.
type MultiLogger struct {
	loggers []EventLogger
}

// NewMultiLogger creates a MultiLogger. Nil entries are skipped.
func NewMultiLogger(loggers ...EventLogger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

// Len returns the number of attached loggers.
func (m *MultiLogger) Len() int {
	return len(m.loggers)
}

func (m *MultiLogger) LogFileEnter(path string, depth int) {
	for _, l := range m.loggers {
		l.LogFileEnter(path, depth)
	}
}

func (m *MultiLogger) LogIncludeResolved(rec models.IncludeRecord) {
	for _, l := range m.loggers {
		l.LogIncludeResolved(rec)
	}
}

func (m *MultiLogger) LogFailure(err error) {
	for _, l := range m.loggers {
		l.LogFailure(err)
	}
}

func (m *MultiLogger) LogSummary(result models.FlattenResult) {
	for _, l := range m.loggers {
		l.LogSummary(result)
	}
}
