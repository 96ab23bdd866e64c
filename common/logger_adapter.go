package common

import (
	"fmt"

	"atelier-backend/pkg/log"
)

type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Printf(format string, args ...interface{})
}

// LoggerAdapter exposes a log.Logger through the loosely typed Logger
// interface that pkg/cache and pkg/email expect. Variadic fields are
// interpreted as alternating key/value pairs.
type LoggerAdapter struct {
	logger log.Logger
}

func NewLoggerAdapter(logger log.Logger) Logger {
	return &LoggerAdapter{logger: logger}
}

func toLogFields(fields []interface{}) []log.Field {
	logFields := make([]log.Field, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		logFields = append(logFields, log.Any(key, fields[i+1]))
	}
	return logFields
}

func (a *LoggerAdapter) Info(msg string, fields ...interface{}) {
	a.logger.Info(msg, toLogFields(fields)...)
}

func (a *LoggerAdapter) Error(msg string, fields ...interface{}) {
	a.logger.Error(msg, toLogFields(fields)...)
}

func (a *LoggerAdapter) Debug(msg string, fields ...interface{}) {
	a.logger.Debug(msg, toLogFields(fields)...)
}

func (a *LoggerAdapter) Warn(msg string, fields ...interface{}) {
	a.logger.Warn(msg, toLogFields(fields)...)
}

func (a *LoggerAdapter) Infof(format string, args ...interface{}) {
	a.logger.Infof(format, args...)
}

func (a *LoggerAdapter) Errorf(format string, args ...interface{}) {
	a.logger.Errorf(format, args...)
}

func (a *LoggerAdapter) Debugf(format string, args ...interface{}) {
	a.logger.Debugf(format, args...)
}

func (a *LoggerAdapter) Warnf(format string, args ...interface{}) {
	a.logger.Warnf(format, args...)
}

func (a *LoggerAdapter) Printf(format string, args ...interface{}) {
	a.logger.Printf(format, args...)
}
