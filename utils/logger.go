package utils

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger provides leveled logging throughout the application.
// Debug, info and warn lines go to stdout; errors go to stderr.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger creates a new Logger writing to stdout/stderr at info level.
func NewLogger() *Logger {
	return newLogger(os.Stdout, os.Stderr)
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func newLogger(out, errOut io.Writer) *Logger {
	writer := zerolog.MultiLevelWriter(
		levelWriter{
			Writer: zerolog.ConsoleWriter{Out: out, TimeFormat: "2006-01-02 15:04:05"},
			levels: []zerolog.Level{zerolog.DebugLevel, zerolog.InfoLevel, zerolog.WarnLevel},
		},
		levelWriter{
			Writer: zerolog.ConsoleWriter{Out: errOut, TimeFormat: "2006-01-02 15:04:05"},
			levels: []zerolog.Level{zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel},
		},
	)
	return &Logger{zl: zerolog.New(writer).Level(zerolog.InfoLevel).With().Timestamp().Logger()}
}

// SetVerbose lowers the minimum level to debug when v is true and restores info otherwise.
func (l *Logger) SetVerbose(v bool) {
	if v {
		l.zl = l.zl.Level(zerolog.DebugLevel)
	} else {
		l.zl = l.zl.Level(zerolog.InfoLevel)
	}
}

func (l *Logger) Info(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.zl.Warn().Msgf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.zl.Error().Msgf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}

// levelWriter forwards only the listed levels to Writer.
type levelWriter struct {
	io.Writer
	levels []zerolog.Level
}

func (w levelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	for _, l := range w.levels {
		if l == level {
			return w.Write(p)
		}
	}
	return len(p), nil
}
