/*
Package logx wraps zerolog for the relay server.

It configures the global logger for the running environment and offers small
helpers for one-off log lines and component-scoped sub-loggers.
*/
package logx

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options controls InitGlobalLogger.
type Options struct {
	// Development switches to a colored console writer on stderr.
	Development bool

	// Level is a zerolog level name ("debug", "info", ...). Empty picks
	// debug in development and info otherwise.
	Level string

	// Output overrides the destination. Defaults to stdout (stderr in development).
	Output io.Writer
}

// InitGlobalLogger configures the global zerolog logger. Every entry carries a
// timestamp and the caller location.
func InitGlobalLogger(opts Options) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	out := opts.Output
	if out == nil {
		out = os.Stdout
		if opts.Development {
			out = os.Stderr
		}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()

	level := zerolog.InfoLevel
	if opts.Development {
		logger = logger.Output(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		})
		level = zerolog.DebugLevel
	}

	if opts.Level != "" {
		if parsed, err := zerolog.ParseLevel(opts.Level); err == nil {
			level = parsed
		}
	}

	log.Logger = logger.Level(level).With().Caller().Logger()
}

// Logger returns the global logger.
func Logger() *zerolog.Logger {
	return &log.Logger
}

// Component returns a sub-logger tagged with the component name.
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}

// checkFields drops an odd-length key/value list instead of letting zerolog
// misattribute values.
func checkFields(level string, fields []any) []any {
	if len(fields)%2 != 0 {
		Logger().Warn().
			Int("fields_count", len(fields)).
			Str("log_level", level).
			Msgf("logx call (%s) received odd number of fields: %v. Fields ignored.", level, fields)
		return nil
	}
	return fields
}

// Debug logs msg at debug level with optional key/value pairs.
func Debug(msg string, fields ...any) {
	fields = checkFields("Debug", fields)

	Logger().Debug().
		Fields(fields).
		CallerSkipFrame(1).
		Msg(msg)
}

// Info logs msg at info level with optional key/value pairs.
func Info(msg string, fields ...any) {
	fields = checkFields("Info", fields)

	Logger().Info().
		Fields(fields).
		CallerSkipFrame(1).
		Msg(msg)
}

// Warn logs msg at warn level with optional key/value pairs.
func Warn(msg string, fields ...any) {
	fields = checkFields("Warn", fields)

	Logger().Warn().
		Fields(fields).
		CallerSkipFrame(1).
		Msg(msg)
}

// Error logs err and msg at error level with optional key/value pairs.
func Error(err error, msg string, fields ...any) {
	fields = checkFields("Error", fields)

	Logger().Error().
		Err(err).
		Fields(fields).
		CallerSkipFrame(1).
		Msg(msg)
}

// Fatal logs at fatal level and exits the process.
func Fatal(err error, msg string, fields ...any) {
	fields = checkFields("Fatal", fields)

	Logger().Fatal().
		Err(err).
		Fields(fields).
		CallerSkipFrame(1).
		Msg(msg)
}
