package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	// Log is the global logger instance
	Log zerolog.Logger
)

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	Log = newLogger(consoleWriter(os.Stdout), zerolog.InfoLevel)
}

func consoleWriter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "2006-01-02 15:04:05",
	}
}

func newLogger(out io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()
}

// Configure sets up the global logger for a server mode. Debug mode keeps the
// colored console output; any other mode writes JSON lines. An explicit level
// overrides the mode's default.
func Configure(mode, levelStr string) {
	level := zerolog.InfoLevel
	if mode == "debug" {
		level = zerolog.DebugLevel
	}
	if levelStr != "" {
		parsed, err := zerolog.ParseLevel(levelStr)
		if err != nil {
			Log.Warn().Str("level", levelStr).Msg("invalid log level, keeping mode default")
		} else {
			level = parsed
		}
	}

	var out io.Writer = os.Stdout
	if mode == "debug" {
		out = consoleWriter(os.Stdout)
	}

	zerolog.SetGlobalLevel(level)
	Log = newLogger(out, level)
	log.Logger = Log
}

// SetLevel sets the log level
func SetLevel(levelStr string) {
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		Log.Warn().Str("level", levelStr).Msg("invalid log level, defaulting to info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	Log = Log.Level(level)
}
