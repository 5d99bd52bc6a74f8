// Package logging builds the zerolog logger used by the CLI.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the level and destination of log output.
type Options struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	// Out is the console destination when File is empty. Default: os.Stderr.
	Out io.Writer
}

// New returns a logger writing human-readable lines to the console, or JSON
// lines to a size-rotated file when opts.File is set. The returned closer
// releases the file; it is a no-op for console output.
func New(opts Options) (zerolog.Logger, io.Closer) {
	var (
		writer io.Writer
		closer io.Closer = nopCloser{}
	)

	switch {
	case opts.File != "":
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			writer = console(opts.Out)
			break
		}
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
		writer, closer = lj, lj
	default:
		writer = console(opts.Out)
	}

	level := ParseLevel(opts.Level)
	if level < zerolog.GlobalLevel() {
		zerolog.SetGlobalLevel(level)
	}

	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return logger, closer
}

func console(out io.Writer) io.Writer {
	if out == nil {
		out = os.Stderr
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
}

// ParseLevel maps a level name to a zerolog level, defaulting to warn.
func ParseLevel(s string) zerolog.Level {
	switch s {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
