// Package logging builds the zerolog loggers used by the command line tools.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Format selects the log encoding.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Options configures New.
type Options struct {
	Debug   bool
	Format  Format
	NoColor bool
	// Tag is attached to every record as "s".
	Tag string
	// Out defaults to os.Stderr.
	Out io.Writer
}

// New returns a logger writing to opts.Out. Unknown formats fall back to
// the console writer.
func New(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	var w io.Writer = out
	if ParseFormat(string(opts.Format)) == FormatConsole {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05.0000",
			NoColor:    opts.NoColor,
			PartsOrder: []string{
				zerolog.TimestampFieldName,
				zerolog.LevelFieldName,
				"s",
				zerolog.MessageFieldName,
			},
			FieldsExclude: []string{"s"},
		}
	}

	ctx := zerolog.New(w).Level(level).With().Timestamp()
	if opts.Tag != "" {
		ctx = ctx.Str("s", opts.Tag)
	}
	return ctx.Logger()
}

// ParseFormat maps a format name to a Format, defaulting to console.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(FormatJSON):
		return FormatJSON
	default:
		return FormatConsole
	}
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}
