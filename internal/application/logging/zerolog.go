package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the zerolog backend
type Options struct {
	Level         string // debug, info, warn, error
	Format        string // json, text
	Output        io.Writer
	IncludeCaller bool
}

// NewZerolog builds a zerolog.Logger from options. Text format uses the
// console writer; anything else writes JSON lines.
func NewZerolog(opts Options) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Format == "text" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if opts.IncludeCaller {
		ctx = ctx.Caller()
	}
	return ctx.Logger(), nil
}

// ZerologLogger adapts a zerolog.Logger to Logger
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps logger
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

// Log implements Logger
func (l *ZerologLogger) Log(level, message string, metadata map[string]interface{}) {
	var event *zerolog.Event
	switch strings.ToUpper(level) {
	case LevelDebug:
		event = l.logger.Debug()
	case LevelWarn:
		event = l.logger.Warn()
	case LevelError:
		event = l.logger.Error()
	default:
		event = l.logger.Info()
	}
	event.Fields(metadata).Msg(message)
}
