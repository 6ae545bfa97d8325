package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type LogBuild struct {
	writer io.Writer
	level  string
	pretty bool
}

func New() *LogBuild {
	return &LogBuild{writer: os.Stdout, level: "info"}
}

// FromBuffer sends log output to w instead of stdout.
func (build *LogBuild) FromBuffer(w io.Writer) *LogBuild {
	build.writer = w
	return build
}

func (build *LogBuild) Level(level string) *LogBuild {
	build.level = level
	return build
}

// Pretty switches to the human-readable console writer used in development.
func (build *LogBuild) Pretty(pretty bool) *LogBuild {
	build.pretty = pretty
	return build
}

// Make builds the logger. Unknown levels fall back to info.
func (build *LogBuild) Make() zerolog.Logger {
	w := build.writer
	if build.pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(build.level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
