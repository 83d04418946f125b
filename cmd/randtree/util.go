package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

// parseSize parses a human-readable size string into bytes.
// Supports formats: "100", "1K", "1MB", "1GiB", etc.
func parseSize(s string) (int64, error) {
	bytes, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	if bytes > math.MaxInt64 {
		return 0, fmt.Errorf("size %q is too large", s)
	}
	return int64(bytes), nil
}

// newLogger returns a console logger for per-path events. Events are shown
// only in verbose mode.
func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}
	return zerolog.New(out).Level(level)
}

// openInput opens name for reading, with "-" meaning stdin.
func openInput(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}
