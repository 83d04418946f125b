package main

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/ivoronin/randtree/internal/generator"
)

// =============================================================================
// Size Flags
// =============================================================================

// TestParseSizeBudgetForms covers the forms accepted by --size-budget and
// --max-file-size.
func TestParseSizeBudgetForms(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"134217728", 134217728},
		{"16777215", 16777215},
		{"128MiB", 134217728},
		{"16MiB", 16777216},
		{"128M", 128000000},
		{"100", 100},
		{"0", 0},
		{"4EiB", 1 << 62},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseSize(tt.input)
			if err != nil {
				t.Fatalf("parseSize(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

// TestParseSizeDefaultsRoundTrip checks the flag defaults parse back to the
// generator defaults.
func TestParseSizeDefaultsRoundTrip(t *testing.T) {
	spec := generator.Defaults()
	for _, want := range []int64{spec.SizeBudget, spec.MaxFileSize} {
		got, err := parseSize(strconv.FormatInt(want, 10))
		if err != nil || got != want {
			t.Errorf("parseSize(%d) = %d, %v", want, got, err)
		}
	}
}

// TestParseSizeRejects covers malformed, negative and int64-overflowing sizes.
func TestParseSizeRejects(t *testing.T) {
	tests := []string{
		"",
		"lots",
		"-1",
		"-16MiB",
		"8EiB",
		"9223372036854775808",
		"99999999999999999999",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			if got, err := parseSize(input); err == nil {
				t.Errorf("parseSize(%q) = %d, want error", input, got)
			}
		})
	}
}

// =============================================================================
// Logger
// =============================================================================

func TestNewLoggerVerbosity(t *testing.T) {
	tests := []struct {
		verbose bool
		want    bool
	}{
		{false, false},
		{true, true},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		log := newLogger(&buf, tt.verbose)
		log.Info().Str("path", "/tmp/x").Msg("file")
		got := strings.Contains(buf.String(), "path=/tmp/x")
		if got != tt.want {
			t.Errorf("verbose=%v: logged %q", tt.verbose, buf.String())
		}
	}
}
