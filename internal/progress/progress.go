// Package progress renders progress on a terminal.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

const updateInterval = 50 * time.Millisecond

// Bar wraps progressbar with enabled/disabled handling.
// All methods are no-ops when disabled.
type Bar struct {
	bar *progressbar.ProgressBar
	out io.Writer
}

// New creates a progress bar writing to stderr.
// Use total=-1 for spinner mode (tree listing and reading), or total>0 for a
// byte-counting bar (file population).
func New(enabled bool, total int64) *Bar {
	return NewWithWriter(enabled, total, os.Stderr)
}

// NewWithWriter is New with an explicit output.
func NewWithWriter(enabled bool, total int64, out io.Writer) *Bar {
	if !enabled {
		return &Bar{}
	}

	opts := []progressbar.Option{
		progressbar.OptionSetWriter(out),
		progressbar.OptionThrottle(updateInterval),
		progressbar.OptionClearOnFinish(),
	}

	if total < 0 {
		opts = append(opts,
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetElapsedTime(false),
		)
		return &Bar{bar: progressbar.NewOptions(-1, opts...), out: out}
	}

	opts = append(opts,
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(true),
	)
	return &Bar{bar: progressbar.NewOptions64(total, opts...), out: out}
}

// Add advances the bar by n units.
func (b *Bar) Add(n int64) {
	if b.bar != nil {
		_ = b.bar.Add64(n)
	}
}

// Wrap returns a writer that forwards to w and advances the bar by every
// byte written. Returns w unchanged when disabled.
func (b *Bar) Wrap(w io.Writer) io.Writer {
	if b.bar == nil {
		return w
	}
	return io.MultiWriter(w, b.bar)
}

// Describe updates the progress bar description.
func (b *Bar) Describe(s fmt.Stringer) {
	if b.bar != nil {
		b.bar.Describe(s.String())
	}
}

// Finish completes the progress bar and prints a final message.
func (b *Bar) Finish(s fmt.Stringer) {
	if b.bar != nil {
		_ = b.bar.Finish()
		fmt.Fprintln(b.out, "✔ "+s.String())
	}
}
