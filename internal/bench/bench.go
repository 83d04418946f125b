// Package bench summarises read-only filesystem benchmark results.
//
// Input is headerless CSV with one row per measurement:
//
//	fstype,name,cmd,real,user,sys
//	squashfs,find,find /mnt,1.204000,0.080000,0.310000
//	microfs,read,cat -r /mnt,1:02.500000,0:00.900000,0:10.100000
//
// Durations are SS.ffffff or MM:SS.ffffff. The report averages every
// duration column per test, command and filesystem.
package bench

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
)

// Columns are the duration columns following fstype, name and cmd.
var Columns = []string{"real", "user", "sys"}

// ErrInvalidRow is returned for rows with the wrong field count or bad durations.
var ErrInvalidRow = errors.New("invalid row")

// Key identifies a benchmark test.
type Key struct {
	Name    string
	Command string
}

// Report holds samples in seconds, indexed by test, filesystem and column.
type Report struct {
	samples map[Key]map[string]map[string][]float64
}

// Parse reads benchmark rows from r.
func Parse(r io.Reader) (*Report, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rep := &Report{samples: make(map[Key]map[string]map[string][]float64)}
	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := rep.add(row); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return rep, nil
}

func (r *Report) add(row []string) error {
	if len(row) != 3+len(Columns) {
		return fmt.Errorf("%w: got %d fields, want %d", ErrInvalidRow, len(row), 3+len(Columns))
	}
	fsType, key := row[0], Key{Name: row[1], Command: row[2]}

	byFS, ok := r.samples[key]
	if !ok {
		byFS = make(map[string]map[string][]float64)
		r.samples[key] = byFS
	}
	cols, ok := byFS[fsType]
	if !ok {
		cols = make(map[string][]float64)
		byFS[fsType] = cols
	}

	for i, col := range Columns {
		secs, err := ParseDuration(row[3+i])
		if err != nil {
			return fmt.Errorf("%w: column %s: %w", ErrInvalidRow, col, err)
		}
		cols[col] = append(cols[col], secs)
	}
	return nil
}

// ParseDuration converts SS.ffffff or MM:SS.ffffff to seconds.
func ParseDuration(s string) (float64, error) {
	var minutes int
	rest := s
	if m, sec, ok := strings.Cut(s, ":"); ok {
		v, err := strconv.Atoi(m)
		if err != nil || v < 0 || v > 59 {
			return 0, fmt.Errorf("bad minutes in %q", s)
		}
		minutes, rest = v, sec
	}

	secPart, frac, ok := strings.Cut(rest, ".")
	if !ok || len(frac) == 0 || len(frac) > 6 {
		return 0, fmt.Errorf("bad fraction in %q", s)
	}
	secs, err := strconv.Atoi(secPart)
	if err != nil || secs < 0 || secs > 61 {
		return 0, fmt.Errorf("bad seconds in %q", s)
	}
	micros, err := strconv.Atoi(frac + strings.Repeat("0", 6-len(frac)))
	if err != nil || micros < 0 {
		return 0, fmt.Errorf("bad fraction in %q", s)
	}
	return float64(minutes*60+secs) + float64(micros)/1e6, nil
}

// Tests returns the test keys in sorted order.
func (r *Report) Tests() []Key {
	return slices.SortedFunc(maps.Keys(r.samples), func(a, b Key) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Command, b.Command)
	})
}

// Filesystems returns the filesystems measured for k in sorted order.
func (r *Report) Filesystems(k Key) []string {
	return slices.Sorted(maps.Keys(r.samples[k]))
}

// Average returns the mean of a column, and false when there are no samples.
func (r *Report) Average(k Key, fsType, column string) (float64, bool) {
	values := r.samples[k][fsType][column]
	if len(values) == 0 {
		return 0, false
	}
	return lo.Sum(values) / float64(len(values)), true
}

// Render writes the averages as a table.
func (r *Report) Render(w io.Writer) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)

	header := table.Row{"Test", "Command", "Filesystem"}
	for _, c := range Columns {
		header = append(header, c)
	}
	tw.AppendHeader(header)

	for _, k := range r.Tests() {
		for _, fsType := range r.Filesystems(k) {
			row := table.Row{k.Name, k.Command, fsType}
			for _, c := range Columns {
				avg, _ := r.Average(k, fsType, c)
				row = append(row, strconv.FormatFloat(avg, 'f', 4, 64))
			}
			tw.AppendRow(row)
		}
		tw.AppendSeparator()
	}
	tw.Render()
}
