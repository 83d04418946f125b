// Package testfs provides test infrastructure for generated trees and
// read-only mounts.
//
// It supports two modes:
//   - Integration tests: Harness works in t.TempDir() and calls the
//     generator and probe in-process
//   - E2E tests: Harness bind-mounts a host directory into a Docker
//     container twice, once read-only and once read-write, and runs the
//     randtree binary inside it
//
// # Fixtures
//
// Besides generated trees, tests can sow small hand-written fixtures:
//
//	fx := testfs.Fixture{
//	    Dirs: []string{"empty", "sub/deeper"},
//	    Files: []testfs.File{
//	        {Path: "a.bin", Chunks: []testfs.Chunk{{Pattern: 'A', Size: "1KiB"}}},
//	        {Path: "sub/b.bin", Chunks: []testfs.Chunk{{Pattern: 0, Size: "1MiB"}}},
//	    },
//	}
//
// Parent directories are created automatically (mkdir -p semantics).
//
//	h := testfs.New(t)
//	h.Sow("fixture", fx)
//	h.Run("probe", h.ReadOnlyPath("fixture")).AssertExit(t, 0)
package testfs

import "github.com/dustin/go-humanize"

// -----------------------------------------------------------------------------
// Fixture Types
// -----------------------------------------------------------------------------

// Fixture describes a small directory tree to create before a test.
type Fixture struct {
	// Dirs are created even when they hold no files.
	Dirs []string `json:"dirs,omitempty"`

	// Files are regular files with pattern content.
	Files []File `json:"files,omitempty"`
}

// File defines a regular file relative to the fixture root.
//
// Content is specified via Chunks, each filling a region with its pattern
// byte, so the expected compressibility of a fixture is obvious from its
// definition.
type File struct {
	Path   string  `json:"path"`
	Chunks []Chunk `json:"chunks,omitempty"`
}

// Chunk defines a region of file content filled with a pattern byte.
type Chunk struct {
	// Pattern is the fill byte for this chunk region.
	Pattern rune `json:"pattern"`

	// Size in any unit go-humanize accepts: "100", "1KiB", "1MiB".
	Size string `json:"size"`
}

// TotalSize calculates the sum of all chunk sizes in bytes.
func (f *File) TotalSize() int64 {
	var total int64
	for _, c := range f.Chunks {
		size, _ := humanize.ParseBytes(c.Size)
		total += int64(size)
	}
	return total
}

// TotalSize calculates the sum of all file sizes in bytes.
func (fx *Fixture) TotalSize() int64 {
	var total int64
	for i := range fx.Files {
		total += fx.Files[i].TotalSize()
	}
	return total
}

// -----------------------------------------------------------------------------
// Execution Result Types
// -----------------------------------------------------------------------------

// RunResult captures the results of a randtree execution.
type RunResult struct {
	ExitCode int    // Process exit code
	Stdout   string // Standard output
	Stderr   string // Standard error
}
