// Package inventory captures the shape of a directory tree on disk.
//
// An inventory lists every directory and regular file below a root with
// paths relative to it, so two trees generated into different locations can
// be compared directly. An optional content pass computes a BLAKE3
// fingerprint over paths, sizes and contents, and the zstd-compressed size
// of all contents, compressing each file on its own the way a compressing
// read-only filesystem stores it.
//
// Directories are listed and files are read concurrently; the result does
// not depend on the number of workers.
package inventory

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
)

// Entry is a regular file in an inventory.
type Entry struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Tree is the captured state of a directory tree.
type Tree struct {
	Root        string   `json:"root"`
	Dirs        []string `json:"dirs"` // Relative paths, "." first
	Files       []Entry  `json:"files"`
	Bytes       int64    `json:"bytes"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Compressed  int64    `json:"compressed"` // -1 when not measured
}

// Options selects the optional content passes.
type Options struct {
	Fingerprint bool
	Ratio       bool
	Workers     int  // Concurrent directory reads and file digests, NumCPU if < 1
	Progress    bool // Show spinners on stderr
}

// Ratio returns compressed/original size, or 0 if unknown.
func (t *Tree) Ratio() float64 {
	if t.Compressed < 0 || t.Bytes == 0 {
		return 0
	}
	return float64(t.Compressed) / float64(t.Bytes)
}

// Reap walks root and returns its inventory. Directories and files are
// sorted by relative path; symlinks and special files are ignored.
func Reap(root string, opts Options) (*Tree, error) {
	if opts.Workers < 1 {
		opts.Workers = runtime.NumCPU()
	}

	dirs, files, err := walk(root, opts.Workers, opts.Progress)
	if err != nil {
		return nil, fmt.Errorf("reap %s: %w", root, err)
	}

	t := &Tree{Root: root, Dirs: dirs, Files: files, Compressed: -1}
	slices.Sort(t.Dirs)
	slices.SortFunc(t.Files, func(a, b Entry) int { return strings.Compare(a.Path, b.Path) })
	for _, f := range t.Files {
		t.Bytes += f.Size
	}

	if !opts.Fingerprint && !opts.Ratio {
		return t, nil
	}

	digests, err := t.digestFiles(opts)
	if err != nil {
		return nil, fmt.Errorf("reap %s: %w", root, err)
	}
	if opts.Fingerprint {
		t.Fingerprint = t.fingerprint(digests)
	}
	if opts.Ratio {
		t.Compressed = 0
		for _, d := range digests {
			t.Compressed += d.compressed
		}
	}
	return t, nil
}

// fingerprint hashes every directory path, then every file path, size and
// content digest, in path order.
func (t *Tree) fingerprint(digests []digest) string {
	h := blake3.New()
	for _, d := range t.Dirs {
		_, _ = io.WriteString(h, "d "+d+"\x00")
	}
	for i, f := range t.Files {
		_, _ = io.WriteString(h, "f "+f.Path+"\x00"+strconv.FormatInt(f.Size, 10)+"\x00")
		_, _ = h.Write(digests[i].sum[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// WriteJSON encodes the tree as indented JSON.
func (t *Tree) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}
