package testfs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// -----------------------------------------------------------------------------
// Sow Operations - Create filesystem from fixture
// -----------------------------------------------------------------------------

// Sow creates the directories and files of fx below root. Root itself is
// created if missing.
func Sow(root string, fx Fixture) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create root: %w", err)
	}
	for _, d := range fx.Dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", d, err)
		}
	}
	for _, f := range fx.Files {
		p := filepath.Join(root, f.Path)
		if err := writeChunkedFile(p, f.Chunks); err != nil {
			return fmt.Errorf("create %s: %w", p, err)
		}
	}
	return nil
}

// writeChunkedFile streams content directly to disk.
func writeChunkedFile(path string, chunks []Chunk) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for _, c := range chunks {
		if err := writeChunk(f, c); err != nil {
			return err
		}
	}
	return nil
}

// writeChunk writes a single pattern-filled region.
func writeChunk(f *os.File, c Chunk) error {
	const maxBufSize = 1 << 20

	size, err := humanize.ParseBytes(c.Size)
	if err != nil {
		return fmt.Errorf("parse chunk size %q: %w", c.Size, err)
	}

	buf := bytes.Repeat([]byte{byte(c.Pattern)}, int(min(size, maxBufSize)))
	for remaining := size; remaining > 0; {
		n := min(remaining, uint64(len(buf)))
		if _, err := f.Write(buf[:n]); err != nil {
			return err
		}
		remaining -= n
	}
	return nil
}
