// Package fixtures writes small fixed-shape trees used alongside generated
// hierarchies: power-of-two sized files and a handful of zero-filled files.
package fixtures

import (
	"bytes"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ivoronin/randtree/internal/content"
	"github.com/ivoronin/randtree/internal/types"
)

const (
	// DefaultFromShift and DefaultToShift bound Pow2 file sizes to [512B, 2MiB].
	DefaultFromShift = 9
	DefaultToShift   = 22

	minZeroFiles   = 8
	maxZeroFiles   = 16
	maxZeroFileLen = 1 << 22

	maxBufSize = 1 << 20
)

// Pow2 creates dir and writes two files of size 1<<shift for every shift in
// [from, to): one zero-filled and one with incompressible content.
func Pow2(dir string, from, to int, rng *rand.Rand, log zerolog.Logger) ([]types.File, error) {
	if from < 0 || to > 62 || from > to {
		return nil, fmt.Errorf("%w: invalid file size shift range [%d, %d)", types.ErrInvalidArgument, from, to)
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, err
	}

	var files []types.File
	for shift := from; shift < to; shift++ {
		size := int64(1) << shift
		size10 := strconv.FormatInt(size, 10)

		zero := types.File{Path: filepath.Join(dir, size10+"--dev-zero.dat"), Size: size}
		if err := writeFile(zero.Path, func(w io.Writer) error { return writeZeros(w, size) }); err != nil {
			return files, err
		}
		log.Info().Str("path", zero.Path).Int64("size", size).Msg("zero")
		files = append(files, zero)

		random := types.File{Path: filepath.Join(dir, size10+"--dev-urandom.dat"), Size: size}
		if err := writeFile(random.Path, func(w io.Writer) error {
			return content.Write(w, content.Incompressible, rng, size)
		}); err != nil {
			return files, err
		}
		log.Info().Str("path", random.Path).Int64("size", size).Msg("random")
		files = append(files, random)
	}
	return files, nil
}

// Zeros creates dir and writes between 8 and 16 zero-filled files named
// <n>.zero with sizes in [1, 4MiB].
func Zeros(dir string, rng *rand.Rand, log zerolog.Logger) ([]types.File, error) {
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, err
	}

	count := minZeroFiles + rng.IntN(maxZeroFiles-minZeroFiles+1)
	files := make([]types.File, 0, count)
	for n := range count {
		f := types.File{
			Path: filepath.Join(dir, strconv.Itoa(n)+".zero"),
			Size: 1 + rng.Int64N(maxZeroFileLen),
		}
		if err := writeFile(f.Path, func(w io.Writer) error { return writeZeros(w, f.Size) }); err != nil {
			return files, err
		}
		log.Info().Str("path", f.Path).Int64("size", f.Size).Msg("zero")
		files = append(files, f)
	}
	return files, nil
}

func writeFile(path string, fill func(io.Writer) error) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := fill(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// writeZeros streams size zero bytes through a buffer of at most 1MiB.
func writeZeros(w io.Writer, size int64) error {
	buf := bytes.Repeat([]byte{0}, int(min(size, maxBufSize)))
	for remaining := size; remaining > 0; {
		n := min(remaining, int64(len(buf)))
		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}
		remaining -= n
	}
	return nil
}
