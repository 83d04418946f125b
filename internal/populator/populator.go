// Package populator fills a set of directories with files whose sizes add up
// to an exact byte budget.
//
// The budget is first split across directories with a uniform positive
// partition, so every directory gets at least one byte of quota. Each quota
// is then consumed by files of uniformly random size in
// [0, min(maxFileSize, remaining)] until nothing is left. Zero-sized files
// are legal, so a directory may end up with several empty files.
package populator

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/ivoronin/randtree/internal/content"
	"github.com/ivoronin/randtree/internal/partition"
	"github.com/ivoronin/randtree/internal/progress"
	"github.com/ivoronin/randtree/internal/types"
)

// Populator writes files into existing directories.
type Populator struct {
	rng         *rand.Rand
	maxFileSize int64
	kind        content.Kind
	names       types.NameFunc
	registry    *types.Registry
	bar         *progress.Bar
	log         zerolog.Logger
	stats       *stats
}

// New creates a Populator. bar may be nil.
func New(r *rand.Rand, maxFileSize int64, kind content.Kind, names types.NameFunc,
	registry *types.Registry, bar *progress.Bar, log zerolog.Logger) *Populator {
	if bar == nil {
		bar = progress.New(false, 0)
	}
	return &Populator{
		rng:         r,
		maxFileSize: maxFileSize,
		kind:        kind,
		names:       names,
		registry:    registry,
		bar:         bar,
		log:         log,
	}
}

// stats tracks population progress for display.
type stats struct {
	files     int
	written   int64
	budget    int64
	startTime time.Time
}

func (s *stats) String() string {
	return fmt.Sprintf("Wrote %d files (%s of %s) in %.1fs",
		s.files, humanize.IBytes(uint64(s.written)), humanize.IBytes(uint64(s.budget)),
		time.Since(s.startTime).Seconds())
}

// Populate splits budget across dirs and writes files until every quota is
// spent. It returns the files written in creation order.
//
// Fails without writing anything if budget is smaller than len(dirs).
// A write error aborts the run and leaves the files written so far in place.
func (p *Populator) Populate(dirs []string, budget int64) ([]types.File, error) {
	if len(dirs) == 0 || budget < int64(len(dirs)) {
		return nil, fmt.Errorf("%w: size budget %d is too small for %d directories",
			types.ErrInvalidArgument, budget, len(dirs))
	}
	if p.maxFileSize < 1 {
		return nil, fmt.Errorf("%w: max file size %d must be at least 1", types.ErrInvalidArgument, p.maxFileSize)
	}

	quotas := []int64{budget}
	if len(dirs) > 1 {
		var err error
		if quotas, err = partition.Positive(p.rng, len(dirs), budget); err != nil {
			return nil, err
		}
	}

	for _, d := range dirs {
		p.registry.Add(d)
	}

	p.stats = &stats{budget: budget, startTime: time.Now()}
	p.bar.Describe(p.stats)

	var files []types.File
	for i, dir := range dirs {
		written, err := p.fillDirectory(dir, quotas[i])
		files = append(files, written...)
		if err != nil {
			return files, err
		}
	}

	p.bar.Finish(p.stats)
	return files, nil
}

// fillDirectory writes files into dir until quota bytes have been written.
func (p *Populator) fillDirectory(dir string, quota int64) ([]types.File, error) {
	var files []types.File
	for quota > 0 {
		size := p.rng.Int64N(min(p.maxFileSize, quota) + 1)
		quota -= size

		path, err := p.registry.Claim(dir, p.names)
		if err != nil {
			return files, err
		}
		if err := p.writeFile(path, size); err != nil {
			return files, fmt.Errorf("create %s: %w", path, err)
		}

		files = append(files, types.File{Path: path, Size: size})
		p.stats.files++
		p.stats.written += size
		p.bar.Describe(p.stats)
		p.log.Info().Str("path", path).Int64("size", size).Msg("file")
	}
	return files, nil
}

// writeFile creates path exclusively and streams size bytes of content into it.
func (p *Populator) writeFile(path string, size int64) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return content.Write(p.bar.Wrap(f), p.kind, p.rng, size)
}
