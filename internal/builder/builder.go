// Package builder creates a random directory hierarchy.
//
// Recursion starts at level 1. At each level a single draw in [1, level*2]
// decides whether any subdirectories are created at all, so the chance of
// descending halves (roughly) with every level: deep trees are possible but
// rare. When a level does branch, it creates between 1 and maxSubdirs
// directories and recurses into each of them.
package builder

import (
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/rs/zerolog"

	"github.com/ivoronin/randtree/internal/types"
)

// Builder creates directories under a base path.
//
// The builder is designed for single-use per run: it shares the run's random
// source and path registry with the populator.
type Builder struct {
	rng        *rand.Rand
	maxLevel   int
	maxSubdirs int
	names      types.NameFunc
	registry   *types.Registry
	log        zerolog.Logger
}

// New creates a Builder.
func New(r *rand.Rand, maxLevel, maxSubdirs int, names types.NameFunc, registry *types.Registry, log zerolog.Logger) *Builder {
	return &Builder{
		rng:        r,
		maxLevel:   maxLevel,
		maxSubdirs: maxSubdirs,
		names:      names,
		registry:   registry,
		log:        log,
	}
}

// Build creates a random set of subdirectories below base, starting at the
// given recursion level, and returns every directory to populate in creation
// order. At level 1 base itself comes first; base must already exist.
func (b *Builder) Build(base string, level int) ([]string, error) {
	if level < 1 {
		return nil, fmt.Errorf("%w: level %d must be at least 1", types.ErrInvalidArgument, level)
	}
	if b.maxSubdirs < 1 {
		return nil, fmt.Errorf("%w: max subdirectories %d must be at least 1", types.ErrInvalidArgument, b.maxSubdirs)
	}

	var dirs []string
	if level == 1 {
		b.registry.Add(base)
		dirs = append(dirs, base)
	}

	if level > b.maxLevel || b.rng.IntN(level*2) != 0 {
		return dirs, nil
	}

	count := b.rng.IntN(b.maxSubdirs) + 1
	for range count {
		path, err := b.registry.Claim(base, b.names)
		if err != nil {
			return dirs, err
		}
		if err := os.Mkdir(path, 0o755); err != nil {
			return dirs, fmt.Errorf("create directory %s: %w", path, err)
		}
		dirs = append(dirs, path)
		b.log.Info().Str("path", path).Int("level", level).Msg("dir")

		sub, err := b.Build(path, level+1)
		dirs = append(dirs, sub...)
		if err != nil {
			return dirs, err
		}
	}
	return dirs, nil
}
