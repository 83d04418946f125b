// Package generator builds a pseudo-random filesystem hierarchy with an exact
// byte budget.
//
// # Pipeline
//
//	Run(target, spec)
//	    │
//	    ├──► validate spec, create target (must not exist)
//	    ├──► seed one random source from spec.Seed
//	    ├──► builder.Build      → directories (target first)
//	    └──► populator.Populate → files summing to spec.SizeBudget
//
// Every random draw (names, branching, partitioning, file sizes, contents)
// comes from the single seeded source, in a fixed order, so the same seed and
// spec always reproduce the same tree.
package generator

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ivoronin/randtree/internal/builder"
	"github.com/ivoronin/randtree/internal/content"
	"github.com/ivoronin/randtree/internal/names"
	"github.com/ivoronin/randtree/internal/populator"
	"github.com/ivoronin/randtree/internal/progress"
	"github.com/ivoronin/randtree/internal/types"
)

// Spec is the full set of generation parameters.
type Spec struct {
	Seed          int64        `toml:"random_seed" json:"random_seed"`
	NameMaxLength int          `toml:"name_max_length" json:"name_max_length"`
	NameAlpha     float64      `toml:"name_alpha" json:"name_alpha"`
	NameBeta      float64      `toml:"name_beta" json:"name_beta"`
	NameGlyphs    string       `toml:"name_glyphs" json:"name_glyphs"`
	Levels        int          `toml:"levels" json:"levels"`
	SizeBudget    int64        `toml:"size_budget" json:"size_budget"`
	MaxFileSize   int64        `toml:"max_file_size" json:"max_file_size"`
	MaxSubdirs    int          `toml:"max_sub_dirs" json:"max_sub_dirs"`
	FileContent   content.Kind `toml:"file_content" json:"file_content"`
}

// Defaults returns the default spec seeded with the current Unix time.
func Defaults() Spec {
	return Spec{
		Seed:          time.Now().Unix(),
		NameMaxLength: 255,
		NameAlpha:     1.0,
		NameBeta:      7.0,
		NameGlyphs:    names.DefaultGlyphs,
		Levels:        2,
		SizeBudget:    134217728,
		MaxFileSize:   16777215,
		MaxSubdirs:    16,
		FileContent:   content.Incompressible,
	}
}

// Validate checks the parameters that are not validated by the components.
func (s Spec) Validate() error {
	switch {
	case s.Levels < 0:
		return fmt.Errorf("%w: levels %d must not be negative", types.ErrInvalidArgument, s.Levels)
	case s.MaxSubdirs < 1:
		return fmt.Errorf("%w: max sub-dirs %d must be at least 1", types.ErrInvalidArgument, s.MaxSubdirs)
	case s.SizeBudget < 1:
		return fmt.Errorf("%w: size budget %d must be at least 1", types.ErrInvalidArgument, s.SizeBudget)
	case s.MaxFileSize < 1:
		return fmt.Errorf("%w: max file size %d must be at least 1", types.ErrInvalidArgument, s.MaxFileSize)
	}
	if _, err := content.ParseKind(s.FileContent.String()); err != nil {
		return err
	}
	return nil
}

// Options controls side channels of a run.
type Options struct {
	Progress bool           // Show progress bars on stderr
	Log      zerolog.Logger // Per-path events are logged at info level
}

// Result describes a completed run.
type Result struct {
	Root        string
	Seed        int64
	Directories []string
	Files       []types.File
	Bytes       int64
}

// NewRand returns the random source used for a given seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}

// Run creates target and generates a tree inside it according to spec.
//
// Parameter errors are reported before anything is created. If the budget
// turns out to be smaller than the number of generated directories, the
// directories remain but no file is written. I/O errors leave a partial tree.
func Run(target string, spec Spec, opts Options) (*Result, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	rng := NewRand(spec.Seed)
	gen, err := names.New(rng, spec.NameGlyphs, spec.NameMaxLength, spec.NameAlpha, spec.NameBeta)
	if err != nil {
		return nil, err
	}

	if err := os.Mkdir(target, 0o755); err != nil {
		return nil, fmt.Errorf("create target: %w", err)
	}

	registry := types.NewRegistry()
	result := &Result{Root: target, Seed: spec.Seed}

	dirs, err := builder.New(rng, spec.Levels, spec.MaxSubdirs, gen.Func(), registry, opts.Log).Build(target, 1)
	result.Directories = dirs
	if err != nil {
		return result, err
	}

	bar := progress.New(opts.Progress, spec.SizeBudget)
	files, err := populator.New(rng, spec.MaxFileSize, spec.FileContent, gen.Func(), registry, bar, opts.Log).
		Populate(dirs, spec.SizeBudget)
	result.Files = files
	for _, f := range files {
		result.Bytes += f.Size
	}
	return result, err
}
