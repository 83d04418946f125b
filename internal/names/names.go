// Package names generates random file and directory names.
//
// Name lengths follow a Beta(alpha, beta) distribution scaled to
// [1, maxLength]. With the defaults (alpha=1, beta=7) most names are short
// while a long tail still reaches the maximum, roughly like a real tree.
package names

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ivoronin/randtree/internal/types"
)

// DefaultGlyphs is the alphabet used when none is configured.
const DefaultGlyphs = "abcdefghijklmnopqrstuvwxyz0123456789"

// MaxNameBytes is NAME_MAX on common filesystems. Names made of multibyte
// glyphs are cut short at a rune boundary to stay within it.
const MaxNameBytes = 255

// Generator produces random names from a fixed alphabet.
type Generator struct {
	rng       *rand.Rand
	glyphs    []rune
	maxLength int
	length    distuv.Beta
}

// New creates a Generator drawing from r.
func New(r *rand.Rand, glyphs string, maxLength int, alpha, beta float64) (*Generator, error) {
	if glyphs == "" {
		return nil, fmt.Errorf("%w: glyph alphabet is empty", types.ErrInvalidArgument)
	}
	if strings.ContainsAny(glyphs, "/\x00") {
		return nil, fmt.Errorf("%w: glyph alphabet %q contains '/' or NUL", types.ErrInvalidArgument, glyphs)
	}
	if maxLength < 1 {
		return nil, fmt.Errorf("%w: max name length %d must be at least 1", types.ErrInvalidArgument, maxLength)
	}
	if !(alpha > 0) || !(beta > 0) || math.IsInf(alpha, 0) || math.IsInf(beta, 0) {
		return nil, fmt.Errorf("%w: alpha %v and beta %v must be positive", types.ErrInvalidArgument, alpha, beta)
	}

	return &Generator{
		rng:       r,
		glyphs:    []rune(glyphs),
		maxLength: maxLength,
		length:    distuv.Beta{Alpha: alpha, Beta: beta, Src: r},
	}, nil
}

// Generate returns a name of 1..maxLength glyphs and at most MaxNameBytes bytes.
func (g *Generator) Generate() string {
	n := int(g.length.Rand()*float64(g.maxLength)) + 1
	if n > g.maxLength {
		n = g.maxLength
	}

	var sb strings.Builder
	sb.Grow(n * 4)
	for range n {
		r := g.glyphs[g.rng.IntN(len(g.glyphs))]
		if sb.Len()+utf8.RuneLen(r) > MaxNameBytes {
			break
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Func returns Generate as a types.NameFunc.
func (g *Generator) Func() types.NameFunc {
	return g.Generate
}
