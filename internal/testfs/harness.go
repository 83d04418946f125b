//go:build unix && !e2e

package testfs

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ivoronin/randtree/internal/generator"
	"github.com/ivoronin/randtree/internal/inventory"
	"github.com/ivoronin/randtree/internal/probe"
)

// -----------------------------------------------------------------------------
// Harness - Integration Test API
// -----------------------------------------------------------------------------

// Harness provides integration test infrastructure using t.TempDir().
//
// Unlike the E2E Harness, nothing here is mounted read-only, so probes are
// expected to fail with probe.ErrUnexpectedSuccess. Use E2E tests with
// Docker for read-only mounts.
//
// Usage:
//
//	h := testfs.New(t)
//	res := h.Generate("tree", spec)
//	testfs.AssertGenerated(t, h.Reap("tree"), spec.SizeBudget, spec.MaxFileSize)
type Harness struct {
	t    *testing.T
	root string
}

// New creates a new Harness rooted in a fresh temporary directory.
func New(t *testing.T) *Harness {
	t.Helper()
	return &Harness{t: t, root: t.TempDir()}
}

// Root returns the temporary directory root path.
func (h *Harness) Root() string {
	return h.root
}

// Path returns the absolute path of name below the root.
func (h *Harness) Path(name string) string {
	return filepath.Join(h.root, name)
}

// Sow creates fx below name and returns its path.
func (h *Harness) Sow(name string, fx Fixture) string {
	h.t.Helper()

	p := h.Path(name)
	if err := Sow(p, fx); err != nil {
		h.t.Fatalf("failed to setup files: %v", err)
	}
	return p
}

// Generate runs the generator into name and fails the test on error.
func (h *Harness) Generate(name string, spec generator.Spec) *generator.Result {
	h.t.Helper()

	res, err := generator.Run(h.Path(name), spec, generator.Options{Log: zerolog.Nop()})
	if err != nil {
		h.t.Fatalf("generate %s (seed %d): %v", name, spec.Seed, err)
	}
	return res
}

// Reap returns the fingerprinted inventory of name.
func (h *Harness) Reap(name string) *inventory.Tree {
	h.t.Helper()

	tree, err := inventory.Reap(h.Path(name), inventory.Options{Fingerprint: true})
	if err != nil {
		h.t.Fatalf("reap %s: %v", name, err)
	}
	return tree
}

// Probe runs the read-only probe against name on the real filesystem.
func (h *Harness) Probe(name string) ([]probe.Attempt, error) {
	return probe.Run(probe.OS{}, h.Path(name))
}
