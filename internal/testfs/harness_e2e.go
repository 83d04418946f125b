//go:build e2e

package testfs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ivoronin/randtree/internal/generator"
	"github.com/ivoronin/randtree/internal/inventory"
)

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

const (
	// baseImage is the Docker image used for E2E tests.
	baseImage = "alpine:3.21"

	binaryName = "randtree"
	binaryPath = "/usr/local/bin/" + binaryName

	// Mount points of the shared host directory inside the container.
	readOnlyMount  = "/mnt/ro"
	readWriteMount = "/mnt/rw"

	// ScratchDir is a tmpfs inside the container for trees generated there.
	ScratchDir = "/scratch"
)

// -----------------------------------------------------------------------------
// Harness - Public API
// -----------------------------------------------------------------------------

// Harness provides E2E test infrastructure using Docker containers.
//
// A host temporary directory is bind-mounted into the container twice: at
// /mnt/ro read-only and at /mnt/rw read-write. Trees sown or generated on
// the host are therefore visible through both mounts.
//
// Usage:
//
//	h := testfs.New(t)
//	h.Generate("tree", spec)
//	h.Run("probe", h.ReadOnlyPath("tree")).AssertExit(t, 0)
//	h.Run("probe", h.ReadWritePath("tree")).AssertExit(t, 1)
type Harness struct {
	t         *testing.T
	ctx       context.Context
	hostRoot  string
	container *Container
}

// New starts a container with the shared host directory and the randtree
// binary mounted.
//
// Requires RANDTREE_E2E_BINDIR pointing to a directory with a linux randtree
// binary. The container is cleaned up when the test finishes.
func New(t *testing.T) *Harness {
	t.Helper()

	binDir := os.Getenv("RANDTREE_E2E_BINDIR")
	if binDir == "" {
		t.Fatal("RANDTREE_E2E_BINDIR not set")
	}

	ctx := context.Background()
	h := &Harness{t: t, ctx: ctx, hostRoot: t.TempDir()}

	binds := []Bind{
		{Host: filepath.Join(binDir, binaryName), Container: binaryPath, ReadOnly: true},
		{Host: h.hostRoot, Container: readOnlyMount, ReadOnly: true},
		{Host: h.hostRoot, Container: readWriteMount},
	}
	c, err := NewContainer(ctx, baseImage, binds, map[string]string{ScratchDir: "size=256m"})
	if err != nil {
		t.Fatalf("failed to create container: %v", err)
	}
	h.container = c

	t.Cleanup(h.Cleanup)
	return h
}

// ReadOnlyPath returns the container path of name through the read-only mount.
func (h *Harness) ReadOnlyPath(name string) string {
	return path.Join(readOnlyMount, name)
}

// ReadWritePath returns the container path of name through the read-write mount.
func (h *Harness) ReadWritePath(name string) string {
	return path.Join(readWriteMount, name)
}

// Sow creates fx on the host below name.
func (h *Harness) Sow(name string, fx Fixture) {
	h.t.Helper()
	if err := Sow(filepath.Join(h.hostRoot, name), fx); err != nil {
		h.t.Fatalf("failed to setup files: %v", err)
	}
}

// Generate runs the generator on the host into name.
func (h *Harness) Generate(name string, spec generator.Spec) *generator.Result {
	h.t.Helper()

	res, err := generator.Run(filepath.Join(h.hostRoot, name), spec, generator.Options{Log: zerolog.Nop()})
	if err != nil {
		h.t.Fatalf("generate %s (seed %d): %v", name, spec.Seed, err)
	}
	return res
}

// HostReap returns the fingerprinted inventory of name as seen by the host.
func (h *Harness) HostReap(name string) *inventory.Tree {
	h.t.Helper()

	tree, err := inventory.Reap(filepath.Join(h.hostRoot, name), inventory.Options{Fingerprint: true})
	if err != nil {
		h.t.Fatalf("reap %s: %v", name, err)
	}
	return tree
}

// Run executes the randtree binary inside the container.
func (h *Harness) Run(args ...string) *RunResult {
	h.t.Helper()

	res, err := h.container.Run(h.ctx, append([]string{binaryPath}, args...))
	if err != nil {
		h.t.Fatalf("failed to run randtree: %v", err)
	}
	return res
}

// Reap returns the fingerprinted inventory of a container path, as reported
// by "randtree stat".
func (h *Harness) Reap(containerPath string) *inventory.Tree {
	h.t.Helper()

	res := h.Run("stat", "--json", "--fingerprint", "--no-progress", containerPath)
	if res.ExitCode != 0 {
		h.t.Fatalf("stat %s failed (exit %d): %s%s", containerPath, res.ExitCode, res.Stdout, res.Stderr)
	}

	var tree inventory.Tree
	if err := json.Unmarshal([]byte(res.Stdout), &tree); err != nil {
		h.t.Fatalf("parse stat output: %v", fmt.Errorf("%w: %q", err, res.Stdout))
	}
	return &tree
}

// Cleanup terminates the container and releases resources.
func (h *Harness) Cleanup() {
	if h.container != nil {
		_ = h.container.Close(h.ctx)
		h.container = nil
	}
}
