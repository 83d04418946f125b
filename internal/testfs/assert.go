package testfs

import (
	"path/filepath"
	"testing"

	"github.com/ivoronin/randtree/internal/inventory"
)

// -----------------------------------------------------------------------------
// Assertion Functions - Shared between integration and E2E Harness
// -----------------------------------------------------------------------------

// AssertExit verifies the exit code of a randtree execution.
func (r *RunResult) AssertExit(t *testing.T, want int) {
	t.Helper()
	if r.ExitCode != want {
		t.Errorf("exit code: got %d, want %d\nstdout: %s\nstderr: %s",
			r.ExitCode, want, r.Stdout, r.Stderr)
	}
}

// AssertGenerated verifies the invariants of a generated tree:
//   - File sizes add up to exactly budget
//   - No file is larger than maxFileSize
//   - Every directory holds at least one file
func AssertGenerated(t *testing.T, tree *inventory.Tree, budget, maxFileSize int64) {
	t.Helper()

	if tree.Bytes != budget {
		t.Errorf("total size: got %d, want %d", tree.Bytes, budget)
	}

	filesPerDir := make(map[string]int, len(tree.Dirs))
	for _, f := range tree.Files {
		if f.Size > maxFileSize {
			t.Errorf("%s: size %d exceeds %d", f.Path, f.Size, maxFileSize)
		}
		filesPerDir[filepath.Dir(f.Path)]++
	}
	for _, d := range tree.Dirs {
		if filesPerDir[d] == 0 {
			t.Errorf("directory %s holds no file", d)
		}
	}
}

// AssertSameTree verifies that two trees have identical shape and content.
// Both trees must have been reaped with a fingerprint.
func AssertSameTree(t *testing.T, want, got *inventory.Tree) {
	t.Helper()

	if want.Fingerprint == "" || got.Fingerprint == "" {
		t.Fatal("AssertSameTree requires fingerprinted inventories")
	}
	if want.Fingerprint == got.Fingerprint {
		return
	}

	t.Errorf("trees differ: %s (%s) != %s (%s)", want.Root, want.Fingerprint, got.Root, got.Fingerprint)
	if len(want.Dirs) != len(got.Dirs) || len(want.Files) != len(got.Files) {
		t.Errorf("shape: %d dirs/%d files vs %d dirs/%d files",
			len(want.Dirs), len(want.Files), len(got.Dirs), len(got.Files))
		return
	}
	for i := range want.Files {
		if want.Files[i] != got.Files[i] {
			t.Errorf("first differing file: %+v vs %+v", want.Files[i], got.Files[i])
			return
		}
	}
}

// AssertFixture verifies that every file of fx is present with its size.
func AssertFixture(t *testing.T, fx Fixture, tree *inventory.Tree) {
	t.Helper()

	sizes := make(map[string]int64, len(tree.Files))
	for _, f := range tree.Files {
		sizes[f.Path] = f.Size
	}
	for i, f := range fx.Files {
		size, ok := sizes[filepath.Clean(f.Path)]
		if !ok {
			t.Errorf("expected file not found: %s", f.Path)
			continue
		}
		if want := fx.Files[i].TotalSize(); size != want {
			t.Errorf("%s: size %d, want %d", f.Path, size, want)
		}
	}
}
