//go:build unix && !e2e

package testfs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivoronin/randtree/internal/generator"
	"github.com/ivoronin/randtree/internal/probe"
)

// TestSowCreatesFilesCorrectly verifies that Sow creates files with correct sizes and content.
func TestSowCreatesFilesCorrectly(t *testing.T) {
	root := filepath.Join(t.TempDir(), "fx")

	fx := Fixture{
		Files: []File{
			{Path: "a.txt", Chunks: []Chunk{{Pattern: 'A', Size: "100"}}},
			{Path: "sub/b.txt", Chunks: []Chunk{{Pattern: 'B', Size: "50"}, {Pattern: 'C', Size: "25"}}},
		},
	}

	if err := Sow(root, fx); err != nil {
		t.Fatalf("Sow failed: %v", err)
	}

	contentA, err := os.ReadFile(filepath.Join(root, "a.txt"))
	if err != nil {
		t.Fatalf("failed to read a.txt: %v", err)
	}
	if len(contentA) != 100 {
		t.Errorf("a.txt size: got %d, want 100", len(contentA))
	}
	for i, b := range contentA {
		if b != 'A' {
			t.Errorf("a.txt content[%d]: got %q, want 'A'", i, b)
			break
		}
	}

	contentB, err := os.ReadFile(filepath.Join(root, "sub", "b.txt"))
	if err != nil {
		t.Fatalf("failed to read sub/b.txt: %v", err)
	}
	if len(contentB) != 75 {
		t.Errorf("sub/b.txt size: got %d, want 75", len(contentB))
	}
	if contentB[49] != 'B' || contentB[50] != 'C' {
		t.Errorf("sub/b.txt chunk boundary: got %q %q", contentB[49], contentB[50])
	}
}

// TestSowLargeChunk verifies chunks larger than the write buffer.
func TestSowLargeChunk(t *testing.T) {
	root := t.TempDir()
	fx := Fixture{Files: []File{{Path: "big", Chunks: []Chunk{{Pattern: 0, Size: "3MiB"}}}}}

	if err := Sow(root, fx); err != nil {
		t.Fatalf("Sow failed: %v", err)
	}
	info, err := os.Stat(filepath.Join(root, "big"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 3<<20 {
		t.Errorf("size: got %d, want %d", info.Size(), 3<<20)
	}
}

// TestSowCreatesEmptyDirs verifies that listed directories exist without files.
func TestSowCreatesEmptyDirs(t *testing.T) {
	root := t.TempDir()

	if err := Sow(root, Fixture{Dirs: []string{"empty", "a/b/c"}}); err != nil {
		t.Fatalf("Sow failed: %v", err)
	}
	for _, d := range []string{"empty", "a/b/c"} {
		if info, err := os.Stat(filepath.Join(root, d)); err != nil || !info.IsDir() {
			t.Errorf("%s: not a directory (%v)", d, err)
		}
	}
}

// TestSowRejectsBadSize verifies that invalid chunk sizes are reported.
func TestSowRejectsBadSize(t *testing.T) {
	fx := Fixture{Files: []File{{Path: "x", Chunks: []Chunk{{Pattern: 'X', Size: "lots"}}}}}
	if err := Sow(t.TempDir(), fx); err == nil {
		t.Error("expected error for invalid chunk size")
	}
}

// TestSowRefusesOverwrite verifies that existing files are not replaced.
func TestSowRefusesOverwrite(t *testing.T) {
	root := t.TempDir()
	fx := Fixture{Files: []File{{Path: "a", Chunks: []Chunk{{Pattern: 'A', Size: "1"}}}}}

	if err := Sow(root, fx); err != nil {
		t.Fatal(err)
	}
	if err := Sow(root, fx); !errors.Is(err, os.ErrExist) {
		t.Errorf("second Sow: got %v, want os.ErrExist", err)
	}
}

// TestFixtureTotalSize tests size accounting across files and chunks.
func TestFixtureTotalSize(t *testing.T) {
	fx := Fixture{Files: []File{
		{Path: "a", Chunks: []Chunk{{Pattern: 'A', Size: "1KiB"}, {Pattern: 'B', Size: "1KiB"}}},
		{Path: "b", Chunks: []Chunk{{Pattern: 'A', Size: "100"}}},
	}}
	if got := fx.TotalSize(); got != 2148 {
		t.Errorf("TotalSize: got %d, want 2148", got)
	}
}

// TestHarnessGenerateAndReap exercises the generated tree assertions.
func TestHarnessGenerateAndReap(t *testing.T) {
	h := New(t)
	spec := generator.Defaults()
	spec.Seed = 11
	spec.Levels = 3
	spec.MaxSubdirs = 4
	spec.SizeBudget = 256 << 10
	spec.MaxFileSize = 16 << 10

	res := h.Generate("tree", spec)
	tree := h.Reap("tree")

	AssertGenerated(t, tree, spec.SizeBudget, spec.MaxFileSize)
	if len(tree.Dirs) != len(res.Directories) || len(tree.Files) != len(res.Files) {
		t.Errorf("inventory %d/%d, result %d/%d",
			len(tree.Dirs), len(tree.Files), len(res.Directories), len(res.Files))
	}

	spec2 := spec
	h.Generate("again", spec2)
	AssertSameTree(t, tree, h.Reap("again"))
}

// TestHarnessFixtureInventory verifies AssertFixture against a sown tree.
func TestHarnessFixtureInventory(t *testing.T) {
	h := New(t)
	fx := Fixture{
		Dirs: []string{"empty"},
		Files: []File{
			{Path: "a.bin", Chunks: []Chunk{{Pattern: 'A', Size: "1KiB"}}},
			{Path: "sub/b.bin", Chunks: []Chunk{{Pattern: 'B', Size: "10"}}},
		},
	}
	h.Sow("fx", fx)

	tree := h.Reap("fx")
	AssertFixture(t, fx, tree)
	if tree.Bytes != fx.TotalSize() {
		t.Errorf("bytes: got %d, want %d", tree.Bytes, fx.TotalSize())
	}
}

// TestHarnessProbeWritable verifies that a writable directory fails the probe.
func TestHarnessProbeWritable(t *testing.T) {
	h := New(t)
	h.Sow("fx", Fixture{Dirs: []string{"d"}, Files: []File{{Path: "f", Chunks: []Chunk{{Pattern: 'F', Size: "1"}}}}})

	_, err := h.Probe("fx")
	if !errors.Is(err, probe.ErrUnexpectedSuccess) {
		t.Errorf("Probe: got %v, want ErrUnexpectedSuccess", err)
	}
}
