package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/ivoronin/randtree/internal/inventory"
	"github.com/ivoronin/randtree/internal/types"
)

// execute runs the root command in-process and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func reap(t *testing.T, root string) *inventory.Tree {
	t.Helper()
	tree, err := inventory.Reap(root, inventory.Options{Fingerprint: true})
	if err != nil {
		t.Fatalf("reap %s: %v", root, err)
	}
	return tree
}

// =============================================================================
// generate
// =============================================================================

func TestGenerateSingleLevel(t *testing.T) {
	target := filepath.Join(t.TempDir(), "tree")

	out, err := execute(t, "generate", target,
		"--levels", "1", "--size-budget", "100", "--max-file-size", "50",
		"--random-seed", "42", "--no-progress")
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}

	for _, want := range []string{"dirname: " + target, "random seed: 42", "file content: incompressible"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	tree := reap(t, target)
	if tree.Bytes != 100 {
		t.Errorf("total bytes = %d, want 100", tree.Bytes)
	}
	for _, f := range tree.Files {
		if f.Size > 50 {
			t.Errorf("%s: size %d exceeds max file size", f.Path, f.Size)
		}
	}
}

func TestGenerateSameSeedSameTree(t *testing.T) {
	dir := t.TempDir()
	args := []string{"--levels", "3", "--size-budget", "64KiB", "--max-file-size", "4KiB",
		"--max-sub-dirs", "4", "--random-seed", "7", "--file-content", "compressible", "--no-progress"}

	for _, name := range []string{"a", "b"} {
		if out, err := execute(t, append([]string{"generate", filepath.Join(dir, name)}, args...)...); err != nil {
			t.Fatalf("generate %s: %v\n%s", name, err, out)
		}
	}

	a, b := reap(t, filepath.Join(dir, "a")), reap(t, filepath.Join(dir, "b"))
	if a.Fingerprint != b.Fingerprint {
		t.Errorf("fingerprints differ: %s != %s", a.Fingerprint, b.Fingerprint)
	}
	if a.Bytes != 64*1024 {
		t.Errorf("total bytes = %d, want %d", a.Bytes, 64*1024)
	}
}

func TestGenerateBudgetBelowDirectoryCount(t *testing.T) {
	dir := t.TempDir()

	// Some seeds produce only the target directory, which a budget of 1 can fill.
	for seed := range 50 {
		target := filepath.Join(dir, strconv.Itoa(seed))

		_, err := execute(t, "generate", target, "--levels", "2", "--size-budget", "1",
			"--random-seed", strconv.Itoa(seed), "--no-progress")
		if err == nil {
			continue
		}
		if !errors.Is(err, types.ErrInvalidArgument) {
			t.Fatalf("error = %v, want ErrInvalidArgument", err)
		}
		if tree := reap(t, target); len(tree.Files) != 0 || tree.Bytes != 0 || len(tree.Dirs) < 2 {
			t.Errorf("after failure: %d dirs, %d files, %d bytes", len(tree.Dirs), len(tree.Files), tree.Bytes)
		}
		return
	}
	t.Fatal("no seed produced more than one directory")
}

func TestGenerateRejectsInvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad size", []string{"--size-budget", "lots"}},
		{"bad content", []string{"--file-content", "sparse"}},
		{"negative levels", []string{"--levels", "-1"}},
		{"zero sub-dirs", []string{"--max-sub-dirs", "0"}},
		{"empty glyphs", []string{"--name-glyphs", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := filepath.Join(t.TempDir(), "tree")
			args := append([]string{"generate", target, "--no-progress"}, tt.args...)
			if _, err := execute(t, args...); err == nil {
				t.Fatal("expected error")
			}
			if _, err := os.Stat(target); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("target created despite invalid flags: %v", err)
			}
		})
	}
}

func TestGenerateExistingTarget(t *testing.T) {
	if _, err := execute(t, "generate", t.TempDir(), "--no-progress"); !errors.Is(err, os.ErrExist) {
		t.Errorf("error = %v, want os.ErrExist", err)
	}
}

func TestGenerateProfileWithFlagOverride(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "profile.toml")
	if err := os.WriteFile(profile, []byte("levels = 0\nsize_budget = 64\nfile_content = \"compressible\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "tree")

	out, err := execute(t, "generate", target, "--config", profile, "--size-budget", "100", "--no-progress")
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "file content: compressible") {
		t.Errorf("profile content kind not applied:\n%s", out)
	}

	tree := reap(t, target)
	if len(tree.Dirs) != 1 {
		t.Errorf("dirs = %v, want only the target", tree.Dirs)
	}
	if tree.Bytes != 100 {
		t.Errorf("total bytes = %d, want 100 from flag", tree.Bytes)
	}
}

func TestGenerateVerboseLogsPaths(t *testing.T) {
	target := filepath.Join(t.TempDir(), "tree")

	out, err := execute(t, "generate", target, "--levels", "0", "--size-budget", "10", "-v", "--no-progress")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "path="+target) {
		t.Errorf("verbose output does not mention the target:\n%s", out)
	}
}

// =============================================================================
// journal / replay
// =============================================================================

func TestReplayReproducesRecordedTree(t *testing.T) {
	dir := t.TempDir()
	journalFile := filepath.Join(dir, "state", "runs.db")
	source := filepath.Join(dir, "source")
	copyTarget := filepath.Join(dir, "copy")

	if out, err := execute(t, "generate", source, "--levels", "2", "--size-budget", "32KiB",
		"--max-sub-dirs", "3", "--journal", journalFile, "--no-progress"); err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	if out, err := execute(t, "replay", source, copyTarget, "--journal", journalFile, "--no-progress"); err != nil {
		t.Fatalf("replay: %v\n%s", err, out)
	}

	a, b := reap(t, source), reap(t, copyTarget)
	if a.Fingerprint != b.Fingerprint {
		t.Errorf("replayed tree differs: %s != %s", a.Fingerprint, b.Fingerprint)
	}

	out, err := execute(t, "journal", "--journal", journalFile)
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	for _, want := range []string{source, copyTarget, "32 KiB"} {
		if !strings.Contains(out, want) {
			t.Errorf("journal listing missing %q:\n%s", want, out)
		}
	}
}

func TestReplayUnknownSource(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "replay", filepath.Join(dir, "nope"), filepath.Join(dir, "copy"),
		"--journal", filepath.Join(dir, "runs.db"))
	if err == nil {
		t.Fatal("expected error for unrecorded source")
	}
}

// =============================================================================
// stat / bench / fixtures
// =============================================================================

func TestStatJSON(t *testing.T) {
	target := filepath.Join(t.TempDir(), "tree")
	if _, err := execute(t, "generate", target, "--levels", "0", "--size-budget", "10", "--no-progress"); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "stat", target, "--json", "--fingerprint", "--no-progress")
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !strings.Contains(out, `"bytes": 10`) && !strings.Contains(out, `"bytes":10`) {
		t.Errorf("unexpected stat output:\n%s", out)
	}
}

func TestBenchCommand(t *testing.T) {
	csvFile := filepath.Join(t.TempDir(), "results.csv")
	data := "squashfs,find,find /mnt,1.000000,0.100000,0.200000\nsquashfs,find,find /mnt,2.000000,0.100000,0.200000\n"
	if err := os.WriteFile(csvFile, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "bench", csvFile)
	if err != nil {
		t.Fatalf("bench: %v", err)
	}
	if !strings.Contains(out, "1.5000") {
		t.Errorf("average missing:\n%s", out)
	}
}

func TestPow2AndZerosCommands(t *testing.T) {
	dir := t.TempDir()

	if _, err := execute(t, "pow2", filepath.Join(dir, "pow2"), "--from-shift", "9", "--to-shift", "11"); err != nil {
		t.Fatalf("pow2: %v", err)
	}
	if tree := reap(t, filepath.Join(dir, "pow2")); len(tree.Files) != 4 || tree.Bytes != 2*(512+1024) {
		t.Errorf("pow2: %d files, %d bytes", len(tree.Files), tree.Bytes)
	}

	out, err := execute(t, "zeros", filepath.Join(dir, "zeros"), "--random-seed", "3")
	if err != nil {
		t.Fatalf("zeros: %v", err)
	}
	if !strings.Contains(out, "random seed: 3") {
		t.Errorf("zeros output:\n%s", out)
	}
	if n := len(reap(t, filepath.Join(dir, "zeros")).Files); n < 8 || n > 16 {
		t.Errorf("zeros: %d files", n)
	}

	if _, err := execute(t, "pow2", filepath.Join(dir, "bad"), "--from-shift", "5", "--to-shift", "4"); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("pow2 with reversed range: error = %v", err)
	}
}
