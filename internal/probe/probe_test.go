//go:build unix

package probe

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"testing/fstest"
)

// fakeFS lists a fixed directory and fails every mutation with err,
// except the ops listed in succeed.
type fakeFS struct {
	entries fstest.MapFS
	err     error
	succeed map[Op]bool
	calls   []Op
}

func (f *fakeFS) ReadDir(string) ([]fs.DirEntry, error) { return f.entries.ReadDir(".") }
func (f *fakeFS) Lstat(string) (fs.FileInfo, error)     { return nil, fs.ErrNotExist }

func (f *fakeFS) result(op Op, path string) error {
	f.calls = append(f.calls, op)
	if f.succeed[op] {
		return nil
	}
	return &os.PathError{Op: string(op), Path: path, Err: f.err}
}

func (f *fakeFS) Create(p string) error { return f.result(OpCreate, p) }
func (f *fakeFS) Mkdir(p string) error  { return f.result(OpMkdir, p) }
func (f *fakeFS) Rmdir(p string) error  { return f.result(OpRmdir, p) }
func (f *fakeFS) Unlink(p string) error { return f.result(OpUnlink, p) }

func populated() fstest.MapFS {
	return fstest.MapFS{
		"sub/inner": &fstest.MapFile{Data: []byte("x")},
		"zfile":     &fstest.MapFile{Data: []byte("y")},
	}
}

// =============================================================================
// Read-only Behaviour
// =============================================================================

func TestRunAllRejected(t *testing.T) {
	f := &fakeFS{entries: populated(), err: syscall.EROFS}

	attempts, err := Run(f, "/mnt")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := []Op{OpCreate, OpMkdir, OpRmdir, OpUnlink}
	if len(attempts) != len(want) {
		t.Fatalf("got %d attempts, want %d", len(attempts), len(want))
	}
	for i, op := range want {
		if attempts[i].Op != op {
			t.Errorf("attempt %d = %s, want %s", i, attempts[i].Op, op)
		}
	}
	if attempts[2].Path != filepath.Join("/mnt", "sub") {
		t.Errorf("rmdir path = %s, want /mnt/sub", attempts[2].Path)
	}
	if attempts[3].Path != filepath.Join("/mnt", "zfile") {
		t.Errorf("unlink path = %s, want /mnt/zfile", attempts[3].Path)
	}
}

// TestRunEmptyMount skips rmdir and unlink when there is nothing to remove.
func TestRunEmptyMount(t *testing.T) {
	f := &fakeFS{entries: fstest.MapFS{}, err: syscall.EROFS}

	attempts, err := Run(f, "/mnt")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(attempts) != 2 {
		t.Errorf("got %d attempts, want 2", len(attempts))
	}
}

// =============================================================================
// Failure Reporting
// =============================================================================

func TestRunUnexpectedSuccess(t *testing.T) {
	for _, op := range []Op{OpCreate, OpMkdir, OpRmdir, OpUnlink} {
		t.Run(string(op), func(t *testing.T) {
			f := &fakeFS{entries: populated(), err: syscall.EROFS, succeed: map[Op]bool{op: true}}

			_, err := Run(f, "/mnt")
			if !errors.Is(err, ErrUnexpectedSuccess) {
				t.Fatalf("Run() error = %v, want ErrUnexpectedSuccess", err)
			}
			if last := f.calls[len(f.calls)-1]; last != op {
				t.Errorf("probe continued after %s succeeded (last call %s)", op, last)
			}
		})
	}
}

// TestRunOtherErrorPropagates verifies a non-EROFS failure is not masked.
func TestRunOtherErrorPropagates(t *testing.T) {
	f := &fakeFS{entries: populated(), err: syscall.EACCES}

	attempts, err := Run(f, "/mnt")
	if !errors.Is(err, syscall.EACCES) {
		t.Fatalf("Run() error = %v, want EACCES", err)
	}
	if errors.Is(err, ErrUnexpectedSuccess) {
		t.Error("EACCES reported as unexpected success")
	}
	if len(attempts) != 0 {
		t.Errorf("got %d attempts, want 0", len(attempts))
	}
}

// TestRunWritableDirectory runs against a real, writable directory.
func TestRunWritableDirectory(t *testing.T) {
	root := t.TempDir()

	_, err := Run(OS{}, root)
	if !errors.Is(err, ErrUnexpectedSuccess) {
		t.Fatalf("Run() error = %v, want ErrUnexpectedSuccess", err)
	}
}

func TestRunMissingMount(t *testing.T) {
	_, err := Run(OS{}, filepath.Join(t.TempDir(), "missing"))
	if err == nil || errors.Is(err, ErrUnexpectedSuccess) {
		t.Errorf("Run() error = %v, want listing error", err)
	}
}

func TestOSRmdirUnlink(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "d")
	file := filepath.Join(root, "f")
	if err := (OS{}).Mkdir(dir); err != nil {
		t.Fatal(err)
	}
	if err := (OS{}).Create(file); err != nil {
		t.Fatal(err)
	}

	if err := (OS{}).Unlink(dir); err == nil {
		t.Error("Unlink() on a directory should fail")
	}
	if err := (OS{}).Rmdir(dir); err != nil {
		t.Errorf("Rmdir() error: %v", err)
	}
	if err := (OS{}).Unlink(file); err != nil {
		t.Errorf("Unlink() error: %v", err)
	}
}
