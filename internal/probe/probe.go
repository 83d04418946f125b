//go:build unix

// Package probe verifies that a mounted filesystem rejects mutations.
//
// Four mutations are attempted against the mount root: creating a file,
// creating a directory, removing the first existing subdirectory and
// unlinking the first existing file. The last two are skipped when the root
// has no such entry. Every attempt must fail with EROFS. Any other error is
// returned as-is; a mutation that succeeds is reported as
// ErrUnexpectedSuccess, distinct from the mutation's own errors.
package probe

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
)

// ErrUnexpectedSuccess is returned when a mutation that must fail succeeds.
var ErrUnexpectedSuccess = errors.New("mutation did not fail")

// maxChildAttempts bounds the search for an unused child name.
const maxChildAttempts = 100

// Op names a mutation.
type Op string

const (
	OpCreate Op = "create"
	OpMkdir  Op = "mkdir"
	OpRmdir  Op = "rmdir"
	OpUnlink Op = "unlink"
)

// Attempt is the outcome of one rejected mutation.
type Attempt struct {
	Op   Op
	Path string
	Err  error
}

// FS is the set of filesystem calls the probe makes.
type FS interface {
	ReadDir(name string) ([]fs.DirEntry, error)
	Lstat(name string) (fs.FileInfo, error)
	Create(name string) error
	Mkdir(name string) error
	Rmdir(name string) error
	Unlink(name string) error
}

// OS is the real filesystem.
type OS struct{}

func (OS) ReadDir(name string) ([]fs.DirEntry, error) { return os.ReadDir(name) }
func (OS) Lstat(name string) (fs.FileInfo, error)     { return os.Lstat(name) }
func (OS) Mkdir(name string) error                    { return os.Mkdir(name, 0o755) }

func (OS) Create(name string) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

// Rmdir and Unlink call the syscalls directly: os.Remove tries both and
// may report the wrong one.
func (OS) Rmdir(name string) error {
	if err := syscall.Rmdir(name); err != nil {
		return &os.PathError{Op: "rmdir", Path: name, Err: err}
	}
	return nil
}

func (OS) Unlink(name string) error {
	if err := syscall.Unlink(name); err != nil {
		return &os.PathError{Op: "unlink", Path: name, Err: err}
	}
	return nil
}

// Run probes mntdir and returns the attempts that were correctly rejected.
func Run(fsys FS, mntdir string) ([]Attempt, error) {
	entries, err := fsys.ReadDir(mntdir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", mntdir, err)
	}

	var firstDir, firstFile string
	for _, e := range entries {
		switch {
		case e.IsDir() && firstDir == "":
			firstDir = filepath.Join(mntdir, e.Name())
		case !e.IsDir() && firstFile == "":
			firstFile = filepath.Join(mntdir, e.Name())
		}
	}

	type step struct {
		op   Op
		path func() (string, error)
		call func(string) error
	}
	existing := func(p string) func() (string, error) {
		return func() (string, error) { return p, nil }
	}
	fresh := func() (string, error) { return newChild(fsys, mntdir) }

	steps := []step{
		{OpCreate, fresh, fsys.Create},
		{OpMkdir, fresh, fsys.Mkdir},
	}
	if firstDir != "" {
		steps = append(steps, step{OpRmdir, existing(firstDir), fsys.Rmdir})
	}
	if firstFile != "" {
		steps = append(steps, step{OpUnlink, existing(firstFile), fsys.Unlink})
	}

	var attempts []Attempt
	for _, s := range steps {
		path, err := s.path()
		if err != nil {
			return attempts, err
		}
		err = s.call(path)
		if err == nil {
			return attempts, fmt.Errorf("%w: %s %s", ErrUnexpectedSuccess, s.op, path)
		}
		if !errors.Is(err, syscall.EROFS) {
			return attempts, fmt.Errorf("%s %s: %w", s.op, path, err)
		}
		attempts = append(attempts, Attempt{Op: s.op, Path: path, Err: err})
	}
	return attempts, nil
}

// newChild returns a path under base that does not exist yet.
func newChild(fsys FS, base string) (string, error) {
	for range maxChildAttempts {
		path := filepath.Join(base, uuid.NewString())
		_, err := fsys.Lstat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("no unused name under %s", base)
}
