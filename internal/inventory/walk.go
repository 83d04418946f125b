package inventory

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ivoronin/randtree/internal/progress"
	"github.com/ivoronin/randtree/internal/types"
)

// walker lists a tree with one goroutine per directory.
//
//	walk(root)
//	    │
//	    ├──► spawn collector goroutine (reads resultCh)
//	    ├──► walkDirectory(".")
//	    │        ├──► acquire semaphore
//	    │        ├──► listDirectory() → files, subdirs → resultCh
//	    │        ├──► release semaphore
//	    │        └──► for each subdir: walkDirectory(subdir)
//	    ├──► walkerWg.Wait(), close(resultCh), collectorWg.Wait()
//	    └──► return dirs and files in collection order
//
// The semaphore bounds concurrent directory reads, not goroutines. The first
// error stops further fan-out and is returned once all walkers have exited.
type walker struct {
	root string

	walkerWg  sync.WaitGroup
	walkerSem types.Semaphore
	resultCh  chan walkResult
	stats     *walkStats
	bar       *progress.Bar

	errOnce sync.Once
	err     error
	failed  atomic.Bool
}

// walkResult carries either a directory or a file.
type walkResult struct {
	dir  string
	file *Entry
}

type walkStats struct {
	dirs      atomic.Int64
	files     atomic.Int64
	bytes     atomic.Int64
	startTime time.Time
}

func (s *walkStats) String() string {
	return fmt.Sprintf("Listed %d dirs, %d files (%s) in %.1fs",
		s.dirs.Load(), s.files.Load(), humanize.IBytes(uint64(s.bytes.Load())),
		time.Since(s.startTime).Seconds())
}

func walk(root string, workers int, showProgress bool) (dirs []string, files []Entry, err error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, err
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%s: not a directory", root)
	}

	w := &walker{
		root:      root,
		walkerSem: types.NewSemaphore(workers),
		resultCh:  make(chan walkResult, 1000),
		stats:     &walkStats{startTime: time.Now()},
		bar:       progress.New(showProgress, -1),
	}
	w.bar.Describe(w.stats)

	var collectorWg sync.WaitGroup
	collectorWg.Add(1)
	go func() {
		defer collectorWg.Done()
		for r := range w.resultCh {
			if r.file != nil {
				files = append(files, *r.file)
			} else {
				dirs = append(dirs, r.dir)
			}
		}
	}()

	w.walkDirectory(".")

	w.walkerWg.Wait()
	close(w.resultCh)
	collectorWg.Wait()

	w.bar.Finish(w.stats)
	if w.err != nil {
		return nil, nil, w.err
	}
	return dirs, files, nil
}

// walkDirectory lists rel in its own goroutine and fans out to subdirectories.
func (w *walker) walkDirectory(rel string) {
	w.walkerWg.Add(1)
	go func() {
		defer w.walkerWg.Done()
		if w.failed.Load() {
			return
		}

		w.walkerSem.Acquire()
		files, subdirs, err := w.listDirectory(rel)
		w.walkerSem.Release()
		if err != nil {
			w.fail(err)
			return
		}

		w.resultCh <- walkResult{dir: rel}
		w.stats.dirs.Add(1)
		for i := range files {
			w.resultCh <- walkResult{file: &files[i]}
			w.stats.files.Add(1)
			w.stats.bytes.Add(files[i].Size)
		}
		w.bar.Describe(w.stats)

		for _, sub := range subdirs {
			w.walkDirectory(sub)
		}
	}()
}

// listDirectory reads one directory in batches. Symlinks, devices and other
// special files are skipped.
func (w *walker) listDirectory(rel string) (files []Entry, subdirs []string, err error) {
	dirPath := filepath.Join(w.root, rel)
	dir, err := os.Open(dirPath)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = dir.Close() }()

	const batchSize = 1000
	for {
		entries, err := dir.ReadDir(batchSize)
		if len(entries) == 0 {
			if err != nil && err != io.EOF {
				return nil, nil, fmt.Errorf("list %s: %w", dirPath, err)
			}
			break
		}

		for _, entry := range entries {
			childRel := filepath.Join(rel, entry.Name())
			switch {
			case entry.IsDir():
				subdirs = append(subdirs, childRel)
			case entry.Type().IsRegular():
				info, err := entry.Info()
				if err != nil {
					return nil, nil, fmt.Errorf("stat %s: %w", filepath.Join(w.root, childRel), err)
				}
				files = append(files, Entry{Path: childRel, Size: info.Size()})
			}
		}
	}
	return files, subdirs, nil
}

func (w *walker) fail(err error) {
	w.errOnce.Do(func() {
		w.err = err
		w.failed.Store(true)
	})
}
