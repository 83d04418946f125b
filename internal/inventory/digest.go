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
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"github.com/ivoronin/randtree/internal/progress"
)

// blockSize is the read buffer size.
const blockSize = 64 * 1024

// digest is the result of the content pass over one file.
type digest struct {
	sum        [32]byte // BLAKE3 of the content, zero if not requested
	compressed int64    // zstd output size, zero if not requested
}

type digestStats struct {
	totalBytes int64
	readBytes  atomic.Int64
	readFiles  atomic.Int64
	startTime  time.Time
}

func (s *digestStats) String() string {
	pct := 0.0
	if s.totalBytes > 0 {
		pct = float64(s.readBytes.Load()) / float64(s.totalBytes) * 100
	}
	return fmt.Sprintf("Read %d files, %s out of %s (%.0f%%) in %v",
		s.readFiles.Load(), humanize.IBytes(uint64(s.readBytes.Load())),
		humanize.IBytes(uint64(s.totalBytes)), pct, time.Since(s.startTime).Truncate(time.Millisecond))
}

// digestFiles reads every file once with a fixed pool of workers. Results
// are indexed like files, so the caller can combine them in path order.
func (t *Tree) digestFiles(opts Options) ([]digest, error) {
	results := make([]digest, len(t.Files))
	stats := &digestStats{totalBytes: t.Bytes, startTime: time.Now()}
	bar := progress.New(opts.Progress, -1)
	bar.Describe(stats)

	jobCh := make(chan int, len(t.Files))
	for i := range t.Files {
		jobCh <- i
	}
	close(jobCh)

	var (
		workerWg sync.WaitGroup
		errOnce  sync.Once
		firstErr error
		failed   atomic.Bool
	)
	for range max(opts.Workers, 1) {
		workerWg.Add(1)
		go func() {
			defer workerWg.Done()
			buf := make([]byte, blockSize)
			for i := range jobCh {
				if failed.Load() {
					continue
				}
				f := t.Files[i]
				d, err := digestFile(filepath.Join(t.Root, f.Path), opts, buf)
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						failed.Store(true)
					})
					continue
				}
				results[i] = d
				stats.readFiles.Add(1)
				stats.readBytes.Add(f.Size)
				bar.Describe(stats)
			}
		}()
	}
	workerWg.Wait()

	bar.Finish(stats)
	return results, firstErr
}

// digestFile streams one file through the requested hash and compressor.
func digestFile(path string, opts Options, buf []byte) (d digest, err error) {
	f, err := os.Open(path)
	if err != nil {
		return d, err
	}
	defer func() { _ = f.Close() }()

	var sinks []io.Writer
	var hasher *blake3.Hasher
	if opts.Fingerprint {
		hasher = blake3.New()
		sinks = append(sinks, hasher)
	}
	var cw countingWriter
	var enc *zstd.Encoder
	if opts.Ratio {
		if enc, err = zstd.NewWriter(&cw, zstd.WithEncoderConcurrency(1),
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression)); err != nil {
			return d, err
		}
		sinks = append(sinks, enc)
	}

	if _, err := io.CopyBuffer(io.MultiWriter(sinks...), f, buf); err != nil {
		if enc != nil {
			_ = enc.Close()
		}
		return d, fmt.Errorf("read %s: %w", path, err)
	}

	if hasher != nil {
		copy(d.sum[:], hasher.Sum(nil))
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return d, err
		}
		d.compressed = cw.n
	}
	return d, nil
}

type countingWriter struct{ n int64 }

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
