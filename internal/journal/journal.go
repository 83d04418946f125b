// Package journal records generation runs in a BoltDB file.
//
// Each entry stores the seed and parameters of one run keyed by the absolute
// target path, which is enough to regenerate the same tree elsewhere. Tree
// contents are never stored.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ivoronin/randtree/internal/generator"
)

const bucketName = "runs"

// ErrNotFound is returned by Lookup when no run is recorded for a target.
var ErrNotFound = errors.New("no run recorded")

// Entry is one recorded run.
type Entry struct {
	Target      string         `json:"target"`
	Spec        generator.Spec `json:"spec"`
	Created     time.Time      `json:"created"`
	Directories int            `json:"directories"`
	Files       int            `json:"files"`
	Bytes       int64          `json:"bytes"`
}

// NewEntry builds an entry from a finished run.
func NewEntry(spec generator.Spec, res *generator.Result) (Entry, error) {
	abs, err := filepath.Abs(res.Root)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Target:      abs,
		Spec:        spec,
		Created:     time.Now().UTC(),
		Directories: len(res.Directories),
		Files:       len(res.Files),
		Bytes:       res.Bytes,
	}, nil
}

// Journal is an open run journal. A zero path yields a disabled journal
// whose methods are no-ops.
type Journal struct {
	db      *bolt.DB
	enabled bool
}

// Open opens or creates the journal at path.
// Returns a disabled journal if path is empty.
func Open(path string) (*Journal, error) {
	if path == "" {
		return &Journal{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open journal (locked by another instance?): %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Journal{db: db, enabled: true}, nil
}

// Enabled reports whether the journal is backed by a file.
func (j *Journal) Enabled() bool { return j.enabled }

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record stores e, replacing any earlier run for the same target.
func (j *Journal) Record(e Entry) error {
	if !j.enabled {
		return nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	err = j.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(e.Target), data)
	})
	if err != nil {
		return fmt.Errorf("journal record: %w", err)
	}
	return nil
}

// Lookup returns the run recorded for target.
func (j *Journal) Lookup(target string) (Entry, error) {
	if !j.enabled {
		return Entry{}, fmt.Errorf("%w: journal disabled", ErrNotFound)
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return Entry{}, err
	}

	var e Entry
	found := false
	err = j.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(abs))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &e)
	})
	if err != nil {
		return Entry{}, fmt.Errorf("journal lookup: %w", err)
	}
	if !found {
		return Entry{}, fmt.Errorf("%w for %s", ErrNotFound, abs)
	}
	return e, nil
}

// List returns all recorded runs ordered by target path.
func (j *Journal) List() ([]Entry, error) {
	if !j.enabled {
		return nil, nil
	}
	var entries []Entry
	err := j.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(_, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			entries = append(entries, e)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("journal list: %w", err)
	}
	return entries, nil
}
