// Package types provides shared types used across the randtree codebase.
package types

import (
	"errors"
	"fmt"
	"path/filepath"
)

// MaxNameAttempts bounds how many names are rolled for one path before giving up.
const MaxNameAttempts = 10000

// ErrInvalidArgument marks parameter errors. Callers test for it with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrNamesExhausted is returned when no unique name could be found within MaxNameAttempts.
var ErrNamesExhausted = errors.New("unable to find an unused name")

// File records a regular file written during a run.
type File struct {
	Path string
	Size int64
}

// NameFunc returns a fresh random name. Names are not required to be unique.
type NameFunc func() string

// Registry tracks every path claimed during a single run.
//
// Directories and files share one namespace, so a file can never shadow a
// directory created earlier in the same run and vice versa.
type Registry struct {
	paths map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{paths: make(map[string]struct{})}
}

// Add records path as taken. Returns false if it was already present.
func (r *Registry) Add(path string) bool {
	if _, ok := r.paths[path]; ok {
		return false
	}
	r.paths[path] = struct{}{}
	return true
}

// Has reports whether path has been claimed.
func (r *Registry) Has(path string) bool {
	_, ok := r.paths[path]
	return ok
}

// Len returns the number of claimed paths.
func (r *Registry) Len() int { return len(r.paths) }

// Claim joins names from next onto dir until the result is unused, records it,
// and returns it. "." and ".." are treated as collisions.
func (r *Registry) Claim(dir string, next NameFunc) (string, error) {
	for range MaxNameAttempts {
		name := next()
		if name == "." || name == ".." {
			continue
		}
		path := filepath.Join(dir, name)
		if r.Add(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s after %d attempts", ErrNamesExhausted, dir, MaxNameAttempts)
}

// Semaphore implements a counting semaphore using a buffered channel.
// It limits concurrent access to a resource by blocking when the limit is reached.
type Semaphore chan struct{}

// NewSemaphore creates a semaphore that allows up to n concurrent acquisitions.
func NewSemaphore(n int) Semaphore { return make(chan struct{}, n) }

// Acquire blocks until a slot is available, then claims it.
func (s Semaphore) Acquire() { s <- struct{}{} }

// Release frees a slot, unblocking one waiting Acquire call.
func (s Semaphore) Release() { <-s }
