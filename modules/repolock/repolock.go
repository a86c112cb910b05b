// Package repolock provides the repository-scoped mutation lock: exactly
// one mutating operation may hold it at a time, so the core stays a
// single-writer-per-repository system even across separate processes.
package repolock

import (
	"fmt"

	"github.com/gofrs/flock"
)

// Lock guards mutations to one .muse directory with an advisory file lock.
type Lock struct {
	f *flock.Flock
}

// New returns a Lock backed by a lock file at path. The file is created on
// first acquisition if absent; it is never removed by this package.
func New(path string) *Lock {
	return &Lock{f: flock.New(path)}
}

// Acquire blocks until the lock is held, returning a release function that
// must be called on every exit path (typically via defer).
func (l *Lock) Acquire() (release func(), err error) {
	if err := l.f.Lock(); err != nil {
		return nil, fmt.Errorf("acquiring repository lock: %w", err)
	}
	return func() { _ = l.f.Unlock() }, nil
}

// TryAcquire attempts a non-blocking acquisition, returning ok=false when
// another process already holds the lock.
func (l *Lock) TryAcquire() (release func(), ok bool, err error) {
	locked, err := l.f.TryLock()
	if err != nil {
		return nil, false, fmt.Errorf("acquiring repository lock: %w", err)
	}
	if !locked {
		return nil, false, nil
	}
	return func() { _ = l.f.Unlock() }, true, nil
}
