// Package lock guards an output directory against concurrent svcrpt runs.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileName is the lock file created inside a guarded directory.
const FileName = ".svcrpt.lock"

// ErrAlreadyLocked is returned when another run holds the lock.
var ErrAlreadyLocked = errors.New("another svcrpt run is using this output directory")

// Flocker is the subset of flock.Flock used here.
type Flocker interface {
	TryLock() (bool, error)
	Unlock() error
}

// Lock is a fail-fast advisory lock.
type Lock struct {
	flocker Flocker
}

// New wraps f.
func New(f Flocker) *Lock {
	return &Lock{flocker: f}
}

// NewFromPath returns a Lock backed by the file at path.
func NewFromPath(path string) *Lock {
	return New(flock.New(path))
}

// ForDir returns a Lock on dir's lock file, creating dir if needed.
func ForDir(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	return NewFromPath(filepath.Join(dir, FileName)), nil
}

// TryLock acquires the lock without blocking.
func (l *Lock) TryLock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ok, err := l.flocker.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	if !ok {
		return ErrAlreadyLocked
	}
	return nil
}

// Unlock releases the lock.
func (l *Lock) Unlock() error {
	if err := l.flocker.Unlock(); err != nil {
		return fmt.Errorf("releasing lock: %w", err)
	}
	return nil
}
