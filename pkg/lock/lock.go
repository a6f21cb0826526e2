// Package lock serialises writers of a workbook file.
//
// A Lock combines an in-process gate with an advisory flock(2) on a
// "<path>.lock" sidecar file, so goroutines of one server and cooperating
// processes (for example the admin CLI) never interleave a
// read-modify-write cycle on the same workbook. The workbook itself is
// replaced by rename on save, so the flock is held on the sidecar.
//
// Unix-only.
package lock

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
)

// DefaultTimeout bounds how long Acquire waits when no timeout is given.
const DefaultTimeout = 5 * time.Second

const retryInterval = 10 * time.Millisecond

// ErrTimeout is returned when the lock could not be taken in time.
var ErrTimeout = errors.New("lock timeout")

var (
	registryMu sync.Mutex
	registry   = map[string]*Lock{}
)

// Lock is the single-writer gate for one file path.
type Lock struct {
	path string
	gate chan struct{}
}

// Named returns the process-wide lock for path. Equivalent paths share a lock.
func Named(path string) *Lock {
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	l, ok := registry[key]
	if !ok {
		l = &Lock{path: key, gate: make(chan struct{}, 1)}
		registry[key] = l
	}
	return l
}

// Path is the file the lock guards.
func (l *Lock) Path() string {
	return l.path
}

// Acquire blocks until the caller holds the lock, the timeout expires, or ctx
// is done. The returned func releases the lock; calls after the first do
// nothing.
func (l *Lock) Acquire(ctx context.Context, timeout time.Duration) (func(), error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	deadline := time.Now().Add(timeout)
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case l.gate <- struct{}{}:
	case <-timer.C:
		return nil, eris.Wrapf(ErrTimeout, "lock: acquire %s", l.path)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	file, err := l.flock(ctx, deadline)
	if err != nil {
		<-l.gate
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
			_ = file.Close()
			<-l.gate
		})
	}, nil
}

func (l *Lock) flock(ctx context.Context, deadline time.Time) (*os.File, error) {
	file, err := os.OpenFile(l.path+".lock", os.O_CREATE|os.O_RDWR, 0o644) //nolint:gosec // path comes from config
	if err != nil {
		return nil, eris.Wrapf(err, "lock: open %s.lock", l.path)
	}

	for {
		err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			return file, nil
		}
		if !errors.Is(err, syscall.EWOULDBLOCK) {
			_ = file.Close()
			return nil, eris.Wrapf(err, "lock: flock %s", l.path)
		}
		if time.Now().After(deadline) {
			_ = file.Close()
			return nil, eris.Wrapf(ErrTimeout, "lock: acquire %s", l.path)
		}

		select {
		case <-ctx.Done():
			_ = file.Close()
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}
