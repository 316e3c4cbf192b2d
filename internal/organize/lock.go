package organize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	lockFileName = ".hearth-organize.lock"

	// staleLockAge is how old a lock may get before another run takes it over.
	staleLockAge = 30 * time.Minute
)

// ErrLocked is returned when another run holds the output directory.
var ErrLocked = errors.New("another organize run is using the output directory")

// runLock keeps two runs from moving files into the same output directory.
type runLock struct {
	path string
	file *os.File
}

// acquireLock creates the lock file in dir with O_EXCL. A lock older than
// staleLockAge is removed and retried once.
func acquireLock(ctx context.Context, dir string) (*runLock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, lockFileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if errors.Is(err, os.ErrExist) {
		if !lockIsStale(path) {
			return nil, fmt.Errorf("%w (%s)", ErrLocked, path)
		}
		os.Remove(path)
		file, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w (%s)", ErrLocked, path)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create lock file: %w", err)
	}

	stamp := fmt.Sprintf("pid=%d\ntimestamp=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if _, err := file.WriteString(stamp); err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write lock file: %w", err)
	}
	return &runLock{path: path, file: file}, nil
}

func (l *runLock) release() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}

func lockIsStale(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) > staleLockAge
}
