package organize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquireLock(t *testing.T) {
	t.Run("creates and releases", func(t *testing.T) {
		dir := t.TempDir()
		lock, err := acquireLock(context.Background(), dir)
		if err != nil {
			t.Fatalf("acquireLock() error = %v", err)
		}

		path := filepath.Join(dir, lockFileName)
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("lock file not created: %v", err)
		}
		if err := lock.release(); err != nil {
			t.Fatalf("release() error = %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("lock file not removed")
		}
	})

	t.Run("prevents concurrent runs", func(t *testing.T) {
		dir := t.TempDir()
		lock, err := acquireLock(context.Background(), dir)
		if err != nil {
			t.Fatal(err)
		}
		defer lock.release()

		if _, err := acquireLock(context.Background(), dir); !errors.Is(err, ErrLocked) {
			t.Errorf("second acquireLock() error = %v, want ErrLocked", err)
		}
	})

	t.Run("takes over stale lock", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, lockFileName)
		if err := os.WriteFile(path, []byte("pid=1\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		old := time.Now().Add(-2 * staleLockAge)
		if err := os.Chtimes(path, old, old); err != nil {
			t.Fatal(err)
		}

		lock, err := acquireLock(context.Background(), dir)
		if err != nil {
			t.Fatalf("acquireLock() error = %v", err)
		}
		lock.release()
	})

	t.Run("respects cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := acquireLock(ctx, t.TempDir()); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}

func TestOrganizer_LockedOutput(t *testing.T) {
	env := newOrganizerEnv(t)
	env.file(t, "a.txt", "a")

	lock, err := acquireLock(context.Background(), env.output)
	if err != nil {
		t.Fatal(err)
	}
	defer lock.release()

	if _, err := env.organizer(t).Run(context.Background()); !errors.Is(err, ErrLocked) {
		t.Errorf("Run() error = %v, want ErrLocked", err)
	}
	if _, err := os.Stat(filepath.Join(env.base, "a.txt")); err != nil {
		t.Error("a.txt moved while locked")
	}
}
