// Package testutil provides helpers for testing hearth in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SetupTestEnv points HOME and every HEARTH_* variable at a fresh temp
// directory so tests never read or modify the user's real rc files or
// configuration. It returns the fake home directory.
func SetupTestEnv(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	configDir := filepath.Join(home, ".config", "hearth")

	t.Setenv("HOME", home)
	t.Setenv("HEARTH_CONFIG", filepath.Join(configDir, "hearth.lua"))
	t.Setenv("HEARTH_DEBUG", "")
	t.Setenv("SHELL", "/bin/zsh")

	if err := os.MkdirAll(configDir, 0o750); err != nil {
		t.Fatalf("failed to create test config directory %s: %v", configDir, err)
	}

	return home
}

// WriteFile creates path (and its parents) with content.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
