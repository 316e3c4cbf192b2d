package shell

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var activationLinePattern = regexp.MustCompile(`^eval "\$\(hearth activate (bash|zsh)\)"$`)

// RCFilePath returns the rc file for shell under home.
func RCFilePath(home string, shell ShellType) (string, error) {
	switch shell {
	case ShellBash:
		return filepath.Join(home, ".bashrc"), nil
	case ShellZsh:
		return filepath.Join(home, ".zshrc"), nil
	default:
		return "", &UnsupportedShellError{Shell: shell.String()}
	}
}

// RCFileExists checks if the rc file exists. Symlinks are rejected because
// the atomic rename would replace the link with a regular file.
func RCFileExists(rcPath string) (bool, error) {
	info, err := os.Lstat(rcPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, &RCFileError{Path: rcPath, Message: "failed to stat file", Cause: err}
	}

	if info.Mode()&os.ModeSymlink != 0 {
		return false, &RCFileError{Path: rcPath, Message: "refusing to modify symlink; add the activation line to its target"}
	}
	if !info.Mode().IsRegular() {
		return false, &RCFileError{Path: rcPath, Message: "not a regular file"}
	}
	return true, nil
}

// CreateRCFile creates an rc file with a basic header.
func CreateRCFile(rcPath string) error {
	if err := os.MkdirAll(filepath.Dir(rcPath), 0o755); err != nil {
		return &RCFileError{Path: rcPath, Message: "failed to create parent directory", Cause: err}
	}

	if err := os.WriteFile(rcPath, []byte("# Shell configuration\n"), 0o644); err != nil { //nolint:gosec // rc files are world-readable
		return &RCFileError{Path: rcPath, Message: "failed to create file", Cause: err}
	}
	return nil
}

// HasActivationLine reports whether a non-comment line invokes hearth activate.
func HasActivationLine(rcPath string) (bool, error) {
	file, err := os.Open(rcPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, &RCFileError{Path: rcPath, Message: "failed to open file", Cause: err}
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, ActivationMarker) {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, &RCFileError{Path: rcPath, Message: "failed to read file", Cause: err}
	}
	return false, nil
}

// BackupRCFile copies the rc file to a timestamped sibling.
func BackupRCFile(rcPath string, now time.Time) (string, error) {
	content, err := os.ReadFile(rcPath)
	if err != nil {
		return "", &RCFileError{Path: rcPath, Message: "failed to read file for backup", Cause: err}
	}

	backupPath := fmt.Sprintf("%s%s-%s", rcPath, BackupSuffix, now.Format("20060102-150405"))
	if err := os.WriteFile(backupPath, content, 0o600); err != nil {
		return "", &RCFileError{Path: backupPath, Message: "failed to write backup file", Cause: err}
	}
	return backupPath, nil
}

// AddActivationLine appends the activation section to the rc file
// atomically via a temporary file in the same directory.
func AddActivationLine(rcPath string, activationCommand string) error {
	if !activationLinePattern.MatchString(activationCommand) {
		return &RCFileError{Path: rcPath, Message: fmt.Sprintf("invalid activation command format: %q", activationCommand)}
	}

	exists, err := RCFileExists(rcPath)
	if err != nil {
		return err
	}

	var existing []byte
	mode := os.FileMode(0o644)
	if exists {
		info, err := os.Stat(rcPath)
		if err != nil {
			return &RCFileError{Path: rcPath, Message: "failed to stat file", Cause: err}
		}
		mode = info.Mode().Perm()

		existing, err = os.ReadFile(rcPath)
		if err != nil {
			return &RCFileError{Path: rcPath, Message: "failed to read existing file", Cause: err}
		}
	}

	var b strings.Builder
	b.Write(existing)
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n%s\n%s\n", rcHeader, activationCommand)

	tmpFile, err := os.CreateTemp(filepath.Dir(rcPath), ".hearth-tmp-*")
	if err != nil {
		return &RCFileError{Path: rcPath, Message: "failed to create temporary file", Cause: err}
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.WriteString(b.String()); err != nil {
		tmpFile.Close()
		return &RCFileError{Path: rcPath, Message: "failed to write activation line", Cause: err}
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return &RCFileError{Path: rcPath, Message: "failed to sync file", Cause: err}
	}
	if err := tmpFile.Close(); err != nil {
		return &RCFileError{Path: rcPath, Message: "failed to close temporary file", Cause: err}
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return &RCFileError{Path: rcPath, Message: "failed to set permissions", Cause: err}
	}

	if err := os.Rename(tmpPath, rcPath); err != nil {
		return &RCFileError{Path: rcPath, Message: "failed to rename temp file", Cause: err}
	}
	return nil
}
