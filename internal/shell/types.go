package shell

import "fmt"

// ShellType names a shell hearth can activate in.
type ShellType string

const (
	// ShellBash is GNU Bash.
	ShellBash ShellType = "bash"
	// ShellZsh is the Z shell.
	ShellZsh ShellType = "zsh"
	// ShellUnknown is returned when detection finds nothing usable.
	ShellUnknown ShellType = "unknown"
)

func (s ShellType) String() string {
	return string(s)
}

// IsValid reports whether s is bash or zsh.
func (s ShellType) IsValid() bool {
	switch s {
	case ShellBash, ShellZsh:
		return true
	default:
		return false
	}
}

// ParseShellType converts a user-supplied name such as "zsh" or
// "/usr/bin/zsh" into a ShellType.
func ParseShellType(name string) (ShellType, error) {
	s := parseShellFromPath(name)
	if !s.IsValid() {
		return ShellUnknown, &UnsupportedShellError{Shell: name}
	}
	return s, nil
}

// SetupOptions controls how the rc file is changed.
type SetupOptions struct {
	// Force appends a second activation line when one exists.
	Force bool
	// Backup copies an existing rc file aside first.
	Backup bool
	// DryRun leaves every file untouched.
	DryRun bool
}

// SetupResult describes what SetupIntegration did, or would do.
type SetupResult struct {
	Shell             ShellType
	RCFile            string
	Created           bool
	Added             bool
	AlreadyPresent    bool
	BackupPath        string
	ActivationCommand string
}

// DetectionResult is the shell DetectShell settled on.
type DetectionResult struct {
	Shell ShellType
	// Method is how the shell was found ("$SHELL environment variable",
	// "parent process" or "detection failed").
	Method string
	// ShellPath is the value the shell was detected from
	ShellPath string
}

// UnsupportedShellError names a shell other than bash or zsh.
type UnsupportedShellError struct {
	Shell string
}

func (e *UnsupportedShellError) Error() string {
	return fmt.Sprintf("unsupported shell: %s (supported: bash, zsh)", e.Shell)
}

// RCFileError wraps a failed read or write of an rc file.
type RCFileError struct {
	Path    string
	Message string
	Cause   error
}

func (e *RCFileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *RCFileError) Unwrap() error {
	return e.Cause
}
