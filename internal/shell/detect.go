package shell

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// parentProcessName is replaced in tests.
var parentProcessName = func(ctx context.Context) (string, error) {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getppid())) //nolint:gosec // pids fit in int32
	if err != nil {
		return "", err
	}
	return p.NameWithContext(ctx)
}

// DetectShell detects the user's shell. An undetectable shell is reported
// as ShellUnknown, not as an error.
func DetectShell(ctx context.Context) (*DetectionResult, error) {
	if shell := os.Getenv("SHELL"); shell != "" {
		if shellType := parseShellFromPath(shell); shellType.IsValid() {
			return &DetectionResult{
				Shell:     shellType,
				Method:    "$SHELL environment variable",
				ShellPath: shell,
			}, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if name, err := parentProcessName(ctx); err == nil {
		if shellType := parseShellFromPath(name); shellType.IsValid() {
			return &DetectionResult{
				Shell:     shellType,
				Method:    "parent process",
				ShellPath: name,
			}, nil
		}
	}

	return &DetectionResult{
		Shell:  ShellUnknown,
		Method: "detection failed",
	}, nil
}

// parseShellFromPath extracts the shell type from a shell binary path or
// process name. Login shells report names like "-zsh".
func parseShellFromPath(shellPath string) ShellType {
	baseName := strings.ToLower(filepath.Base(shellPath))
	baseName = strings.TrimPrefix(baseName, "-")

	switch baseName {
	case "bash":
		return ShellBash
	case "zsh":
		return ShellZsh
	default:
		return ShellUnknown
	}
}

// ValidateShell validates that a shell type is supported
func ValidateShell(shell ShellType) error {
	if !shell.IsValid() {
		return &UnsupportedShellError{Shell: shell.String()}
	}
	return nil
}

// GetSupportedShells returns a list of supported shells
func GetSupportedShells() []ShellType {
	return []ShellType{ShellBash, ShellZsh}
}
