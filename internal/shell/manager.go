package shell

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Config holds configuration for the shell manager
type Config struct {
	// Home is the directory holding the rc files. Defaults to the user's
	// home directory.
	Home string
	// Logger receives progress at debug level. Optional.
	Logger *slog.Logger
	// Now is the clock used for backup names. Optional.
	Now func() time.Time
}

// Manager orchestrates shell integration setup
type Manager struct {
	home   string
	logger *slog.Logger
	now    func() time.Time
}

// NewManager creates a new shell manager
func NewManager(cfg Config) (*Manager, error) {
	home := cfg.Home
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		home = h
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Manager{home: home, logger: logger, now: now}, nil
}

// SetupIntegration adds the activation line to shell's rc file. In dry-run
// mode nothing on disk changes, including rc file creation and backups.
func (m *Manager) SetupIntegration(ctx context.Context, shell ShellType, opts SetupOptions) (*SetupResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	activationCmd, err := GenerateActivationCommand(shell)
	if err != nil {
		return nil, err
	}

	rcPath, err := RCFilePath(m.home, shell)
	if err != nil {
		return nil, fmt.Errorf("get rc file path: %w", err)
	}

	result := &SetupResult{
		Shell:             shell,
		RCFile:            rcPath,
		ActivationCommand: activationCmd,
	}

	exists, err := RCFileExists(rcPath)
	if err != nil {
		return nil, fmt.Errorf("check rc file: %w", err)
	}

	if exists {
		hasActivation, err := HasActivationLine(rcPath)
		if err != nil {
			return nil, fmt.Errorf("check activation line: %w", err)
		}
		result.AlreadyPresent = hasActivation
		if hasActivation && !opts.Force {
			m.logger.Debug("activation already present", "rc_file", rcPath)
			return result, nil
		}
	}

	if opts.DryRun {
		m.logger.Debug("dry run, leaving rc file untouched", "rc_file", rcPath)
		return result, nil
	}

	if !exists {
		if err := CreateRCFile(rcPath); err != nil {
			return nil, fmt.Errorf("create rc file: %w", err)
		}
		result.Created = true
		m.logger.Debug("created rc file", "rc_file", rcPath)
	} else if opts.Backup {
		backupPath, err := BackupRCFile(rcPath, m.now())
		if err != nil {
			return nil, fmt.Errorf("backup rc file: %w", err)
		}
		result.BackupPath = backupPath
		m.logger.Debug("backed up rc file", "backup", backupPath)
	}

	if err := AddActivationLine(rcPath, activationCmd); err != nil {
		return nil, fmt.Errorf("add activation line: %w", err)
	}
	result.Added = true
	m.logger.Debug("added activation line", "rc_file", rcPath, "shell", shell)

	return result, nil
}

// DetectAndSetup detects the user's shell and sets up integration
func (m *Manager) DetectAndSetup(ctx context.Context, opts SetupOptions) (*SetupResult, error) {
	detection, err := DetectShell(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect shell: %w", err)
	}
	if !detection.Shell.IsValid() {
		return nil, &UnsupportedShellError{Shell: detection.ShellPath}
	}
	m.logger.Debug("detected shell", "shell", detection.Shell, "method", detection.Method)

	return m.SetupIntegration(ctx, detection.Shell, opts)
}
