// Package organize sorts a downloads directory into grouped folders,
// extracting archives and moving everything else.
//
// Files are grouped by a simplified name ("lib-1.2.tar.gz" lands in
// lib/lib-1.2/). Archives go through archive.Extractor with retries, every
// other file is moved. Work runs on a bounded worker pool and a failing
// item never stops the others.
package organize

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// PasswordPrompt as the configured password asks for it on the terminal.
const PasswordPrompt = "PROMPT"

// Config controls one organizer run.
type Config struct {
	BaseDir    string
	OutputDir  string
	Simulate   bool
	Integrity  bool
	Password   string
	FileFilter string
	MaxWorkers int
	Retries    int
	RetryDelay time.Duration
	// Keyring enables signature checks for archives that ship a
	// detached .sig or .asc next to them.
	Keyring string
}

// fileConfig is the on-disk shape shared by YAML and TOML.
type fileConfig struct {
	BaseDir    string `yaml:"base_dir" toml:"base_dir"`
	OutputDir  string `yaml:"output_dir" toml:"output_dir"`
	Simulate   bool   `yaml:"simulate" toml:"simulate"`
	Integrity  bool   `yaml:"integrity" toml:"integrity"`
	Password   string `yaml:"password" toml:"password"`
	FileFilter string `yaml:"file_filter" toml:"file_filter"`
	MaxThreads int    `yaml:"max_threads" toml:"max_threads"`
	Retries    int    `yaml:"retries" toml:"retries"`
	RetryDelay string `yaml:"retry_delay" toml:"retry_delay"`
	Keyring    string `yaml:"keyring" toml:"keyring"`
}

// DefaultConfig returns the settings used for keys a file leaves out.
func DefaultConfig() *Config {
	return &Config{
		BaseDir:    "~/Downloads",
		OutputDir:  "~/Organized_Files",
		FileFilter: ".*",
		MaxWorkers: 4,
		Retries:    3,
		RetryDelay: 2 * time.Second,
	}
}

func (c *Config) toFile() fileConfig {
	return fileConfig{
		BaseDir:    c.BaseDir,
		OutputDir:  c.OutputDir,
		Simulate:   c.Simulate,
		Integrity:  c.Integrity,
		Password:   c.Password,
		FileFilter: c.FileFilter,
		MaxThreads: c.MaxWorkers,
		Retries:    c.Retries,
		RetryDelay: c.RetryDelay.String(),
		Keyring:    c.Keyring,
	}
}

// LoadConfig reads a YAML (.yaml, .yml) or TOML (.toml) file. A missing
// file yields DefaultConfig with a warning.
func LoadConfig(path string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	//nolint:gosec // G304: path is the user's organizer config
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("organizer config not found, using defaults", "path", path)
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read organizer config: %w", err)
	}

	fc := DefaultConfig().toFile()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse organizer config %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse organizer config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported organizer config format %q (want .yaml, .yml or .toml)", ext)
	}

	delay, err := time.ParseDuration(fc.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("parse retry_delay: %w", err)
	}

	return &Config{
		BaseDir:    fc.BaseDir,
		OutputDir:  fc.OutputDir,
		Simulate:   fc.Simulate,
		Integrity:  fc.Integrity,
		Password:   fc.Password,
		FileFilter: fc.FileFilter,
		MaxWorkers: fc.MaxThreads,
		Retries:    fc.Retries,
		RetryDelay: delay,
		Keyring:    fc.Keyring,
	}, nil
}

// Validate checks the values a run depends on. The output directory must
// already exist.
func (c *Config) Validate() error {
	if c.BaseDir == "" {
		return fmt.Errorf("missing required configuration key: base_dir")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("missing required configuration key: output_dir")
	}

	out, err := ExpandHome(c.OutputDir)
	if err != nil {
		return err
	}
	if info, err := os.Stat(out); err != nil || !info.IsDir() {
		return fmt.Errorf("invalid output directory path: %s", out)
	}

	if _, err := regexp.Compile(c.FileFilter); err != nil {
		return fmt.Errorf("invalid file_filter: %w", err)
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("max_threads must be at least 1, got %d", c.MaxWorkers)
	}
	if c.Retries < 1 {
		return fmt.Errorf("retries must be at least 1, got %d", c.Retries)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry_delay cannot be negative")
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// ResolveBaseDir expands dir and, when it names a downloads directory,
// prefers whichever of "Downloads" or "downloads" exists next to it.
func ResolveBaseDir(dir string) (string, error) {
	base, err := ExpandHome(dir)
	if err != nil {
		return "", err
	}
	if !strings.EqualFold(filepath.Base(base), "downloads") {
		return base, nil
	}

	parent := filepath.Dir(base)
	for _, name := range []string{"Downloads", "downloads"} {
		candidate := filepath.Join(parent, name)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return base, nil
}
