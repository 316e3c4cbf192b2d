package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables read by the config layer.
const (
	// EnvConfigPath overrides the configuration file location.
	EnvConfigPath = "HEARTH_CONFIG"
)

// DefaultOfficial drives pacman against the official repositories.
func DefaultOfficial() SourceConfig {
	return SourceConfig{
		Label:   "Official repositories",
		Command: "pacman",
		Sudo:    true,
		Query:   []string{"-Si"},
		Search:  []string{"-Ss"},
		Install: []string{"-S"},
	}
}

// DefaultCommunity drives yay restricted to the AUR. yay escalates
// privileges on its own, so it never runs under sudo.
func DefaultCommunity() SourceConfig {
	return SourceConfig{
		Label:   "AUR",
		Command: "yay",
		Query:   []string{"-Si", "--aur"},
		Search:  []string{"-Ss", "--aur"},
		Install: []string{"-S", "--aur"},
	}
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Path:       []string{"~/bin", "~/.local/bin", "/usr/local/bin"},
		Term:       "xterm-256color",
		ScriptsDir: "~/scripts",
		Framework: Framework{
			Home:    "~/.oh-my-zsh",
			Theme:   "powerlevel10k/powerlevel10k",
			Plugins: []string{"git"},
		},
		Sources: []string{"~/.p10k.zsh", "~/.zshrc.local"},
		Packages: Packages{
			Official:  DefaultOfficial(),
			Community: DefaultCommunity(),
		},
	}
}

// DefaultPath returns $HEARTH_CONFIG or ~/.config/hearth/hearth.lua.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "hearth", "hearth.lua"), nil
}
