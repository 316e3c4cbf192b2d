package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hearth-sh/hearth/internal/platform"
)

func archDetector() platform.Detector {
	return platform.StaticDetector{Info: &platform.Info{
		OS:     "linux",
		Arch:   "amd64",
		Distro: "manjaro",
		Family: platform.FamilyArch,
	}}
}

func TestParser_ParseString_Minimal(t *testing.T) {
	parser := NewParser(nil)
	cfg, err := parser.ParseString(context.Background(), `hearth = {}`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	if len(cfg.Path) != 0 {
		t.Errorf("Path = %v, want empty", cfg.Path)
	}
	if cfg.Framework.Enabled() {
		t.Error("Framework should be disabled when not configured")
	}
	if !reflect.DeepEqual(cfg.Packages.Official, DefaultOfficial()) {
		t.Errorf("Official = %+v, want defaults", cfg.Packages.Official)
	}
	if !reflect.DeepEqual(cfg.Packages.Community, DefaultCommunity()) {
		t.Errorf("Community = %+v, want defaults", cfg.Packages.Community)
	}
}

func TestParser_ParseString_Full(t *testing.T) {
	code := `
		hearth = {
			path = { "~/bin", "~/.local/bin" },
			term = "xterm-256color",
			scripts_dir = "~/scripts",
			env = {
				EDITOR = "nvim",
				HISTSIZE = 10000,
			},
			framework = {
				home = "~/.oh-my-zsh",
				theme = "powerlevel10k/powerlevel10k",
				plugins = { "git", "fzf" },
			},
			sources = { "~/.p10k.zsh" },
			aliases = {
				ll = "ls -la",
				backup = "$SCRIPTS/backup.sh",
			},
		}
	`

	cfg, err := NewParser(nil).ParseString(context.Background(), code)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	if !reflect.DeepEqual(cfg.Path, []string{"~/bin", "~/.local/bin"}) {
		t.Errorf("Path = %v", cfg.Path)
	}
	if cfg.Term != "xterm-256color" {
		t.Errorf("Term = %q", cfg.Term)
	}
	if cfg.ScriptsDir != "~/scripts" {
		t.Errorf("ScriptsDir = %q", cfg.ScriptsDir)
	}
	if cfg.Env["EDITOR"] != "nvim" || cfg.Env["HISTSIZE"] != "10000" {
		t.Errorf("Env = %v", cfg.Env)
	}
	if cfg.Framework.Home != "~/.oh-my-zsh" || cfg.Framework.Theme != "powerlevel10k/powerlevel10k" {
		t.Errorf("Framework = %+v", cfg.Framework)
	}
	if !reflect.DeepEqual(cfg.Framework.Plugins, []string{"git", "fzf"}) {
		t.Errorf("Plugins = %v", cfg.Framework.Plugins)
	}
	if !reflect.DeepEqual(cfg.Sources, []string{"~/.p10k.zsh"}) {
		t.Errorf("Sources = %v", cfg.Sources)
	}
	if !reflect.DeepEqual(cfg.AliasNames(), []string{"backup", "ll"}) {
		t.Errorf("AliasNames() = %v", cfg.AliasNames())
	}
}

func TestParser_ParseString_SourceOverrides(t *testing.T) {
	code := `
		hearth = {
			packages = {
				official = { sudo = false },
				community = { command = "paru", label = "Arch User Repository" },
			},
		}
	`

	cfg, err := NewParser(nil).ParseString(context.Background(), code)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	official := cfg.Packages.Official
	if official.Sudo {
		t.Error("official.sudo = true, want false")
	}
	if official.Command != "pacman" {
		t.Errorf("official.command = %q, want pacman", official.Command)
	}

	community := cfg.Packages.Community
	if community.Command != "paru" {
		t.Errorf("community.command = %q, want paru", community.Command)
	}
	if community.Label != "Arch User Repository" {
		t.Errorf("community.label = %q", community.Label)
	}
	if !reflect.DeepEqual(community.Install, []string{"-S", "--aur"}) {
		t.Errorf("community.install = %v, want default", community.Install)
	}
}

func TestParser_ParseString_Platform(t *testing.T) {
	code := `
		hearth = {
			aliases = {
				update = platform.is_arch_family and "sudo pacman -Syu" or "sudo apt upgrade",
			},
			sources = {
				"~/.common.zsh",
				platform.when(platform.is_macos, "~/.macos.zsh"),
				platform.when(platform.distro == "manjaro", "~/.manjaro.zsh"),
			},
		}
	`

	cfg, err := NewParser(archDetector()).ParseString(context.Background(), code)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	if cfg.Aliases["update"] != "sudo pacman -Syu" {
		t.Errorf("update alias = %q", cfg.Aliases["update"])
	}
	want := []string{"~/.common.zsh", "~/.manjaro.zsh"}
	if !reflect.DeepEqual(cfg.Sources, want) {
		t.Errorf("Sources = %v, want %v", cfg.Sources, want)
	}
}

func TestParser_ParseString_Has(t *testing.T) {
	lookPath := func(name string) (string, error) {
		if name == "eza" {
			return "/usr/bin/eza", nil
		}
		return "", errors.New("not found")
	}
	code := `
		hearth = {
			aliases = {
				ls = has("eza") and "eza" or "ls --color=auto",
				cat = has("bat") and "bat" or "cat -v",
			},
		}
	`

	cfg, err := NewParser(nil, WithLookPath(lookPath)).ParseString(context.Background(), code)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	if cfg.Aliases["ls"] != "eza" {
		t.Errorf("ls = %q, want eza", cfg.Aliases["ls"])
	}
	if cfg.Aliases["cat"] != "cat -v" {
		t.Errorf("cat = %q, want cat -v", cfg.Aliases["cat"])
	}
}

func TestParser_ParseString_Errors(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
	}{
		{"syntax error", `hearth = {`, "Lua error"},
		{"runtime error", `error("boom")`, "Lua error"},
		{"missing table", `x = 1`, "missing or invalid 'hearth' table"},
		{"wrong type", `hearth = "nope"`, "missing or invalid 'hearth' table"},
		{"reserved env", `hearth = { env = { PATH = "/bin" } }`, "config validation failed"},
		{"empty alias", `hearth = { aliases = { x = "" } }`, "config validation failed"},
		{"platform write", `platform.os = "windows"`, "Lua error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(archDetector()).ParseString(context.Background(), tt.code)
			if err == nil {
				t.Fatal("ParseString() expected error")
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("error type = %T, want *ParseError", err)
			}
			if !strings.Contains(parseErr.Message, tt.wantMsg) {
				t.Errorf("Message = %q, want to contain %q", parseErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestParser_ParseString_DetectorError(t *testing.T) {
	detector := platform.StaticDetector{Err: errors.New("no host")}
	_, err := NewParser(detector).ParseString(context.Background(), `hearth = {}`)
	if err == nil || !strings.Contains(err.Error(), "platform detection failed") {
		t.Errorf("error = %v, want platform detection failure", err)
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hearth.lua")
		cfg, err := Load(context.Background(), NewParser(nil), path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if !reflect.DeepEqual(cfg, Default()) {
			t.Errorf("Load() = %+v, want Default()", cfg)
		}
	})

	t.Run("existing file is parsed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hearth.lua")
		if err := os.WriteFile(path, []byte(`hearth = { term = "screen-256color" }`), 0o600); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(context.Background(), NewParser(nil), path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Term != "screen-256color" {
			t.Errorf("Term = %q", cfg.Term)
		}
	})
}

func TestFormatError(t *testing.T) {
	err := &ParseError{Message: "Lua error", Detail: "<string>:1: boom\nstack traceback:\n\t[G]: in ?"}

	short := FormatError(err, false)
	if strings.Contains(short, "stack traceback") {
		t.Errorf("FormatError(false) = %q, should drop traceback", short)
	}
	if !strings.Contains(short, "boom") {
		t.Errorf("FormatError(false) = %q, should keep message", short)
	}

	long := FormatError(err, true)
	if !strings.Contains(long, "stack traceback") {
		t.Errorf("FormatError(true) = %q, should keep traceback", long)
	}

	plain := errors.New("plain")
	if got := FormatError(plain, false); got != "plain" {
		t.Errorf("FormatError(plain) = %q", got)
	}
}
