package shell

import (
	"strings"
	"testing"

	"github.com/hearth-sh/hearth/internal/config"
)

func TestRenderActivation_DefaultZsh(t *testing.T) {
	got, err := RenderActivation(config.Default(), ShellZsh, RenderOptions{Binary: "/usr/bin/hearth"})
	if err != nil {
		t.Fatalf("RenderActivation() error = %v", err)
	}

	want := `# hearth activation (zsh)
export HEARTH_ACTIVE=1
export PATH="$HOME/bin:$HOME/.local/bin:/usr/local/bin:$PATH"
export ZSH="$HOME/.oh-my-zsh"
export ZSH_THEME=powerlevel10k/powerlevel10k
plugins=(git)
[ -f "$ZSH/oh-my-zsh.sh" ] && source "$ZSH/oh-my-zsh.sh"
export TERM=xterm-256color
export SCRIPTS="$HOME/scripts"
[ -f "$HOME/.p10k.zsh" ] && source "$HOME/.p10k.zsh"
[ -f "$HOME/.zshrc.local" ] && source "$HOME/.zshrc.local"
search_packages() {
  '/usr/bin/hearth' search "$@"
}
install_package() {
  '/usr/bin/hearth' install "$@"
}
extract() {
  '/usr/bin/hearth' extract "$@"
}
`
	if got != want {
		t.Errorf("RenderActivation() mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderActivation_BashSkipsFrameworkLoader(t *testing.T) {
	got, err := RenderActivation(config.Default(), ShellBash, RenderOptions{})
	if err != nil {
		t.Fatalf("RenderActivation() error = %v", err)
	}

	if strings.Contains(got, "plugins=(") {
		t.Error("bash script should not define the plugins array")
	}
	if strings.Contains(got, "oh-my-zsh.sh") {
		t.Error("bash script should not source oh-my-zsh")
	}
	if !strings.Contains(got, `export ZSH="$HOME/.oh-my-zsh"`) {
		t.Error("bash script should still export ZSH")
	}
	if !strings.Contains(got, `'hearth' search "$@"`) {
		t.Errorf("default binary should be hearth, got:\n%s", got)
	}
}

func TestRenderActivation_Quoting(t *testing.T) {
	cfg := &config.Config{
		Path: []string{"/opt/$weird/bin", `/opt/"q"`},
		Env: map[string]string{
			"PAGER":  "less -R",
			"EDITOR": "nvim",
			"QUOTE":  "it's",
		},
		Aliases: map[string]string{
			"say":    "echo 'hi'",
			"backup": "$SCRIPTS/backup.sh",
		},
		Packages: config.Default().Packages,
	}

	got, err := RenderActivation(cfg, ShellZsh, RenderOptions{})
	if err != nil {
		t.Fatalf("RenderActivation() error = %v", err)
	}

	wantLines := []string{
		`export PATH="/opt/\$weird/bin:/opt/\"q\":$PATH"`,
		`export EDITOR=nvim`,
		`export PAGER='less -R'`,
		`export QUOTE='it'\''s'`,
		`alias backup='$SCRIPTS/backup.sh'`,
		`alias say='echo '\''hi'\'''`,
	}
	for _, want := range wantLines {
		if !strings.Contains(got, want+"\n") {
			t.Errorf("script missing line %s\ngot:\n%s", want, got)
		}
	}

	if strings.Index(got, "export EDITOR") > strings.Index(got, "export PAGER") {
		t.Error("env exports should be sorted")
	}
	if strings.Index(got, "alias backup") > strings.Index(got, "alias say") {
		t.Error("aliases should be sorted")
	}
	if strings.Contains(got, "ZSH") {
		t.Error("framework block should be omitted when home is empty")
	}
}

func TestRenderActivation_Ordering(t *testing.T) {
	cfg := config.Default()
	cfg.Aliases = map[string]string{"ll": "ls -la"}
	cfg.Env = map[string]string{"EDITOR": "nvim"}

	got, err := RenderActivation(cfg, ShellZsh, RenderOptions{})
	if err != nil {
		t.Fatalf("RenderActivation() error = %v", err)
	}

	order := []string{
		"export PATH=",
		"export ZSH=",
		"source \"$ZSH/oh-my-zsh.sh\"",
		"export TERM=",
		"export SCRIPTS=",
		"export EDITOR=",
		".p10k.zsh",
		"alias ll=",
		"search_packages()",
	}
	last := -1
	for _, marker := range order {
		idx := strings.Index(got, marker)
		if idx < 0 {
			t.Fatalf("script missing %q", marker)
		}
		if idx < last {
			t.Errorf("%q appears out of order", marker)
		}
		last = idx
	}
}

func TestRenderActivation_Errors(t *testing.T) {
	t.Run("unsupported shell", func(t *testing.T) {
		if _, err := RenderActivation(config.Default(), ShellType("fish"), RenderOptions{}); err == nil {
			t.Error("expected error for fish")
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := config.Default()
		cfg.Env = map[string]string{"PATH": "/bin"}
		if _, err := RenderActivation(cfg, ShellZsh, RenderOptions{}); err == nil {
			t.Error("expected validation error")
		}
	})
}

func TestCheckSyntax(t *testing.T) {
	if err := checkSyntax("export A=1\nfoo() {\n  echo \"$@\"\n}\n"); err != nil {
		t.Errorf("checkSyntax(valid) error = %v", err)
	}
	if err := checkSyntax("if then fi {"); err == nil {
		t.Error("checkSyntax(invalid) expected error")
	}
}

func TestGenerateActivationCommand(t *testing.T) {
	tests := []struct {
		shell   ShellType
		want    string
		wantErr bool
	}{
		{ShellBash, `eval "$(hearth activate bash)"`, false},
		{ShellZsh, `eval "$(hearth activate zsh)"`, false},
		{ShellUnknown, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.shell.String(), func(t *testing.T) {
			got, err := GenerateActivationCommand(tt.shell)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GenerateActivationCommand() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("GenerateActivationCommand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDqPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"~", "$HOME"},
		{"~/bin", "$HOME/bin"},
		{"/usr/local/bin", "/usr/local/bin"},
		{"~user/bin", "~user/bin"},
		{"/a`b`", "/a\\`b\\`"},
	}
	for _, tt := range tests {
		if got := dqPath(tt.in); got != tt.want {
			t.Errorf("dqPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
