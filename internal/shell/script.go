package shell

import (
	"fmt"
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/hearth-sh/hearth/internal/config"
)

// RenderOptions controls activation script rendering.
type RenderOptions struct {
	// Binary is the hearth executable the helper functions call.
	// Defaults to "hearth".
	Binary string
}

// helperFunctions maps shell function names to hearth subcommands.
var helperFunctions = []struct {
	name       string
	subcommand string
}{
	{"search_packages", "search"},
	{"install_package", "install"},
	{"extract", "extract"},
}

// GenerateActivationCommand returns the line users add to their rc file.
func GenerateActivationCommand(shell ShellType) (string, error) {
	if err := ValidateShell(shell); err != nil {
		return "", err
	}
	return fmt.Sprintf(`eval "$(%s %s)"`, ActivationMarker, shell), nil
}

// RenderActivation builds the startup script for shell from cfg.
func RenderActivation(cfg *config.Config, shell ShellType, opts RenderOptions) (string, error) {
	if err := ValidateShell(shell); err != nil {
		return "", err
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	binary := opts.Binary
	if binary == "" {
		binary = "hearth"
	}

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line("# hearth activation (%s)", shell)
	line("export %s=1", EnvActive)

	if len(cfg.Path) > 0 {
		parts := make([]string, 0, len(cfg.Path)+1)
		for _, p := range cfg.Path {
			parts = append(parts, dqPath(p))
		}
		parts = append(parts, "$PATH")
		line(`export PATH="%s"`, strings.Join(parts, ":"))
	}

	if fw := cfg.Framework; fw.Enabled() {
		line(`export ZSH="%s"`, dqPath(fw.Home))
		if fw.Theme != "" {
			line("export ZSH_THEME=%s", shellWord(fw.Theme))
		}
		if shell == ShellZsh {
			words := make([]string, len(fw.Plugins))
			for i, p := range fw.Plugins {
				words[i] = shellWord(p)
			}
			line("plugins=(%s)", strings.Join(words, " "))
			line(`[ -f "$ZSH/oh-my-zsh.sh" ] && source "$ZSH/oh-my-zsh.sh"`)
		}
	}

	if cfg.Term != "" {
		line("export TERM=%s", shellWord(cfg.Term))
	}
	if cfg.ScriptsDir != "" {
		line(`export SCRIPTS="%s"`, dqPath(cfg.ScriptsDir))
	}
	for _, name := range cfg.EnvNames() {
		line("export %s=%s", name, shellWord(cfg.Env[name]))
	}

	for _, src := range cfg.Sources {
		p := dqPath(src)
		line(`[ -f "%s" ] && source "%s"`, p, p)
	}

	for _, name := range cfg.AliasNames() {
		line("alias %s=%s", name, singleQuote(cfg.Aliases[name]))
	}

	bin := singleQuote(binary)
	for _, fn := range helperFunctions {
		line("%s() {", fn.name)
		line(`  %s %s "$@"`, bin, fn.subcommand)
		line("}")
	}

	script := b.String()
	if err := checkSyntax(script); err != nil {
		return "", err
	}
	return script, nil
}

// checkSyntax parses script as bash. zsh accepts everything rendered here.
func checkSyntax(script string) error {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	if _, err := parser.Parse(strings.NewReader(script), "activate"); err != nil {
		return fmt.Errorf("rendered script does not parse: %w", err)
	}
	return nil
}

var plainWord = regexp.MustCompile(`^[A-Za-z0-9_./@%+=:,-]+$`)

// shellWord leaves plain words bare and single-quotes everything else.
func shellWord(s string) string {
	if plainWord.MatchString(s) {
		return s
	}
	return singleQuote(s)
}

func singleQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

var dqEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")

// dqPath returns p escaped for use inside double quotes. A leading ~
// becomes $HOME; nothing else expands.
func dqPath(p string) string {
	switch {
	case p == "~":
		return "$HOME"
	case strings.HasPrefix(p, "~/"):
		return "$HOME" + dqEscaper.Replace(p[1:])
	default:
		return dqEscaper.Replace(p)
	}
}
