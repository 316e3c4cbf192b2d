package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/hearth-sh/hearth/internal/platform"
)

// Lua schema names.
const (
	luaGlobal          = "hearth"
	luaFieldPath       = "path"
	luaFieldTerm       = "term"
	luaFieldScriptsDir = "scripts_dir"
	luaFieldEnv        = "env"
	luaFieldFramework  = "framework"
	luaFieldHome       = "home"
	luaFieldTheme      = "theme"
	luaFieldPlugins    = "plugins"
	luaFieldSources    = "sources"
	luaFieldAliases    = "aliases"
	luaFieldPackages   = "packages"
	luaFieldOfficial   = "official"
	luaFieldCommunity  = "community"
	luaFieldLabel      = "label"
	luaFieldCommand    = "command"
	luaFieldSudo       = "sudo"
	luaFieldQuery      = "query"
	luaFieldSearch     = "search"
	luaFieldInstall    = "install"
)

// Parser evaluates Lua configuration files.
type Parser struct {
	detector platform.Detector
	lookPath func(string) (string, error)
}

// Option configures a Parser.
type Option func(*Parser)

// WithLookPath replaces the PATH lookup behind the Lua has() helper.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(p *Parser) {
		p.lookPath = fn
	}
}

// NewParser creates a parser. A nil detector skips the platform table.
func NewParser(detector platform.Detector, opts ...Option) *Parser {
	p := &Parser{
		detector: detector,
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseError is a config evaluation error with a friendly message.
type ParseError struct {
	Message string // user-facing summary
	Detail  string // raw Lua or validation error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// ParseFile reads and evaluates the config at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return p.ParseString(ctx, string(data))
}

// ParseString evaluates Lua code and extracts the hearth table.
func (p *Parser) ParseString(ctx context.Context, code string) (*Config, error) {
	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, info); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	lookPath := p.lookPath
	L.SetGlobal("has", L.NewFunction(func(L *lua.LState) int {
		_, err := lookPath(L.CheckString(1))
		L.Push(lua.LBool(err == nil))
		return 1
	}))

	if err := L.DoString(code); err != nil {
		return nil, &ParseError{Message: "Lua error", Detail: err.Error()}
	}

	return extractConfig(L)
}

// Load parses the config at path. A missing file yields Default().
func Load(ctx context.Context, parser *Parser, path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("stat config: %w", err)
	}
	return parser.ParseFile(ctx, path)
}

func extractConfig(L *lua.LState) (*Config, error) {
	root, ok := L.GetGlobal(luaGlobal).(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: fmt.Sprintf("missing or invalid '%s' table", luaGlobal),
			Detail:  fmt.Sprintf("expected table, got %s", L.GetGlobal(luaGlobal).Type()),
		}
	}

	cfg := &Config{
		Path:       stringList(root.RawGetString(luaFieldPath)),
		Term:       stringField(root, luaFieldTerm),
		ScriptsDir: stringField(root, luaFieldScriptsDir),
		Env:        stringMap(root.RawGetString(luaFieldEnv)),
		Sources:    stringList(root.RawGetString(luaFieldSources)),
		Aliases:    stringMap(root.RawGetString(luaFieldAliases)),
		Packages: Packages{
			Official:  DefaultOfficial(),
			Community: DefaultCommunity(),
		},
	}

	if fw, ok := root.RawGetString(luaFieldFramework).(*lua.LTable); ok {
		cfg.Framework = Framework{
			Home:    stringField(fw, luaFieldHome),
			Theme:   stringField(fw, luaFieldTheme),
			Plugins: stringList(fw.RawGetString(luaFieldPlugins)),
		}
	}

	if pkgs, ok := root.RawGetString(luaFieldPackages).(*lua.LTable); ok {
		if t, ok := pkgs.RawGetString(luaFieldOfficial).(*lua.LTable); ok {
			cfg.Packages.Official = overlaySource(cfg.Packages.Official, t)
		}
		if t, ok := pkgs.RawGetString(luaFieldCommunity).(*lua.LTable); ok {
			cfg.Packages.Community = overlaySource(cfg.Packages.Community, t)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &ParseError{Message: "config validation failed", Detail: err.Error()}
	}
	return cfg, nil
}

// overlaySource replaces the fields of base that t sets.
func overlaySource(base SourceConfig, t *lua.LTable) SourceConfig {
	if v, ok := t.RawGetString(luaFieldLabel).(lua.LString); ok {
		base.Label = string(v)
	}
	if v, ok := t.RawGetString(luaFieldCommand).(lua.LString); ok {
		base.Command = string(v)
	}
	if v, ok := t.RawGetString(luaFieldSudo).(lua.LBool); ok {
		base.Sudo = bool(v)
	}
	if v := t.RawGetString(luaFieldQuery); v != lua.LNil {
		base.Query = stringList(v)
	}
	if v := t.RawGetString(luaFieldSearch); v != lua.LNil {
		base.Search = stringList(v)
	}
	if v := t.RawGetString(luaFieldInstall); v != lua.LNil {
		base.Install = stringList(v)
	}
	return base
}

func stringField(t *lua.LTable, name string) string {
	if v, ok := t.RawGetString(name).(lua.LString); ok {
		return string(v)
	}
	return ""
}

// stringList collects the string elements of an array table in order.
// nil holes left by platform.when() and non-string values are skipped.
func stringList(v lua.LValue) []string {
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil
	}

	var out []string
	for i := 1; i <= t.MaxN(); i++ {
		if s, ok := t.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// stringMap collects string-keyed string values. Numbers are converted to
// their decimal form so env = { HISTSIZE = 10000 } works.
func stringMap(v lua.LValue) map[string]string {
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil
	}

	out := make(map[string]string)
	t.ForEach(func(key, value lua.LValue) {
		k, ok := key.(lua.LString)
		if !ok {
			return
		}
		switch val := value.(type) {
		case lua.LString:
			out[string(k)] = string(val)
		case lua.LNumber:
			out[string(k)] = val.String()
		}
	})
	if len(out) == 0 {
		return nil
	}
	return out
}

// FormatError formats a config error for display. Without verbose the Lua
// stack traceback is dropped.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		return err.Error()
	}
	if verbose {
		return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
	}
	detail := parseErr.Detail
	if idx := strings.Index(detail, "stack traceback"); idx > 0 {
		detail = strings.TrimSpace(detail[:idx])
	}
	return fmt.Sprintf("%s: %s", parseErr.Message, detail)
}
