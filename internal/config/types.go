// Package config loads hearth's shell environment configuration.
//
// The configuration is a Lua file evaluated in a sandboxed gopher-lua VM
// with a read-only platform table, so a single file can describe several
// machines. The result is a plain Config value that is treated as immutable
// once loaded and is passed explicitly to every component.
package config

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Config is the complete shell environment description.
type Config struct {
	// Path entries are prepended to PATH in order.
	Path []string `json:"path,omitempty"`

	// Term is exported as TERM when non-empty.
	Term string `json:"term,omitempty"`

	// ScriptsDir is exported as SCRIPTS when non-empty. Aliases usually
	// reference it as $SCRIPTS.
	ScriptsDir string `json:"scripts_dir,omitempty"`

	// Env holds additional exports.
	Env map[string]string `json:"env,omitempty"`

	// Framework configures the zsh plugin framework and prompt theme.
	Framework Framework `json:"framework,omitempty"`

	// Sources are optional files sourced only when they exist.
	Sources []string `json:"sources,omitempty"`

	// Aliases maps alias names to their expansion.
	Aliases map[string]string `json:"aliases,omitempty"`

	// Packages configures the two package sources.
	Packages Packages `json:"packages,omitempty"`
}

// Framework describes an oh-my-zsh style framework installation.
type Framework struct {
	// Home is exported as ZSH. Empty disables the framework block.
	Home string `json:"home,omitempty"`
	// Theme is exported as ZSH_THEME.
	Theme string `json:"theme,omitempty"`
	// Plugins becomes the plugins=(...) array.
	Plugins []string `json:"plugins,omitempty"`
}

// Enabled reports whether a framework home is configured.
func (f Framework) Enabled() bool {
	return f.Home != ""
}

// Packages holds the official and community source definitions.
type Packages struct {
	Official  SourceConfig `json:"official"`
	Community SourceConfig `json:"community"`
}

// SourceConfig describes how to drive one package tool. Query, Search and
// Install are argument prefixes; the package name or search term is
// appended as the last argument.
type SourceConfig struct {
	Label   string   `json:"label,omitempty"`
	Command string   `json:"command"`
	Sudo    bool     `json:"sudo,omitempty"`
	Query   []string `json:"query,omitempty"`
	Search  []string `json:"search,omitempty"`
	Install []string `json:"install,omitempty"`
}

// EnvNames returns the Env keys in sorted order.
func (c *Config) EnvNames() []string {
	return sortedKeys(c.Env)
}

// AliasNames returns the Aliases keys in sorted order.
func (c *Config) AliasNames() []string {
	return sortedKeys(c.Aliases)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ValidationError reports an invalid configuration value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}

var (
	envNamePattern   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	aliasNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.][A-Za-z0-9_.-]*$`)
	wordPattern      = regexp.MustCompile(`^[^\s'"\x00]+$`)
)

// reservedEnv are variables hearth sets itself from dedicated fields.
var reservedEnv = map[string]string{
	"PATH":      "path",
	"TERM":      "term",
	"SCRIPTS":   "scripts_dir",
	"ZSH":       "framework.home",
	"ZSH_THEME": "framework.theme",
}

// Validate checks every value that ends up in the generated shell script.
func (c *Config) Validate() error {
	for i, p := range c.Path {
		if err := validatePathValue(p); err != nil {
			return &ValidationError{Field: fmt.Sprintf("path[%d]", i), Message: err.Error()}
		}
	}

	if c.Term != "" && !wordPattern.MatchString(c.Term) {
		return &ValidationError{Field: "term", Message: fmt.Sprintf("invalid terminal type %q", c.Term)}
	}

	if c.ScriptsDir != "" {
		if err := validatePathValue(c.ScriptsDir); err != nil {
			return &ValidationError{Field: "scripts_dir", Message: err.Error()}
		}
	}

	for _, name := range c.EnvNames() {
		if !envNamePattern.MatchString(name) {
			return &ValidationError{Field: "env", Message: fmt.Sprintf("invalid variable name %q", name)}
		}
		if field, ok := reservedEnv[name]; ok {
			return &ValidationError{Field: "env." + name, Message: fmt.Sprintf("set %s instead", field)}
		}
		if strings.ContainsRune(c.Env[name], 0) {
			return &ValidationError{Field: "env." + name, Message: "value contains NUL byte"}
		}
	}

	if c.Framework.Home != "" {
		if err := validatePathValue(c.Framework.Home); err != nil {
			return &ValidationError{Field: "framework.home", Message: err.Error()}
		}
	}
	if c.Framework.Theme != "" && !wordPattern.MatchString(c.Framework.Theme) {
		return &ValidationError{Field: "framework.theme", Message: fmt.Sprintf("invalid theme %q", c.Framework.Theme)}
	}
	for i, plugin := range c.Framework.Plugins {
		if !wordPattern.MatchString(plugin) {
			return &ValidationError{Field: fmt.Sprintf("framework.plugins[%d]", i), Message: fmt.Sprintf("invalid plugin name %q", plugin)}
		}
	}

	for i, src := range c.Sources {
		if err := validatePathValue(src); err != nil {
			return &ValidationError{Field: fmt.Sprintf("sources[%d]", i), Message: err.Error()}
		}
	}

	for _, name := range c.AliasNames() {
		if !aliasNamePattern.MatchString(name) {
			return &ValidationError{Field: "aliases", Message: fmt.Sprintf("invalid alias name %q", name)}
		}
		if c.Aliases[name] == "" {
			return &ValidationError{Field: "aliases." + name, Message: "expansion cannot be empty"}
		}
	}

	if err := c.Packages.Official.validate("packages.official"); err != nil {
		return err
	}
	return c.Packages.Community.validate("packages.community")
}

func (s SourceConfig) validate(field string) error {
	if s.Command == "" {
		return &ValidationError{Field: field + ".command", Message: "command cannot be empty"}
	}
	if !wordPattern.MatchString(s.Command) {
		return &ValidationError{Field: field + ".command", Message: fmt.Sprintf("invalid command %q", s.Command)}
	}
	if len(s.Query) == 0 || len(s.Search) == 0 || len(s.Install) == 0 {
		return &ValidationError{Field: field, Message: "query, search and install arguments are required"}
	}
	return nil
}

func validatePathValue(p string) error {
	if p == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if strings.ContainsAny(p, "\x00\n") {
		return fmt.Errorf("path contains NUL or newline: %q", p)
	}
	return nil
}
