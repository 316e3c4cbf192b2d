package packages

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/hearth-sh/hearth/internal/config"
	"github.com/hearth-sh/hearth/internal/runner"
)

// CommandSource drives an external package tool described by a
// config.SourceConfig.
type CommandSource struct {
	name   string
	cfg    config.SourceConfig
	runner runner.Runner
}

// NewCommandSource creates a source named name.
func NewCommandSource(name string, cfg config.SourceConfig, r runner.Runner) *CommandSource {
	if cfg.Label == "" {
		cfg.Label = cfg.Command
	}
	return &CommandSource{name: name, cfg: cfg, runner: r}
}

// NewSources builds the official and community sources from cfg.
func NewSources(cfg config.Packages, r runner.Runner) (official, community *CommandSource) {
	return NewCommandSource(SourceOfficial, cfg.Official, r),
		NewCommandSource(SourceCommunity, cfg.Community, r)
}

// Name implements Source.
func (s *CommandSource) Name() string { return s.name }

// Label implements Source.
func (s *CommandSource) Label() string { return s.cfg.Label }

// Command is the configured binary.
func (s *CommandSource) Command() string { return s.cfg.Command }

func (s *CommandSource) cmd(prefix []string, arg string) runner.Cmd {
	return runner.Cmd{
		Name: s.cfg.Command,
		Args: append(slices.Clone(prefix), arg),
	}
}

// Query implements Source. A non-zero exit or output without a Version
// field means the package is unknown.
func (s *CommandSource) Query(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}

	res, err := s.runner.Run(ctx, s.cmd(s.cfg.Query, name))
	if err != nil {
		var cmdErr *runner.CommandError
		if errors.As(err, &cmdErr) {
			return "", fmt.Errorf("%w in %s: %s", ErrNotFound, s.cfg.Label, cmdErr.Error())
		}
		return "", fmt.Errorf("query %s: %w", s.cfg.Command, err)
	}

	version := ParseVersion(res.Stdout)
	if version == "" {
		return "", fmt.Errorf("%w in %s: no version in output", ErrNotFound, s.cfg.Label)
	}
	return version, nil
}

// Search implements Source. pacman exits 1 when nothing matches, which is
// reported as no lines rather than an error.
func (s *CommandSource) Search(ctx context.Context, term string) ([]string, error) {
	if term == "" {
		return nil, ErrEmptyName
	}

	res, err := s.runner.Run(ctx, s.cmd(s.cfg.Search, term))
	if err != nil {
		var cmdErr *runner.CommandError
		if errors.As(err, &cmdErr) && cmdErr.ExitCode == 1 && res != nil && res.Stdout == "" && res.Stderr == "" {
			return nil, nil
		}
		return nil, fmt.Errorf("search %s: %w", s.cfg.Command, err)
	}
	return FilterLines(res.Stdout, term), nil
}

// Install implements Source. Privilege escalation is passed through to
// sudo exactly as configured.
func (s *CommandSource) Install(ctx context.Context, name string) error {
	if name == "" {
		return ErrEmptyName
	}

	c := s.cmd(s.cfg.Install, name)
	c.Sudo = s.cfg.Sudo
	c.Interactive = true
	if _, err := s.runner.Run(ctx, c); err != nil {
		return fmt.Errorf("install %s from %s: %w", name, s.cfg.Label, err)
	}
	return nil
}
