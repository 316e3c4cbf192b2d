package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hearth-sh/hearth/internal/config"
	"github.com/hearth-sh/hearth/internal/packages"
)

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search both package sources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, _, err := a.packageHelper(cmd.Context(), false)
			if err != nil {
				return err
			}
			return h.Search(cmd.Context(), args[0])
		},
	}
}

func newInstallCmd(a *app) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "install <name>",
		Short: "Install a package from whichever source has it",
		Long: `Install a package from the official repositories or the community helper.
When both sources offer it you are asked which to use; --source answers
in advance and is required when stdin is not a terminal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInstall(cmd.Context(), args[0], source)
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "preferred source when both have the package (official or community)")
	return cmd
}

func newQueryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "query <name>",
		Short: "Show the version each source offers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd.Context(), args[0])
		},
	}
}

// packageHelper wires both sources from the loaded config. The prompter
// is attached only when prompt is set and stdin is a terminal.
func (a *app) packageHelper(ctx context.Context, prompt bool) (*packages.Helper, *config.Config, error) {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	official, community := packages.NewSources(cfg.Packages, a.runner)

	opts := []packages.HelperOption{
		packages.WithOutput(a.stdout),
		packages.WithHeaderStyle(sectionHeader),
		packages.WithLogger(a.logger),
	}
	if prompt && a.interactive() {
		opts = append(opts, packages.WithPrompter(packages.NewLinePrompter(a.stdin, a.stdout)))
	}
	return packages.NewHelper(official, community, opts...), cfg, nil
}

func (a *app) runInstall(ctx context.Context, name, source string) error {
	h, _, err := a.packageHelper(ctx, true)
	if err != nil {
		return err
	}

	err = h.Install(ctx, name, packages.InstallOptions{Prefer: source})
	if errors.Is(err, packages.ErrNotFound) {
		// The helper already told the user.
		return &ExitError{Code: 1, Err: err}
	}
	return err
}

func (a *app) runQuery(ctx context.Context, name string) error {
	h, cfg, err := a.packageHelper(ctx, false)
	if err != nil {
		return err
	}

	q, err := h.Query(ctx, name)
	if err != nil {
		return err
	}

	show := func(label, version string) {
		if version == "" {
			version = mutedStyle.Render("not found")
		}
		fmt.Fprintf(a.stdout, "%-24s %s\n", label+":", version)
	}
	show(cfg.Packages.Official.Label, q.Official)
	show(cfg.Packages.Community.Label, q.Community)

	if q.None() {
		return &ExitError{Code: 1, Err: fmt.Errorf("%w: %s", packages.ErrNotFound, name)}
	}
	return nil
}
