package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hearth-sh/hearth/internal/shell"
)

type initOptions struct {
	shell  string
	backup bool
	force  bool
	dryRun bool
}

func newInitCmd(a *app) *cobra.Command {
	var opts initOptions
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Add hearth activation to your shell rc file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.shell, "shell", "", "shell to configure (bash or zsh; default: detected)")
	cmd.Flags().BoolVar(&opts.backup, "backup", false, "back up the rc file before changing it")
	cmd.Flags().BoolVar(&opts.force, "force", false, "add the activation line even if one exists")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "show what would change without writing")
	return cmd
}

func (a *app) runInit(ctx context.Context, opts initOptions) error {
	mgr, err := shell.NewManager(shell.Config{Home: a.home, Logger: a.logger})
	if err != nil {
		return err
	}

	setup := shell.SetupOptions{Force: opts.force, Backup: opts.backup, DryRun: opts.dryRun}

	var result *shell.SetupResult
	if opts.shell == "" {
		result, err = mgr.DetectAndSetup(ctx, setup)
	} else {
		var sh shell.ShellType
		if sh, err = shell.ParseShellType(opts.shell); err != nil {
			return err
		}
		result, err = mgr.SetupIntegration(ctx, sh, setup)
	}
	if err != nil {
		return fmt.Errorf("shell integration: %w", err)
	}

	a.printSetupResult(result, opts.dryRun)
	return nil
}

func (a *app) printSetupResult(r *shell.SetupResult, dryRun bool) {
	out := a.stdout
	switch {
	case r.AlreadyPresent && !r.Added && !dryRun:
		fmt.Fprintf(out, "%s already activates hearth in %s\n", successStyle.Render("✓"), r.RCFile)
		return
	case dryRun:
		fmt.Fprintf(out, "%s would add to %s:\n  %s\n", warningStyle.Render("dry run:"), r.RCFile, r.ActivationCommand)
		if r.AlreadyPresent {
			fmt.Fprintln(out, mutedStyle.Render("  (an activation line is already present)"))
		}
		return
	}

	if r.Created {
		fmt.Fprintf(out, "%s created %s\n", successStyle.Render("✓"), r.RCFile)
	}
	if r.BackupPath != "" {
		fmt.Fprintf(out, "%s backed up to %s\n", successStyle.Render("✓"), r.BackupPath)
	}
	fmt.Fprintf(out, "%s added to %s:\n  %s\n", successStyle.Render("✓"), r.RCFile, r.ActivationCommand)
	fmt.Fprintf(out, "\nRestart your %s session or run: source %s\n", r.Shell, r.RCFile)
}
