package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hearth-sh/hearth/internal/shell"
)

func newActivateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "activate [bash|zsh]",
		Short:     "Print the shell activation script",
		Long:      "Print the script your rc file evaluates with eval \"$(hearth activate zsh)\".\nWithout an argument the current shell is detected.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(shell.ShellBash), string(shell.ShellZsh)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runActivate(cmd.Context(), args)
		},
	}
}

func (a *app) runActivate(ctx context.Context, args []string) error {
	sh, err := a.shellFromArgs(ctx, args)
	if err != nil {
		return err
	}
	a.logger.Debug("activating shell", "shell", sh)

	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}

	opts := shell.RenderOptions{}
	if exe, err := a.executable(); err == nil {
		opts.Binary = exe
	} else {
		a.logger.Debug("executable path unknown, helpers call hearth from PATH", "error", err)
	}

	script, err := shell.RenderActivation(cfg, sh, opts)
	if err != nil {
		return fmt.Errorf("render activation: %w", err)
	}

	// Only the script goes to stdout; the shell evaluates it.
	_, err = fmt.Fprint(a.stdout, script)
	return err
}

// shellFromArgs parses args[0] or detects the running shell.
func (a *app) shellFromArgs(ctx context.Context, args []string) (shell.ShellType, error) {
	if len(args) > 0 {
		return shell.ParseShellType(args[0])
	}

	det, err := shell.DetectShell(ctx)
	if err != nil {
		return shell.ShellUnknown, fmt.Errorf("detect shell: %w", err)
	}
	if det.Shell == shell.ShellUnknown {
		return shell.ShellUnknown, fmt.Errorf("could not detect your shell (%s); pass bash or zsh", det.Method)
	}
	a.logger.Debug("detected shell", "shell", det.Shell, "method", det.Method)
	return det.Shell, nil
}
