package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hearth-sh/hearth/internal/archive"
	"github.com/hearth-sh/hearth/internal/shell"
)

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Report platform, shell, config and available tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDoctor(cmd.Context())
		},
	}
}

func (a *app) runDoctor(ctx context.Context) error {
	out := a.stdout
	ok := successStyle.Render("✓")
	missing := errorStyle.Render("✗")

	fmt.Fprintln(out, titleStyle.Render("Platform"))
	if info, err := a.detector.Detect(ctx); err != nil {
		fmt.Fprintf(out, "  %s %v\n", missing, err)
	} else {
		fmt.Fprintf(out, "  %s\n", info)
		if !info.IsArchFamily() {
			fmt.Fprintf(out, "  %s not an Arch-family system; the default pacman and yay sources may be missing\n",
				warningStyle.Render("!"))
		}
	}

	fmt.Fprintln(out, titleStyle.Render("Shell"))
	if det, err := shell.DetectShell(ctx); err != nil {
		fmt.Fprintf(out, "  %s %v\n", missing, err)
	} else {
		fmt.Fprintf(out, "  %s (%s)\n", det.Shell, det.Method)
	}

	fmt.Fprintln(out, titleStyle.Render("Config"))
	path, err := a.configPath()
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		fmt.Fprintf(out, "  %s %s %s\n", warningStyle.Render("-"), path, mutedStyle.Render("(not found, using defaults)"))
	} else {
		fmt.Fprintf(out, "  %s %s\n", ok, path)
	}
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		fmt.Fprintf(out, "  %s %v\n", missing, err)
		return &ExitError{Code: 1, Err: err}
	}

	fmt.Fprintln(out, titleStyle.Render("Tools"))
	tools := []string{cfg.Packages.Official.Command, cfg.Packages.Community.Command}
	if cfg.Packages.Official.Sudo || cfg.Packages.Community.Sudo {
		tools = append(tools, "sudo")
	}
	tools = append(tools, archive.Tools()...)

	seen := make(map[string]bool, len(tools))
	for _, tool := range tools {
		if seen[tool] {
			continue
		}
		seen[tool] = true
		if p, err := a.runner.LookPath(tool); err == nil {
			fmt.Fprintf(out, "  %s %-12s %s\n", ok, tool, mutedStyle.Render(p))
		} else {
			fmt.Fprintf(out, "  %s %-12s %s\n", missing, tool, mutedStyle.Render("not on PATH"))
		}
	}
	return nil
}
