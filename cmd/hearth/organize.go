package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hearth-sh/hearth/internal/archive"
	"github.com/hearth-sh/hearth/internal/organize"
)

type organizeOptions struct {
	configPath string
	simulate   bool
}

func newOrganizeCmd(a *app) *cobra.Command {
	var opts organizeOptions
	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Sort a downloads directory into grouped folders",
		Long: `Scan a base directory, extract archives and move every other file into
<output>/<group>/<name-version>/. Settings come from a YAML or TOML file
(default ~/.config/hearth/organize.yaml).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOrganize(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config-file", "c", "", "organizer config file (.yaml, .yml or .toml)")
	cmd.Flags().BoolVar(&opts.simulate, "simulate", false, "log the planned actions without changing anything")
	return cmd
}

func defaultOrganizeConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "hearth", "organize.yaml"), nil
}

func (a *app) runOrganize(ctx context.Context, opts organizeOptions) error {
	path := opts.configPath
	if path == "" {
		var err error
		if path, err = defaultOrganizeConfigPath(); err != nil {
			return err
		}
	}

	cfg, err := organize.LoadConfig(path, a.logger)
	if err != nil {
		return err
	}
	if opts.simulate {
		cfg.Simulate = true
	}

	if cfg.Password == organize.PasswordPrompt {
		fmt.Fprint(a.stderr, "Archive password: ")
		pw, err := a.readPassword()
		fmt.Fprintln(a.stderr)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		cfg.Password = pw
	}

	o, err := organize.New(cfg, archive.NewExtractor(a.runner, a.logger), a.logger)
	if err != nil {
		return err
	}

	report, err := o.Run(ctx)
	if err != nil {
		return err
	}
	a.printReport(report)

	if failed := report.Failed(); len(failed) > 0 {
		return &ExitError{Code: 1, Err: fmt.Errorf("%d of %d files failed", len(failed), len(report.Items))}
	}
	return nil
}

func (a *app) printReport(r *organize.Report) {
	out := a.stdout
	if len(r.Items) == 0 {
		fmt.Fprintf(out, "Nothing to organize in %s\n", r.BaseDir)
		return
	}

	for _, it := range r.Items {
		switch {
		case it.Err != nil:
			fmt.Fprintf(out, "%s %s: %v\n", errorStyle.Render("✗"), it.Name, it.Err)
		case it.Simulated:
			fmt.Fprintf(out, "%s would %s %s -> %s\n", warningStyle.Render("~"), it.Action, it.Name, it.Dest)
		default:
			mark := successStyle.Render("✓")
			note := ""
			if it.Verified {
				note = mutedStyle.Render(" (signature ok)")
			}
			fmt.Fprintf(out, "%s %s %s -> %s%s\n", mark, it.Action, it.Name, it.Dest, note)
			if it.Checksums != nil {
				fmt.Fprintf(out, "    md5    %s\n    sha256 %s\n    sha512 %s\n",
					it.Checksums.MD5, it.Checksums.SHA256, it.Checksums.SHA512)
			}
		}
	}
	fmt.Fprintf(out, "\n%d files, %d failed, %d workers\n", len(r.Items), len(r.Failed()), r.Workers)
}
