package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hearth-sh/hearth/internal/archive"
)

type extractOptions struct {
	dest     string
	password string
	dryRun   bool
}

func newExtractCmd(a *app) *cobra.Command {
	var opts extractOptions
	cmd := &cobra.Command{
		Use:   "extract <path>",
		Short: "Extract an archive with the matching tool",
		Long: `Extract an archive by its file name suffix using tar, unzip, unrar, 7z,
gunzip, bunzip2, unxz, unzstd or uncompress.

` + mutedStyle.Render("Supported suffixes:") + `
  .tar.bz2 .tbz2 .tar.gz .tgz .tar.xz .txz .tar.zst .tar
  .bz2 .gz .xz .zst .Z .zip .rar .7z`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExtract(cmd.Context(), args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.dest, "dest", "C", "", "extract into this directory")
	cmd.Flags().StringVar(&opts.password, "password", "", "archive password (zip, rar, 7z)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the command without running it")
	return cmd
}

func (a *app) runExtract(ctx context.Context, path string, opts extractOptions) error {
	ex := archive.NewExtractor(a.runner, a.logger)
	plan, err := ex.Extract(ctx, path, archive.Options{
		DestDir:  opts.dest,
		Password: opts.password,
		DryRun:   opts.dryRun,
	})
	if errors.Is(err, archive.ErrNotExist) || errors.Is(err, archive.ErrUnsupported) {
		return a.reported(err)
	}
	if err != nil {
		return err
	}

	if opts.dryRun {
		fmt.Fprintln(a.stdout, plan.Cmd.String())
		if plan.Output != "" {
			fmt.Fprintf(a.stdout, "  > %s\n", plan.Output)
		}
	}
	return nil
}
