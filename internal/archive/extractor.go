package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hearth-sh/hearth/internal/runner"
)

var (
	// ErrNotExist is returned when the path is not a regular file.
	ErrNotExist = errors.New("does not exist")

	// ErrUnsupported is returned when no rule matches the path.
	ErrUnsupported = errors.New("cannot be extracted: unsupported format")

	// ErrPasswordUnsupported is returned when a password is given for a
	// format whose tool cannot take one.
	ErrPasswordUnsupported = errors.New("format does not support passwords")
)

// Options controls one extraction.
type Options struct {
	// DestDir is where contents are written. Empty means the tool's
	// default (the current directory, or next to the file for
	// single-stream formats).
	DestDir string
	// Password is passed to zip, rar and 7z.
	Password string
	// DryRun plans the command without running it.
	DryRun bool
	// Quiet captures tool output instead of attaching the terminal.
	Quiet bool
	// FoldCase matches suffixes case-insensitively ("Photos.ZIP").
	FoldCase bool
	// Overwrite truncates an existing single-stream output instead of
	// failing with os.ErrExist.
	Overwrite bool
}

// Plan is the command chosen for one archive.
type Plan struct {
	Path   string
	Format Format
	Cmd    runner.Cmd
	// Output is the file a single-stream format is decompressed into when
	// DestDir is set. The command's stdout is redirected there.
	Output string
}

// Extractor runs extraction plans.
type Extractor struct {
	table  *Table
	runner runner.Runner
	logger *slog.Logger
}

// NewExtractor creates an extractor using the default table.
func NewExtractor(r runner.Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{table: DefaultTable(), runner: r, logger: logger}
}

// Detect returns the format for path without touching the filesystem.
func (e *Extractor) Detect(path string) Format {
	f, _ := e.table.Match(path)
	return f
}

// DetectFold is Detect with case-insensitive suffixes.
func (e *Extractor) DetectFold(path string) Format {
	f, _ := e.table.MatchFold(path)
	return f
}

// Plan validates path and builds its extraction command.
func (e *Extractor) Plan(path string, opts Options) (*Plan, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("'%s' %w", path, ErrNotExist)
	}

	match := e.table.Match
	if opts.FoldCase {
		match = e.table.MatchFold
	}
	format, suffix := match(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("'%s' %w", path, ErrUnsupported)
	}
	if opts.Password != "" && !format.SupportsPassword() {
		return nil, fmt.Errorf("'%s': %w (%s)", path, ErrPasswordUnsupported, format)
	}

	plan := &Plan{Path: path, Format: format}
	dir := opts.DestDir

	var args []string
	switch format {
	case FormatTarBz2, FormatTbz2:
		args = []string{"xvjf", path}
	case FormatTarGz, FormatTgz:
		args = []string{"xvzf", path}
	case FormatTarXz, FormatTxz:
		args = []string{"xvJf", path}
	case FormatTarZst:
		args = []string{"--zstd", "-xvf", path}
	case FormatTar:
		args = []string{"xvf", path}
	case FormatBz2, FormatGz, FormatXz:
		args = []string{"-k", path}
	case FormatZst, FormatZ:
		args = []string{path}
	case FormatZip:
		if opts.Password != "" {
			args = append(args, "-P", opts.Password)
		}
		args = append(args, path)
		if dir != "" {
			args = append(args, "-d", dir)
		}
	case FormatRar:
		args = []string{"x"}
		if opts.Password != "" {
			args = append(args, "-p"+opts.Password)
		}
		args = append(args, path)
		if dir != "" {
			args = append(args, strings.TrimSuffix(dir, "/")+"/")
		}
	case Format7z:
		args = []string{"x"}
		if opts.Password != "" {
			args = append(args, "-p"+opts.Password)
		}
		args = append(args, path)
		if dir != "" {
			args = append(args, "-o"+dir)
		}
	}

	if dir != "" {
		switch {
		case format.IsTar():
			args = append(args, "-C", dir)
		case format.SingleStream():
			// -c writes the stream to stdout, which the runner sends to Output.
			args = append([]string{"-c"}, args...)
			plan.Output = filepath.Join(dir, strings.TrimSuffix(filepath.Base(path), suffix))
		}
	}

	plan.Cmd = runner.Cmd{
		Name:        format.Tool(),
		Args:        args,
		Interactive: !opts.Quiet,
	}
	return plan, nil
}

// Extract plans and runs exactly one extraction command for path. A path
// that is not a regular file or has no matching rule runs nothing.
func (e *Extractor) Extract(ctx context.Context, path string, opts Options) (*Plan, error) {
	plan, err := e.Plan(path, opts)
	if err != nil {
		return nil, err
	}
	if opts.DryRun {
		e.logger.Debug("dry run", "cmd", plan.Cmd.String())
		return plan, nil
	}

	if opts.DestDir != "" {
		if err := os.MkdirAll(opts.DestDir, 0o755); err != nil {
			return nil, fmt.Errorf("create destination: %w", err)
		}
	}

	if plan.Output != "" {
		return plan, e.runToFile(ctx, plan, opts.Overwrite)
	}

	e.logger.Debug("extracting", "path", path, "format", plan.Format, "dest", opts.DestDir)
	if _, err := e.runner.Run(ctx, plan.Cmd); err != nil {
		return plan, fmt.Errorf("extract %s: %w", path, err)
	}
	return plan, nil
}

func (e *Extractor) runToFile(ctx context.Context, plan *Plan, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	out, err := os.OpenFile(plan.Output, flags, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", plan.Output, err)
	}

	cmd := plan.Cmd
	cmd.Stdout = out
	e.logger.Debug("decompressing", "path", plan.Path, "format", plan.Format, "output", plan.Output)
	_, runErr := e.runner.Run(ctx, cmd)
	closeErr := out.Close()

	if runErr != nil {
		os.Remove(plan.Output)
		return fmt.Errorf("extract %s: %w", plan.Path, runErr)
	}
	if closeErr != nil {
		return fmt.Errorf("write %s: %w", plan.Output, closeErr)
	}
	return nil
}
