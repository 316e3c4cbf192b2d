package organize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"syscall"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/errgroup"

	"github.com/hearth-sh/hearth/internal/archive"
)

// Action is what happens to one scanned file.
type Action string

const (
	ActionExtract Action = "extract"
	ActionMove    Action = "move"
)

// ErrBaseDir is returned when the base directory cannot be read.
var ErrBaseDir = errors.New("base directory is invalid or inaccessible")

// Item is the outcome for one file.
type Item struct {
	Name      string
	Path      string
	Action    Action
	Format    archive.Format
	Dest      string
	Simulated bool
	Verified  bool
	Attempts  int
	Checksums *Checksums
	Err       error
}

// Report lists every processed file in scan order.
type Report struct {
	BaseDir string
	Items   []Item
	Workers int
}

// Failed returns the items that did not complete.
func (r *Report) Failed() []Item {
	var out []Item
	for _, it := range r.Items {
		if it.Err != nil {
			out = append(out, it)
		}
	}
	return out
}

// Organizer runs a Config against the filesystem.
type Organizer struct {
	cfg       *Config
	filter    *regexp.Regexp
	extractor *archive.Extractor
	keyring   openpgp.EntityList
	logger    *slog.Logger
	numCPU    int
}

// New validates cfg and loads its keyring. Password must already be
// resolved; PasswordPrompt is rejected here.
func New(cfg *Config, extractor *archive.Extractor, logger *slog.Logger) (*Organizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Password == PasswordPrompt {
		return nil, fmt.Errorf("password %q must be resolved before running", PasswordPrompt)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	o := &Organizer{
		cfg:       cfg,
		filter:    regexp.MustCompile(cfg.FileFilter),
		extractor: extractor,
		logger:    logger,
		numCPU:    runtime.NumCPU(),
	}

	if cfg.Keyring != "" {
		path, err := ExpandHome(cfg.Keyring)
		if err != nil {
			return nil, err
		}
		if o.keyring, err = LoadKeyring(path); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Run scans the base directory and processes every matching file. Item
// failures are recorded in the report; only an unreadable base directory
// or a cancelled context fails the run.
func (o *Organizer) Run(ctx context.Context) (*Report, error) {
	base, err := ResolveBaseDir(o.cfg.BaseDir)
	if err != nil {
		return nil, err
	}
	output, err := ExpandHome(o.cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBaseDir, base, err)
	}

	if !o.cfg.Simulate {
		lock, err := acquireLock(ctx, output)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := lock.release(); err != nil {
				o.logger.Warn("could not release lock", "error", err)
			}
		}()
	}

	var paths []string
	files := make(map[string]bool)
	for _, entry := range entries {
		p := filepath.Join(base, entry.Name())
		info, err := os.Stat(p)
		if err != nil || info.IsDir() || entry.Name() == lockFileName {
			continue
		}
		files[entry.Name()] = true
		if o.filter.MatchString(entry.Name()) {
			paths = append(paths, p)
		}
	}
	// Archives stay in the base directory after extraction, and so do
	// their detached signatures.
	paths = slices.DeleteFunc(paths, func(p string) bool {
		return o.isSignatureOfArchive(filepath.Base(p), files)
	})

	report := &Report{BaseDir: base, Items: make([]Item, len(paths))}
	if len(paths) == 0 {
		return report, nil
	}
	report.Workers = min(o.cfg.MaxWorkers, o.numCPU, len(paths))
	o.logger.Debug("organizing", "base_dir", base, "files", len(paths), "workers", report.Workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(report.Workers)
	for i, p := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			report.Items[i] = o.process(gctx, p, output)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (o *Organizer) isSignatureOfArchive(name string, files map[string]bool) bool {
	ext := filepath.Ext(name)
	if ext != ".sig" && ext != ".asc" {
		return false
	}
	target := strings.TrimSuffix(name, ext)
	return files[target] && o.extractor.DetectFold(target) != archive.FormatUnknown
}

func (o *Organizer) process(ctx context.Context, path, output string) Item {
	name := filepath.Base(path)
	_, specific := GroupPaths(output, name)
	item := Item{
		Name:   name,
		Path:   path,
		Format: o.extractor.DetectFold(path),
		Dest:   specific,
	}

	if item.Format == archive.FormatUnknown {
		item.Action = ActionMove
	} else {
		item.Action = ActionExtract
	}

	if o.cfg.Simulate {
		item.Simulated = true
		o.logger.Info("simulating "+string(item.Action), "file", name, "dest", specific)
		return item
	}

	if err := os.MkdirAll(specific, 0o755); err != nil {
		item.Err = fmt.Errorf("create %s: %w", specific, err)
		return item
	}

	if item.Action == ActionMove {
		item.Err = moveFile(path, filepath.Join(specific, name))
		if item.Err == nil {
			o.logger.Info("moved", "file", name, "dest", specific)
		} else {
			o.logger.Error("failed to process", "file", name, "error", item.Err)
		}
		return item
	}

	if o.keyring != nil {
		if sig := FindSignature(path); sig != "" {
			if err := VerifyDetached(o.keyring, path, sig); err != nil {
				item.Err = err
				o.logger.Error("refusing to extract", "file", name, "error", err)
				return item
			}
			item.Verified = true
		}
	}

	item.Attempts, item.Err = o.extract(ctx, path, item.Format, specific)
	if item.Err != nil {
		o.logger.Error("failed to extract", "file", name, "attempts", item.Attempts, "error", item.Err)
		return item
	}
	o.logger.Info("extracted", "file", name, "dest", specific)

	if o.cfg.Integrity {
		sums, err := ComputeChecksums(path)
		if err != nil {
			item.Err = err
			return item
		}
		item.Checksums = sums
		o.logger.Info("integrity check", "file", name, "md5", sums.MD5, "sha256", sums.SHA256, "sha512", sums.SHA512)
	}
	return item
}

// extract runs the extractor with a constant delay between attempts.
// Errors that another attempt cannot fix stop immediately.
func (o *Organizer) extract(ctx context.Context, path string, format archive.Format, dest string) (int, error) {
	opts := archive.Options{DestDir: dest, Quiet: true, FoldCase: true, Overwrite: true}
	if format.SupportsPassword() {
		opts.Password = o.cfg.Password
	}

	attempts := 0
	_, err := backoff.Retry(ctx, func() (*archive.Plan, error) {
		attempts++
		plan, err := o.extractor.Extract(ctx, path, opts)
		if errors.Is(err, archive.ErrNotExist) || errors.Is(err, archive.ErrUnsupported) ||
			errors.Is(err, archive.ErrPasswordUnsupported) || errors.Is(err, os.ErrExist) {
			return nil, backoff.Permanent(err)
		}
		if err != nil {
			o.logger.Debug("extraction attempt failed", "file", path, "attempt", attempts, "error", err)
		}
		return plan, err
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(o.cfg.RetryDelay)),
		backoff.WithMaxTries(uint(o.cfg.Retries)), //nolint:gosec // validated >= 1
	)
	return attempts, err
}

// moveFile renames src to dst, copying across filesystems. An existing dst
// is never overwritten.
func moveFile(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("destination %s already exists", dst)
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("move %s: %w", src, err)
	}

	if err := copyFile(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove %s after copy: %w", src, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	//nolint:gosec // G304: src comes from the scanned base directory
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}
