package packages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Choice tokens accepted by the install prompt.
const (
	ChoiceOfficial  = "1"
	ChoiceCommunity = "2"
)

// QueryResult pairs the versions offered by each source. An empty string
// means the source does not offer the package.
type QueryResult struct {
	Name      string
	Official  string
	Community string
}

// Both reports whether both sources offer the package.
func (q QueryResult) Both() bool { return q.Official != "" && q.Community != "" }

// None reports whether neither source offers the package.
func (q QueryResult) None() bool { return q.Official == "" && q.Community == "" }

// InstallOptions controls Install.
type InstallOptions struct {
	// Prefer picks the source when both offer the package, skipping the
	// prompt. Empty, SourceOfficial or SourceCommunity.
	Prefer string
}

// Helper implements the install and search workflows over two sources.
type Helper struct {
	official    Source
	community   Source
	prompter    Prompter
	interactive bool
	out         io.Writer
	header      func(string) string
	logger      *slog.Logger
}

// HelperOption configures a Helper.
type HelperOption func(*Helper)

// WithPrompter sets the prompter used when both sources match. Without one
// the helper cannot ask and returns ErrNeedChoice.
func WithPrompter(p Prompter) HelperOption {
	return func(h *Helper) {
		h.prompter = p
		h.interactive = p != nil
	}
}

// WithOutput sets where messages and search results are written.
func WithOutput(w io.Writer) HelperOption {
	return func(h *Helper) { h.out = w }
}

// WithHeaderStyle sets how search section headers are rendered.
func WithHeaderStyle(fn func(string) string) HelperOption {
	return func(h *Helper) { h.header = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) HelperOption {
	return func(h *Helper) { h.logger = l }
}

// NewHelper creates a helper over the two sources.
func NewHelper(official, community Source, opts ...HelperOption) *Helper {
	h := &Helper{
		official:  official,
		community: community,
		out:       io.Discard,
		header:    func(label string) string { return "== " + label + " ==" },
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Query asks both sources, in order, for name. Every failure counts as
// absent; the cause is only logged.
func (h *Helper) Query(ctx context.Context, name string) (QueryResult, error) {
	if name == "" {
		return QueryResult{}, ErrEmptyName
	}

	result := QueryResult{Name: name}
	result.Official = h.version(ctx, h.official, name)
	if err := ctx.Err(); err != nil {
		return result, err
	}
	result.Community = h.version(ctx, h.community, name)
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (h *Helper) version(ctx context.Context, src Source, name string) string {
	v, err := src.Query(ctx, name)
	switch {
	case err == nil:
		h.logger.Debug("package found", "source", src.Name(), "package", name, "version", v)
		return v
	case errors.Is(err, ErrNotFound):
		h.logger.Debug("package not in source", "source", src.Name(), "package", name, "reason", err)
	default:
		h.logger.Warn("package query failed, treating as absent", "source", src.Name(), "package", name, "error", err)
	}
	return ""
}

// Install installs name from whichever source offers it. When both do, the
// user picks. When neither does, a "not found" message is printed and
// ErrNotFound is returned without running any install.
func (h *Helper) Install(ctx context.Context, name string, opts InstallOptions) error {
	if opts.Prefer != "" && opts.Prefer != SourceOfficial && opts.Prefer != SourceCommunity {
		return fmt.Errorf("unknown source %q (want %s or %s)", opts.Prefer, SourceOfficial, SourceCommunity)
	}

	q, err := h.Query(ctx, name)
	if err != nil {
		return err
	}

	var src Source
	switch {
	case q.None():
		fmt.Fprintf(h.out, "Package '%s' not found in %s or %s.\n", name, h.official.Label(), h.community.Label())
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	case q.Both():
		src, err = h.choose(q, opts.Prefer)
		if err != nil {
			return err
		}
	case q.Official != "":
		src = h.official
	default:
		src = h.community
	}

	fmt.Fprintf(h.out, "Installing %s from %s...\n", name, src.Label())
	return src.Install(ctx, name)
}

func (h *Helper) choose(q QueryResult, prefer string) (Source, error) {
	switch prefer {
	case SourceOfficial:
		return h.official, nil
	case SourceCommunity:
		return h.community, nil
	}

	if !h.interactive {
		return nil, ErrNeedChoice
	}

	fmt.Fprintf(h.out, "%s is available from both sources:\n", q.Name)
	fmt.Fprintf(h.out, "  %s) %s: %s\n", ChoiceOfficial, h.official.Label(), q.Official)
	fmt.Fprintf(h.out, "  %s) %s: %s\n", ChoiceCommunity, h.community.Label(), q.Community)

	answer, err := h.prompter.Choose(
		fmt.Sprintf("Install from [%s/%s]: ", ChoiceOfficial, ChoiceCommunity),
		[]string{ChoiceOfficial, ChoiceCommunity},
	)
	if err != nil {
		return nil, err
	}
	if answer == ChoiceOfficial {
		return h.official, nil
	}
	return h.community, nil
}

// Search prints the lines of each source's search output that contain
// term, under one header per source.
func (h *Helper) Search(ctx context.Context, term string) error {
	if term == "" {
		return ErrEmptyName
	}

	for _, src := range []Source{h.official, h.community} {
		lines, err := src.Search(ctx, term)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			h.logger.Warn("search failed", "source", src.Name(), "error", err)
		}

		fmt.Fprintln(h.out, h.header(src.Label()))
		if len(lines) == 0 {
			fmt.Fprintln(h.out, "(no results)")
		}
		for _, line := range lines {
			fmt.Fprintln(h.out, line)
		}
		fmt.Fprintln(h.out)
	}
	return nil
}
