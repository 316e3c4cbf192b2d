// Package runner executes the external tools hearth wraps.
//
// Every subprocess hearth starts goes through a Runner, so the package and
// archive helpers can be tested with a recording fake and never touch the
// real pacman, yay or tar binaries.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// ErrNotInstalled is returned when the command's binary is not on PATH.
var ErrNotInstalled = errors.New("command not installed")

// Cmd describes one external command invocation.
type Cmd struct {
	// Name is the binary to run, resolved through PATH.
	Name string
	// Args are passed verbatim; no shell is involved.
	Args []string
	// Sudo prefixes the invocation with sudo.
	Sudo bool
	// Interactive connects the runner's stdin, stdout and stderr to the
	// child so prompts (sudo passwords, pacman confirmations) work unchanged.
	// Output is not captured in this mode.
	Interactive bool
	// Stdout, when set, receives the child's stdout instead of the capture
	// buffer. Used to decompress single-stream archives into a file.
	Stdout io.Writer
	// Dir is the working directory; empty means the current one.
	Dir string
}

// Argv returns the full argument vector, including the sudo prefix.
func (c Cmd) Argv() []string {
	argv := make([]string, 0, len(c.Args)+2)
	if c.Sudo {
		argv = append(argv, "sudo")
	}
	argv = append(argv, c.Name)
	return append(argv, c.Args...)
}

// String renders the command for logs and dry runs.
func (c Cmd) String() string {
	argv := c.Argv()
	for i, a := range argv {
		if a == "" || strings.ContainsAny(a, " \t'\"$") {
			argv[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
	}
	return strings.Join(argv, " ")
}

// Result is the outcome of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandError reports a command that ran and exited non-zero.
type CommandError struct {
	Cmd      string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: exit status %d", e.Cmd, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + firstLine(s)
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Runner runs external commands.
type Runner interface {
	// Run executes cmd and waits for it. A non-zero exit returns both a
	// Result and a *CommandError.
	Run(ctx context.Context, cmd Cmd) (*Result, error)
	// LookPath reports where name resolves on PATH.
	LookPath(name string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// New creates an ExecRunner bound to the process's standard streams.
func New(logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ExecRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logger,
	}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, c Cmd) (*Result, error) {
	argv := c.Argv()
	if _, err := exec.LookPath(argv[0]); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotInstalled, argv[0])
	}

	r.Logger.Debug("running command", "cmd", c.String(), "interactive", c.Interactive)

	//nolint:gosec // G204: argv is built from configuration and user arguments without a shell
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = c.Dir

	var stdout, stderr bytes.Buffer
	if c.Interactive {
		cmd.Stdin = r.Stdin
		cmd.Stdout = r.Stdout
		cmd.Stderr = r.Stderr
		if c.Stdout != nil {
			cmd.Stdout = c.Stdout
		}
	} else {
		cmd.Stdout = &stdout
		if c.Stdout != nil {
			cmd.Stdout = c.Stdout
		}
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	res := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		r.Logger.Debug("command failed", "cmd", c.String(), "exit_code", res.ExitCode)
		return res, &CommandError{
			Cmd:      c.String(),
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
			Err:      err,
		}
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%s: %w", c.Name, ctx.Err())
	}
	return nil, fmt.Errorf("run %s: %w", c.Name, err)
}

// LookPath implements Runner.
func (r *ExecRunner) LookPath(name string) (string, error) {
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotInstalled, name)
	}
	return p, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
