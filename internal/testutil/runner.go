package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hearth-sh/hearth/internal/runner"
)

// Response is the scripted outcome for one command line.
type Response struct {
	Stdout   string
	Stderr   string
	ExitCode int
	// Err, when set, is returned as-is instead of a CommandError.
	Err error
	// Write is copied to Cmd.Stdout when the command redirects stdout.
	Write string
}

// FakeRunner records every command and answers from a script keyed by the
// space-joined argv (sudo prefix included). Unscripted commands succeed
// silently.
type FakeRunner struct {
	mu        sync.Mutex
	responses map[string]Response
	calls     []runner.Cmd
	installed map[string]bool
}

// NewFakeRunner creates a FakeRunner where every binary is "installed".
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{responses: make(map[string]Response)}
}

// On scripts the response for the given argv.
func (f *FakeRunner) On(resp Response, argv ...string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[strings.Join(argv, " ")] = resp
	return f
}

// Installed restricts LookPath to the given binaries.
func (f *FakeRunner) Installed(names ...string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.installed = make(map[string]bool, len(names))
	for _, n := range names {
		f.installed[n] = true
	}
	return f
}

// Run implements runner.Runner.
func (f *FakeRunner) Run(ctx context.Context, cmd runner.Cmd) (*runner.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	resp, ok := f.responses[strings.Join(cmd.Argv(), " ")]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ok {
		return &runner.Result{}, nil
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	if cmd.Stdout != nil && resp.Write != "" {
		if _, err := fmt.Fprint(cmd.Stdout, resp.Write); err != nil {
			return nil, err
		}
	}

	res := &runner.Result{Stdout: resp.Stdout, Stderr: resp.Stderr, ExitCode: resp.ExitCode}
	if resp.ExitCode != 0 {
		return res, &runner.CommandError{Cmd: cmd.String(), ExitCode: resp.ExitCode, Stderr: resp.Stderr}
	}
	return res, nil
}

// LookPath implements runner.Runner.
func (f *FakeRunner) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.installed != nil && !f.installed[name] {
		return "", fmt.Errorf("%w: %s", runner.ErrNotInstalled, name)
	}
	return "/usr/bin/" + name, nil
}

// Calls returns a copy of every recorded command.
func (f *FakeRunner) Calls() []runner.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]runner.Cmd(nil), f.calls...)
}

// CallLines returns the recorded commands as space-joined argv strings.
func (f *FakeRunner) CallLines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = strings.Join(c.Argv(), " ")
	}
	return lines
}

// Count returns how many recorded commands start with the given argv prefix.
func (f *FakeRunner) Count(prefix ...string) int {
	p := strings.Join(prefix, " ")
	n := 0
	for _, line := range f.CallLines() {
		if line == p || strings.HasPrefix(line, p+" ") {
			n++
		}
	}
	return n
}
