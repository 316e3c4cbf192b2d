package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/hearth-sh/hearth/internal/config"
	"github.com/hearth-sh/hearth/internal/platform"
	"github.com/hearth-sh/hearth/internal/runner"
)

const (
	flagConfig = "config"
	flagDebug  = "debug"
)

// app holds the process-wide dependencies every command shares. Tests
// replace the runner, detector and streams.
type app struct {
	v        *viper.Viper
	logger   *slog.Logger
	runner   runner.Runner
	detector platform.Detector

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// home overrides the directory holding rc files.
	home string
	// interactive reports whether stdin can answer prompts.
	interactive func() bool
	// readPassword reads a secret from the terminal without echo.
	readPassword func() (string, error)
	// executable is the binary path written into helper functions.
	executable func() (string, error)
}

func newApp() *app {
	return &app{
		v:        viper.New(),
		detector: platform.NewDetector(),
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) //nolint:gosec // fd fits in int
		},
		readPassword: func() (string, error) {
			b, err := term.ReadPassword(int(os.Stdin.Fd())) //nolint:gosec // fd fits in int
			return string(b), err
		},
		executable: os.Executable,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "hearth",
		Short: "Shell environment, package and archive helper",
		Long: titleStyle.Render("hearth") + mutedStyle.Render(" - shell environment, package and archive helper") + `

hearth renders your shell startup environment from a Lua file and wraps
the package managers and archive tools you already have.

` + mutedStyle.Render("Examples:") + `
  eval "$(hearth activate zsh)"   Load the environment in an rc file
  hearth install ripgrep          Install from whichever source has it
  hearth extract foo.tar.gz       Extract with the matching tool`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.setup()
			return nil
		},
	}

	root.PersistentFlags().String(flagConfig, "", "config file (default is $HOME/.config/hearth/hearth.lua)")
	root.PersistentFlags().Bool(flagDebug, false, "log debug output to stderr")

	a.v.SetEnvPrefix("HEARTH")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindPFlag(flagConfig, root.PersistentFlags().Lookup(flagConfig))
	_ = a.v.BindPFlag(flagDebug, root.PersistentFlags().Lookup(flagDebug))

	root.AddCommand(
		newActivateCmd(a),
		newInitCmd(a),
		newSearchCmd(a),
		newInstallCmd(a),
		newQueryCmd(a),
		newExtractCmd(a),
		newOrganizeCmd(a),
		newDoctorCmd(a),
	)
	return root
}

// setup builds the logger and the default runner once flags are parsed.
func (a *app) setup() {
	level := charmlog.WarnLevel
	if a.v.GetBool(flagDebug) {
		level = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(a.stderr, charmlog.Options{
		Level:  level,
		Prefix: "hearth",
	})
	a.logger = slog.New(handler)

	if a.runner == nil {
		r := runner.New(a.logger)
		r.Stdin, r.Stdout, r.Stderr = a.stdin, a.stdout, a.stderr
		a.runner = r
	}
}

// configPath returns --config, $HEARTH_CONFIG or the default location.
func (a *app) configPath() (string, error) {
	if p := a.v.GetString(flagConfig); p != "" {
		return p, nil
	}
	return config.DefaultPath()
}

// loadConfig reads the Lua configuration. A missing file yields defaults.
func (a *app) loadConfig(ctx context.Context) (*config.Config, error) {
	path, err := a.configPath()
	if err != nil {
		return nil, err
	}
	parser := config.NewParser(a.detector, config.WithLookPath(a.runner.LookPath))
	cfg, err := config.Load(ctx, parser, path)
	if err != nil {
		return nil, fmt.Errorf("%s", config.FormatError(err, a.v.GetBool(flagDebug)))
	}
	a.logger.Debug("loaded config", "path", path)
	return cfg, nil
}

// reported prints msg to stderr and returns an exit status 1 error that
// fang does not print again.
func (a *app) reported(err error) error {
	fmt.Fprintln(a.stderr, errorStyle.Render("Error: ")+err.Error())
	return &ExitError{Code: 1, Err: err}
}
