package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/hearth-sh/hearth/internal/platform"
	"github.com/hearth-sh/hearth/internal/testutil"
)

type testApp struct {
	*app
	fake   *testutil.FakeRunner
	home   string
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	home := testutil.SetupTestEnv(t)
	ta := &testApp{
		fake:   testutil.NewFakeRunner(),
		home:   home,
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	ta.app = &app{
		v:      viper.New(),
		runner: ta.fake,
		detector: platform.StaticDetector{Info: &platform.Info{
			OS: "linux", Arch: "amd64", Distro: "arch", Family: platform.FamilyArch,
		}},
		stdin:        strings.NewReader(""),
		stdout:       ta.stdout,
		stderr:       ta.stderr,
		home:         home,
		interactive:  func() bool { return false },
		readPassword: func() (string, error) { return "typed", nil },
		executable:   func() (string, error) { return "/usr/bin/hearth", nil },
	}
	return ta
}

func (ta *testApp) run(args ...string) error {
	root := newRootCmd(ta.app)
	root.SetArgs(args)
	root.SetOut(ta.stdout)
	root.SetErr(ta.stderr)
	return root.ExecuteContext(context.Background())
}

func wantExitCode(t *testing.T, err error, code int) {
	t.Helper()
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v, want *ExitError", err)
	}
	if exitErr.Code != code {
		t.Errorf("exit code = %d, want %d", exitErr.Code, code)
	}
}

func TestActivate(t *testing.T) {
	ta := newTestApp(t)
	testutil.WriteFile(t, os.Getenv("HEARTH_CONFIG"), `hearth = { aliases = { ll = "ls -la" } }`)

	if err := ta.run("activate", "zsh"); err != nil {
		t.Fatalf("activate error = %v", err)
	}

	out := ta.stdout.String()
	for _, want := range []string{"export HEARTH_ACTIVE=1", "alias ll=", "install_package()", "/usr/bin/hearth"} {
		if !strings.Contains(out, want) {
			t.Errorf("activation script missing %q:\n%s", want, out)
		}
	}
}

func TestActivate_Errors(t *testing.T) {
	t.Run("unsupported shell", func(t *testing.T) {
		ta := newTestApp(t)
		if err := ta.run("activate", "fish"); err == nil || !strings.Contains(err.Error(), "unsupported shell") {
			t.Errorf("error = %v", err)
		}
		if ta.stdout.Len() != 0 {
			t.Errorf("stdout = %q, want empty", ta.stdout.String())
		}
	})

	t.Run("bad config", func(t *testing.T) {
		ta := newTestApp(t)
		testutil.WriteFile(t, os.Getenv("HEARTH_CONFIG"), `hearth = {`)
		if err := ta.run("activate", "bash"); err == nil {
			t.Error("expected config error")
		}
		if ta.stdout.Len() != 0 {
			t.Errorf("stdout = %q, want empty", ta.stdout.String())
		}
	})
}

func TestInit(t *testing.T) {
	ta := newTestApp(t)

	if err := ta.run("init", "--shell", "zsh"); err != nil {
		t.Fatalf("init error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(ta.home, ".zshrc"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `eval "$(hearth activate zsh)"`) {
		t.Errorf(".zshrc = %q", data)
	}

	ta.stdout.Reset()
	if err := ta.run("init", "--shell", "zsh"); err != nil {
		t.Fatalf("second init error = %v", err)
	}
	if !strings.Contains(ta.stdout.String(), "already activates") {
		t.Errorf("stdout = %q", ta.stdout.String())
	}
}

func TestInit_DryRun(t *testing.T) {
	ta := newTestApp(t)
	if err := ta.run("init", "--shell", "bash", "--dry-run"); err != nil {
		t.Fatalf("init error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(ta.home, ".bashrc")); !os.IsNotExist(err) {
		t.Errorf("dry run created .bashrc (err = %v)", err)
	}
	if !strings.Contains(ta.stdout.String(), "would add") {
		t.Errorf("stdout = %q", ta.stdout.String())
	}
}

func TestInstall(t *testing.T) {
	t.Run("official only", func(t *testing.T) {
		ta := newTestApp(t)
		ta.fake.On(testutil.Response{Stdout: "Version : 14.1.0-1\n"}, "pacman", "-Si", "ripgrep")
		ta.fake.On(testutil.Response{ExitCode: 1}, "yay", "-Si", "--aur", "ripgrep")

		if err := ta.run("install", "ripgrep"); err != nil {
			t.Fatalf("install error = %v", err)
		}
		if n := ta.fake.Count("sudo", "pacman", "-S", "ripgrep"); n != 1 {
			t.Errorf("official installs = %d, want 1", n)
		}
		if n := ta.fake.Count("yay", "-S", "--aur"); n != 0 {
			t.Errorf("community installs = %d, want 0", n)
		}
	})

	t.Run("not found", func(t *testing.T) {
		ta := newTestApp(t)
		ta.fake.On(testutil.Response{ExitCode: 1}, "pacman", "-Si", "nope")
		ta.fake.On(testutil.Response{ExitCode: 1}, "yay", "-Si", "--aur", "nope")

		wantExitCode(t, ta.run("install", "nope"), 1)
		if !strings.Contains(ta.stdout.String(), "Package 'nope' not found") {
			t.Errorf("stdout = %q", ta.stdout.String())
		}
	})

	t.Run("both without terminal needs source", func(t *testing.T) {
		ta := newTestApp(t)
		ta.fake.On(testutil.Response{Stdout: "Version : 1.0\n"}, "pacman", "-Si", "dual")
		ta.fake.On(testutil.Response{Stdout: "Version : 1.1\n"}, "yay", "-Si", "--aur", "dual")

		if err := ta.run("install", "dual"); err == nil || !strings.Contains(err.Error(), "--source") {
			t.Errorf("error = %v", err)
		}

		if err := ta.run("install", "dual", "--source", "community"); err != nil {
			t.Fatalf("install --source error = %v", err)
		}
		if n := ta.fake.Count("yay", "-S", "--aur", "dual"); n != 1 {
			t.Errorf("community installs = %d, want 1", n)
		}
	})
}

func TestQuery(t *testing.T) {
	ta := newTestApp(t)
	ta.fake.On(testutil.Response{Stdout: "Version : 1.0-1\n"}, "pacman", "-Si", "fd")
	ta.fake.On(testutil.Response{ExitCode: 1}, "yay", "-Si", "--aur", "fd")

	if err := ta.run("query", "fd"); err != nil {
		t.Fatalf("query error = %v", err)
	}
	out := ta.stdout.String()
	if !strings.Contains(out, "1.0-1") || !strings.Contains(out, "not found") {
		t.Errorf("stdout = %q", out)
	}
}

func TestSearch(t *testing.T) {
	ta := newTestApp(t)
	ta.fake.On(testutil.Response{Stdout: "extra/fzf 0.55\n    fuzzy finder\n"}, "pacman", "-Ss", "fzf")

	if err := ta.run("search", "fzf"); err != nil {
		t.Fatalf("search error = %v", err)
	}
	out := ta.stdout.String()
	if !strings.Contains(out, "extra/fzf 0.55") || !strings.Contains(out, "(no results)") {
		t.Errorf("stdout = %q", out)
	}
}

func TestExtract(t *testing.T) {
	t.Run("dry run", func(t *testing.T) {
		ta := newTestApp(t)
		p := filepath.Join(ta.home, "src-1.0.tar.gz")
		testutil.WriteFile(t, p, "x")
		dest := filepath.Join(ta.home, "out")

		if err := ta.run("extract", p, "-C", dest, "--dry-run"); err != nil {
			t.Fatalf("extract error = %v", err)
		}
		want := "tar xvzf " + p + " -C " + dest
		if got := strings.TrimSpace(ta.stdout.String()); got != want {
			t.Errorf("stdout = %q, want %q", got, want)
		}
		if len(ta.fake.Calls()) != 0 {
			t.Errorf("dry run ran %v", ta.fake.CallLines())
		}
	})

	t.Run("runs tool", func(t *testing.T) {
		ta := newTestApp(t)
		p := filepath.Join(ta.home, "pics.zip")
		testutil.WriteFile(t, p, "x")

		if err := ta.run("extract", p); err != nil {
			t.Fatalf("extract error = %v", err)
		}
		if got := ta.fake.CallLines(); len(got) != 1 || got[0] != "unzip "+p {
			t.Errorf("calls = %v", got)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		ta := newTestApp(t)
		wantExitCode(t, ta.run("extract", filepath.Join(ta.home, "gone.zip")), 1)
		if !strings.Contains(ta.stderr.String(), "does not exist") {
			t.Errorf("stderr = %q", ta.stderr.String())
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		ta := newTestApp(t)
		p := filepath.Join(ta.home, "notes.txt")
		testutil.WriteFile(t, p, "x")
		wantExitCode(t, ta.run("extract", p), 1)
		if !strings.Contains(ta.stderr.String(), "cannot be extracted") {
			t.Errorf("stderr = %q", ta.stderr.String())
		}
		if len(ta.fake.Calls()) != 0 {
			t.Errorf("unsupported ran %v", ta.fake.CallLines())
		}
	})
}

func TestOrganize(t *testing.T) {
	ta := newTestApp(t)
	base := filepath.Join(ta.home, "inbox")
	output := filepath.Join(ta.home, "sorted")
	if err := os.MkdirAll(output, 0o755); err != nil {
		t.Fatal(err)
	}
	testutil.WriteFile(t, filepath.Join(base, "tool-2.0.zip"), "zip")
	testutil.WriteFile(t, filepath.Join(base, "readme.md"), "hi")

	cfgPath := filepath.Join(ta.home, "organize.yaml")
	testutil.WriteFile(t, cfgPath, "base_dir: "+base+"\noutput_dir: "+output+"\npassword: PROMPT\nretry_delay: 0s\n")

	if err := ta.run("organize", "-c", cfgPath); err != nil {
		t.Fatalf("organize error = %v", err)
	}

	want := "unzip -P typed " + filepath.Join(base, "tool-2.0.zip") + " -d " + filepath.Join(output, "tool", "tool-2.0")
	if got := ta.fake.CallLines(); len(got) != 1 || got[0] != want {
		t.Errorf("calls = %v, want [%s]", got, want)
	}
	if _, err := os.Stat(filepath.Join(output, "readme", "readme", "readme.md")); err != nil {
		t.Errorf("readme.md not moved: %v", err)
	}
	if !strings.Contains(ta.stdout.String(), "2 files, 0 failed") {
		t.Errorf("stdout = %q", ta.stdout.String())
	}
}

func TestOrganize_Simulate(t *testing.T) {
	ta := newTestApp(t)
	base := filepath.Join(ta.home, "inbox")
	output := filepath.Join(ta.home, "sorted")
	if err := os.MkdirAll(output, 0o755); err != nil {
		t.Fatal(err)
	}
	testutil.WriteFile(t, filepath.Join(base, "a.txt"), "a")

	cfgPath := filepath.Join(ta.home, "organize.toml")
	testutil.WriteFile(t, cfgPath, "base_dir = \""+base+"\"\noutput_dir = \""+output+"\"\n")

	if err := ta.run("organize", "-c", cfgPath, "--simulate"); err != nil {
		t.Fatalf("organize error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "a.txt")); err != nil {
		t.Errorf("simulate moved a.txt: %v", err)
	}
	if !strings.Contains(ta.stdout.String(), "would move a.txt") {
		t.Errorf("stdout = %q", ta.stdout.String())
	}
}

func TestDoctor(t *testing.T) {
	ta := newTestApp(t)
	ta.fake.Installed("pacman", "sudo", "tar")

	if err := ta.run("doctor"); err != nil {
		t.Fatalf("doctor error = %v", err)
	}
	out := ta.stdout.String()
	for _, want := range []string{"linux", "zsh", "not found, using defaults", "/usr/bin/pacman", "yay", "not on PATH"} {
		if !strings.Contains(out, want) {
			t.Errorf("doctor output missing %q:\n%s", want, out)
		}
	}
}

func TestDebugFromEnv(t *testing.T) {
	ta := newTestApp(t)
	t.Setenv("HEARTH_DEBUG", "1")

	if err := ta.run("activate", "bash"); err != nil {
		t.Fatalf("activate error = %v", err)
	}
	if !strings.Contains(ta.stderr.String(), "activating shell") {
		t.Errorf("stderr = %q, want debug log", ta.stderr.String())
	}
}
