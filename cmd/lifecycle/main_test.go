package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bft-labs/lifecycle/pkg/lifecycle"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env"), "--log-level", "error"))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	out, err := execute(t, "run", "create", "start", "--observers", "2")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}

	want := strings.Join([]string{
		"ON_CREATE from Initialized",
		"  observer 1: ON_CREATE",
		"  observer 2: ON_CREATE",
		"  host is now Created",
		"ON_START from Created",
		"  observer 1: ON_START",
		"  observer 2: ON_START",
		"  host is now Started",
		"",
	}, "\n")
	if out != want {
		t.Errorf("output =\n%s\nwant\n%s", out, want)
	}
}

func TestRunCommand_RejectedEvent(t *testing.T) {
	_, err := execute(t, "run", "create", "resume")
	if !errors.Is(err, lifecycle.ErrIllegalTransition) {
		t.Errorf("run error = %v, want ErrIllegalTransition", err)
	}
}

func TestRunEvents_ObserverFailureContinues(t *testing.T) {
	host := lifecycle.NewHost("svc")
	failing := errors.New("disk full")
	_, err := host.Lifecycle().Register(lifecycle.ObserverFunc(func(_ lifecycle.Owner, event lifecycle.Event) error {
		if event == lifecycle.EventCreate {
			return failing
		}
		return nil
	}))
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err = runEvents(&out, host, []lifecycle.Event{lifecycle.EventCreate, lifecycle.EventStart})
	if err != nil {
		t.Fatalf("runEvents() error = %v, want nil", err)
	}
	if got := host.CurrentState(); got != lifecycle.StateStarted {
		t.Errorf("state = %s, want Started", got)
	}
	if !strings.Contains(out.String(), "disk full") {
		t.Errorf("output missing observer failure:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "ON_START from Created") {
		t.Errorf("run stopped after observer failure:\n%s", out.String())
	}
}

func TestRunCommand_UnknownEvent(t *testing.T) {
	_, err := execute(t, "run", "launch")
	if !errors.Is(err, lifecycle.ErrUnknownEvent) {
		t.Errorf("run error = %v, want ErrUnknownEvent", err)
	}
}

func TestRunCommand_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
owner_name = "screen"
observers = 0
events = ["create", "destroy"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "run", "--config", path)
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	want := "ON_CREATE from Initialized\n  screen is now Created\nON_DESTROY from Created\n  screen is now Destroyed\n"
	if out != want {
		t.Errorf("output =\n%s\nwant\n%s", out, want)
	}
}

func TestRunCommand_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("owner_name = \"file\"\nobservers = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LIFECYCLE_OWNER_NAME", "env")

	out, err := execute(t, "run", "--config", path, "create")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if !strings.Contains(out, "env is now Created") {
		t.Errorf("output = %q, want owner from environment", out)
	}

	out, err = execute(t, "run", "--config", path, "--owner", "flag", "create")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if !strings.Contains(out, "flag is now Created") {
		t.Errorf("output = %q, want owner from flag", out)
	}
}

func TestTableCommand(t *testing.T) {
	out, err := execute(t, "table")
	if err != nil {
		t.Fatalf("table error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != len(lifecycle.Table())+1 {
		t.Fatalf("table has %d lines, want header plus %d rows", len(lines), len(lifecycle.Table()))
	}
	if !strings.HasPrefix(lines[0], "FROM") || !strings.Contains(lines[1], "ON_CREATE") {
		t.Errorf("unexpected table:\n%s", out)
	}
}

func TestWatchCommand_RequiresTrigger(t *testing.T) {
	if _, err := execute(t, "watch"); err == nil {
		t.Error("watch without trigger should fail")
	}
}

func TestWatchCommand_StopOnDestroy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events")
	if err := os.WriteFile(path, []byte("create\nstart\ndestroy\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "watch", "--trigger", path, "--stop-on-destroy", "--observers", "0")
	if err != nil {
		t.Fatalf("watch error = %v", err)
	}
	if !strings.HasSuffix(out, "host finished in Destroyed\n") {
		t.Errorf("output = %q", out)
	}
}

func TestVersionString(t *testing.T) {
	v := versionString()
	if !strings.Contains(v, "lifecycle "+lifecycle.Version) {
		t.Errorf("versionString() = %q", v)
	}
}
