package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/reactive/internal/errors"
)

const passingScenario = `name: counter
state:
  count: 0
watches:
  - name: counter
    read: [count]
steps:
  - set: {path: count, value: 1}
  - expect: {watch: counter, runs: 2, last: [1]}
`

const failingScenario = `name: broken
state:
  count: 0
watches:
  - name: counter
    read: [count]
steps:
  - set: {path: count, value: 1}
  - expect: {watch: counter, runs: 7}
`

func writeProject(t *testing.T, scenarios map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "reactive.json"), []byte(`{"metrics": {"enabled": false}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	sdir := filepath.Join(dir, "scenarios")
	if err := os.MkdirAll(sdir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, body := range scenarios {
		if err := os.WriteFile(filepath.Join(sdir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionShort(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("output = %q, want %q", out, version)
	}
}

func TestVersionFull(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	for _, want := range []string{"reactive " + version, "Commit:", "Go version:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunPassing(t *testing.T) {
	dir := writeProject(t, map[string]string{"counter.yaml": passingScenario})

	out, err := execute(t, "--config", dir, "--no-color", "run")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "1 passed, 0 failed") {
		t.Errorf("summary missing:\n%s", out)
	}
}

func TestRunFailing(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"a.yaml": passingScenario,
		"b.yaml": failingScenario,
	})

	out, err := execute(t, "--config", dir, "--no-color", "run")
	if !errors.Is(err, "R402") {
		t.Fatalf("err = %v, want R402", err)
	}
	if !strings.Contains(out, "1 passed, 1 failed") {
		t.Errorf("summary missing:\n%s", out)
	}
}

func TestRunExplicitFile(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"a.yaml": passingScenario,
		"b.yaml": failingScenario,
	})

	_, err := execute(t, "--config", dir, "run", filepath.Join(dir, "scenarios", "a.yaml"))
	if err != nil {
		t.Fatalf("run a.yaml: %v", err)
	}
}

func TestRunJSON(t *testing.T) {
	dir := writeProject(t, map[string]string{"counter.yaml": passingScenario})

	out, err := execute(t, "--config", dir, "run", "--json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var reports []map[string]any
	if err := json.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}
}

func TestRunNoScenarios(t *testing.T) {
	dir := writeProject(t, nil)

	_, err := execute(t, "--config", dir, "run")
	if !errors.Is(err, "R401") {
		t.Fatalf("err = %v, want R401", err)
	}
}

func TestRunRejectsBadLogLevel(t *testing.T) {
	dir := writeProject(t, map[string]string{"counter.yaml": passingScenario})

	_, err := execute(t, "--config", dir, "--log-level", "loud", "run")
	if !errors.Is(err, "R103") {
		t.Fatalf("err = %v, want R103", err)
	}
}

func TestInitThenRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")

	out, err := execute(t, "init", dir, "--template", "minimal")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, "Created reactive.json") {
		t.Errorf("init output:\n%s", out)
	}

	out, err = execute(t, "--config", dir, "run")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "1 passed, 0 failed") {
		t.Errorf("summary missing:\n%s", out)
	}

	if _, err := execute(t, "init", dir); !errors.Is(err, "R405") {
		t.Errorf("second init err = %v, want R405", err)
	}
}

func TestEnvFileOverridesConfig(t *testing.T) {
	dir := writeProject(t, map[string]string{"counter.yaml": passingScenario})
	envFile := filepath.Join(dir, "bad.env")
	if err := os.WriteFile(envFile, []byte("REACTIVE_LOG_FORMAT=xml\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("REACTIVE_LOG_FORMAT") })

	_, err := execute(t, "--config", dir, "--env", envFile, "run")
	if !errors.Is(err, "R103") {
		t.Fatalf("err = %v, want R103 from the env file's log format", err)
	}
}
