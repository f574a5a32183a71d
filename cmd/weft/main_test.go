package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/weft/internal/errors"
)

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

// project returns a directory holding a weft.json.
func project(t *testing.T, config string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "weft.json"), []byte(config), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func code(err error) string {
	if we, ok := err.(*errors.WeftError); ok {
		return we.Code
	}
	return ""
}

func TestVersionShort(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil || out != "dev\n" {
		t.Errorf("version --short = %q, %v", out, err)
	}
}

func TestDemoList(t *testing.T) {
	out, err := execute(t, "demo")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"calendar", "todo"} {
		if !strings.Contains(out, want) {
			t.Errorf("list missing %s:\n%s", want, out)
		}
	}
}

func TestDemoRun(t *testing.T) {
	dir := project(t, `{"name": "test"}`)
	out, err := execute(t, "-C", dir, "demo", "calendar")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"0. initial", "1. next week", ">45678910<", "calendar: 3 steps"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	final, err := execute(t, "-C", dir, "demo", "calendar", "--final")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(final, "initial") || !strings.Contains(final, ">45678910<") {
		t.Errorf("--final output:\n%s", final)
	}
}

func TestDemoUnknown(t *testing.T) {
	dir := project(t, `{}`)
	if _, err := execute(t, "-C", dir, "demo", "chess"); code(err) != "E080" {
		t.Errorf("err = %v, want E080", err)
	}
}

func TestBadLogLevel(t *testing.T) {
	dir := project(t, `{}`)
	if _, err := execute(t, "-C", dir, "--log-level", "loud", "demo", "todo"); code(err) != "E040" {
		t.Errorf("err = %v, want E040", err)
	}
}

func TestInvalidConfig(t *testing.T) {
	dir := project(t, `{"render": {"frameInterval": "soon"}}`)
	_, err := execute(t, "-C", dir, "demo", "todo")
	if code(err) != "E040" {
		t.Fatalf("err = %v, want E040", err)
	}
	if we := err.(*errors.WeftError); we.Location == nil || !strings.HasSuffix(we.Location.File, "weft.json") {
		t.Errorf("error should point at weft.json: %+v", we.Location)
	}
}

func TestSnapshotCommands(t *testing.T) {
	dir := project(t, `{"snapshot": {"dir": "goldens"}}`)
	run := func(args ...string) (string, error) {
		return execute(t, append([]string{"-C", dir}, args...)...)
	}

	if out, _ := run("snapshot", "list"); !strings.Contains(out, "No snapshots") {
		t.Errorf("empty list = %q", out)
	}
	if _, err := run("snapshot", "save", "calendar"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "goldens", "calendar.json")); err != nil {
		t.Errorf("snapshot file: %v", err)
	}
	if out, _ := run("snapshot", "list"); strings.TrimSpace(out) != "calendar" {
		t.Errorf("list = %q", out)
	}
	if out, _ := run("snapshot", "show", "calendar"); !strings.Contains(out, "Calendar:default") || !strings.Contains(out, `class="days"`) {
		t.Errorf("show = %q", out)
	}
	if out, err := run("snapshot", "diff", "calendar"); err != nil || !strings.Contains(out, "matches") {
		t.Errorf("diff of a fresh save = %q, %v", out, err)
	}

	if _, err := run("snapshot", "save", "todo", "--name", "calendar"); err != nil {
		t.Fatal(err)
	}
	out, err := run("snapshot", "diff", "calendar")
	if code(err) != "E063" {
		t.Errorf("diff err = %v, want E063", err)
	}
	for _, want := range []string{"--- calendar", "+++ calendar (render)", "@@ -1,", `-<section class="todo">`, `+<section class="calendar">`} {
		if !strings.Contains(out, want) {
			t.Errorf("diff output missing %q:\n%s", want, out)
		}
	}

	if _, err := run("snapshot", "delete", "calendar"); err != nil {
		t.Fatal(err)
	}
	if _, err := run("snapshot", "show", "calendar"); code(err) != "E060" {
		t.Errorf("show deleted: %v, want E060", err)
	}
	if _, err := run("snapshot", "save", "todo", "--name", "../x"); code(err) != "E062" {
		t.Errorf("bad name: %v, want E062", err)
	}
}

func TestTraceFlag(t *testing.T) {
	dir := project(t, `{}`)
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"-C", dir, "--trace", "demo", "calendar", "--final"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"weft.render", "Calendar:default"} {
		if !strings.Contains(errOut.String(), want) {
			t.Errorf("exported spans missing %q", want)
		}
	}
}

func TestErrorFormats(t *testing.T) {
	dir := project(t, `{}`)

	var out, errOut bytes.Buffer
	if got := run([]string{"-C", dir, "--error-format", "json", "demo", "chess"}, &out, &errOut); got != 1 {
		t.Fatalf("exit = %d, want 1", got)
	}
	var body struct {
		Code       string `json:"code"`
		Category   string `json:"category"`
		Detail     string `json:"detail"`
		Suggestion string `json:"suggestion"`
	}
	if err := json.Unmarshal(errOut.Bytes(), &body); err != nil {
		t.Fatalf("stderr is not JSON: %v\n%s", err, errOut.String())
	}
	if body.Code != "E080" || body.Category != "cli" || body.Detail != "unknown demo chess" {
		t.Errorf("json error = %+v", body)
	}

	errOut.Reset()
	run([]string{"-C", dir, "--error-format", "compact", "demo", "chess"}, &out, &errOut)
	if got := strings.TrimSpace(errOut.String()); !strings.HasPrefix(got, "E080: ") || strings.Contains(got, "\n") {
		t.Errorf("compact error = %q", got)
	}

	errOut.Reset()
	if got := run([]string{"-C", dir, "--error-format", "xml", "version"}, &out, &errOut); got != 1 {
		t.Fatalf("exit = %d, want 1", got)
	}
	if !strings.Contains(errOut.String(), "E040") || !strings.Contains(errOut.String(), "unknown error format xml") {
		t.Errorf("unknown format should fail as text:\n%s", errOut.String())
	}
}

func TestRunSuccess(t *testing.T) {
	var out, errOut bytes.Buffer
	if got := run([]string{"version", "--short"}, &out, &errOut); got != 0 || out.String() != "dev\n" {
		t.Errorf("run = %d, stdout %q, stderr %q", got, out.String(), errOut.String())
	}
}
