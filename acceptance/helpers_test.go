package acceptance_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

const validReport = "**Date of service:** 3/1\n" +
	"**Technician name:** Sam\n" +
	"**Customer point of contact:** Lee\n" +
	"**Description of problem:** leak under the sink\n" +
	"**Description of work performed:** replaced the trap\n" +
	"**Issue resolved?** yes\n" +
	"**Next steps?** none\n"

const partialReport = "**Date of service:** 3/2\n" +
	"**Technician name:** Sam\n" +
	"**Customer point of contact:** Lee\n" +
	"**Description of problem:** noise\n" +
	"**Description of work performed:** tightened the belt\n" +
	"**Issue resolved?** yes\n"

const looseNotes = "Stopped by, looked at the boiler, will come back.\n"

// runSvcrpt executes the svcrpt binary and returns stdout, stderr, and exit code.
func runSvcrpt(t *testing.T, dir string, args ...string) (string, string, int) {
	t.Helper()
	cmd := exec.Command(svcrptBinary, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("failed to run svcrpt: %v", err)
		}
		exitCode = exitErr.ExitCode()
	}
	return stdout.String(), stderr.String(), exitCode
}

// runSuccess runs svcrpt expecting exit code 0 and returns stdout.
func runSuccess(t *testing.T, dir string, args ...string) string {
	t.Helper()
	stdout, stderr, exitCode := runSvcrpt(t, dir, args...)
	if exitCode != 0 {
		t.Fatalf("expected exit 0, got %d\nargs: %v\nstdout: %s\nstderr: %s", exitCode, args, stdout, stderr)
	}
	return stdout
}

// runJSON runs svcrpt with --json, expecting exit code want, and decodes stdout into v.
func runJSON(t *testing.T, dir string, want int, v any, args ...string) {
	t.Helper()
	args = append(args, "--json")
	stdout, stderr, exitCode := runSvcrpt(t, dir, args...)
	if exitCode != want {
		t.Fatalf("expected exit %d, got %d\nargs: %v\nstdout: %s\nstderr: %s", want, exitCode, args, stdout, stderr)
	}
	if err := json.Unmarshal([]byte(stdout), v); err != nil {
		t.Fatalf("failed to parse JSON: %v\noutput: %s", err, stdout)
	}
}

// initProject creates a temp dir, runs svcrpt init and fills the input folder.
func initProject(t *testing.T, reports map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	runSuccess(t, dir, "init")
	for name, content := range reports {
		writeFile(t, dir, filepath.Join("_in", name), content)
	}
	return dir
}

// mixedReports is one valid, one invalid and one unstructured report plus a
// report in an ignored folder.
func mixedReports() map[string]string {
	return map[string]string{
		"a.md":             validReport,
		"b.md":             partialReport,
		"c.md":             looseNotes,
		"_PM Reports/p.md": validReport,
	}
}

// writeFile creates a file with the given content.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

// readFile reads a file's content.
func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	return string(content)
}

// fileExists checks if a file exists.
func fileExists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}

// globCount counts files matching pattern under dir.
func globCount(t *testing.T, dir, pattern string) int {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		t.Fatalf("bad pattern %q: %v", pattern, err)
	}
	return len(matches)
}
