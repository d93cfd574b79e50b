// Package terraformtest provides a scripted stand-in for the terraform binary.
//
// The fake appends each invocation's arguments to a log file, creates the
// plan file named by -out on plan, and prints a canned document on show.
// It needs a POSIX shell, so tests using it skip on Windows.
package terraformtest

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

const script = `#!/bin/sh
echo "$@" >> "$FAKE_TF_LOG"
chdir=.
cmd=
for a in "$@"; do
  case "$a" in
    -chdir=*) chdir="${a#-chdir=}" ;;
    -*) ;;
    *) if [ -z "$cmd" ]; then cmd="$a"; fi ;;
  esac
done
if [ "$FAKE_TF_FAIL" = "$cmd" ]; then
  echo "Error: $cmd failed" >&2
  exit "${FAKE_TF_FAIL_CODE:-1}"
fi
case "$cmd" in
  init) echo "Terraform has been successfully initialized!" ;;
  plan)
    for a in "$@"; do
      case "$a" in
        -out=*) : > "$chdir/${a#-out=}" ;;
      esac
    done
    exit "${FAKE_TF_PLAN_CODE:-0}"
    ;;
  show) cat "$FAKE_TF_SHOW" ;;
esac
exit 0
`

// Binary is a fake terraform executable prepared for one test.
type Binary struct {
	Path     string
	logPath  string
	showPath string
}

// New writes the fake binary into a temporary directory and points its
// environment at files under the same directory. showOutput is what
// "show" prints.
func New(tb testing.TB, showOutput string) *Binary {
	tb.Helper()
	if runtime.GOOS == "windows" {
		tb.Skip("fake terraform binary requires a POSIX shell")
	}

	dir := tb.TempDir()
	b := &Binary{
		Path:     filepath.Join(dir, "terraform"),
		logPath:  filepath.Join(dir, "invocations.log"),
		showPath: filepath.Join(dir, "show.json"),
	}
	if err := os.WriteFile(b.Path, []byte(script), 0o755); err != nil {
		tb.Fatalf("write fake terraform: %v", err)
	}
	if err := os.WriteFile(b.showPath, []byte(showOutput), 0o644); err != nil {
		tb.Fatalf("write show output: %v", err)
	}

	tb.Setenv("FAKE_TF_LOG", b.logPath)
	tb.Setenv("FAKE_TF_SHOW", b.showPath)
	tb.Setenv("FAKE_TF_FAIL", "")
	tb.Setenv("FAKE_TF_FAIL_CODE", "")
	tb.Setenv("FAKE_TF_PLAN_CODE", "")
	return b
}

// FailOn makes the named command exit with code 1.
func (b *Binary) FailOn(tb testing.TB, command string) {
	tb.Helper()
	tb.Setenv("FAKE_TF_FAIL", command)
}

// PlanExitCode makes plan exit with code after writing the plan file.
func (b *Binary) PlanExitCode(tb testing.TB, code string) {
	tb.Helper()
	tb.Setenv("FAKE_TF_PLAN_CODE", code)
}

// Invocations returns the argument lines the fake received, in order.
func (b *Binary) Invocations(tb testing.TB) []string {
	tb.Helper()
	data, err := os.ReadFile(b.logPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		tb.Fatalf("read invocation log: %v", err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}
