// Package e2e provides end-to-end testing utilities for planprobe.
package e2e

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

// =============================================================================
// Output Capture
// =============================================================================

// OutputCapture collects terraform's standard output and error streams so a
// failing test can print what terraform said.
type OutputCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer.
func (c *OutputCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

// DumpOnFailure logs the captured output if the test has failed.
func (c *OutputCapture) DumpOnFailure(t *testing.T) {
	t.Helper()
	if !t.Failed() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t.Logf("terraform output:\n%s", c.buf.String())
}

var _ io.Writer = (*OutputCapture)(nil)

// =============================================================================
// Terraform Helpers
// =============================================================================

// requireTerraform returns the terraform binary, skipping the test when it is
// not installed. PLANPROBE_E2E_BINARY selects a different binary, e.g. tofu.
func requireTerraform(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}
	name := os.Getenv("PLANPROBE_E2E_BINARY")
	if name == "" {
		name = "terraform"
	}
	path, err := exec.LookPath(name)
	if err != nil {
		t.Skipf("%s not found on PATH", name)
	}
	return path
}

// writeModule writes files (name -> content) into a new directory.
func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func testLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
