// Package e2e provides end-to-end tests for planprobe.
//
// These tests run a real terraform binary against provider-free modules,
// so no network access or credentials are needed. They skip when terraform
// is not installed. Run with:
//
//	go test -v ./tests/e2e/...
package e2e

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/planprobe/pkg/planprobe"
)

// outputsModule declares only variables and outputs, which terraform can plan
// without downloading any provider.
const outputsModule = `
variable "greeting" {
  type    = string
  default = "hello"
}

variable "tags" {
  type    = map(string)
  default = {}
}

output "message" {
  value = "${var.greeting}, world"
}

output "tags" {
  value = var.tags
}
`

func newProbe(t *testing.T, m planprobe.Mode) (*planprobe.Orchestrator, *OutputCapture) {
	t.Helper()
	binary := requireTerraform(t)
	capture := &OutputCapture{}
	t.Cleanup(func() { capture.DumpOnFailure(t) })

	return planprobe.New(planprobe.Options{
		Binary: binary,
		Mode:   m,
		Logger: testLogger(capture),
		Stdin:  strings.NewReader(""),
		Stdout: capture,
		Stderr: capture,
	}), capture
}

// =============================================================================
// End-to-End Tests
// =============================================================================

func TestE2E_InPlace(t *testing.T) {
	probe, _ := newProbe(t, planprobe.InPlace)
	dir := writeModule(t, map[string]string{"main.tf": outputsModule})

	p, err := probe.Execute(context.Background(), planprobe.Parameters{
		planprobe.ConfigurationDirectory: dir,
		planprobe.StateFile:              filepath.Join(t.TempDir(), "terraform.tfstate"),
	}, func(v *planprobe.VarCaptor) {
		v.Set("greeting", "hi")
		v.Set("tags", map[string]any{"team": "infra"})
	})
	require.NoError(t, err)

	message, ok := p.OutputChange("message")
	require.True(t, ok)
	assert.Equal(t, []string{"create"}, message.Actions)
	assert.Equal(t, "hi, world", message.After)

	tags, ok := p.OutputChange("tags")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"team": "infra"}, tags.After)

	assert.Equal(t, "hi", p.Variables()["greeting"])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tfplan"), "plan file %s left behind", e.Name())
	}
}

func TestE2E_Isolated(t *testing.T) {
	probe, _ := newProbe(t, planprobe.Isolated)
	source := writeModule(t, map[string]string{"main.tf": outputsModule})
	config := filepath.Join(t.TempDir(), "staging")
	require.NoError(t, os.MkdirAll(config, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(config, "stale.tf"), []byte(`output "stale" { value = 1 }`), 0o644))

	p, err := probe.Execute(context.Background(), planprobe.Parameters{
		planprobe.ConfigurationDirectory: config,
		planprobe.SourceDirectory:        source,
	}, nil)
	require.NoError(t, err)

	_, ok := p.OutputChange("stale")
	assert.False(t, ok, "configuration directory should have been reset")

	message, ok := p.OutputChange("message")
	require.True(t, ok)
	assert.Equal(t, "hello, world", message.After)
	assert.FileExists(t, filepath.Join(config, "main.tf"))
}

func TestE2E_InvalidConfiguration(t *testing.T) {
	probe, _ := newProbe(t, planprobe.InPlace)
	dir := writeModule(t, map[string]string{"main.tf": `output "broken" {`})

	_, err := probe.Execute(context.Background(), planprobe.Parameters{
		planprobe.ConfigurationDirectory: dir,
	}, nil)
	assert.Error(t, err)
}
