package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootInvalidFormat(t *testing.T) {
	file := writeSource(t, "counter.go", plainCounter)

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--format", "xml", "check", file})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "counter.go")
	require.NoError(t, os.WriteFile(file, []byte(annotatedCounter), 0644))

	cfg := filepath.Join(dir, "eiffelgen.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("default_timing: before\n"), 0644))

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--config", cfg, "generate", file})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "failed on entry")
	assert.NotContains(t, output, "failed on exit")
}

func TestRootMissingExplicitConfig(t *testing.T) {
	file := writeSource(t, "counter.go", plainCounter)

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--config", "/nonexistent/config.yaml", "check", file})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestRootListsSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	assert.True(t, names["generate"])
	assert.True(t, names["check"])
	assert.True(t, names["policy"])
	assert.True(t, names["manifest"])
}
