package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyVetValidDirectory(t *testing.T) {
	dir := writePolicyDir(t, `contracts: [
	{receiver: "Account", invariant: "balanced", timing: "after"},
	{receiver: "Counter", invariant: "positive", methods: ["Add", "Sub"]},
]
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := newPolicyVetCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "✓ 2 rule(s) valid")
	assert.Contains(t, output, "Account: balanced (after) on all methods")
	assert.Contains(t, output, "Counter: positive (before_and_after) on Add, Sub")
}

func TestPolicyVetJSON(t *testing.T) {
	dir := writePolicyDir(t, `contracts: [
	{receiver: "Account", invariant: "balanced"},
]
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := newPolicyVetCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data := resp.Data.(map[string]interface{})
	rules := data["rules"].([]interface{})
	require.Len(t, rules, 1)
	rule := rules[0].(map[string]interface{})
	assert.Equal(t, "Account", rule["receiver"])
	assert.Equal(t, "balanced", rule["invariant"])
}

func TestPolicyVetMissingDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := newPolicyVetCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/policies"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "E130")
}

func TestPolicyVetInvalidRule(t *testing.T) {
	dir := writePolicyDir(t, `contracts: [
	{receiver: "Account", invariant: "balanced", timing: "sometimes"},
]
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := newPolicyVetCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "E133")
}
