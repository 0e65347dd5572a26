package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/chamai/internal/infrastructure/cli"
)

func TestRun_Help(t *testing.T) {
	cli.RootCmd.SetArgs([]string{"--help"})
	defer cli.RootCmd.SetArgs(nil)

	var stderr bytes.Buffer
	require.Equal(t, 0, run(&stderr), stderr.String())
}

func TestRun_MappedErrorPrintsHint(t *testing.T) {
	dir := t.TempDir()
	cli.RootCmd.SetArgs([]string{"--project", dir, "status"})
	defer cli.RootCmd.SetArgs(nil)

	var stderr bytes.Buffer
	require.Equal(t, 1, run(&stderr))
	assert.Contains(t, stderr.String(), "Failed to load checklist JSON.")
	assert.Contains(t, stderr.String(), "Hint: ")
}

func TestRun_UnknownCommand(t *testing.T) {
	cli.RootCmd.SetArgs([]string{"invalid-cmd-999"})
	defer cli.RootCmd.SetArgs(nil)

	var stderr bytes.Buffer
	require.Equal(t, 1, run(&stderr))
	assert.True(t, bytes.HasPrefix(stderr.Bytes(), []byte("Error: ")), "stderr: %q", stderr.String())
}
