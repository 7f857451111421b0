package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInteractive(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(nil, strings.NewReader("uci\nisready\nquit\n"), &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "id name Goose UCI\n")
	assert.True(t, strings.HasSuffix(stdout.String(), "uciok\nreadyok\n"), stdout.String())
}

func TestRunOneShot(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"go", "perft", "2"}, strings.NewReader("isready\n"), &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "Nodes searched: 400")
	assert.NotContains(t, stdout.String(), "readyok")
}

func TestRunWithConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  name: Gander\nlog:\n  level: error\n"), 0o600))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", path, "uci"}, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout.String(), "id name Gander\n"), stdout.String())
}

func TestRunBadConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", filepath.Join(t.TempDir(), "absent.yaml")}, strings.NewReader(""), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Failed to load configuration")
	assert.Empty(t, stdout.String())
}

func TestRunBadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"-nope"}, strings.NewReader(""), &stdout, &stderr))
}
