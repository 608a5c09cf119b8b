package magetasks

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureConsole(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Console
	Console = &buf
	t.Cleanup(func() { Console = prev })
	return &buf
}

func TestStatusLines(t *testing.T) {
	buf := captureConsole(t)
	PrintSuccess("built")
	PrintWarning("staticcheck missing")
	PrintError("tests failed")
	assert.Equal(t, "+ built\n! staticcheck missing\nx tests failed\n", buf.String())
}

func TestHeaders(t *testing.T) {
	buf := captureConsole(t)
	PrintH2Header("Build")
	assert.Contains(t, buf.String(), "▸")
	assert.Contains(t, buf.String(), "Build")

	buf.Reset()
	PrintH1Header("Quality")
	assert.Contains(t, buf.String(), "━━━")
	assert.Contains(t, buf.String(), "Quality")
}
