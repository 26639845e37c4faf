package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForWriter_PlainForBuffers(t *testing.T) {
	r, err := ForWriter(&bytes.Buffer{})
	require.NoError(t, err)
	out, err := r("# Title\n")
	require.NoError(t, err)
	assert.Equal(t, "# Title\n", out)
}

func TestNewRenderer(t *testing.T) {
	r, err := NewRenderer(40)
	require.NoError(t, err)
	out, err := r("# Title\n\nBody text\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "Body text")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "0.1.0")
	assert.Contains(t, buf.String(), "0.1.0")
	assert.Contains(t, buf.String(), "|___/")
}
