package render

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devmon/config"
)

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("pipe closed") }

func TestWriterSeparatesBlocks(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.Render("10:00\n\nCPU"))
	require.NoError(t, w.Render("10:01\n\nCPU"))

	assert.Equal(t, "10:00\n\nCPU\n\n10:01\n\nCPU\n", buf.String())
}

func TestWriterPropagatesWriteError(t *testing.T) {
	w := NewWriter(brokenWriter{})

	err := w.Render("block")

	assert.EqualError(t, err, "pipe closed")
}

func TestWriterClosed(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Close()

	assert.ErrorIs(t, w.Render("late"), ErrClosed)
	assert.Empty(t, buf.String())
	assert.Nil(t, w.Done())
}

func TestNewStdout(t *testing.T) {
	var buf bytes.Buffer

	r, err := New(config.RendererStdout, &buf)

	require.NoError(t, err)
	require.IsType(t, &Writer{}, r)
	require.NoError(t, r.Render("hello"))
	assert.Equal(t, "hello\n", buf.String())
}

func TestNewUnknown(t *testing.T) {
	_, err := New("hologram", nil)

	assert.ErrorContains(t, err, `unknown renderer "hologram"`)
}
