package render

import (
	"errors"
	"fmt"
	"io"

	"devmon/config"
)

// ErrClosed is returned by Render after the sink has shut down.
var ErrClosed = errors.New("renderer closed")

// Renderer displays one pre-formatted text block per tick.
type Renderer interface {
	Render(text string) error
	// Done is closed when the user dismisses the display. A nil channel
	// means the renderer never asks to stop.
	Done() <-chan struct{}
	Close()
}

// New builds the renderer named by kind. out is used by the stdout renderer.
func New(kind string, out io.Writer) (Renderer, error) {
	switch kind {
	case config.RendererTerminal:
		return NewTerminal()
	case config.RendererStdout:
		return NewWriter(out), nil
	default:
		return nil, fmt.Errorf("unknown renderer %q", kind)
	}
}
