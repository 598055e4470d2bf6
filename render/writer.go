package render

import (
	"io"
	"sync"
)

// Writer prints every block to an io.Writer, separated by a blank line.
type Writer struct {
	mu     sync.Mutex
	out    io.Writer
	blocks int
	closed bool
}

func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

func (w *Writer) Render(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	block := text + "\n"
	if w.blocks > 0 {
		block = "\n" + block
	}
	if _, err := io.WriteString(w.out, block); err != nil {
		return err
	}
	w.blocks++
	return nil
}

func (w *Writer) Done() <-chan struct{} { return nil }

func (w *Writer) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}
