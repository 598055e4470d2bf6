package render

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"devmon/log"
)

const (
	terminalTitle = " Device Monitor "
	stopTimeout   = 500 * time.Millisecond
)

// Terminal is a full-screen tview display holding the latest block.
type Terminal struct {
	app   *tview.Application
	view  *tview.TextView
	ready chan struct{}
	done  chan struct{}
	dirty chan struct{}

	stopOnce sync.Once
}

// NewTerminal takes over the controlling terminal. It fails if no screen
// can be initialised, for instance when stdout is not a tty.
func NewTerminal() (*Terminal, error) {
	return newTerminal(nil)
}

// newTerminal runs on the given screen, or lets tview create one when nil.
func newTerminal(screen tcell.Screen) (*Terminal, error) {
	view := tview.NewTextView().SetDynamicColors(false).SetWrap(false)
	view.SetTextColor(tcell.ColorWhite)
	view.SetBackgroundColor(tcell.ColorBlack)
	view.SetBorder(true)
	view.SetTitle(terminalTitle).SetTitleAlign(tview.AlignCenter)

	app := tview.NewApplication()
	if screen != nil {
		app.SetScreen(screen)
	}

	t := &Terminal{
		app:   app,
		view:  view,
		ready: make(chan struct{}),
		done:  make(chan struct{}),
		dirty: make(chan struct{}, 1),
	}

	var once sync.Once
	app.SetBeforeDrawFunc(func(tcell.Screen) bool {
		once.Do(func() { close(t.ready) })
		return false
	})
	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyRune && (event.Rune() == 'q' || event.Rune() == 'Q') {
			app.Stop()
			return nil
		}
		return event
	})
	app.SetRoot(view, true)

	runErr := make(chan error, 1)
	go func() {
		defer close(t.done)
		if err := app.Run(); err != nil {
			runErr <- err
		}
	}()

	select {
	case <-t.ready:
		go t.redraw()
		return t, nil
	case <-t.done:
		select {
		case err := <-runErr:
			return nil, fmt.Errorf("start terminal: %w", err)
		default:
			return nil, fmt.Errorf("start terminal: %w", ErrClosed)
		}
	}
}

// Render replaces the displayed text and schedules a redraw. It never
// blocks; redraw requests that arrive faster than the screen draws are
// coalesced.
func (t *Terminal) Render(text string) error {
	select {
	case <-t.done:
		return ErrClosed
	default:
	}

	t.view.SetText(text)
	select {
	case t.dirty <- struct{}{}:
	default:
	}
	return nil
}

// redraw is the only goroutine that waits on the event loop. If the loop
// exits while a draw is queued it stays parked in Draw until the process
// ends.
func (t *Terminal) redraw() {
	for {
		select {
		case <-t.done:
			return
		case <-t.dirty:
			t.app.Draw()
		}
	}
}

// Done is closed once the event loop exits (q or Ctrl-C).
func (t *Terminal) Done() <-chan struct{} {
	return t.done
}

// Close stops the event loop and restores the terminal.
func (t *Terminal) Close() {
	t.stopOnce.Do(t.app.Stop)
	select {
	case <-t.done:
	case <-time.After(stopTimeout):
		log.Warn().Msg("Terminal did not stop in time")
	}
}
