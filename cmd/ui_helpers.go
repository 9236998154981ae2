package cmd

import (
	"fmt"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// statusSpinner is a one-line live area with a rotating frame in front of
// its text. Lines printed through Above appear over the area without
// tearing it. A nil *statusSpinner is a valid no-op, used when stdout is not
// a terminal.
type statusSpinner struct {
	mu    sync.Mutex
	area  *pterm.AreaPrinter
	text  string
	frame int
	stop  chan struct{}
	wg    sync.WaitGroup
}

// startStatusSpinner hides the cursor and starts redrawing text every 120ms.
func startStatusSpinner(text string) *statusSpinner {
	cursor.Hide()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		cursor.Show()
		return nil
	}
	s := &statusSpinner{area: area, text: text, stop: make(chan struct{})}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				s.mu.Lock()
				s.frame++
				s.redraw()
				s.mu.Unlock()
			case <-s.stop:
				return
			}
		}
	}()
	return s
}

func (s *statusSpinner) redraw() {
	s.area.Update(fmt.Sprintf("%s %s", spinnerFrames[s.frame%len(spinnerFrames)], s.text))
}

// SetText replaces the status line.
func (s *statusSpinner) SetText(text string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
}

// Above clears the area, runs fn, and redraws the status line below
// whatever fn wrote.
func (s *statusSpinner) Above(fn func()) {
	if s == nil {
		fn()
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.area.Clear()
	fn()
	s.redraw()
}

// Stop removes the area and shows the cursor again.
func (s *statusSpinner) Stop() {
	if s == nil {
		return
	}
	close(s.stop)
	s.wg.Wait()
	_ = s.area.Stop()
	cursor.Show()
}
