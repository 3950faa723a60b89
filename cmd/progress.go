package cmd

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// ProgressSpinner shows batch progress with a spinning animation
type ProgressSpinner struct {
	verb      string
	total     int64
	processed int64
	failed    int64
	out       io.Writer
	mu        sync.Mutex
	ticker    *time.Ticker
	done      chan bool
	startTime time.Time
}

// NewProgressSpinner creates and starts a spinner for a batch of total items
func NewProgressSpinner(out io.Writer, verb string, total int) *ProgressSpinner {
	s := &ProgressSpinner{
		verb:      verb,
		total:     int64(total),
		out:       out,
		ticker:    time.NewTicker(100 * time.Millisecond),
		done:      make(chan bool),
		startTime: time.Now(),
	}

	go s.animate()

	return s
}

// animate runs the spinner animation in a background goroutine
func (s *ProgressSpinner) animate() {
	// Unicode braille spinner characters
	chars := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	i := 0

	for {
		select {
		case <-s.ticker.C:
			s.mu.Lock()
			fmt.Fprintf(s.out, "\r%s %s: %s / %s files",
				chars[i],
				s.verb,
				humanize.Comma(atomic.LoadInt64(&s.processed)),
				humanize.Comma(s.total))
			s.mu.Unlock()
			i = (i + 1) % len(chars)
		case <-s.done:
			return
		}
	}
}

// Item records one finished item; it matches the OnItem callbacks of the
// batch commands.
func (s *ProgressSpinner) Item(_ string, err error) {
	atomic.AddInt64(&s.processed, 1)
	if err != nil {
		atomic.AddInt64(&s.failed, 1)
	}
}

// Stop stops the spinner and prints the final summary
func (s *ProgressSpinner) Stop() {
	s.ticker.Stop()
	s.done <- true

	processed := atomic.LoadInt64(&s.processed)
	failed := atomic.LoadInt64(&s.failed)
	elapsed := time.Since(s.startTime)

	s.mu.Lock()
	defer s.mu.Unlock()
	mark := "✓"
	if failed > 0 {
		mark = "✗"
	}
	fmt.Fprintf(s.out, "\r%s %s %s files (%s failed) in %.1fs\n",
		mark,
		s.verb,
		humanize.Comma(processed),
		humanize.Comma(failed),
		elapsed.Seconds())
}
