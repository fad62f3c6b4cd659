package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Spinner shows an animated status line while a blocking call runs. On a
// non-terminal writer it prints the message once and stays silent.
type Spinner struct {
	mu       sync.Mutex
	writer   io.Writer
	animate  bool
	interval time.Duration
	message  string
	started  time.Time
	stop     chan struct{}
	done     chan struct{}
}

// NewSpinner creates a spinner that writes to w. If w is nil, it defaults
// to os.Stderr.
func NewSpinner(w io.Writer) *Spinner {
	if w == nil {
		w = os.Stderr
	}
	return &Spinner{
		writer:   w,
		animate:  IsTerminal(w),
		interval: 100 * time.Millisecond,
	}
}

// Start shows message. Calling Start on a running spinner replaces the
// message.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = message
	if s.stop != nil {
		return
	}
	s.started = time.Now()

	if !s.animate {
		fmt.Fprintf(s.writer, "%s...\n", message)
		return
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
}

func (s *Spinner) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s.mu.Lock()
		fmt.Fprintf(s.writer, "\r%s %s (%.1fs)", spinnerFrames[i%len(spinnerFrames)], s.message, time.Since(s.started).Seconds())
		s.mu.Unlock()

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// Stop clears the status line. It is safe to call on a stopped spinner.
func (s *Spinner) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	fmt.Fprint(s.writer, "\r\033[K")
}

// Wrap runs fn with the spinner showing message.
func (s *Spinner) Wrap(message string, fn func() error) error {
	s.Start(message)
	defer s.Stop()
	return fn()
}
