package cli

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a bytes.Buffer for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestIsTerminal_NonFile(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("buffer reported as terminal")
	}
}

func TestSpinner_NonTerminal(t *testing.T) {
	buf := &syncBuffer{}
	s := NewSpinner(buf)

	s.Start("Probing nodes")
	s.Stop()
	s.Stop()

	if buf.String() != "Probing nodes...\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestSpinner_Animated(t *testing.T) {
	buf := &syncBuffer{}
	s := NewSpinner(buf)
	s.animate = true
	s.interval = 5 * time.Millisecond

	s.Start("Waiting for reply")
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Waiting for reply") {
		t.Errorf("expected message in output, got %q", out)
	}
	if !strings.HasSuffix(out, "\r\033[K") {
		t.Errorf("expected line to be cleared on stop, got %q", out)
	}
}

func TestSpinner_Wrap(t *testing.T) {
	s := NewSpinner(&syncBuffer{})
	want := errors.New("timeout")

	if err := s.Wrap("Sending", func() error { return want }); !errors.Is(err, want) {
		t.Errorf("Wrap() = %v, want %v", err, want)
	}
}
