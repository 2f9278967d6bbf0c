// Package transcript models the speech-or-typed input channel as a producer
// of tagged events rather than an ambient callback, so ordering and
// exactly-once-final delivery are checkable properties.
package transcript

import (
	"strings"
	"sync"
)

// Event is one delivery from the capture layer. Non-final events are partial
// recognitions that revise the in-flight utterance; a final event submits it.
type Event struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// Source coalesces capture events into submittable answers. Zero or many
// non-final deliveries may precede each final one; only finals are emitted.
type Source struct {
	mu      sync.Mutex
	partial string
	out     chan string
	closed  bool
}

// NewSource returns a Source whose Answers channel buffers the given number
// of submitted answers.
func NewSource(buffer int) *Source {
	if buffer < 1 {
		buffer = 1
	}
	return &Source{out: make(chan string, buffer)}
}

// Push delivers one capture event. A final event with empty text falls back
// to the last partial, so a recognizer that finalizes with a bare flag still
// submits what was heard.
func (s *Source) Push(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if !ev.Final {
		s.partial = ev.Text
		return
	}
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		text = strings.TrimSpace(s.partial)
	}
	s.partial = ""
	if text == "" {
		return
	}
	select {
	case s.out <- text:
	default:
		// A submitted answer the controller has not drained yet means the
		// author is ahead of the turn loop; drop the new one rather than block
		// the capture callback.
	}
}

// Preview returns the current non-final text, for display while the author is
// still speaking.
func (s *Source) Preview() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.partial
}

// Answers is the stream of submittable answers, one per final delivery.
func (s *Source) Answers() <-chan string {
	return s.out
}

// Close stops the source; later pushes are ignored.
func (s *Source) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.out)
}
