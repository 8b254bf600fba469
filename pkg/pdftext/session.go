package pdftext

import (
	"context"
	"sync"
)

// Status is the lifecycle state of one extraction session.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusExtracting Status = "extracting"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

// Session tracks one extraction's lifecycle for a polling consumer. It can
// never be left stuck in StatusExtracting: Run always ends in StatusDone,
// StatusError with a human-readable message, or back in StatusIdle when the
// context was cancelled (the consumer went away, so the partial result is
// discarded rather than surfaced).
type Session struct {
	mu       sync.Mutex
	status   Status
	message  string
	text     string
	progress Progress
}

// NewSession creates an idle session.
func NewSession() *Session {
	return &Session{status: StatusIdle}
}

// Status returns the current status and, for StatusError, the message.
func (s *Session) Status() (Status, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.message
}

// Text returns the extracted text once the session is done.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Progress returns the most recent progress update.
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Reset discards any extracted text and returns the session to idle, the
// "start over" action. Safe to call in any state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusIdle
	s.message = ""
	s.text = ""
	s.progress = Progress{}
}

// Run executes one extraction against the session. Progress updates are
// already context-gated by the extractor; the terminal state transition is
// gated here as well so a cancelled run leaves the session idle instead of
// publishing a stale result.
func (s *Session) Run(ctx context.Context, e *Extractor, src PageSource) {
	s.mu.Lock()
	s.status = StatusExtracting
	s.message = ""
	s.mu.Unlock()

	text, err := e.Extract(ctx, src, func(p Progress) {
		s.mu.Lock()
		s.progress = p
		s.mu.Unlock()
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.Err() != nil {
		s.status = StatusIdle
		s.text = ""
		return
	}
	if err != nil {
		s.status = StatusError
		s.message = err.Error()
		return
	}
	s.status = StatusDone
	s.text = text
}
