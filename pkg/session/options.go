package session

import (
	"github.com/goliatone/go-campcert/pkg/formstate"
	"github.com/goliatone/go-campcert/pkg/ingest"
	"github.com/goliatone/go-campcert/pkg/render"
)

// Option configures a Session.
type Option func(*Session)

// WithRenderer sets the renderer used for every frame.
func WithRenderer(r render.Renderer) Option {
	return func(s *Session) {
		s.renderer = r
	}
}

// WithListener receives frames and warnings on the Run goroutine.
func WithListener(l Listener) Option {
	return func(s *Session) {
		if l != nil {
			s.listener = l
		}
	}
}

// WithInitialValues seeds the store.
func WithInitialValues(update formstate.Update) Option {
	return func(s *Session) {
		s.initial = update
	}
}

// WithEncoder overrides the image encoder.
func WithEncoder(fn ingest.EncodeFunc) Option {
	return func(s *Session) {
		s.encode = fn
	}
}

// WithQueueSize sets the event buffer length.
func WithQueueSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithWarningHistory bounds how many warnings Warnings returns.
func WithWarningHistory(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.keep = n
		}
	}
}

// Listener observes the session. Calls happen on the Run goroutine and must
// not block.
type Listener interface {
	FrameRendered(Frame)
	Warned(message string)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	OnFrame   func(Frame)
	OnWarning func(string)
}

func (l ListenerFuncs) FrameRendered(f Frame) {
	if l.OnFrame != nil {
		l.OnFrame(f)
	}
}

func (l ListenerFuncs) Warned(message string) {
	if l.OnWarning != nil {
		l.OnWarning(message)
	}
}

type nopListener struct{}

func (nopListener) FrameRendered(Frame) {}
func (nopListener) Warned(string)       {}
