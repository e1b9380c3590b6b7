package ingest

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// Notifier surfaces transient user-facing warnings.
type Notifier interface {
	Warn(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

// Warn calls f.
func (f NotifierFunc) Warn(message string) {
	if f != nil {
		f(message)
	}
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithNotifier routes pre-check warnings to n.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) {
		if n != nil {
			p.notifier = n
		}
	}
}

// WithEncoder replaces the default data URI encoder.
func WithEncoder(fn EncodeFunc) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.encode = fn
		}
	}
}

// Pipeline gates selected files and starts encode tasks for accepted ones.
type Pipeline struct {
	seq      atomic.Uint64
	notifier Notifier
	encode   EncodeFunc
}

// NewPipeline constructs a pipeline. Without a notifier, warnings are logged.
func NewPipeline(options ...Option) *Pipeline {
	p := &Pipeline{
		notifier: NotifierFunc(func(message string) {
			log.Warn().Str("warning", message).Msg("ingest: image rejected")
		}),
		encode: Encode,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p
}

// Select pre-checks file, surfaces one warning per failed rule and, only when
// both rules pass, starts an encode task whose result goes to next. Rejected
// files return a nil task. Select never blocks on the encode.
func (p *Pipeline) Select(ctx context.Context, file File, next Continuation) (Candidate, *Task) {
	candidate := PreCheck(file)
	if !candidate.Accepted {
		for _, warning := range candidate.Warnings() {
			p.notifier.Warn(warning)
		}
		return candidate, nil
	}

	seq := p.seq.Add(1)
	log.Debug().
		Uint64("seq", seq).
		Str("name", file.Name()).
		Str("type", file.Type()).
		Int64("size", file.Size()).
		Msg("ingest: encoding avatar")

	return candidate, Start(ctx, seq, file, p.encode, next)
}
