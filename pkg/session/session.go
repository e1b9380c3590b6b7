// Package session hosts one certificate-editing page: it owns the form store,
// the metrics projector, the image pipeline and a renderer, and serialises
// every mutation through a single event queue drained by Run.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/goliatone/go-campcert/pkg/formstate"
	"github.com/goliatone/go-campcert/pkg/ingest"
	"github.com/goliatone/go-campcert/pkg/metrics"
	"github.com/goliatone/go-campcert/pkg/preview"
	"github.com/goliatone/go-campcert/pkg/render"
)

// ErrStopped is returned when an event is posted after Run has returned.
var ErrStopped = errors.New("session: stopped")

const (
	defaultQueueSize   = 64
	defaultWarningKeep = 16
)

// Frame is one rendered preview.
type Frame struct {
	Version     uint64
	State       formstate.State
	View        preview.View
	ContentType string
	Output      []byte
}

// Session is the page component. Construct with New and start Run on its own
// goroutine before posting events.
type Session struct {
	events  chan event
	stopped chan struct{}
	runOnce sync.Once

	store     *formstate.Store
	projector *metrics.Projector
	pipeline  *ingest.Pipeline
	renderer  render.Renderer
	listener  Listener

	version uint64
	frame   atomic.Pointer[Frame]

	mu       sync.Mutex
	warnings []string
	tasks    []*ingest.Task

	queueSize int
	keep      int
	initial   formstate.Update
	encode    ingest.EncodeFunc
}

// New builds a session and renders the initial frame.
func New(options ...Option) (*Session, error) {
	s := &Session{
		stopped:   make(chan struct{}),
		projector: metrics.NewProjector(),
		listener:  nopListener{},
		queueSize: defaultQueueSize,
		keep:      defaultWarningKeep,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	store, err := formstate.NewStore(s.initial)
	if err != nil {
		return nil, fmt.Errorf("session: initial state: %w", err)
	}
	s.store = store
	s.events = make(chan event, s.queueSize)

	pipelineOptions := []ingest.Option{ingest.WithNotifier(ingest.NotifierFunc(s.warn))}
	if s.encode != nil {
		pipelineOptions = append(pipelineOptions, ingest.WithEncoder(s.encode))
	}
	s.pipeline = ingest.NewPipeline(pipelineOptions...)

	if err := s.publish(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// Run drains the event queue until ctx is done. It may be called once.
func (s *Session) Run(ctx context.Context) error {
	started := false
	s.runOnce.Do(func() { started = true })
	if !started {
		return errors.New("session: already running")
	}
	defer close(s.stopped)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			s.handle(ctx, ev)
		}
	}
}

// ChangeFields queues a merge and returns without waiting for it.
func (s *Session) ChangeFields(update formstate.Update) error {
	return s.post(context.Background(), fieldsEvent{update: update})
}

// Apply queues a merge and waits for its result.
func (s *Session) Apply(ctx context.Context, update formstate.Update) (formstate.State, error) {
	reply := make(chan mergeReply, 1)
	if err := s.post(ctx, fieldsEvent{update: update, reply: reply}); err != nil {
		return formstate.State{}, err
	}
	select {
	case r := <-reply:
		return r.state, r.err
	case <-ctx.Done():
		return formstate.State{}, ctx.Err()
	case <-s.stopped:
		return formstate.State{}, ErrStopped
	}
}

// SelectFile queues a picked file. The pre-check and encode happen later.
func (s *Session) SelectFile(file ingest.File) error {
	return s.post(context.Background(), fileEvent{file: file})
}

// Select queues a picked file and waits for its pre-check. The encode itself
// is still asynchronous.
func (s *Session) Select(ctx context.Context, file ingest.File) (ingest.Candidate, error) {
	reply := make(chan ingest.Candidate, 1)
	if err := s.post(ctx, fileEvent{file: file, reply: reply}); err != nil {
		return ingest.Candidate{}, err
	}
	select {
	case c := <-reply:
		return c, nil
	case <-ctx.Done():
		return ingest.Candidate{}, ctx.Err()
	case <-s.stopped:
		return ingest.Candidate{}, ErrStopped
	}
}

// Sync waits until every event queued before the call has been handled.
func (s *Session) Sync(ctx context.Context) error {
	done := make(chan struct{})
	if err := s.post(ctx, syncEvent{done: done}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrStopped
	}
}

// Settle waits for queued events and in-flight encodes, then for the events
// those encodes posted.
func (s *Session) Settle(ctx context.Context) error {
	if err := s.Sync(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	tasks := append([]*ingest.Task(nil), s.tasks...)
	s.mu.Unlock()

	for _, task := range tasks {
		if _, err := task.Wait(ctx); err != nil {
			return err
		}
	}
	return s.Sync(ctx)
}

// Snapshot returns the state behind the latest frame.
func (s *Session) Snapshot() formstate.State {
	return s.Frame().State
}

// Frame returns the latest rendered frame.
func (s *Session) Frame() Frame {
	if f := s.frame.Load(); f != nil {
		return *f
	}
	return Frame{}
}

// Warnings returns the most recent warnings, oldest first.
func (s *Session) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.warnings...)
}

// Computations reports how often metrics were recomputed.
func (s *Session) Computations() int {
	return s.projector.Computations()
}

// post queues ev. An event that lands in the buffer after Run returned is
// never handled, so the stopped check is repeated once the send succeeds. An
// event accepted while Run is returning may still be dropped.
func (s *Session) post(ctx context.Context, ev event) error {
	select {
	case s.events <- ev:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrStopped
	}
	select {
	case <-s.stopped:
		return ErrStopped
	default:
		return nil
	}
}

func (s *Session) handle(ctx context.Context, ev event) {
	switch e := ev.(type) {
	case fieldsEvent:
		state, err := s.merge(ctx, e.update)
		if e.reply != nil {
			e.reply <- mergeReply{state: state, err: err}
		}
	case fileEvent:
		candidate, task := s.pipeline.Select(ctx, e.file, s.encoded)
		if task != nil {
			s.track(task)
		}
		if e.reply != nil {
			e.reply <- candidate
		}
	case encodedEvent:
		s.applyEncoded(ctx, e.result)
	case syncEvent:
		close(e.done)
	}
}

// encoded is the encode continuation. It runs on the encode goroutine and
// only posts back onto the queue.
func (s *Session) encoded(result ingest.Result) {
	if err := s.post(context.Background(), encodedEvent{result: result}); err != nil {
		log.Debug().Uint64("seq", result.Seq).Err(err).Msg("session: dropped encode result")
	}
}

func (s *Session) applyEncoded(ctx context.Context, result ingest.Result) {
	s.untrack(result.Seq)
	if !result.OK() {
		log.Debug().Uint64("seq", result.Seq).Err(result.Err).Msg("session: encode failed")
		s.warn(ingest.WarningReadFailed)
		return
	}
	if _, err := s.merge(ctx, formstate.Update{formstate.FieldTraineeAvatar: result.DataURI}); err != nil {
		log.Error().Err(err).Msg("session: merge avatar")
	}
}

func (s *Session) merge(ctx context.Context, update formstate.Update) (formstate.State, error) {
	state, err := s.store.Merge(update)
	if err != nil {
		return s.store.Snapshot(), err
	}
	if err := s.publish(ctx); err != nil {
		log.Error().Err(err).Msg("session: render preview")
	}
	return state, nil
}

// publish projects, builds and renders the current snapshot.
func (s *Session) publish(ctx context.Context) error {
	state := s.store.Snapshot()
	view := preview.Build(state, s.projector.Project(state))

	s.version++
	frame := &Frame{Version: s.version, State: state, View: view}
	if s.renderer != nil {
		out, err := s.renderer.Render(ctx, view)
		if err != nil {
			return fmt.Errorf("session: render with %s: %w", s.renderer.Name(), err)
		}
		frame.Output = out
		frame.ContentType = s.renderer.ContentType()
	}
	s.frame.Store(frame)
	s.listener.FrameRendered(*frame)
	return nil
}

func (s *Session) warn(message string) {
	s.mu.Lock()
	s.warnings = append(s.warnings, message)
	if over := len(s.warnings) - s.keep; over > 0 {
		s.warnings = append([]string(nil), s.warnings[over:]...)
	}
	s.mu.Unlock()

	s.listener.Warned(message)
}

func (s *Session) track(task *ingest.Task) {
	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()
}

func (s *Session) untrack(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, task := range s.tasks {
		if task.Seq() == seq {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return
		}
	}
}
