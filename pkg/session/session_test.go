package session_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-campcert/pkg/formstate"
	"github.com/goliatone/go-campcert/pkg/ingest"
	"github.com/goliatone/go-campcert/pkg/renderers/html"
	"github.com/goliatone/go-campcert/pkg/session"
	"github.com/goliatone/go-campcert/pkg/testsupport"
)

func startSession(t *testing.T, options ...session.Option) *session.Session {
	t.Helper()

	s, err := session.New(options...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		_ = s.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return s
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestSession_InitialFrame(t *testing.T) {
	s := startSession(t)

	frame := s.Frame()
	if frame.Version != 1 {
		t.Fatalf("expected initial frame version 1, got %d", frame.Version)
	}
	if frame.View.Title != "21天--第--期" {
		t.Fatalf("unexpected title %q", frame.View.Title)
	}
	if !frame.View.Avatar.Placeholder {
		t.Fatalf("expected placeholder avatar")
	}
}

func TestSession_ChangeFieldsMergesAndRenders(t *testing.T) {
	s := startSession(t)
	ctx := testContext(t)

	if err := s.ChangeFields(formstate.Update{formstate.FieldCampName: "学习训练营"}); err != nil {
		t.Fatalf("change fields: %v", err)
	}
	if err := s.ChangeFields(formstate.Update{formstate.FieldSessionNumber: "8"}); err != nil {
		t.Fatalf("change fields: %v", err)
	}
	if err := s.Sync(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}

	frame := s.Frame()
	if frame.View.Title != "21天学习训练营第8期" {
		t.Fatalf("unexpected title %q", frame.View.Title)
	}
	if frame.Version != 3 {
		t.Fatalf("expected one frame per merge, got version %d", frame.Version)
	}
	want := map[string]any{
		formstate.FieldCampName:      "学习训练营",
		formstate.FieldSessionNumber: 8,
	}
	if diff := cmp.Diff(want, s.Snapshot().Values()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestSession_ApplyRejectsBadValue(t *testing.T) {
	s := startSession(t, session.WithInitialValues(formstate.Update{formstate.FieldTotalPoints: 5}))
	ctx := testContext(t)

	_, err := s.Apply(ctx, formstate.Update{
		formstate.FieldTraineeName:   "Ada",
		formstate.FieldSessionNumber: "eight",
	})
	var fieldErr *formstate.FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected field error, got %v", err)
	}
	if fieldErr.Field != formstate.FieldSessionNumber {
		t.Fatalf("unexpected field %q", fieldErr.Field)
	}
	if s.Snapshot().Has(formstate.FieldTraineeName) {
		t.Fatalf("rejected update leaked into state")
	}
	if got, _ := s.Snapshot().TotalPoints(); got != 5 {
		t.Fatalf("expected initial value kept, got %d", got)
	}
}

func TestSession_DropsNonFieldKeys(t *testing.T) {
	s := startSession(t)
	ctx := testContext(t)

	state, err := s.Apply(ctx, formstate.Update{
		formstate.AvatarUploadKey:  []string{"a.jpg"},
		formstate.FieldTraineeName: "Ada",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if state.Has(formstate.AvatarUploadKey) {
		t.Fatalf("upload widget key entered the state")
	}
	if name, _ := state.TraineeName(); name != "Ada" {
		t.Fatalf("unexpected name %q", name)
	}
}

func TestSession_JPEGBecomesAvatar(t *testing.T) {
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	s := startSession(t, session.WithRenderer(renderer))
	ctx := testContext(t)

	file := ingest.NewMemoryFile("me.jpg", ingest.TypeJPEG, testsupport.JPEGBytes(t))
	if err := s.SelectFile(file); err != nil {
		t.Fatalf("select file: %v", err)
	}
	if err := s.Settle(ctx); err != nil {
		t.Fatalf("settle: %v", err)
	}

	avatar, _ := s.Snapshot().TraineeAvatar()
	if !strings.HasPrefix(avatar, "data:image/jpeg;base64,") {
		t.Fatalf("expected jpeg data uri, got %q", avatar)
	}
	frame := s.Frame()
	if frame.View.Avatar.Placeholder {
		t.Fatalf("expected avatar instead of placeholder")
	}
	if !strings.Contains(string(frame.Output), `src="`+avatar+`"`) {
		t.Fatalf("rendered output does not show the avatar")
	}
	if strings.Contains(string(frame.Output), "avatar-placeholder") {
		t.Fatalf("placeholder still rendered")
	}
	if frame.ContentType != renderer.ContentType() {
		t.Fatalf("unexpected content type %q", frame.ContentType)
	}
}

func TestSession_RejectedFileLeavesStateUnchanged(t *testing.T) {
	var warned []string
	s := startSession(t, session.WithListener(session.ListenerFuncs{
		OnWarning: func(message string) { warned = append(warned, message) },
	}))
	ctx := testContext(t)

	big := make([]byte, ingest.MaxSize)
	candidate, err := s.Select(ctx, ingest.NewMemoryFile("anim.gif", "image/gif", big))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if candidate.Accepted {
		t.Fatalf("gif must be rejected")
	}
	if err := s.Settle(ctx); err != nil {
		t.Fatalf("settle: %v", err)
	}

	want := []string{ingest.WarningUnsupportedType, ingest.WarningTooLarge}
	if diff := cmp.Diff(want, s.Warnings()); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, warned); diff != "" {
		t.Fatalf("listener warnings mismatch (-want +got):\n%s", diff)
	}
	if s.Snapshot().Has(formstate.FieldTraineeAvatar) {
		t.Fatalf("rejected file changed the avatar")
	}
	if s.Frame().Version != 1 {
		t.Fatalf("rejected file triggered a render")
	}
}

func TestSession_EncodeFailureWarnsAndKeepsAvatar(t *testing.T) {
	s := startSession(t,
		session.WithInitialValues(formstate.Update{formstate.FieldTraineeAvatar: "data:image/png;base64,AAAA"}),
		session.WithEncoder(func(context.Context, ingest.File) (string, error) {
			return "", errors.New("disk on fire")
		}),
	)
	ctx := testContext(t)

	if err := s.SelectFile(ingest.NewMemoryFile("me.png", ingest.TypePNG, []byte("png"))); err != nil {
		t.Fatalf("select file: %v", err)
	}
	if err := s.Settle(ctx); err != nil {
		t.Fatalf("settle: %v", err)
	}

	if diff := cmp.Diff([]string{ingest.WarningReadFailed}, s.Warnings()); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
	if avatar, _ := s.Snapshot().TraineeAvatar(); avatar != "data:image/png;base64,AAAA" {
		t.Fatalf("avatar changed to %q", avatar)
	}
}

func TestSession_AvatarMergeDoesNotRecomputeMetrics(t *testing.T) {
	s := startSession(t)
	ctx := testContext(t)

	if _, err := s.Apply(ctx, formstate.Update{formstate.FieldTotalTargetCount: 5}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	before := s.Computations()

	if _, err := s.Apply(ctx, formstate.Update{formstate.FieldTraineeName: "Ada"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := s.SelectFile(ingest.NewMemoryFile("me.png", ingest.TypePNG, testsupport.PNGBytes(t))); err != nil {
		t.Fatalf("select file: %v", err)
	}
	if err := s.Settle(ctx); err != nil {
		t.Fatalf("settle: %v", err)
	}

	if !s.Snapshot().Has(formstate.FieldTraineeAvatar) {
		t.Fatalf("expected avatar to be set")
	}
	if got := s.Computations(); got != before {
		t.Fatalf("metrics recomputed: before %d after %d", before, got)
	}
	if got := s.Frame().View.Metrics[1].Value; got != 5 {
		t.Fatalf("unexpected target count %d", got)
	}
}

func TestSession_LastCompletedEncodeWins(t *testing.T) {
	gates := map[string]chan struct{}{
		"first.png":  make(chan struct{}),
		"second.png": make(chan struct{}),
	}
	encoder := func(ctx context.Context, file ingest.File) (string, error) {
		select {
		case <-gates[file.Name()]:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		return ingest.DataURI(file.Type(), []byte(file.Name())), nil
	}

	frames := make(chan session.Frame, 16)
	s := startSession(t,
		session.WithEncoder(encoder),
		session.WithListener(session.ListenerFuncs{
			OnFrame: func(f session.Frame) {
				select {
				case frames <- f:
				default:
				}
			},
		}),
	)
	ctx := testContext(t)

	first := ingest.NewMemoryFile("first.png", ingest.TypePNG, []byte("a"))
	second := ingest.NewMemoryFile("second.png", ingest.TypePNG, []byte("b"))
	for _, f := range []ingest.File{first, second} {
		if _, err := s.Select(ctx, f); err != nil {
			t.Fatalf("select: %v", err)
		}
	}

	secondURI := ingest.DataURI(ingest.TypePNG, []byte("second.png"))
	firstURI := ingest.DataURI(ingest.TypePNG, []byte("first.png"))

	close(gates["second.png"])
	waitForAvatar(t, frames, secondURI)

	close(gates["first.png"])
	if err := s.Settle(ctx); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if avatar, _ := s.Snapshot().TraineeAvatar(); avatar != firstURI {
		t.Fatalf("expected the later completion to win, got %q", avatar)
	}
}

func TestSession_PostAfterStop(t *testing.T) {
	s, err := session.New()
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if err := s.ChangeFields(formstate.Update{formstate.FieldTraineeName: "Ada"}); !errors.Is(err, session.ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	if err := s.Run(context.Background()); err == nil {
		t.Fatalf("expected second Run to fail")
	}
}

func waitForAvatar(t *testing.T, frames <-chan session.Frame, want string) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case f := <-frames:
			if f.View.Avatar.Src == want {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for avatar %q", want)
		}
	}
}

func TestSession_PostAfterStopWithRoomInQueue(t *testing.T) {
	s, err := session.New(session.WithQueueSize(512))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	<-done

	for i := 0; i < 256; i++ {
		if err := s.ChangeFields(formstate.Update{formstate.FieldTotalPoints: i % 100}); !errors.Is(err, session.ErrStopped) {
			t.Fatalf("post %d: expected ErrStopped, got %v", i, err)
		}
		if err := s.SelectFile(ingest.NewMemoryFile("a.png", ingest.TypePNG, []byte("png"))); !errors.Is(err, session.ErrStopped) {
			t.Fatalf("select %d: expected ErrStopped, got %v", i, err)
		}
	}
}
