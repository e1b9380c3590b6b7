package prompt_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-campcert/pkg/formstate"
	"github.com/goliatone/go-campcert/pkg/ingest"
	"github.com/goliatone/go-campcert/pkg/prompt"
	"github.com/goliatone/go-campcert/pkg/testsupport"
)

type stubDriver struct {
	inputs  []string
	selects []int
	infos   []string
	asked   []string
}

func (d *stubDriver) Input(_ context.Context, cfg prompt.InputConfig) (string, error) {
	d.asked = append(d.asked, cfg.Message)
	if len(d.inputs) == 0 {
		return "", errors.New("stub: no more inputs")
	}
	answer := d.inputs[0]
	d.inputs = d.inputs[1:]
	return answer, nil
}

func (d *stubDriver) Select(_ context.Context, cfg prompt.SelectConfig) (int, error) {
	d.asked = append(d.asked, cfg.Message)
	if len(d.selects) == 0 {
		return 0, errors.New("stub: no more selections")
	}
	idx := d.selects[0]
	d.selects = d.selects[1:]
	return idx, nil
}

func (d *stubDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

type recordingSink struct {
	updates []formstate.Update
	files   []ingest.File
}

func (s *recordingSink) ChangeFields(update formstate.Update) error {
	s.updates = append(s.updates, update)
	return nil
}

func (s *recordingSink) SelectFile(file ingest.File) error {
	s.files = append(s.files, file)
	return nil
}

func TestCollect_PushesEveryAnswerInFormOrder(t *testing.T) {
	avatar := testsupport.WriteTempFile(t, "me.png", testsupport.PNGBytes(t))
	driver := &stubDriver{
		selects: []int{1},
		inputs:  []string{"8", " Ada ", avatar, "21", "12", "88"},
	}
	sink := &recordingSink{}

	if err := prompt.Collect(context.Background(), driver, []string{"学习训练营", "写作训练营"}, sink); err != nil {
		t.Fatalf("collect: %v", err)
	}

	want := []formstate.Update{
		{formstate.FieldCampName: "写作训练营"},
		{formstate.FieldSessionNumber: 8},
		{formstate.FieldTraineeName: "Ada"},
		{formstate.FieldCheckInDays: 21},
		{formstate.FieldTotalTargetCount: 12},
		{formstate.FieldTotalPoints: 88},
	}
	if diff := cmp.Diff(want, sink.updates); diff != "" {
		t.Fatalf("updates mismatch (-want +got):\n%s", diff)
	}
	if len(sink.files) != 1 || sink.files[0].Type() != ingest.TypePNG {
		t.Fatalf("expected one png file, got %d", len(sink.files))
	}
	if len(driver.infos) != 0 {
		t.Fatalf("unexpected info lines %v", driver.infos)
	}
}

func TestCollect_RepromptsInvalidNumbers(t *testing.T) {
	driver := &stubDriver{
		selects: []int{0},
		inputs:  []string{"abc", "1000", "3", "Ada", "", "", "", ""},
	}
	sink := &recordingSink{}

	if err := prompt.Collect(context.Background(), driver, nil, sink); err != nil {
		t.Fatalf("collect: %v", err)
	}

	want := []string{
		"训练营期数: enter a whole number between 1 and 999",
		"训练营期数: enter a whole number between 1 and 999",
	}
	if diff := cmp.Diff(want, driver.infos); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if got := sink.updates[1][formstate.FieldSessionNumber]; got != 3 {
		t.Fatalf("expected session 3, got %v", got)
	}
	if len(sink.updates) != 3 {
		t.Fatalf("empty answers must leave fields unset, got %d updates", len(sink.updates))
	}
}

func TestCollect_RepromptsRejectedAvatar(t *testing.T) {
	gif := testsupport.WriteTempFile(t, "anim.gif", []byte("GIF89a"))
	jpg := testsupport.WriteTempFile(t, "me.jpg", testsupport.JPEGBytes(t))
	driver := &stubDriver{
		selects: []int{0},
		inputs:  []string{"", "Ada", gif, "/does/not/exist.png", jpg, "", "", ""},
	}
	sink := &recordingSink{}

	if err := prompt.Collect(context.Background(), driver, nil, sink); err != nil {
		t.Fatalf("collect: %v", err)
	}

	want := []string{ingest.WarningUnsupportedType, ingest.WarningReadFailed}
	if diff := cmp.Diff(want, driver.infos); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if len(sink.files) != 1 || sink.files[0].Type() != ingest.TypeJPEG {
		t.Fatalf("expected the jpeg to be selected")
	}
}

func TestCollect_PropagatesDriverErrors(t *testing.T) {
	driver := &stubDriver{}
	err := prompt.Collect(context.Background(), driver, nil, &recordingSink{})
	if err == nil {
		t.Fatalf("expected driver error")
	}
	if err := prompt.Collect(context.Background(), nil, nil, &recordingSink{}); err == nil {
		t.Fatalf("expected missing driver error")
	}
}
