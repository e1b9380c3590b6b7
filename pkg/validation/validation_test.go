package validation_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-campcert/pkg/formstate"
	"github.com/goliatone/go-campcert/pkg/testsupport"
	"github.com/goliatone/go-campcert/pkg/validation"
)

func TestValidate_CompleteFormIsValid(t *testing.T) {
	v := validation.New(nil)
	result := v.Validate(testsupport.MustState(t, testsupport.FullValues()))
	if !result.Valid {
		t.Fatalf("expected valid form, got %+v", result.Issues)
	}
}

func TestValidate_EmptyFormReportsRequiredMessages(t *testing.T) {
	v := validation.New(nil)
	result := v.Validate(formstate.State{})
	if result.Valid {
		t.Fatalf("expected invalid result")
	}

	var got []string
	for _, issue := range result.Issues {
		got = append(got, issue.Field+": "+issue.Message)
	}
	want := []string{
		"campName: please select a camp",
		"sessionNumber: please enter the session number",
		"traineeName: please enter the trainee name",
		"traineeAvatar: please upload the trainee avatar",
		"checkInDays: please enter the check-in days",
		"totalTargetCount: please enter the total target count",
		"totalPoints: please enter the total points",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_RangeAndEnumViolations(t *testing.T) {
	values := testsupport.FullValues()
	values[formstate.FieldCheckInDays] = 22
	values[formstate.FieldSessionNumber] = 0
	values[formstate.FieldCampName] = "unknown camp"
	values[formstate.FieldTraineeName] = "   "

	result := validation.New(nil).Validate(testsupport.MustState(t, values))
	if result.Valid {
		t.Fatalf("expected invalid result")
	}

	var fields []string
	for _, issue := range result.Issues {
		if issue.Message == "" {
			t.Fatalf("issue without message: %+v", issue)
		}
		fields = append(fields, issue.Field)
	}
	want := []string{
		formstate.FieldCampName,
		formstate.FieldSessionNumber,
		formstate.FieldTraineeName,
		formstate.FieldCheckInDays,
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_CustomCamps(t *testing.T) {
	values := testsupport.FullValues()
	values[formstate.FieldCampName] = "写作训练营"

	if result := validation.New([]string{"写作训练营"}).Validate(testsupport.MustState(t, values)); !result.Valid {
		t.Fatalf("expected custom camp accepted, got %+v", result.Issues)
	}
	if result := validation.New(nil).Validate(testsupport.MustState(t, values)); result.Valid {
		t.Fatalf("expected default camp list to reject %q", values[formstate.FieldCampName])
	}
}

func TestSchema_DeclaresEveryField(t *testing.T) {
	schema := validation.Schema(nil)
	for _, def := range formstate.Definitions() {
		if _, ok := schema.Properties[def.Key]; !ok {
			t.Fatalf("schema missing property %q", def.Key)
		}
	}
	if len(schema.Required) != len(formstate.Definitions()) {
		t.Fatalf("expected every field required, got %v", schema.Required)
	}
}
