package prompt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-campcert/pkg/formstate"
	"github.com/goliatone/go-campcert/pkg/ingest"
)

// Sink receives answers as the user gives them. *session.Session satisfies it.
type Sink interface {
	ChangeFields(update formstate.Update) error
	SelectFile(file ingest.File) error
}

// Collect prompts for every field in form order. An empty avatar path skips
// the avatar.
func Collect(ctx context.Context, driver PromptDriver, camps []string, sink Sink) error {
	if driver == nil || sink == nil {
		return errors.New("prompt: driver and sink are required")
	}
	if len(camps) == 0 {
		camps = formstate.DefaultCamps()
	}

	for _, def := range formstate.Definitions() {
		var err error
		switch {
		case def.Key == formstate.FieldCampName:
			err = askCamp(ctx, driver, def, camps, sink)
		case def.Key == formstate.FieldTraineeAvatar:
			err = askAvatar(ctx, driver, def, sink)
		case def.Kind == formstate.KindInteger:
			err = askInteger(ctx, driver, def, sink)
		default:
			err = askString(ctx, driver, def, sink)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func askCamp(ctx context.Context, driver PromptDriver, def formstate.Definition, camps []string, sink Sink) error {
	idx, err := driver.Select(ctx, SelectConfig{
		Message: def.Label,
		Options: camps,
		Help:    def.RequiredMessage,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(camps) {
		return fmt.Errorf("prompt: camp selection %d out of range", idx)
	}
	return sink.ChangeFields(formstate.Update{def.Key: camps[idx]})
}

func askString(ctx context.Context, driver PromptDriver, def formstate.Definition, sink Sink) error {
	answer, err := driver.Input(ctx, InputConfig{Message: def.Label, Help: def.RequiredMessage})
	if err != nil {
		return err
	}
	return sink.ChangeFields(formstate.Update{def.Key: strings.TrimSpace(answer)})
}

// askInteger re-prompts until the answer is an integer inside the field's
// range. An empty answer leaves the field unset.
func askInteger(ctx context.Context, driver PromptDriver, def formstate.Definition, sink Sink) error {
	for {
		answer, err := driver.Input(ctx, InputConfig{Message: def.Label, Help: rangeHelp(def)})
		if err != nil {
			return err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return nil
		}
		n, convErr := strconv.Atoi(answer)
		if convErr == nil && (def.Range == nil || def.Range.Contains(n)) {
			return sink.ChangeFields(formstate.Update{def.Key: n})
		}
		if err := driver.Info(ctx, def.Label+": "+rangeHelp(def)); err != nil {
			return err
		}
	}
}

// askAvatar re-prompts while the chosen file fails the pre-check. Accepted
// files are handed to the sink, which encodes them asynchronously.
func askAvatar(ctx context.Context, driver PromptDriver, def formstate.Definition, sink Sink) error {
	for {
		answer, err := driver.Input(ctx, InputConfig{Message: def.Label + " (JPG/PNG path)", Help: def.RequiredMessage})
		if err != nil {
			return err
		}
		path := strings.TrimSpace(answer)
		if path == "" {
			return nil
		}

		file, err := ingest.OpenLocal(path)
		if err != nil {
			if err := driver.Info(ctx, ingest.WarningReadFailed); err != nil {
				return err
			}
			continue
		}
		candidate := ingest.PreCheck(file)
		if candidate.Accepted {
			return sink.SelectFile(file)
		}
		for _, warning := range candidate.Warnings() {
			if err := driver.Info(ctx, warning); err != nil {
				return err
			}
		}
	}
}

func rangeHelp(def formstate.Definition) string {
	if def.Range == nil {
		return "enter a whole number"
	}
	return fmt.Sprintf("enter a whole number between %d and %d", def.Range.Min, def.Range.Max)
}
