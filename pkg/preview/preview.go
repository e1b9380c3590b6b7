// Package preview maps a form snapshot onto the certificate view model. Build
// is pure: the same snapshot and metrics always yield the same View.
package preview

import (
	"strconv"

	"github.com/goliatone/go-campcert/pkg/formstate"
	"github.com/goliatone/go-campcert/pkg/metrics"
)

// Placeholder is shown for unset camp and session values in the title.
const Placeholder = "--"

// Avatar is the image shown in the trainee slot. Src is empty when no avatar
// was selected.
type Avatar struct {
	Src         string `json:"src"`
	Placeholder bool   `json:"placeholder"`
}

// View is everything a renderer needs to draw the certificate.
type View struct {
	Title       string          `json:"title"`
	Avatar      Avatar          `json:"avatar"`
	TraineeName string          `json:"traineeName"`
	Metrics     metrics.Metrics `json:"metrics"`
}

// Build derives the view for a snapshot and its projected metrics.
func Build(state formstate.State, m metrics.Metrics) View {
	return View{
		Title:       Title(state),
		Avatar:      avatarFor(state),
		TraineeName: stringOr(state, formstate.FieldTraineeName, ""),
		Metrics:     m,
	}
}

// Title formats "21天<camp>第<session>期" with "--" for unset values.
func Title(state formstate.State) string {
	camp := stringOr(state, formstate.FieldCampName, Placeholder)
	session := Placeholder
	if n, ok := state.SessionNumber(); ok {
		session = strconv.Itoa(n)
	}
	return "21天" + camp + "第" + session + "期"
}

func avatarFor(state formstate.State) Avatar {
	src, _ := state.TraineeAvatar()
	if src == "" {
		return Avatar{Placeholder: true}
	}
	return Avatar{Src: src}
}

func stringOr(state formstate.State, key, fallback string) string {
	value, ok := state.String(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}
