// Package metrics projects the three numeric form fields onto the labelled
// blocks shown at the bottom of the certificate.
package metrics

import "github.com/goliatone/go-campcert/pkg/formstate"

// Display labels, in block order.
const (
	LabelCheckInDays      = "打卡天数"
	LabelTotalTargetCount = "总目标数"
	LabelTotalPoints      = "总积分数"
)

// Metric is one labelled value block.
type Metric struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Metrics is the fixed-order projection: days, targets, points.
type Metrics [3]Metric

// Input captures the projector's inputs including whether each one is set.
type Input struct {
	CheckInDays      int
	HasCheckInDays   bool
	TotalTargetCount int
	HasTargetCount   bool
	TotalPoints      int
	HasTotalPoints   bool
}

// InputFrom extracts the projector inputs from a snapshot.
func InputFrom(state formstate.State) Input {
	var in Input
	in.CheckInDays, in.HasCheckInDays = state.CheckInDays()
	in.TotalTargetCount, in.HasTargetCount = state.TotalTargetCount()
	in.TotalPoints, in.HasTotalPoints = state.TotalPoints()
	return in
}

// Project maps inputs to metric blocks. Unset values display as 0.
func Project(in Input) Metrics {
	return Metrics{
		{Label: LabelCheckInDays, Value: valueOrZero(in.CheckInDays, in.HasCheckInDays)},
		{Label: LabelTotalTargetCount, Value: valueOrZero(in.TotalTargetCount, in.HasTargetCount)},
		{Label: LabelTotalPoints, Value: valueOrZero(in.TotalPoints, in.HasTotalPoints)},
	}
}

func valueOrZero(value int, ok bool) int {
	if !ok {
		return 0
	}
	return value
}

// Projector memoizes Project on exactly the three metric inputs. Changes to
// any other field reuse the previous result. Not safe for concurrent use.
type Projector struct {
	last         Input
	result       Metrics
	primed       bool
	computations int
}

// NewProjector returns an empty projector.
func NewProjector() *Projector {
	return &Projector{}
}

// Project returns the metrics for state, recomputing only when one of the
// three inputs changed since the previous call.
func (p *Projector) Project(state formstate.State) Metrics {
	in := InputFrom(state)
	if p.primed && in == p.last {
		return p.result
	}
	p.last = in
	p.result = Project(in)
	p.primed = true
	p.computations++
	return p.result
}

// Computations reports how many times the projection was recomputed.
func (p *Projector) Computations() int {
	return p.computations
}
