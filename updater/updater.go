// Package updater proposes a new PWM by contrasting the sites of positive and
// negative sequences that are ranked against each other.
package updater

import (
	"errors"
	"fmt"

	"damo_go/motif"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Pseudocount is added to every PFM cell before normalization.
const Pseudocount = 1e-4

var ErrInvalidRate = errors.New("learning rate must be positive")

// Proposal is a candidate PWM and the confusion zone it was built from.
type Proposal struct {
	PWM motif.PWM

	// [ZoneStart, ZoneEnd) in score-descending order; empty when
	// ZoneStart >= ZoneEnd.
	ZoneStart     int
	ZoneEnd       int
	PositiveSites int
	NegativeSites int
}

// Warning returns an EmptyConfusionZoneError when one side of the zone had
// no sites, or nil.
func (p Proposal) Warning() error {
	if p.PositiveSites == 0 || p.NegativeSites == 0 {
		return &motif.EmptyConfusionZoneError{Positives: p.PositiveSites, Negatives: p.NegativeSites}
	}
	return nil
}

// Zone returns the confusion zone of labels after a stable sort by
// descending score: from the best-ranked negative up to, not including, the
// position after the worst-ranked positive. order maps sorted positions to
// input indexes.
func Zone(labels []int, scores []float64) (order []int, start, end int, err error) {
	if len(labels) != len(scores) {
		return nil, 0, 0, fmt.Errorf("zone: %d labels but %d scores", len(labels), len(scores))
	}
	// ArgsortStable on the negated scores sorts descending while keeping
	// the input order of equal scores.
	neg := make([]float64, len(scores))
	for i, s := range scores {
		neg[i] = -s
	}
	order = make([]int, len(scores))
	floats.ArgsortStable(neg, order)

	start, end = -1, -1
	for i, idx := range order {
		switch labels[idx] {
		case int(motif.Negative):
			if start < 0 {
				start = i
			}
		case int(motif.Positive):
			end = i + 1
		default:
			return nil, 0, 0, fmt.Errorf("label %d at %d is neither 0 nor 1", labels[idx], idx)
		}
	}
	if start < 0 || end < 0 {
		nPos := 0
		for _, l := range labels {
			if l == int(motif.Positive) {
				nPos++
			}
		}
		return nil, 0, 0, &motif.DegenerateLabelError{Positives: nPos, Negatives: len(labels) - nPos}
	}
	return order, start, end, nil
}

// Propose builds current + rate·(log PFM(positive mix) − log PFM(negative mix)).
func Propose(scored []motif.LabeledScore, rate float64, current motif.PWM) (Proposal, error) {
	if !(rate > 0) {
		return Proposal{}, fmt.Errorf("%w: %v", ErrInvalidRate, rate)
	}
	length := current.Len()
	if length <= 0 {
		return Proposal{}, &motif.InputShapeError{What: "pwm", Motif: length}
	}

	labels, scores, sites := motif.Split(scored)
	order, start, end, err := Zone(labels, scores)
	if err != nil {
		return Proposal{}, err
	}

	var posMix, negMix []string
	for i := start; i < end; i++ {
		idx := order[i]
		if labels[idx] == int(motif.Positive) {
			posMix = append(posMix, sites[idx])
		} else {
			negMix = append(negMix, sites[idx])
		}
	}

	posLog := logPFM(posMix, length)
	negLog := logPFM(negMix, length)

	var step mat.Dense
	step.Sub(posLog.Matrix(), negLog.Matrix())
	step.Scale(rate, &step)
	var next mat.Dense
	next.Add(current.Matrix(), &step)

	candidate, err := motif.FromDense(&next)
	if err != nil {
		return Proposal{}, err
	}
	if err := candidate.CheckFinite("candidate pwm"); err != nil {
		return Proposal{}, err
	}
	return Proposal{
		PWM:           candidate,
		ZoneStart:     start,
		ZoneEnd:       end,
		PositiveSites: len(posMix),
		NegativeSites: len(negMix),
	}, nil
}

// logPFM counts sites, normalizes with the pseudocount, then normalizes a
// second time without one. The second pass is intentional and only
// re-rounds each row.
func logPFM(sites []string, length int) motif.PWM {
	pfm := motif.CountPFM(sites, length).Normalize(Pseudocount).Normalize(0)
	return pfm.LogPWM()
}
