// Package scanner finds the best-scoring motif occurrence of every sequence
// on either strand.
package scanner

import (
	"fmt"

	"damo_go/encoder"
	"damo_go/motif"
)

// Hit is the merged best of one original sequence.
type Hit struct {
	Score float64
	Site  motif.Site
}

// Scanner runs a PWM over strand pairs using Backend.
type Scanner struct {
	Backend Backend
}

// New returns a Scanner on b, or on Serial when b is nil.
func New(b Backend) Scanner {
	if b == nil {
		b = Serial{}
	}
	return Scanner{Backend: b}
}

// Scan returns one Hit per pair in input order. The reverse strand only wins
// when its score is strictly greater than the forward one.
func (s Scanner) Scan(pwm motif.PWM, pairs []encoder.StrandPair) ([]Hit, error) {
	l := pwm.Len()
	if l <= 0 {
		return nil, &motif.InputShapeError{What: "pwm", Motif: l}
	}
	if err := pwm.CheckFinite("pwm"); err != nil {
		return nil, err
	}
	backend := s.Backend
	if backend == nil {
		backend = Serial{}
	}

	bests, err := backend.Best(pwm, pairs)
	if err != nil {
		return nil, err
	}
	if len(bests) != len(pairs) {
		return nil, fmt.Errorf("%s backend returned %d results for %d sequences", backend.Name(), len(bests), len(pairs))
	}

	hits := make([]Hit, len(pairs))
	for i, pair := range pairs {
		strand, win := motif.Forward, bests[i].Forward
		if bests[i].Reverse.Score > bests[i].Forward.Score {
			strand, win = motif.Reverse, bests[i].Reverse
		}
		track := pair.Track(strand)
		hits[i] = Hit{
			Score: win.Score,
			Site: motif.Site{
				Seq:    track.Seq[win.Offset : win.Offset+l],
				Index:  pair.Index,
				Strand: strand,
				Offset: win.Offset,
			},
		}
	}
	return hits, nil
}

// ScoreLabeled scans positives then negatives and returns them as one
// labeled set, positives first, each collection in its input order.
func (s Scanner) ScoreLabeled(pwm motif.PWM, positives, negatives []encoder.StrandPair) ([]motif.LabeledScore, error) {
	pos, err := s.Scan(pwm, positives)
	if err != nil {
		return nil, fmt.Errorf("scan positives: %w", err)
	}
	neg, err := s.Scan(pwm, negatives)
	if err != nil {
		return nil, fmt.Errorf("scan negatives: %w", err)
	}
	scored := make([]motif.LabeledScore, 0, len(pos)+len(neg))
	for _, h := range pos {
		scored = append(scored, motif.LabeledScore{Score: h.Score, Site: h.Site, Label: motif.Positive})
	}
	for _, h := range neg {
		scored = append(scored, motif.LabeledScore{Score: h.Score, Site: h.Site, Label: motif.Negative})
	}
	return scored, nil
}
