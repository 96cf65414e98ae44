// Package evaluator measures how well scores separate positive from negative
// sequences.
package evaluator

import (
	"fmt"
	"math"

	"damo_go/motif"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// Evaluation is the AUC of one scoring pass together with the labels and
// scores it was computed from, both in their original order.
type Evaluation struct {
	AUC    float64
	Labels []int
	Scores []float64
}

// Evaluate returns the probability that a random positive (label 1) scores
// above a random negative (label 0), with ties worth half.
func Evaluate(scores []float64, labels []int) (Evaluation, error) {
	if len(scores) != len(labels) {
		return Evaluation{}, fmt.Errorf("evaluate: %d scores but %d labels", len(scores), len(labels))
	}
	tpr, fpr, err := ROC(scores, labels)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{
		AUC:    integrate.Trapezoidal(fpr, tpr),
		Labels: append([]int(nil), labels...),
		Scores: append([]float64(nil), scores...),
	}, nil
}

// EvaluateLabeled is Evaluate over a labeled score set.
func EvaluateLabeled(scored []motif.LabeledScore) (Evaluation, error) {
	labels, scores, _ := motif.Split(scored)
	return Evaluate(scores, labels)
}

// ROC returns the true and false positive rates at every distinct score
// cutoff, ordered by increasing false positive rate.
func ROC(scores []float64, labels []int) (tpr, fpr []float64, err error) {
	var nPos, nNeg int
	y := make([]float64, len(scores))
	classes := make([]bool, len(labels))
	for i, v := range scores {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, &motif.NonFiniteScoreError{Where: fmt.Sprintf("score %d", i), Value: v}
		}
		y[i] = v
		switch labels[i] {
		case int(motif.Positive):
			classes[i] = true
			nPos++
		case int(motif.Negative):
			nNeg++
		default:
			return nil, nil, fmt.Errorf("label %d at %d is neither 0 nor 1", labels[i], i)
		}
	}
	if nPos == 0 || nNeg == 0 {
		return nil, nil, &motif.DegenerateLabelError{Positives: nPos, Negatives: nNeg}
	}

	stat.SortWeightedLabeled(y, classes, nil)
	tpr, fpr, _ = stat.ROC(nil, y, classes, nil)
	return tpr, fpr, nil
}

// Summary describes one class of scores.
type Summary struct {
	N      int
	Mean   float64
	StdDev float64
}

// Summarize returns per-class score summaries, positives first.
func Summarize(scored []motif.LabeledScore) (pos, neg Summary) {
	var ps, ns []float64
	for _, s := range scored {
		if s.Label == motif.Positive {
			ps = append(ps, s.Score)
		} else {
			ns = append(ns, s.Score)
		}
	}
	return summarize(ps), summarize(ns)
}

func summarize(xs []float64) Summary {
	s := Summary{N: len(xs)}
	if len(xs) > 0 {
		s.Mean = stat.Mean(xs, nil)
	}
	if len(xs) > 1 {
		s.StdDev = stat.StdDev(xs, nil)
	}
	return s
}
