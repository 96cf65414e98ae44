package motif

import "fmt"

// InputShapeError reports a motif or sequence whose dimensions cannot be
// scanned: a non-positive motif length, a sequence shorter than the motif,
// or a matrix that does not have one row per nucleotide.
type InputShapeError struct {
	What   string
	Length int
	Motif  int
}

func (e *InputShapeError) Error() string {
	if e.Motif <= 0 {
		return fmt.Sprintf("input shape: %s: motif length %d must be positive", e.What, e.Motif)
	}
	return fmt.Sprintf("input shape: %s has length %d, shorter than motif length %d", e.What, e.Length, e.Motif)
}

// DegenerateLabelError means one label class is empty, so AUC is undefined.
type DegenerateLabelError struct {
	Positives int
	Negatives int
}

func (e *DegenerateLabelError) Error() string {
	return fmt.Sprintf("degenerate labels: %d positive, %d negative; AUC needs both classes", e.Positives, e.Negatives)
}

// EmptyConfusionZoneError is a soft condition: an update had no misranked
// sites on one side and fell back to the pseudocount-only distribution.
// It is logged, never returned as a failure.
type EmptyConfusionZoneError struct {
	Positives int
	Negatives int
}

func (e *EmptyConfusionZoneError) Error() string {
	return fmt.Sprintf("confusion zone holds %d positive and %d negative sites; empty side uses pseudocounts only", e.Positives, e.Negatives)
}

// NonFiniteScoreError reports a NaN or infinite value in a score or matrix.
type NonFiniteScoreError struct {
	Where string
	Value float64
}

func (e *NonFiniteScoreError) Error() string {
	return fmt.Sprintf("non-finite value %v in %s", e.Value, e.Where)
}
