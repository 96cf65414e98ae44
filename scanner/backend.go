package scanner

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"damo_go/encoder"
	"damo_go/motif"

	"gonum.org/v1/gonum/floats"
)

// Window is the best window of one track.
type Window struct {
	Score  float64
	Offset int
}

// PairBest holds the per-orientation bests of one StrandPair.
type PairBest struct {
	Forward Window
	Reverse Window
}

// Backend computes sliding-window correlations. Implementations must return
// exactly what Serial returns; they may only differ in how work is spread.
type Backend interface {
	Name() string
	Best(pwm motif.PWM, pairs []encoder.StrandPair) ([]PairBest, error)
}

// NewBackend resolves a backend by name. workers only applies to "parallel";
// zero means one per CPU.
func NewBackend(name string, workers int) (Backend, error) {
	switch name {
	case "", "serial":
		return Serial{}, nil
	case "parallel":
		return Parallel{Workers: workers}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want serial or parallel)", name)
	}
}

// bestWindow scores every start position of track. Each window is summed
// row by row in alphabet order and, within a row, by ascending position, so
// the result does not depend on which backend called it. Ties keep the
// leftmost window.
func bestWindow(pwm motif.PWM, track encoder.Track, index int) (Window, error) {
	l := pwm.Len()
	n := len(track.Seq)
	if l <= 0 {
		return Window{}, &motif.InputShapeError{What: "pwm", Motif: l}
	}
	if n < l {
		return Window{}, &motif.InputShapeError{What: fmt.Sprintf("sequence %d", index), Length: n, Motif: l}
	}

	var rows [4][]float64
	var x [4][]float64
	for b := 0; b < 4; b++ {
		rows[b] = pwm.Row(b)
		x[b] = track.OneHot.RawRowView(b)
	}

	best := Window{Score: math.Inf(-1), Offset: -1}
	for p := 0; p <= n-l; p++ {
		s := 0.0
		for b := 0; b < 4; b++ {
			s += floats.Dot(rows[b], x[b][p:p+l])
		}
		if best.Offset < 0 || s > best.Score {
			best = Window{Score: s, Offset: p}
		}
	}
	if math.IsNaN(best.Score) || math.IsInf(best.Score, 0) {
		return Window{}, &motif.NonFiniteScoreError{Where: fmt.Sprintf("score of sequence %d", index), Value: best.Score}
	}
	return best, nil
}

func bestPair(pwm motif.PWM, pair encoder.StrandPair) (PairBest, error) {
	fwd, err := bestWindow(pwm, pair.Forward, pair.Index)
	if err != nil {
		return PairBest{}, err
	}
	rev, err := bestWindow(pwm, pair.Reverse, pair.Index)
	if err != nil {
		return PairBest{}, err
	}
	return PairBest{Forward: fwd, Reverse: rev}, nil
}

// Serial scans pairs one after another on the calling goroutine.
type Serial struct{}

func (Serial) Name() string { return "serial" }

func (Serial) Best(pwm motif.PWM, pairs []encoder.StrandPair) ([]PairBest, error) {
	out := make([]PairBest, len(pairs))
	for i, pair := range pairs {
		pb, err := bestPair(pwm, pair)
		if err != nil {
			return nil, err
		}
		out[i] = pb
	}
	return out, nil
}

// Parallel spreads pairs over a pool of worker goroutines. Every pair is
// written to its own slot, so output order and values match Serial.
type Parallel struct {
	Workers int
}

func (Parallel) Name() string { return "parallel" }

func (p Parallel) Best(pwm motif.PWM, pairs []encoder.StrandPair) ([]PairBest, error) {
	numWorkers := p.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(pairs) {
		numWorkers = len(pairs)
	}

	out := make([]PairBest, len(pairs))
	errs := make([]error, len(pairs))
	jobs := make(chan int, numWorkers*2)

	var wg sync.WaitGroup

	// Worker pool
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i], errs[i] = bestPair(pwm, pairs[i])
			}
		}()
	}

	// Feed pairs
	for i := range pairs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// Report the first failing pair, as Serial would.
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
