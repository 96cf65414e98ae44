// Package optimizer hill-climbs a PWM toward the best separation of positive
// from negative sequences.
package optimizer

import (
	"fmt"
	"io"
	"log"

	"damo_go/encoder"
	"damo_go/evaluator"
	"damo_go/motif"
	"damo_go/scanner"
	"damo_go/updater"
)

// DefaultIterations caps a run when Options.Iterations is negative.
const DefaultIterations = 500

// DefaultLearningRates are tried largest first in every iteration.
var DefaultLearningRates = []float64{1.0, 0.55, 0.1}

// State names the phase of a run. Converged and Exhausted are terminal.
type State string

const (
	Scoring    State = "scoring"
	TryingRate State = "trying-rate"
	Accepted   State = "accepted"
	Converged  State = "converged"
	Exhausted  State = "exhausted"
)

// OptimizationState is the only value carried from one iteration to the next.
type OptimizationState struct {
	PWM    motif.PWM
	AUC    float64
	Scored []motif.LabeledScore
}

// Iteration records one pass of the loop.
type Iteration struct {
	Number        int
	State         State   // Accepted or Converged
	Rate          float64 // accepted rate, 0 when none was
	Tried         int     // rates evaluated
	AUC           float64 // AUC held at the end of the iteration
	PositiveSites int     // confusion zone of the accepted proposal
	NegativeSites int
}

// Options control a run.
type Options struct {
	// Iterations caps the loop; 0 returns the seed untouched and a negative
	// value selects DefaultIterations.
	Iterations    int
	LearningRates []float64
	Backend       scanner.Backend

	// Logger receives confusion-zone warnings and, with Verbose, progress.
	// Nil discards both.
	Logger  *log.Logger
	Verbose bool
}

// Result is the outcome of a completed run.
type Result struct {
	PWM         motif.PWM
	AUC         float64
	OriginalAUC float64
	State       State
	Iterations  int // completed iterations
	Trace       []Iteration
	Initial     []motif.LabeledScore
	Final       []motif.LabeledScore
}

// Optimizer owns the scanning pipeline for one positive/negative set.
type Optimizer struct {
	positives []encoder.StrandPair
	negatives []encoder.StrandPair
	scanner   scanner.Scanner
	rates     []float64
	maxIter   int
	logger    *log.Logger
	verbose   bool
}

// New prepares an optimizer over already encoded sequences.
func New(positives, negatives []encoder.StrandPair, opts Options) (*Optimizer, error) {
	if len(positives) == 0 || len(negatives) == 0 {
		return nil, &motif.DegenerateLabelError{Positives: len(positives), Negatives: len(negatives)}
	}
	rates := opts.LearningRates
	if len(rates) == 0 {
		rates = DefaultLearningRates
	}
	for _, r := range rates {
		if !(r > 0) {
			return nil, fmt.Errorf("%w: %v", updater.ErrInvalidRate, r)
		}
	}
	maxIter := opts.Iterations
	if maxIter < 0 {
		maxIter = DefaultIterations
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Optimizer{
		positives: positives,
		negatives: negatives,
		scanner:   scanner.New(opts.Backend),
		rates:     append([]float64(nil), rates...),
		maxIter:   maxIter,
		logger:    logger,
		verbose:   opts.Verbose,
	}, nil
}

// score scans both sets with pwm and evaluates the separation.
func (o *Optimizer) score(pwm motif.PWM) (OptimizationState, error) {
	scored, err := o.scanner.ScoreLabeled(pwm, o.positives, o.negatives)
	if err != nil {
		return OptimizationState{}, err
	}
	ev, err := evaluator.EvaluateLabeled(scored)
	if err != nil {
		return OptimizationState{}, err
	}
	return OptimizationState{PWM: pwm, AUC: ev.AUC, Scored: scored}, nil
}

// Run optimizes seed. Any scanner, evaluator or updater failure aborts the
// run and is returned; no partial result is produced.
func (o *Optimizer) Run(seed motif.PWM) (Result, error) {
	if err := seed.CheckFinite("seed pwm"); err != nil {
		return Result{}, err
	}
	o.logf("%s seed pwm of length %d", Scoring, seed.Len())
	current, err := o.score(seed)
	if err != nil {
		return Result{}, fmt.Errorf("score seed: %w", err)
	}
	res := Result{
		OriginalAUC: current.AUC,
		Initial:     current.Scored,
		State:       Exhausted,
	}
	o.logf("seed AUC %.6f over %d positive and %d negative sequences", current.AUC, len(o.positives), len(o.negatives))

	for it := 0; it < o.maxIter; it++ {
		next, rec, err := o.step(current)
		if err != nil {
			return Result{}, fmt.Errorf("iteration %d: %w", it+1, err)
		}
		rec.Number = it + 1
		res.Trace = append(res.Trace, rec)
		res.Iterations = it + 1

		if rec.State == Converged {
			res.State = Converged
			o.logf("iteration %d: no learning rate improved AUC %.6f; converged", rec.Number, current.AUC)
			break
		}
		o.logf("iteration %d: rate %.2f raised AUC %.6f -> %.6f", rec.Number, rec.Rate, current.AUC, next.AUC)
		current = next
	}

	res.PWM = current.PWM
	res.AUC = current.AUC
	res.Final = current.Scored
	return res, nil
}

// step tries each learning rate in order against the iteration-start state
// and returns the first strictly improving state. On convergence it returns
// from unchanged.
func (o *Optimizer) step(from OptimizationState) (OptimizationState, Iteration, error) {
	rec := Iteration{State: Converged, AUC: from.AUC}
	for _, rate := range o.rates {
		rec.Tried++
		o.logf("%s %.2f", TryingRate, rate)
		prop, err := updater.Propose(from.Scored, rate, from.PWM)
		if err != nil {
			return from, rec, err
		}
		if w := prop.Warning(); w != nil {
			o.logger.Printf("Warning: rate %.2f: %v", rate, w)
		}
		if prop.PWM.Len() != from.PWM.Len() {
			return from, rec, fmt.Errorf("candidate length %d differs from %d", prop.PWM.Len(), from.PWM.Len())
		}
		cand, err := o.score(prop.PWM)
		if err != nil {
			return from, rec, err
		}
		if cand.AUC > from.AUC {
			rec.State = Accepted
			rec.Rate = rate
			rec.AUC = cand.AUC
			rec.PositiveSites = prop.PositiveSites
			rec.NegativeSites = prop.NegativeSites
			return cand, rec, nil
		}
	}
	return from, rec, nil
}

func (o *Optimizer) logf(format string, args ...interface{}) {
	if o.verbose {
		o.logger.Printf(format, args...)
	}
}

// Optimize encodes both sequence sets and runs the optimizer in one call.
func Optimize(positives, negatives []string, seed motif.PWM, opts Options) (Result, error) {
	o, err := New(encoder.PairAll(positives), encoder.PairAll(negatives), opts)
	if err != nil {
		return Result{}, err
	}
	return o.Run(seed)
}
