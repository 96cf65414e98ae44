package optimizer

import (
	"bytes"
	"errors"
	"log"
	"math/rand/v2"
	"strings"
	"testing"

	"damo_go/encoder"
	"damo_go/motif"
	"damo_go/scanner"
)

func acgtPWM(t *testing.T) motif.PWM {
	t.Helper()
	p, err := motif.NewPWM([][]float64{
		{2, -2, -2, -2},
		{-2, 2, -2, -2},
		{-2, -2, 2, -2},
		{-2, -2, -2, 2},
	})
	if err != nil {
		t.Fatalf("new pwm: %v", err)
	}
	return p
}

// cPWM is a one-column motif that prefers C, the wrong base for pairsFixture.
func cPWM(t *testing.T) motif.PWM {
	t.Helper()
	p, err := motif.NewPWM([][]float64{{0}, {1}, {0}, {0}})
	if err != nil {
		t.Fatalf("new pwm: %v", err)
	}
	return p
}

func TestExampleScenarioConvergesImmediately(t *testing.T) {
	var logs bytes.Buffer
	seed := acgtPWM(t)
	res, err := Optimize(
		[]string{"AAAACGTAAA", "TTTACGTTTT"},
		[]string{"GGGGGGGGGG", "CCCCCCCCCC"},
		seed,
		Options{Iterations: DefaultIterations, Logger: log.New(&logs, "", 0)},
	)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if res.OriginalAUC != 1 || res.AUC != 1 {
		t.Fatalf("AUC %v -> %v, want 1 -> 1", res.OriginalAUC, res.AUC)
	}
	if res.State != Converged || res.Iterations != 1 {
		t.Fatalf("state %s after %d iterations", res.State, res.Iterations)
	}
	if !res.PWM.Equal(seed) {
		t.Fatalf("pwm changed:\n%s", res.PWM.Format())
	}
	if len(res.Trace) != 1 || res.Trace[0].Tried != len(DefaultLearningRates) {
		t.Fatalf("unexpected trace %+v", res.Trace)
	}
	if !strings.Contains(logs.String(), "Warning") {
		t.Fatalf("expected an empty confusion zone warning, got %q", logs.String())
	}
}

func TestZeroIterationsReturnsSeed(t *testing.T) {
	seed := cPWM(t)
	res, err := Optimize([]string{"AA", "AT"}, []string{"CC", "CG"}, seed, Options{Iterations: 0})
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if !res.PWM.Equal(seed) {
		t.Fatal("pwm should be bit-identical to the seed")
	}
	if res.AUC != res.OriginalAUC {
		t.Fatalf("AUC before %v after %v", res.OriginalAUC, res.AUC)
	}
	if res.State != Exhausted || res.Iterations != 0 || len(res.Trace) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestAcceptThenConverge(t *testing.T) {
	seed := cPWM(t)
	res, err := Optimize([]string{"AA", "AT"}, []string{"CC", "CG"}, seed, Options{Iterations: 10})
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if res.OriginalAUC != 0 || res.AUC != 1 {
		t.Fatalf("AUC %v -> %v, want 0 -> 1", res.OriginalAUC, res.AUC)
	}
	if res.State != Converged || res.Iterations != 2 {
		t.Fatalf("state %s after %d iterations", res.State, res.Iterations)
	}
	first := res.Trace[0]
	if first.State != Accepted || first.Rate != 1.0 || first.Tried != 1 {
		t.Fatalf("unexpected first iteration %+v", first)
	}
	if first.PositiveSites != 2 || first.NegativeSites != 2 {
		t.Fatalf("unexpected confusion zone %+v", first)
	}
	if res.Trace[1].State != Converged || res.Trace[1].AUC != 1 {
		t.Fatalf("unexpected second iteration %+v", res.Trace[1])
	}
	if res.PWM.At(0, 0) <= res.PWM.At(1, 0) {
		t.Fatalf("A should now outscore C:\n%s", res.PWM.Format())
	}
	if res.PWM.Len() != seed.Len() {
		t.Fatalf("length changed to %d", res.PWM.Len())
	}
}

func TestIterationCapExhausts(t *testing.T) {
	res, err := Optimize([]string{"AA", "AT"}, []string{"CC", "CG"}, cPWM(t), Options{Iterations: 1})
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if res.State != Exhausted || res.Iterations != 1 || res.AUC != 1 {
		t.Fatalf("unexpected result state=%s iterations=%d auc=%v", res.State, res.Iterations, res.AUC)
	}
}

func TestIdenticalSetsConverge(t *testing.T) {
	seqs := []string{"ACGTTGCA", "GGGTACCC", "TTTTAAAA", "CAGTCAGT"}
	seed := acgtPWM(t)
	res, err := Optimize(seqs, seqs, seed, Options{Iterations: 50})
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if res.OriginalAUC != 0.5 || res.AUC != 0.5 {
		t.Fatalf("AUC %v -> %v, want 0.5", res.OriginalAUC, res.AUC)
	}
	if res.State != Converged || res.Iterations != 1 {
		t.Fatalf("state %s after %d iterations", res.State, res.Iterations)
	}
	if !res.PWM.Equal(seed) {
		t.Fatal("pwm should be unchanged on convergence")
	}
}

func plantedSets(r *rand.Rand, n, length int, site string) (pos, neg []string) {
	randSeq := func() []byte {
		b := make([]byte, length)
		for i := range b {
			b[i] = motif.Alphabet[r.IntN(4)]
		}
		return b
	}
	for i := 0; i < n; i++ {
		p := randSeq()
		// Plant in most positives, mutating one base half the time.
		if r.IntN(5) > 0 {
			off := r.IntN(length - len(site) + 1)
			copy(p[off:], site)
			if r.IntN(2) == 0 {
				p[off+r.IntN(len(site))] = motif.Alphabet[r.IntN(4)]
			}
		}
		pos = append(pos, string(p))
		neg = append(neg, string(randSeq()))
	}
	return pos, neg
}

func TestMonotonicAUCAndFixedLength(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 1))
	pos, neg := plantedSets(r, 60, 40, "TGACTCA")

	seed, err := motif.NewPWM([][]float64{
		{-1.4, -1.4, 0.2, -1.4, -1.4, -1.4, 0.2},
		{-1.4, -1.4, -1.4, 0.2, -1.4, 0.2, -1.4},
		{-1.4, 0.2, -1.4, -1.4, -1.4, -1.4, -1.4},
		{0.2, -1.4, -1.4, -1.4, 0.2, -1.4, -1.4},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := Optimize(pos, neg, seed, Options{Iterations: 25, Backend: scanner.Parallel{Workers: 4}})
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if res.AUC < res.OriginalAUC {
		t.Fatalf("AUC fell from %v to %v", res.OriginalAUC, res.AUC)
	}
	prev := res.OriginalAUC
	for _, it := range res.Trace {
		switch it.State {
		case Accepted:
			if !(it.AUC > prev) {
				t.Fatalf("iteration %d accepted AUC %v not above %v", it.Number, it.AUC, prev)
			}
			prev = it.AUC
		case Converged:
			if it.AUC != prev {
				t.Fatalf("converged iteration changed AUC %v -> %v", prev, it.AUC)
			}
		default:
			t.Fatalf("unexpected state %s", it.State)
		}
	}
	if prev != res.AUC {
		t.Fatalf("final AUC %v does not match trace %v", res.AUC, prev)
	}
	if res.PWM.Len() != seed.Len() {
		t.Fatalf("length changed to %d", res.PWM.Len())
	}
	if res.State == Exhausted && res.Iterations != 25 {
		t.Fatalf("exhausted after %d iterations", res.Iterations)
	}

	// The serial backend must take the exact same path.
	serial, err := Optimize(pos, neg, seed, Options{Iterations: 25, Backend: scanner.Serial{}})
	if err != nil {
		t.Fatalf("serial optimize: %v", err)
	}
	if !serial.PWM.Equal(res.PWM) || serial.AUC != res.AUC || serial.Iterations != res.Iterations {
		t.Fatal("serial and parallel backends diverged")
	}
}

func TestErrorsPropagate(t *testing.T) {
	_, err := Optimize([]string{"AAAACGTAAA"}, []string{"GG"}, acgtPWM(t), Options{Iterations: 5})
	var shape *motif.InputShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("expected InputShapeError, got %v", err)
	}

	_, err = Optimize([]string{"AAAACGTAAA"}, nil, acgtPWM(t), Options{})
	var deg *motif.DegenerateLabelError
	if !errors.As(err, &deg) {
		t.Fatalf("expected DegenerateLabelError, got %v", err)
	}

	_, err = New(encoder.PairAll([]string{"ACGT"}), encoder.PairAll([]string{"TTTT"}), Options{LearningRates: []float64{1, 0}})
	if err == nil {
		t.Fatal("expected error for zero learning rate")
	}
}

func TestVerboseLogging(t *testing.T) {
	var logs bytes.Buffer
	_, err := Optimize([]string{"AA", "AT"}, []string{"CC", "CG"}, cPWM(t), Options{
		Iterations: 3,
		Logger:     log.New(&logs, "", 0),
		Verbose:    true,
	})
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	out := logs.String()
	for _, want := range []string{"seed AUC", "iteration 1: rate 1.00", "converged"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log missing %q:\n%s", want, out)
		}
	}
}
