package scanner

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"damo_go/encoder"
	"damo_go/motif"
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

func randomSeq(r *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = motif.Alphabet[r.IntN(4)]
	}
	return string(b)
}

func TestScanFindsBestSite(t *testing.T) {
	pairs := encoder.PairAll([]string{"AAAACGTAAA", "GGGGGGGGGG"})
	hits, err := New(nil).Scan(acgtPWM(t), pairs)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if hits[0].Score != 8 || hits[0].Site.Seq != "ACGT" || hits[0].Site.Offset != 3 {
		t.Fatalf("unexpected hit %+v", hits[0])
	}
	// ACGT is its own reverse complement, so the forward strand keeps the tie.
	if hits[0].Site.Strand != motif.Forward {
		t.Fatalf("tie should resolve to forward, got %v", hits[0].Site.Strand)
	}
	// GGGG scores -2-2+2-2 on the forward strand; CCCC on the reverse scores -2+2-2-2.
	if hits[1].Score != -4 || hits[1].Site.Index != 1 {
		t.Fatalf("unexpected hit %+v", hits[1])
	}
}

func TestScanPicksReverseWhenStrictlyBetter(t *testing.T) {
	p, _ := motif.NewPWM([][]float64{
		{1, 1, 1},
		{0, 0, 0},
		{0, 0, 0},
		{0, 0, 0},
	})
	hits, err := New(nil).Scan(p, encoder.PairAll([]string{"TTTTC"}))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	h := hits[0]
	if h.Site.Strand != motif.Reverse || h.Score != 3 || h.Site.Seq != "AAA" || h.Site.Offset != 1 {
		t.Fatalf("unexpected hit %+v", h)
	}
}

func TestScanSequenceEqualToMotifLength(t *testing.T) {
	hits, err := New(nil).Scan(acgtPWM(t), encoder.PairAll([]string{"TTTT"}))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if hits[0].Site.Offset != 0 || len(hits[0].Site.Seq) != 4 {
		t.Fatalf("unexpected hit %+v", hits[0])
	}
}

func TestScanShortSequence(t *testing.T) {
	_, err := New(nil).Scan(acgtPWM(t), encoder.PairAll([]string{"ACGTA", "ACG"}))
	var shape *motif.InputShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("expected InputShapeError, got %v", err)
	}
	if shape.Length != 3 || shape.Motif != 4 {
		t.Fatalf("unexpected shape error %+v", shape)
	}
}

func TestScanNonFinitePWM(t *testing.T) {
	p, _ := motif.NewPWM([][]float64{{math.NaN()}, {0}, {0}, {0}})
	_, err := New(nil).Scan(p, encoder.PairAll([]string{"ACGT"}))
	var nf *motif.NonFiniteScoreError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NonFiniteScoreError, got %v", err)
	}
}

func TestStrandSymmetry(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	rows := make([][]float64, 4)
	for b := range rows {
		rows[b] = make([]float64, 6)
		for j := range rows[b] {
			rows[b][j] = r.NormFloat64()
		}
	}
	pwm, err := motif.NewPWM(rows)
	if err != nil {
		t.Fatalf("new pwm: %v", err)
	}
	rc := pwm.ReverseComplement()

	for i := 0; i < 50; i++ {
		pair := encoder.NewPair(i, randomSeq(r, 6+r.IntN(30)))
		fwd, err := bestWindow(pwm, pair.Forward, i)
		if err != nil {
			t.Fatalf("forward: %v", err)
		}
		rev, err := bestWindow(rc, pair.Reverse, i)
		if err != nil {
			t.Fatalf("reverse: %v", err)
		}
		if math.Abs(fwd.Score-rev.Score) > 1e-12 {
			t.Fatalf("sequence %d: forward %v vs reverse-complement %v", i, fwd.Score, rev.Score)
		}
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	seqs := make([]string, 200)
	for i := range seqs {
		seqs[i] = randomSeq(r, 20+r.IntN(40))
	}
	pairs := encoder.PairAll(seqs)
	pwm := acgtPWM(t)

	serial, err := New(Serial{}).Scan(pwm, pairs)
	if err != nil {
		t.Fatalf("serial: %v", err)
	}
	for _, workers := range []int{0, 1, 3, 16} {
		parallel, err := New(Parallel{Workers: workers}).Scan(pwm, pairs)
		if err != nil {
			t.Fatalf("parallel(%d): %v", workers, err)
		}
		for i := range serial {
			if serial[i] != parallel[i] {
				t.Fatalf("workers=%d sequence %d: serial %+v parallel %+v", workers, i, serial[i], parallel[i])
			}
		}
	}
}

func TestParallelReportsError(t *testing.T) {
	_, err := New(Parallel{Workers: 4}).Scan(acgtPWM(t), encoder.PairAll([]string{"ACGTACGT", "AC", "ACGT"}))
	var shape *motif.InputShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("expected InputShapeError, got %v", err)
	}
}

func TestScoreLabeled(t *testing.T) {
	pos := encoder.PairAll([]string{"AAAACGTAAA", "TTTACGTTTT"})
	neg := encoder.PairAll([]string{"GGGGGGGGGG"})
	scored, err := New(nil).ScoreLabeled(acgtPWM(t), pos, neg)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if len(scored) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(scored))
	}
	if scored[0].Label != motif.Positive || scored[1].Label != motif.Positive || scored[2].Label != motif.Negative {
		t.Fatalf("unexpected labels %+v", scored)
	}
	if scored[2].Site.Index != 0 {
		t.Fatalf("negative index should restart at 0, got %d", scored[2].Site.Index)
	}
}

func TestNewBackend(t *testing.T) {
	for _, name := range []string{"", "serial", "parallel"} {
		if _, err := NewBackend(name, 2); err != nil {
			t.Fatalf("backend %q: %v", name, err)
		}
	}
	if _, err := NewBackend("cuda", 0); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
