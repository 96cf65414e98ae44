package encoder

import (
	"testing"

	"damo_go/motif"
)

func TestOneHot(t *testing.T) {
	m := OneHot("ACGTN")
	r, c := m.Dims()
	if r != 4 || c != 5 {
		t.Fatalf("dims %dx%d", r, c)
	}
	for i := 0; i < 4; i++ {
		for b := 0; b < 4; b++ {
			want := 0.0
			if b == i {
				want = 1
			}
			if m.At(b, i) != want {
				t.Fatalf("onehot[%d][%d] = %v, want %v", b, i, m.At(b, i), want)
			}
		}
	}
	for b := 0; b < 4; b++ {
		if m.At(b, 4) != 0 {
			t.Fatalf("N column should be zero")
		}
	}
	if OneHot("") != nil {
		t.Fatal("empty sequence should encode to nil")
	}
}

func TestNewPair(t *testing.T) {
	p := NewPair(3, "aaaacgtaaa")
	if p.Index != 3 {
		t.Fatalf("index %d", p.Index)
	}
	if p.Forward.Seq != "AAAACGTAAA" || p.Reverse.Seq != "TTTACGTTTT" {
		t.Fatalf("unexpected tracks %q %q", p.Forward.Seq, p.Reverse.Seq)
	}
	if p.Track(motif.Reverse).Seq != p.Reverse.Seq || p.Track(motif.Forward).Seq != p.Forward.Seq {
		t.Fatal("Track returned the wrong orientation")
	}
	if p.Len() != 10 {
		t.Fatalf("len %d", p.Len())
	}
	// T on the reverse strand at position 0.
	if p.Reverse.OneHot.At(3, 0) != 1 {
		t.Fatal("reverse track not encoded")
	}
}

func TestPairAllKeepsOrder(t *testing.T) {
	pairs := PairAll([]string{"AC", "GT", "TT"})
	for i, p := range pairs {
		if p.Index != i {
			t.Fatalf("pair %d has index %d", i, p.Index)
		}
	}
	if pairs[2].Reverse.Seq != "AA" {
		t.Fatalf("unexpected reverse %q", pairs[2].Reverse.Seq)
	}
}
