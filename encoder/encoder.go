// Package encoder turns nucleotide strings into the 4×N indicator matrices
// scanned by the motif scanner, pairing each sequence with its reverse
// complement.
package encoder

import (
	"strings"

	"damo_go/motif"
	common "damo_go/utils"

	"gonum.org/v1/gonum/mat"
)

// Track is one orientation of a sequence.
type Track struct {
	Seq    string
	OneHot *mat.Dense // 4×len(Seq), rows in motif.Alphabet order
}

// StrandPair ties both orientations to the index of the original sequence.
type StrandPair struct {
	Index   int
	Forward Track
	Reverse Track
}

// Len is the sequence length shared by both tracks.
func (p StrandPair) Len() int { return len(p.Forward.Seq) }

// Track returns the track for strand s.
func (p StrandPair) Track(s motif.Strand) Track {
	if s == motif.Reverse {
		return p.Reverse
	}
	return p.Forward
}

// OneHot encodes seq as a 4×N indicator matrix. Bases outside ACGT leave
// their column all zero, so they contribute nothing to a window score.
// An empty sequence yields nil.
func OneHot(seq string) *mat.Dense {
	if len(seq) == 0 {
		return nil
	}
	m := mat.NewDense(len(motif.Alphabet), len(seq), nil)
	for i := 0; i < len(seq); i++ {
		if b := motif.BaseIndex(seq[i]); b >= 0 {
			m.Set(b, i, 1)
		}
	}
	return m
}

// NewPair uppercases seq, derives its reverse complement once and encodes both.
func NewPair(index int, seq string) StrandPair {
	fwd := strings.ToUpper(seq)
	rev := common.ReverseComplement(fwd)
	return StrandPair{
		Index:   index,
		Forward: Track{Seq: fwd, OneHot: OneHot(fwd)},
		Reverse: Track{Seq: rev, OneHot: OneHot(rev)},
	}
}

// PairAll encodes a collection, preserving order.
func PairAll(seqs []string) []StrandPair {
	pairs := make([]StrandPair, len(seqs))
	for i, s := range seqs {
		pairs[i] = NewPair(i, s)
	}
	return pairs
}
