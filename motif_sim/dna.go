package motif_sim

import (
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"damo_go/motif"
)

// Background draws i.i.d. bases with a GC bias.
type Background struct {
	dist distuv.Categorical
}

// NewBackground returns a base sampler where G+C together have probability gcBias.
func NewBackground(gcBias float64, src rand.Source) Background {
	at := (1 - gcBias) / 2
	gc := gcBias / 2
	// weights follow motif.Alphabet
	return Background{dist: distuv.NewCategorical([]float64{at, gc, gc, at}, src)}
}

// GenerateDNA returns a random sequence of the given length.
func (b Background) GenerateDNA(length int) string {
	seq := make([]byte, length)
	for i := range seq {
		seq[i] = motif.Alphabet[int(b.dist.Rand())]
	}
	return string(seq)
}

// WrapFasta breaks seq into lines of at most width bases.
func WrapFasta(seq string, width int) string {
	var out strings.Builder
	for i := 0; i < len(seq); i += width {
		end := i + width
		if end > len(seq) {
			end = len(seq)
		}
		out.WriteString(seq[i:end] + "\n")
	}
	return out.String()
}
