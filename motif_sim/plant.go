package motif_sim

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"damo_go/jaspar"
	"damo_go/motif"
	common "damo_go/utils"
)

// Planter samples motif instances column by column from a JASPAR profile.
type Planter struct {
	columns []distuv.Categorical
	strand  distuv.Bernoulli
}

// NewPlanter builds one categorical per motif column from the profile's
// pseudocount-corrected frequencies. revcompRate is the probability that a
// sampled site is inserted as its reverse complement.
func NewPlanter(m jaspar.Motif, revcompRate float64, src rand.Source) Planter {
	freqs := m.Frequencies()
	p := Planter{strand: distuv.Bernoulli{P: revcompRate, Src: src}}
	for j := 0; j < m.Len(); j++ {
		w := []float64{freqs[0][j], freqs[1][j], freqs[2][j], freqs[3][j]}
		p.columns = append(p.columns, distuv.NewCategorical(w, src))
	}
	return p
}

// Len is the motif length.
func (p Planter) Len() int { return len(p.columns) }

// Site returns one sampled instance and the strand it is inserted on.
func (p Planter) Site() (string, motif.Strand) {
	site := make([]byte, len(p.columns))
	for j, c := range p.columns {
		site[j] = motif.Alphabet[int(c.Rand())]
	}
	if p.strand.Rand() == 1 {
		return common.ReverseComplement(string(site)), motif.Reverse
	}
	return string(site), motif.Forward
}

// Plant overwrites seq at offset with a sampled site.
func (p Planter) Plant(seq string, offset int) (string, motif.Strand, error) {
	if offset < 0 || offset+p.Len() > len(seq) {
		return "", motif.Forward, fmt.Errorf("site of length %d does not fit at offset %d of a %d bp sequence", p.Len(), offset, len(seq))
	}
	site, strand := p.Site()
	return seq[:offset] + site + seq[offset+p.Len():], strand, nil
}
