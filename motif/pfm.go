package motif

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// PFM is an L×4 frequency matrix with columns in Alphabet order.
type PFM struct {
	m *mat.Dense
}

var baseIndex = [256]int8{}

func init() {
	for i := range baseIndex {
		baseIndex[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		baseIndex[Alphabet[i]] = int8(i)
		baseIndex[Alphabet[i]+('a'-'A')] = int8(i)
	}
}

// BaseIndex maps a nucleotide to its row, or -1 outside ACGT.
func BaseIndex(b byte) int { return int(baseIndex[b]) }

// CountPFM tallies the bases at each of the length positions over sites.
// Characters outside ACGT and positions past the end of a site are skipped.
func CountPFM(sites []string, length int) PFM {
	m := mat.NewDense(length, len(Alphabet), nil)
	for _, s := range sites {
		for i := 0; i < length && i < len(s); i++ {
			if b := baseIndex[s[i]]; b >= 0 {
				m.Set(i, int(b), m.At(i, int(b))+1)
			}
		}
	}
	return PFM{m: m}
}

// Normalize adds pseudocount to every cell and scales each position to sum to 1.
func (f PFM) Normalize(pseudocount float64) PFM {
	r, c := f.m.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		row := out.RawRowView(i)
		copy(row, f.m.RawRowView(i))
		floats.AddConst(pseudocount, row)
		sum := floats.Sum(row)
		for j := range row {
			row[j] /= sum
		}
	}
	return PFM{m: out}
}

func (f PFM) Len() int {
	r, _ := f.m.Dims()
	return r
}

func (f PFM) At(pos, base int) float64 { return f.m.At(pos, base) }

// RowSum is the total of one position.
func (f PFM) RowSum(pos int) float64 { return floats.Sum(f.m.RawRowView(pos)) }

// LogPWM takes the natural log of every cell and transposes to PWM layout.
func (f PFM) LogPWM() PWM {
	r, c := f.m.Dims()
	out := mat.NewDense(c, r, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return math.Log(v)
	}, f.m.T())
	return PWM{m: out}
}
