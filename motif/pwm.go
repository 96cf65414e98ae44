package motif

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// PWM is a 4×L log-odds matrix with rows in Alphabet order. A PWM is a
// value: methods never modify the receiver, updates build a new matrix.
type PWM struct {
	m *mat.Dense
}

// NewPWM copies rows (A, C, G, T) into a PWM.
func NewPWM(rows [][]float64) (PWM, error) {
	if len(rows) != len(Alphabet) {
		return PWM{}, fmt.Errorf("pwm needs %d rows, got %d", len(Alphabet), len(rows))
	}
	length := len(rows[0])
	if length <= 0 {
		return PWM{}, &InputShapeError{What: "pwm", Motif: length}
	}
	data := make([]float64, 0, len(Alphabet)*length)
	for i, row := range rows {
		if len(row) != length {
			return PWM{}, fmt.Errorf("pwm row %c has %d columns, want %d", Alphabet[i], len(row), length)
		}
		data = append(data, row...)
	}
	return PWM{m: mat.NewDense(len(Alphabet), length, data)}, nil
}

// FromDense copies a 4×L matrix into a PWM.
func FromDense(a mat.Matrix) (PWM, error) {
	r, c := a.Dims()
	if r != len(Alphabet) {
		return PWM{}, fmt.Errorf("pwm needs %d rows, got %d", len(Alphabet), r)
	}
	if c <= 0 {
		return PWM{}, &InputShapeError{What: "pwm", Motif: c}
	}
	return PWM{m: mat.DenseCopyOf(a)}, nil
}

// Len is the motif length L.
func (p PWM) Len() int {
	if p.m == nil {
		return 0
	}
	_, c := p.m.Dims()
	return c
}

func (p PWM) At(base, pos int) float64 { return p.m.At(base, pos) }

// Row returns the weights of one nucleotide across all positions. The
// slice aliases the matrix and must not be modified.
func (p PWM) Row(base int) []float64 { return p.m.RawRowView(base) }

// Matrix exposes the PWM read-only for gonum arithmetic.
func (p PWM) Matrix() mat.Matrix { return p.m }

// Dense returns a private copy.
func (p PWM) Dense() *mat.Dense { return mat.DenseCopyOf(p.m) }

// Equal reports bit-for-bit equality.
func (p PWM) Equal(q PWM) bool {
	if p.m == nil || q.m == nil {
		return p.m == q.m
	}
	return mat.Equal(p.m, q.m)
}

// ReverseComplement returns the PWM that scores the opposite strand: columns
// reversed, A swapped with T and C with G.
func (p PWM) ReverseComplement() PWM {
	l := p.Len()
	rc := mat.NewDense(len(Alphabet), l, nil)
	for b := 0; b < len(Alphabet); b++ {
		src := p.m.RawRowView(len(Alphabet) - 1 - b)
		dst := rc.RawRowView(b)
		for j := 0; j < l; j++ {
			dst[j] = src[l-1-j]
		}
	}
	return PWM{m: rc}
}

// CheckFinite returns a NonFiniteScoreError for the first NaN or Inf.
func (p PWM) CheckFinite(where string) error {
	for b := 0; b < len(Alphabet); b++ {
		for _, v := range p.m.RawRowView(b) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &NonFiniteScoreError{Where: where, Value: v}
			}
		}
	}
	return nil
}

// Format renders one row per nucleotide, each value as %15.9f and fields
// separated by a single space.
func (p PWM) Format() string {
	var sb strings.Builder
	for b := 0; b < len(Alphabet); b++ {
		for j, v := range p.m.RawRowView(b) {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%15.9f", v)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// WritePWM writes Format(p) to w.
func WritePWM(w io.Writer, p PWM) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(p.Format()); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadPWM parses the WritePWM layout back into a PWM.
func ReadPWM(r io.Reader) (PWM, error) {
	var rows [][]float64
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return PWM{}, fmt.Errorf("pwm row %d field %d: %w", len(rows)+1, i+1, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return PWM{}, err
	}
	return NewPWM(rows)
}
