// Package jaspar reads JASPAR count matrices and converts them into the
// natural-log PWMs the optimizer starts from.
package jaspar

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"damo_go/motif"
	common "damo_go/utils"
)

// Motif is one JASPAR count matrix.
type Motif struct {
	ID     string
	Name   string
	Counts [4][]float64 // rows in motif.Alphabet order
}

// Len is the number of motif positions.
func (m Motif) Len() int { return len(m.Counts[0]) }

// Pseudocounts spreads sqrt(mean column total) over a uniform background,
// one value per nucleotide.
func (m Motif) Pseudocounts() [4]float64 {
	var total float64
	for b := range m.Counts {
		for _, c := range m.Counts[b] {
			total += c
		}
	}
	sq := math.Sqrt(total / float64(m.Len()))
	var pc [4]float64
	for b := range pc {
		pc[b] = sq * 0.25
	}
	return pc
}

// Frequencies returns the PFM with pseudocounts applied.
func (m Motif) Frequencies() [4][]float64 {
	pc := m.Pseudocounts()
	var freq [4][]float64
	for b := range freq {
		freq[b] = make([]float64, m.Len())
	}
	for j := 0; j < m.Len(); j++ {
		col := 0.0
		for b := range m.Counts {
			col += m.Counts[b][j] + pc[b]
		}
		for b := range m.Counts {
			freq[b][j] = (m.Counts[b][j] + pc[b]) / col
		}
	}
	return freq
}

// PWM is the natural log of Frequencies, ready to seed an optimization.
func (m Motif) PWM() (motif.PWM, error) {
	freq := m.Frequencies()
	rows := make([][]float64, 4)
	for b := range freq {
		rows[b] = make([]float64, len(freq[b]))
		for j, f := range freq[b] {
			rows[b][j] = math.Log(f)
		}
	}
	p, err := motif.NewPWM(rows)
	if err != nil {
		return motif.PWM{}, fmt.Errorf("motif %s: %w", m.ID, err)
	}
	if err := p.CheckFinite("motif " + m.ID); err != nil {
		return motif.PWM{}, err
	}
	return p, nil
}

// ReadFile reads exactly one motif from a plain or gzipped file.
func ReadFile(path string) (Motif, error) {
	r, err := common.OpenInput(path)
	if err != nil {
		return Motif{}, err
	}
	defer r.Close()
	m, err := Read(r)
	if err != nil {
		return Motif{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Read parses exactly one motif. Rows may be labelled and bracketed
// ("A [ 4 19 0 ]") or bare numbers in A, C, G, T order.
func Read(r io.Reader) (Motif, error) {
	motifs, err := ReadAll(r)
	if err != nil {
		return Motif{}, err
	}
	switch len(motifs) {
	case 0:
		return Motif{}, fmt.Errorf("no motif found")
	case 1:
		return motifs[0], nil
	default:
		return Motif{}, fmt.Errorf("expected one motif, found %d", len(motifs))
	}
}

// ReadAll parses every motif in r.
func ReadAll(r io.Reader) ([]Motif, error) {
	var motifs []Motif
	var cur *Motif
	rows := 0
	lineNo := 0

	finish := func() error {
		if cur == nil {
			return nil
		}
		if rows != 4 {
			return fmt.Errorf("motif %q has %d rows, want 4", cur.ID, rows)
		}
		length := len(cur.Counts[0])
		if length == 0 {
			return &motif.InputShapeError{What: "motif " + cur.ID, Motif: 0}
		}
		for b := 1; b < 4; b++ {
			if len(cur.Counts[b]) != length {
				return fmt.Errorf("motif %q row %c has %d columns, want %d", cur.ID, motif.Alphabet[b], len(cur.Counts[b]), length)
			}
		}
		motifs = append(motifs, *cur)
		cur = nil
		rows = 0
		return nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			if err := finish(); err != nil {
				return nil, err
			}
			fields := strings.Fields(strings.TrimPrefix(line, ">"))
			cur = &Motif{}
			if len(fields) > 0 {
				cur.ID = fields[0]
			}
			if len(fields) > 1 {
				cur.Name = strings.Join(fields[1:], " ")
			}
			continue
		}

		if cur == nil {
			cur = &Motif{}
		}
		row, values, err := parseRow(line, rows)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if cur.Counts[row] != nil {
			return nil, fmt.Errorf("line %d: duplicate row %c", lineNo, motif.Alphabet[row])
		}
		cur.Counts[row] = values
		rows++
		if rows == 4 {
			if err := finish(); err != nil {
				return nil, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return motifs, nil
}

// parseRow reads one count row. Unlabelled rows take the next slot.
func parseRow(line string, next int) (int, []float64, error) {
	row := next
	if b := motif.BaseIndex(line[0]); b >= 0 && (len(line) == 1 || line[1] == ' ' || line[1] == '\t' || line[1] == '[') {
		row = b
		line = line[1:]
	}
	if row >= 4 {
		return 0, nil, fmt.Errorf("more than four rows")
	}
	line = strings.NewReplacer("[", " ", "]", " ").Replace(line)
	fields := strings.Fields(line)
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, nil, fmt.Errorf("bad count %q: %w", f, err)
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, nil, fmt.Errorf("count %q must be a finite non-negative number", f)
		}
		values[i] = v
	}
	return row, values, nil
}
