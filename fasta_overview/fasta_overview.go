// Package fasta_overview summarises a loaded sequence collection before it
// is handed to the optimizer.
package fasta_overview

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	common "damo_go/utils"
)

// Overview is the per-file report.
type Overview struct {
	FileName         string
	Sequences        int
	TotalBases       int
	MinLength        int
	MaxLength        int
	MeanLength       float64
	MeanGCContent    float64 // over ACGT bases only
	InvalidBases     int     // anything other than A, C, G, T
	WithInvalidBases int
	ShortSequences   int // shorter than the motif
	DuplicateIDs     int
}

// Summarize reports on records. motifLen is the window length the
// sequences will be scanned with.
func Summarize(fileName string, records []common.FastaRecord, motifLen int) Overview {
	o := Overview{FileName: fileName, Sequences: len(records)}
	if len(records) == 0 {
		return o
	}

	seen := make(map[string]bool, len(records))
	lengths := make([]float64, 0, len(records))
	gc := make([]float64, 0, len(records))
	o.MinLength = len(records[0].Seq)

	for _, r := range records {
		n := len(r.Seq)
		o.TotalBases += n
		lengths = append(lengths, float64(n))
		if n < o.MinLength {
			o.MinLength = n
		}
		if n > o.MaxLength {
			o.MaxLength = n
		}
		if n < motifLen {
			o.ShortSequences++
		}

		id := r.ID
		if seen[id] {
			o.DuplicateIDs++
		}
		seen[id] = true

		var gcCount, acgt, invalid int
		for i := 0; i < n; i++ {
			switch r.Seq[i] {
			case 'G', 'C', 'g', 'c':
				gcCount++
				acgt++
			case 'A', 'T', 'a', 't':
				acgt++
			default:
				invalid++
			}
		}
		o.InvalidBases += invalid
		if invalid > 0 {
			o.WithInvalidBases++
		}
		if acgt > 0 {
			gc = append(gc, float64(gcCount)/float64(acgt))
		}
	}

	o.MeanLength = stat.Mean(lengths, nil)
	if len(gc) > 0 {
		o.MeanGCContent = stat.Mean(gc, nil)
	}
	return o
}

// Warnings lists conditions worth reporting before a run.
func (o Overview) Warnings() []string {
	var warnings []string
	if o.Sequences == 0 {
		warnings = append(warnings, fmt.Sprintf("%s: no sequences", o.FileName))
	}
	if o.WithInvalidBases > 0 {
		warnings = append(warnings, fmt.Sprintf("%s: %d sequences contain %d non-ACGT bases, which never add to a window score",
			o.FileName, o.WithInvalidBases, o.InvalidBases))
	}
	if o.ShortSequences > 0 {
		warnings = append(warnings, fmt.Sprintf("%s: %d sequences are shorter than the motif", o.FileName, o.ShortSequences))
	}
	if o.DuplicateIDs > 0 {
		warnings = append(warnings, fmt.Sprintf("%s: %d duplicate headers", o.FileName, o.DuplicateIDs))
	}
	return warnings
}

// String is the one-line summary used in verbose logs.
func (o Overview) String() string {
	return fmt.Sprintf("%s: %d sequences, %d bp (length %d-%d, mean %.1f), GC %.1f%%",
		o.FileName, o.Sequences, o.TotalBases, o.MinLength, o.MaxLength, o.MeanLength, 100*o.MeanGCContent)
}
