package fasta_overview

import (
	"math"
	"strings"
	"testing"

	common "damo_go/utils"
)

func TestSummarize(t *testing.T) {
	records := []common.FastaRecord{
		{ID: "a", Seq: "ACGT"},
		{ID: "b", Seq: "GGGGNN"},
		{ID: "a", Seq: "AT"},
	}
	o := Summarize("pos.fa", records, 3)

	if o.Sequences != 3 || o.TotalBases != 12 || o.MinLength != 2 || o.MaxLength != 6 || o.MeanLength != 4 {
		t.Fatalf("unexpected lengths %+v", o)
	}
	if o.InvalidBases != 2 || o.WithInvalidBases != 1 || o.ShortSequences != 1 || o.DuplicateIDs != 1 {
		t.Fatalf("unexpected counts %+v", o)
	}
	// GC per sequence: 0.5, 1, 0
	if math.Abs(o.MeanGCContent-0.5) > 1e-12 {
		t.Fatalf("mean GC %v, want 0.5", o.MeanGCContent)
	}
	if got := len(o.Warnings()); got != 3 {
		t.Fatalf("expected 3 warnings, got %v", o.Warnings())
	}
	if !strings.Contains(o.String(), "3 sequences, 12 bp") {
		t.Fatalf("unexpected summary %q", o.String())
	}
}

func TestSummarizeClean(t *testing.T) {
	o := Summarize("neg.fa", []common.FastaRecord{{ID: "x", Seq: "ACGTACGT"}}, 4)
	if len(o.Warnings()) != 0 {
		t.Fatalf("unexpected warnings %v", o.Warnings())
	}
	if len(Summarize("empty.fa", nil, 4).Warnings()) != 1 {
		t.Fatal("an empty file should warn")
	}
}
