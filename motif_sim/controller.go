// Package motif_sim writes synthetic positive and negative FASTA sets for
// benchmarking damo: positives carry sites sampled from a JASPAR profile,
// negatives are background only.
package motif_sim

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"damo_go/jaspar"
	common "damo_go/utils"
)

// Config describes one simulated data set.
type Config struct {
	N           int     // sequences per set
	Length      int     // bases per sequence
	GCBias      float64 // background G+C fraction
	PlantRate   float64 // fraction of positives carrying a site
	RevcompRate float64 // fraction of planted sites on the reverse strand
	Seed        uint64
}

func (c Config) validate(motifLen int) error {
	switch {
	case c.N <= 0:
		return fmt.Errorf("-n must be positive, got %d", c.N)
	case c.Length < motifLen:
		return fmt.Errorf("-length %d is shorter than the motif (%d)", c.Length, motifLen)
	case c.GCBias < 0 || c.GCBias > 1:
		return fmt.Errorf("-gc_bias must be in [0,1], got %v", c.GCBias)
	case c.PlantRate < 0 || c.PlantRate > 1:
		return fmt.Errorf("-plant_rate must be in [0,1], got %v", c.PlantRate)
	case c.RevcompRate < 0 || c.RevcompRate > 1:
		return fmt.Errorf("-revcomp_rate must be in [0,1], got %v", c.RevcompRate)
	}
	return nil
}

// Generate returns the positive and negative sets. Planted positives carry
// "site=<offset> strand=<+|->" in their header.
func Generate(m jaspar.Motif, cfg Config) (pos, neg []common.FastaRecord, err error) {
	if err := cfg.validate(m.Len()); err != nil {
		return nil, nil, err
	}
	src := rand.NewPCG(cfg.Seed, cfg.Seed)
	bg := NewBackground(cfg.GCBias, src)
	planter := NewPlanter(m, cfg.RevcompRate, src)
	plant := distuv.Bernoulli{P: cfg.PlantRate, Src: src}
	offsets := rand.New(src)

	for i := 0; i < cfg.N; i++ {
		id := fmt.Sprintf("pos_%d", i+1)
		seq := bg.GenerateDNA(cfg.Length)
		if plant.Rand() == 1 {
			offset := offsets.IntN(cfg.Length - m.Len() + 1)
			planted, strand, err := planter.Plant(seq, offset)
			if err != nil {
				return nil, nil, err
			}
			seq = planted
			id = fmt.Sprintf("%s site=%d strand=%s", id, offset, strand)
		}
		pos = append(pos, common.FastaRecord{ID: id, Seq: seq})
	}
	for i := 0; i < cfg.N; i++ {
		neg = append(neg, common.FastaRecord{ID: fmt.Sprintf("neg_%d", i+1), Seq: bg.GenerateDNA(cfg.Length)})
	}
	return pos, neg, nil
}

func Run(args []string) {
	if err := run(args, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("motif_sim", flag.ContinueOnError)

	motifFile := fs.String("motif", "", "JASPAR profile to plant")
	var cfg Config
	fs.IntVar(&cfg.N, "n", 100, "Sequences per set")
	fs.IntVar(&cfg.Length, "length", 100, "Sequence length")
	fs.Float64Var(&cfg.GCBias, "gc_bias", 0.5, "GC bias of the background")
	fs.Float64Var(&cfg.PlantRate, "plant_rate", 1.0, "Fraction of positives with a planted site")
	fs.Float64Var(&cfg.RevcompRate, "revcomp_rate", 0.5, "Fraction of sites planted on the reverse strand")
	seed := fs.Uint64("seed", 0, "Random seed (0 = time based)")
	prefix := fs.String("out_prefix", "motif_sim", "Writes <prefix>_pos.fa and <prefix>_neg.fa")
	gzipOut := fs.Bool("gzip", false, "Compress output with gzip")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unrecognized arguments: %v", fs.Args())
	}
	if *motifFile == "" {
		fs.Usage()
		return fmt.Errorf("-motif is required")
	}

	cfg.Seed = *seed
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	m, err := jaspar.ReadFile(*motifFile)
	if err != nil {
		return err
	}
	pos, neg, err := Generate(m, cfg)
	if err != nil {
		return err
	}

	ext := ".fa"
	if *gzipOut {
		ext += ".gz"
	}
	for _, set := range []struct {
		path    string
		records []common.FastaRecord
	}{
		{*prefix + "_pos" + ext, pos},
		{*prefix + "_neg" + ext, neg},
	} {
		if err := writeFasta(set.path, set.records); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Wrote %d sequences to %s\n", len(set.records), set.path)
	}
	return nil
}

func writeFasta(path string, records []common.FastaRecord) error {
	w, err := common.CreateOutput(path)
	if err != nil {
		return err
	}
	for _, r := range records {
		if _, err := fmt.Fprintf(w, ">%s\n%s", r.ID, WrapFasta(r.Seq, 60)); err != nil {
			w.Close()
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return w.Close()
}
