// Package site_scan reports the best motif site of every sequence in a
// FASTA file, one tab-separated line per sequence.
package site_scan

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"damo_go/encoder"
	"damo_go/jaspar"
	"damo_go/motif"
	"damo_go/scanner"
	common "damo_go/utils"
)

// Options configures a scan.
type Options struct {
	InFile   string
	OutFile  string
	Motif    string // JASPAR profile
	PWMFile  string // PWM as written by damo
	MinScore float64
	Backend  string
	Workers  int
}

// Run executes the scan tool.
func Run(args []string) {
	if err := run(args, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var opts Options
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.InFile, "in_file", "", "Input FASTA file (gzip allowed)")
	fs.StringVar(&opts.OutFile, "out_file", "", "Output TSV, gzipped when it ends in .gz [default: stdout]")
	fs.StringVar(&opts.Motif, "motif", "", "JASPAR profile to scan with")
	fs.StringVar(&opts.PWMFile, "pwm", "", "PWM file written by damo (instead of -motif)")
	fs.Float64Var(&opts.MinScore, "min_score", math.Inf(-1), "Only report sites scoring at least this much")
	fs.StringVar(&opts.Backend, "backend", "serial", "Scanning backend: serial or parallel")
	fs.IntVar(&opts.Workers, "workers", 0, "Workers for the parallel backend (0 = one per CPU)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if opts.InFile == "" || (opts.Motif == "") == (opts.PWMFile == "") {
		fmt.Fprintln(stderr, "Usage: scan -in_file <fasta> (-motif <jaspar> | -pwm <pwm>) [-out_file <tsv>] [-min_score x]")
		return fmt.Errorf("need -in_file and exactly one of -motif or -pwm")
	}

	pwm, err := loadPWM(opts)
	if err != nil {
		return err
	}

	if opts.OutFile == "" {
		return Scan(opts, pwm, stdout, stderr)
	}
	out, err := common.CreateOutput(opts.OutFile)
	if err != nil {
		return err
	}
	if err := Scan(opts, pwm, out, stderr); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func loadPWM(opts Options) (motif.PWM, error) {
	if opts.Motif != "" {
		m, err := jaspar.ReadFile(opts.Motif)
		if err != nil {
			return motif.PWM{}, err
		}
		return m.PWM()
	}
	r, err := common.OpenInput(opts.PWMFile)
	if err != nil {
		return motif.PWM{}, err
	}
	defer r.Close()
	pwm, err := motif.ReadPWM(r)
	if err != nil {
		return motif.PWM{}, fmt.Errorf("%s: %w", opts.PWMFile, err)
	}
	return pwm, nil
}

// Scan writes "id score strand offset site" for every sequence of
// opts.InFile at least as long as the motif. Shorter sequences are skipped
// with a warning.
func Scan(opts Options, pwm motif.PWM, w io.Writer, stderr io.Writer) error {
	backend, err := scanner.NewBackend(opts.Backend, opts.Workers)
	if err != nil {
		return err
	}
	records, err := common.ReadFasta(opts.InFile, 0)
	if err != nil {
		return err
	}

	var ids []string
	var pairs []encoder.StrandPair
	for _, rec := range records {
		if len(rec.Seq) < pwm.Len() {
			fmt.Fprintf(stderr, "Warning: %s is shorter than the motif (%d < %d), skipping\n", rec.ID, len(rec.Seq), pwm.Len())
			continue
		}
		pairs = append(pairs, encoder.NewPair(len(pairs), rec.Seq))
		ids = append(ids, firstWord(rec.ID))
	}

	hits, err := scanner.New(backend).Scan(pwm, pairs)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "id\tscore\tstrand\toffset\tsite")
	for _, h := range hits {
		if h.Score < opts.MinScore {
			continue
		}
		fmt.Fprintf(bw, "%s\t%.6f\t%s\t%d\t%s\n", ids[h.Site.Index], h.Score, h.Site.Strand, h.Site.Offset, h.Site.Seq)
	}
	return bw.Flush()
}

func firstWord(header string) string {
	if fields := strings.Fields(header); len(fields) > 0 {
		return fields[0]
	}
	return header
}
