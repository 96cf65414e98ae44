// Package damo is the command-line front end of the discriminative PWM
// optimizer: it reads the positive and negative FASTA files and the seed
// JASPAR motif, runs the optimizer and writes the refined matrix.
package damo

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"damo_go/config"
	"damo_go/evaluator"
	"damo_go/fasta_overview"
	"damo_go/history"
	"damo_go/jaspar"
	"damo_go/motif"
	"damo_go/optimizer"
	"damo_go/report"
	"damo_go/scanner"
	common "damo_go/utils"
)

// DebugLimit is the number of sequences kept per file in debugging mode.
const DebugLimit = 1000

// Options is everything one damo invocation needs.
type Options struct {
	PositiveFile string
	NegativeFile string
	MotifFile    string

	Debugging   bool
	Iterations  int
	OutputFile  string
	Backend     string
	Workers     int
	PlotFile    string
	ROCFile     string
	HistoryFile string
	Verbose     bool
}

// Run executes the damo command and exits non-zero on failure.
func Run(args []string) {
	if err := run(args, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// multiString collects a repeatable flag.
type multiString []string

func (s *multiString) String() string { return strings.Join(*s, ",") }

func (s *multiString) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func newFlagSet(opts *Options, configFile *string, overrides *multiString, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("damo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: damo_go damo [options] <positive_seqs> <negative_seqs> <jaspar_profile>")
		fmt.Fprintln(stderr, "\nDiscriminative optimization of a JASPAR PWM against positive and negative sequences.")
		fmt.Fprintln(stderr, "\nOptions:")
		fs.PrintDefaults()
	}

	fs.BoolVar(&opts.Debugging, "d", false, "Debugging mode (shorthand)")
	fs.BoolVar(&opts.Debugging, "debugging", false, fmt.Sprintf("Debugging mode: use the first %d sequences of each file", DebugLimit))
	fs.IntVar(&opts.Iterations, "i", optimizer.DefaultIterations, "Number of optimization iterations (shorthand)")
	fs.IntVar(&opts.Iterations, "iterations", optimizer.DefaultIterations, "Number of optimization iterations")
	fs.StringVar(&opts.OutputFile, "o", "", "Output file (shorthand)")
	fs.StringVar(&opts.OutputFile, "output-file", "", "Output file, gzipped when it ends in .gz [default: stdout]")
	fs.StringVar(&opts.Backend, "backend", "serial", "Scanning backend: serial or parallel")
	fs.IntVar(&opts.Workers, "workers", 0, "Workers for the parallel backend (0 = one per CPU)")
	fs.StringVar(&opts.PlotFile, "plot", "", "Write an SVG of AUC per iteration")
	fs.StringVar(&opts.ROCFile, "roc", "", "Write an SVG of the ROC curves before and after optimization")
	fs.StringVar(&opts.HistoryFile, "history", "", "Record the run in this SQLite database")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Log per-iteration progress to stderr")
	fs.StringVar(configFile, "config", "", "Parameter file of key=value lines; flags given on the command line win")
	fs.Var(overrides, "set", "key=value parameter, same keys as -config, applied over it (repeatable)")
	return fs
}

// parseInterleaved lets flags appear before, between or after positionals.
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// shorthands maps each short flag to its long name.
var shorthands = map[string]string{"d": "debugging", "i": "iterations", "o": "output-file"}

func longName(name string) string {
	if long, ok := shorthands[name]; ok {
		return long
	}
	return name
}

// applyParams fills flags not set on the command line from params.
// source names the origin in error messages.
func applyParams(fs *flag.FlagSet, params config.Params, source string) error {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[longName(f.Name)] = true })

	for key, value := range params {
		if key == "config" || key == "set" || set[longName(key)] {
			continue
		}
		f := fs.Lookup(key)
		if f == nil {
			return fmt.Errorf("%s: unknown parameter %q", source, key)
		}
		if value == "" {
			if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
				value = "true"
			}
		}
		if err := fs.Set(key, value); err != nil {
			return fmt.Errorf("%s: parameter %s: %w", source, key, err)
		}
	}
	return nil
}

// ParseArgs turns command-line arguments into Options. It returns
// flag.ErrHelp when help was requested.
func ParseArgs(args []string, stderr io.Writer) (Options, error) {
	var opts Options
	var configFile string
	var overrides multiString
	fs := newFlagSet(&opts, &configFile, &overrides, stderr)

	positional, err := parseInterleaved(fs, args)
	if err != nil {
		return Options{}, err
	}
	// -set values are marked as set once applied, so the file cannot override them.
	if len(overrides) > 0 {
		if err := applyParams(fs, config.ParseArgs(overrides), "-set"); err != nil {
			return Options{}, err
		}
	}
	if configFile != "" {
		params, err := config.LoadParams(configFile)
		if err != nil {
			return Options{}, err
		}
		if err := applyParams(fs, params, configFile); err != nil {
			return Options{}, err
		}
	}
	if len(positional) != 3 {
		fs.Usage()
		return Options{}, fmt.Errorf("expected 3 arguments (positive, negative, jaspar), got %d", len(positional))
	}
	opts.PositiveFile, opts.NegativeFile, opts.MotifFile = positional[0], positional[1], positional[2]

	if opts.Iterations < 0 {
		return Options{}, fmt.Errorf("iterations must not be negative, got %d", opts.Iterations)
	}
	for _, p := range positional {
		if _, err := os.Stat(p); err != nil {
			return Options{}, fmt.Errorf("input file: %w", err)
		}
	}
	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := ParseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	return Execute(opts, stdout, stderr)
}

// Execute performs one optimization. The PWM is only written once the run
// has finished without error.
func Execute(opts Options, stdout, stderr io.Writer) error {
	logger := log.New(stderr, "[damo] ", log.LstdFlags)

	backend, err := scanner.NewBackend(opts.Backend, opts.Workers)
	if err != nil {
		return err
	}

	limit := 0
	if opts.Debugging {
		limit = DebugLimit
	}
	posRecords, err := common.ReadFasta(opts.PositiveFile, limit)
	if err != nil {
		return err
	}
	negRecords, err := common.ReadFasta(opts.NegativeFile, limit)
	if err != nil {
		return err
	}

	m, err := jaspar.ReadFile(opts.MotifFile)
	if err != nil {
		return err
	}
	seed, err := m.PWM()
	if err != nil {
		return err
	}
	for _, o := range []fasta_overview.Overview{
		fasta_overview.Summarize(opts.PositiveFile, posRecords, seed.Len()),
		fasta_overview.Summarize(opts.NegativeFile, negRecords, seed.Len()),
	} {
		for _, w := range o.Warnings() {
			logger.Printf("Warning: %s", w)
		}
		if opts.Verbose {
			logger.Print(o)
		}
	}
	if opts.Verbose {
		logger.Printf("motif %s of length %d, %s backend", m.ID, seed.Len(), backend.Name())
	}
	positives, negatives := sequences(posRecords), sequences(negRecords)

	res, err := optimizer.Optimize(positives, negatives, seed, optimizer.Options{
		Iterations: opts.Iterations,
		Backend:    backend,
		Logger:     logger,
		Verbose:    opts.Verbose,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stderr, "AUC optimized from %v to %v.\n", res.OriginalAUC, res.AUC)
	if opts.Verbose {
		pos, neg := evaluator.Summarize(res.Final)
		logger.Printf("%s after %d iterations; positive scores %.3f ± %.3f, negative scores %.3f ± %.3f",
			res.State, res.Iterations, pos.Mean, pos.StdDev, neg.Mean, neg.StdDev)
	}

	// The PWM is staged and renamed last; a failed side output removes the rest.
	var plots []svgFile
	if opts.PlotFile != "" {
		svg, err := traceSVG(res)
		if err != nil {
			return err
		}
		plots = append(plots, svgFile{opts.PlotFile, svg})
	}
	if opts.ROCFile != "" {
		svg, err := rocSVG(res)
		if err != nil {
			return err
		}
		plots = append(plots, svgFile{opts.ROCFile, svg})
	}

	staged := ""
	if opts.OutputFile != "" {
		if staged, err = stagePWM(opts.OutputFile, res.PWM); err != nil {
			return err
		}
	}
	var written []string
	fail := func(err error) error {
		if staged != "" {
			os.Remove(staged)
		}
		for _, p := range written {
			os.Remove(p)
		}
		return err
	}

	for _, p := range plots {
		if err := report.WriteSVG(p.path, p.svg); err != nil {
			return fail(err)
		}
		written = append(written, p.path)
	}
	if opts.HistoryFile != "" {
		id, err := saveHistory(opts, m.ID, len(positives), len(negatives), res)
		if err != nil {
			return fail(err)
		}
		logger.Printf("recorded run %s in %s", id, opts.HistoryFile)
	}

	if staged == "" {
		return motif.WritePWM(stdout, res.PWM)
	}
	if err := os.Rename(staged, opts.OutputFile); err != nil {
		return fail(fmt.Errorf("failed to write %s: %w", opts.OutputFile, err))
	}
	return nil
}

type svgFile struct {
	path, svg string
}

func sequences(records []common.FastaRecord) []string {
	seqs := make([]string, len(records))
	for i, r := range records {
		seqs[i] = r.Seq
	}
	return seqs
}

// stagePWM writes pwm to a temporary file in the directory of path and
// returns its name. The temporary keeps a .gz suffix when path has one.
func stagePWM(path string, pwm motif.PWM) (string, error) {
	ext := ""
	if strings.HasSuffix(path, ".gz") {
		ext = ".gz"
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".damo-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	name := tmp.Name()
	tmp.Close()

	w, err := common.CreateOutput(name)
	if err != nil {
		os.Remove(name)
		return "", err
	}
	if err := motif.WritePWM(w, pwm); err != nil {
		w.Close()
		os.Remove(name)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return name, nil
}

func traceSVG(res optimizer.Result) (string, error) {
	aucs := []float64{res.OriginalAUC}
	for _, it := range res.Trace {
		aucs = append(aucs, it.AUC)
	}
	svg, err := report.GenerateAUCTracePlot(aucs)
	if err != nil {
		return "", fmt.Errorf("failed to generate AUC plot: %w", err)
	}
	return svg, nil
}

func rocSVG(res optimizer.Result) (string, error) {
	var curves []report.ROCCurve
	for _, c := range []struct {
		label  string
		scored []motif.LabeledScore
		auc    float64
	}{
		{"seed", res.Initial, res.OriginalAUC},
		{"optimized", res.Final, res.AUC},
	} {
		labels, scores, _ := motif.Split(c.scored)
		tpr, fpr, err := evaluator.ROC(scores, labels)
		if err != nil {
			return "", err
		}
		curves = append(curves, report.ROCCurve{Label: fmt.Sprintf("%s (AUC %.3f)", c.label, c.auc), TPR: tpr, FPR: fpr})
	}
	svg, err := report.GenerateROCPlot(curves)
	if err != nil {
		return "", fmt.Errorf("failed to generate ROC plot: %w", err)
	}
	return svg, nil
}

func saveHistory(opts Options, motifID string, nPos, nNeg int, res optimizer.Result) (string, error) {
	ctx := context.Background()
	store, err := history.Open(ctx, opts.HistoryFile)
	if err != nil {
		return "", fmt.Errorf("history: %w", err)
	}
	defer store.Close()

	steps := make([]history.Step, len(res.Trace))
	for i, it := range res.Trace {
		steps[i] = history.Step{
			Number:        it.Number,
			State:         string(it.State),
			Rate:          it.Rate,
			Tried:         it.Tried,
			AUC:           it.AUC,
			PositiveSites: it.PositiveSites,
			NegativeSites: it.NegativeSites,
		}
	}
	return store.SaveRun(ctx, history.RunRecord{
		PositiveFile: opts.PositiveFile,
		NegativeFile: opts.NegativeFile,
		MotifFile:    opts.MotifFile,
		MotifID:      motifID,
		Positives:    nPos,
		Negatives:    nNeg,
		OriginalAUC:  res.OriginalAUC,
		FinalAUC:     res.AUC,
		State:        string(res.State),
		Iterations:   res.Iterations,
		PWM:          res.PWM.Format(),
	}, steps)
}
