package history

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
)

// Run executes the history command: list stored runs, or show one run
// with its iteration trace and final PWM.
func Run(args []string) {
	if err := run(args, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	dbPath := fs.String("db", "", "SQLite history database written by damo -history")
	runID := fs.String("run", "", "Show a single run by id")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unrecognized arguments: %v", fs.Args())
	}
	if *dbPath == "" {
		fs.Usage()
		return fmt.Errorf("-db is required")
	}
	if _, err := os.Stat(*dbPath); err != nil {
		return fmt.Errorf("history database: %w", err)
	}

	ctx := context.Background()
	store, err := Open(ctx, *dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if *runID == "" {
		return listRuns(ctx, store, stdout)
	}
	return showRun(ctx, store, *runID, stdout)
}

func listRuns(ctx context.Context, store *SQLiteStore, stdout io.Writer) error {
	runs, err := store.ListRuns(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tMOTIF\tAUC BEFORE\tAUC AFTER\tSTATE\tITERATIONS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.6f\t%.6f\t%s\t%d\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.MotifID, r.OriginalAUC, r.FinalAUC, r.State, r.Iterations)
	}
	return tw.Flush()
}

func showRun(ctx context.Context, store *SQLiteStore, id string, stdout io.Writer) error {
	r, ok, err := store.GetRun(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("run %s not found", id)
	}
	steps, err := store.GetSteps(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Run:\t\t%s\n", r.ID)
	fmt.Fprintf(stdout, "Created:\t%s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(stdout, "Positives:\t%s (%d)\n", r.PositiveFile, r.Positives)
	fmt.Fprintf(stdout, "Negatives:\t%s (%d)\n", r.NegativeFile, r.Negatives)
	fmt.Fprintf(stdout, "Motif:\t\t%s (%s)\n", r.MotifFile, r.MotifID)
	fmt.Fprintf(stdout, "AUC:\t\t%.6f -> %.6f\n", r.OriginalAUC, r.FinalAUC)
	fmt.Fprintf(stdout, "State:\t\t%s after %d iterations\n\n", r.State, r.Iterations)

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITERATION\tSTATE\tRATE\tTRIED\tAUC\tZONE +\tZONE -")
	for _, st := range steps {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%d\t%.6f\t%d\t%d\n",
			st.Number, st.State, st.Rate, st.Tried, st.AUC, st.PositiveSites, st.NegativeSites)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(stdout)
	_, err = io.WriteString(stdout, r.PWM)
	return err
}
