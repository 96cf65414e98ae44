package sanity_check

import (
	"fmt"
	"io"
	"os"

	"damo_go/config"
	"damo_go/motif"
	"damo_go/optimizer"
	"damo_go/scanner"
)

// Run prints the version and optimizes the four-base ACGT example on both
// scanning backends, exiting non-zero if either result is off.
func Run(args []string) {
	fmt.Printf("Successfully running DAMO Go! (%s)\n", config.Main_version)
	if err := SelfTest(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Self-test failed:", err)
		os.Exit(1)
	}
}

// SelfTest runs the ACGT example: the seed already separates the sets, so
// the optimizer must converge after one iteration with AUC 1 and the seed
// matrix unchanged.
func SelfTest(w io.Writer) error {
	seed, err := motif.NewPWM([][]float64{
		{2, -2, -2, -2},
		{-2, 2, -2, -2},
		{-2, -2, 2, -2},
		{-2, -2, -2, 2},
	})
	if err != nil {
		return err
	}
	positives := []string{"AAAACGTAAA", "TTTACGTTTT"}
	negatives := []string{"GGGGGGGGGG", "CCCCCCCCCC"}

	for _, backend := range []scanner.Backend{scanner.Serial{}, scanner.Parallel{Workers: 2}} {
		res, err := optimizer.Optimize(positives, negatives, seed, optimizer.Options{
			Iterations: optimizer.DefaultIterations,
			Backend:    backend,
		})
		if err != nil {
			return fmt.Errorf("%s backend: %w", backend.Name(), err)
		}
		switch {
		case res.OriginalAUC != 1 || res.AUC != 1:
			return fmt.Errorf("%s backend: AUC %v -> %v, want 1 -> 1", backend.Name(), res.OriginalAUC, res.AUC)
		case res.State != optimizer.Converged || res.Iterations != 1:
			return fmt.Errorf("%s backend: %s after %d iterations", backend.Name(), res.State, res.Iterations)
		case !res.PWM.Equal(seed):
			return fmt.Errorf("%s backend: seed PWM changed", backend.Name())
		}
		fmt.Fprintf(w, "\t%-8s backend: AUC %.1f, converged after %d iteration\n", backend.Name(), res.AUC, res.Iterations)
	}
	return nil
}
