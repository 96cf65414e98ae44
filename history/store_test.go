package history

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const storedPWM = "    2.000000000    -2.000000000\n   -2.000000000     2.000000000\n    0.000000000     0.000000000\n    0.500000000    -0.500000000\n"

func TestSQLiteStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "damo.db")

	store, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	rec := RunRecord{
		PositiveFile: "pos.fa",
		NegativeFile: "neg.fa",
		MotifFile:    "MA0004.1.jaspar",
		MotifID:      "MA0004.1",
		Positives:    10,
		Negatives:    12,
		OriginalAUC:  0.61,
		FinalAUC:     0.83,
		State:        "converged",
		Iterations:   2,
		PWM:          storedPWM,
	}
	steps := []Step{
		{Number: 1, State: "accepted", Rate: 1, Tried: 1, AUC: 0.83, PositiveSites: 4, NegativeSites: 3},
		{Number: 2, State: "converged", Tried: 3, AUC: 0.83},
	}
	id, err := store.SaveRun(ctx, rec, steps)
	if err != nil {
		t.Fatalf("save run: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated run id")
	}

	loaded, ok, err := store.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatalf("expected run %s", id)
	}
	if loaded.MotifID != rec.MotifID || loaded.FinalAUC != rec.FinalAUC || loaded.Iterations != 2 {
		t.Fatalf("unexpected run loaded: %+v", loaded)
	}
	if time.Since(loaded.CreatedAt) > time.Hour {
		t.Fatalf("unexpected created_at %v", loaded.CreatedAt)
	}
	pwm, err := loaded.FinalPWM()
	if err != nil {
		t.Fatalf("final pwm: %v", err)
	}
	if pwm.Len() != 2 || pwm.At(3, 0) != 0.5 {
		t.Fatalf("unexpected pwm %s", pwm.Format())
	}

	loadedSteps, err := store.GetSteps(ctx, id)
	if err != nil {
		t.Fatalf("get steps: %v", err)
	}
	if len(loadedSteps) != 2 || loadedSteps[0] != steps[0] || loadedSteps[1] != steps[1] {
		t.Fatalf("unexpected steps: %+v", loadedSteps)
	}

	_, ok, err = store.GetRun(ctx, "missing")
	if err != nil || ok {
		t.Fatalf("expected missing run, got ok=%v err=%v", ok, err)
	}

	if _, err := store.SaveRun(ctx, RunRecord{ID: id, PWM: storedPWM}, nil); err == nil {
		t.Fatal("expected duplicate id to fail")
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != id {
		t.Fatalf("unexpected runs: %+v", runs)
	}

	var out bytes.Buffer
	if err := run(nil, &out); err == nil {
		t.Fatal("expected error without -db")
	}
	out.Reset()
	if err := runCommand(dbPath, "", &out); err != nil {
		t.Fatalf("list command: %v", err)
	}
	if !strings.Contains(out.String(), id) {
		t.Fatalf("list output missing run id:\n%s", out.String())
	}
	out.Reset()
	if err := runCommand(dbPath, id, &out); err != nil {
		t.Fatalf("show command: %v", err)
	}
	if !strings.Contains(out.String(), "0.610000 -> 0.830000") || !strings.Contains(out.String(), storedPWM) {
		t.Fatalf("unexpected show output:\n%s", out.String())
	}
}

func runCommand(dbPath, id string, out *bytes.Buffer) error {
	args := []string{"-db", dbPath}
	if id != "" {
		args = append(args, "-run", id)
	}
	return run(args, out)
}

func TestStoreRequiresInit(t *testing.T) {
	store := NewSQLiteStore("")
	if err := store.Init(context.Background()); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := store.ListRuns(context.Background()); err == nil {
		t.Fatal("expected error for uninitialized store")
	}
}
