// Package history keeps a SQLite record of optimization runs and their
// per-iteration AUC trace.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"damo_go/motif"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// RunRecord is one stored optimization.
type RunRecord struct {
	ID           string
	CreatedAt    time.Time
	PositiveFile string
	NegativeFile string
	MotifFile    string
	MotifID      string
	Positives    int
	Negatives    int
	OriginalAUC  float64
	FinalAUC     float64
	State        string
	Iterations   int
	PWM          string // motif.PWM.Format text
}

// Step is one iteration of a stored run.
type Step struct {
	Number        int
	State         string
	Rate          float64
	Tried         int
	AUC           float64
	PositiveSites int
	NegativeSites int
}

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Open creates and initialises a store in one call.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	s := NewSQLiteStore(path)
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

// SaveRun stores run and its steps in one transaction. An empty run.ID is
// replaced by a fresh UUID; the stored ID is returned.
func (s *SQLiteStore) SaveRun(ctx context.Context, run RunRecord, steps []Step) (string, error) {
	db, err := s.getDB()
	if err != nil {
		return "", err
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, positive_file, negative_file, motif_file, motif_id,
			positives, negatives, original_auc, final_auc, state, iterations, pwm)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.CreatedAt.Format(time.RFC3339Nano), run.PositiveFile, run.NegativeFile, run.MotifFile, run.MotifID,
		run.Positives, run.Negatives, run.OriginalAUC, run.FinalAUC, run.State, run.Iterations, run.PWM)
	if err != nil {
		return "", fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	for _, st := range steps {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO steps (run_id, number, state, rate, tried, auc, positive_sites, negative_sites)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, run.ID, st.Number, st.State, st.Rate, st.Tried, st.AUC, st.PositiveSites, st.NegativeSites)
		if err != nil {
			return "", fmt.Errorf("insert step %d of run %s: %w", st.Number, run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return run.ID, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (RunRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return RunRecord{}, false, err
	}

	row := db.QueryRowContext(ctx, `
		SELECT id, created_at, positive_file, negative_file, motif_file, motif_id,
			positives, negatives, original_auc, final_auc, state, iterations, pwm
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, false, nil
		}
		return RunRecord{}, false, err
	}
	return run, true, nil
}

// ListRuns returns runs newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]RunRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, created_at, positive_file, negative_file, motif_file, motif_id,
			positives, negatives, original_auc, final_auc, state, iterations, pwm
		FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) GetSteps(ctx context.Context, runID string) ([]Step, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT number, state, rate, tried, auc, positive_sites, negative_sites
		FROM steps WHERE run_id = ? ORDER BY number`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var st Step
		if err := rows.Scan(&st.Number, &st.State, &st.Rate, &st.Tried, &st.AUC, &st.PositiveSites, &st.NegativeSites); err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

// FinalPWM parses the stored matrix of a run.
func (r RunRecord) FinalPWM() (motif.PWM, error) {
	return motif.ReadPWM(strings.NewReader(r.PWM))
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var run RunRecord
	var created string
	err := row.Scan(&run.ID, &created, &run.PositiveFile, &run.NegativeFile, &run.MotifFile, &run.MotifID,
		&run.Positives, &run.Negatives, &run.OriginalAUC, &run.FinalAUC, &run.State, &run.Iterations, &run.PWM)
	if err != nil {
		return RunRecord{}, err
	}
	run.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return RunRecord{}, fmt.Errorf("decode created_at of run %s: %w", run.ID, err)
	}
	return run, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			positive_file TEXT NOT NULL,
			negative_file TEXT NOT NULL,
			motif_file TEXT NOT NULL,
			motif_id TEXT NOT NULL,
			positives INTEGER NOT NULL,
			negatives INTEGER NOT NULL,
			original_auc REAL NOT NULL,
			final_auc REAL NOT NULL,
			state TEXT NOT NULL,
			iterations INTEGER NOT NULL,
			pwm TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS steps (
			run_id TEXT NOT NULL REFERENCES runs(id),
			number INTEGER NOT NULL,
			state TEXT NOT NULL,
			rate REAL NOT NULL,
			tried INTEGER NOT NULL,
			auc REAL NOT NULL,
			positive_sites INTEGER NOT NULL,
			negative_sites INTEGER NOT NULL,
			PRIMARY KEY (run_id, number)
		);
	`)
	return err
}
