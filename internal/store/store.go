// Package store handles SQLite persistence of extraction runs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/verte-zerg/keydyn/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrRunNotFound is returned when a run ID (or any run) does not exist.
var ErrRunNotFound = errors.New("run not found")

// Kind selects a measurement table.
type Kind int

const (
	// KindBigram selects bigram interkey intervals.
	KindBigram Kind = iota
	// KindWord selects word durations.
	KindWord
	// KindSentence selects sentence durations.
	KindSentence
)

func (k Kind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindSentence:
		return "sentence"
	default:
		return "bigram"
	}
}

func (k Kind) table() string {
	switch k {
	case KindWord:
		return "word_times"
	case KindSentence:
		return "sentence_times"
	default:
		return "bigram_times"
	}
}

// Store wraps SQLite access for run data.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *rand.Rand
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			participants_file TEXT NOT NULL,
			keystroke_dir TEXT NOT NULL,
			min_interval_ms INTEGER NOT NULL,
			max_interval_ms INTEGER NOT NULL,
			requested INTEGER NOT NULL,
			processed INTEGER NOT NULL,
			missing INTEGER NOT NULL,
			skipped INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS bigram_times (
			run_id TEXT NOT NULL,
			participant_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			token TEXT NOT NULL,
			ms INTEGER NOT NULL,
			PRIMARY KEY (run_id, participant_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS word_times (
			run_id TEXT NOT NULL,
			participant_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			token TEXT NOT NULL,
			ms INTEGER NOT NULL,
			PRIMARY KEY (run_id, participant_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS sentence_times (
			run_id TEXT NOT NULL,
			participant_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			token TEXT NOT NULL,
			ms INTEGER NOT NULL,
			PRIMARY KEY (run_id, participant_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_bigram_times_token ON bigram_times(run_id, token);`,
		`CREATE INDEX IF NOT EXISTS idx_word_times_token ON word_times(run_id, token);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) newID(at time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), s.entropy).String()
}

// InsertRun stores a run and all of its measurements in one transaction.
// When info.ID is empty a new ULID is assigned. The stored ID is returned.
func (s *Store) InsertRun(ctx context.Context, info model.RunInfo, results []model.ParticipantResult) (id string, err error) {
	if info.CreatedAt.IsZero() {
		info.CreatedAt = time.Now()
	}
	if info.ID == "" {
		info.ID = s.newID(info.CreatedAt)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, participants_file, keystroke_dir, min_interval_ms, max_interval_ms, requested, processed, missing, skipped)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		info.ID,
		info.CreatedAt.UTC().Format(time.RFC3339Nano),
		info.ParticipantsFile,
		info.KeystrokeDir,
		info.Bounds.MinMs,
		info.Bounds.MaxMs,
		info.Requested,
		info.Processed,
		info.Missing,
		info.Skipped,
	); err != nil {
		return "", err
	}

	for _, kind := range []Kind{KindBigram, KindWord, KindSentence} {
		if err = insertMeasurements(ctx, tx, info.ID, kind, results); err != nil {
			return "", err
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return info.ID, nil
}

func insertMeasurements(ctx context.Context, tx *sql.Tx, runID string, kind Kind, results []model.ParticipantResult) error {
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (run_id, participant_id, seq, token, ms) VALUES (?, ?, ?, ?, ?)`, kind.table()))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, res := range results {
		switch kind {
		case KindBigram:
			for i, rec := range res.Bigrams {
				if _, err := stmt.ExecContext(ctx, runID, res.ParticipantID, i, rec.Bigram, rec.IntervalMs); err != nil {
					return err
				}
			}
		case KindWord:
			for i, rec := range res.Words {
				if _, err := stmt.ExecContext(ctx, runID, res.ParticipantID, i, rec.Word, rec.DurationMs); err != nil {
					return err
				}
			}
		case KindSentence:
			for i, rec := range res.Sentences {
				if _, err := stmt.ExecContext(ctx, runID, res.ParticipantID, i, rec.Text, rec.DurationMs); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

const runColumns = `r.id, r.created_at, r.participants_file, r.keystroke_dir, r.min_interval_ms, r.max_interval_ms,
	r.requested, r.processed, r.missing, r.skipped,
	(SELECT COUNT(*) FROM bigram_times b WHERE b.run_id = r.id),
	(SELECT COUNT(*) FROM word_times w WHERE w.run_id = r.id),
	(SELECT COUNT(*) FROM sentence_times st WHERE st.run_id = r.id)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (model.RunInfo, error) {
	var info model.RunInfo
	var createdAt string
	if err := row.Scan(&info.ID, &createdAt, &info.ParticipantsFile, &info.KeystrokeDir,
		&info.Bounds.MinMs, &info.Bounds.MaxMs,
		&info.Requested, &info.Processed, &info.Missing, &info.Skipped,
		&info.BigramCount, &info.WordCount, &info.SentenceCount); err != nil {
		return model.RunInfo{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.RunInfo{}, err
	}
	info.CreatedAt = parsed
	return info, nil
}

// GetRun returns one run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (model.RunInfo, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs r WHERE r.id = ?`, id)
	info, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RunInfo{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return info, err
}

// LatestRun returns the most recently created run.
func (s *Store) LatestRun(ctx context.Context) (model.RunInfo, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs r ORDER BY r.created_at DESC, r.id DESC LIMIT 1`)
	info, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RunInfo{}, ErrRunNotFound
	}
	return info, err
}

// ListRuns returns runs newest first. limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.RunInfo, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs r ORDER BY r.created_at DESC, r.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunInfo
	for rows.Next() {
		info, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// TokenAggregates returns per-token count, sum, min and max for a run,
// most frequent first.
func (s *Store) TokenAggregates(ctx context.Context, runID string, kind Kind) ([]model.TokenAggregate, error) {
	query := fmt.Sprintf(`SELECT token, COUNT(*) AS n, SUM(ms), MIN(ms), MAX(ms)
		FROM %s
		WHERE run_id = ?
		GROUP BY token
		ORDER BY n DESC, token ASC`, kind.table())
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.TokenAggregate
	for rows.Next() {
		var agg model.TokenAggregate
		if err := rows.Scan(&agg.Token, &agg.Count, &agg.SumMs, &agg.MinMs, &agg.MaxMs); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Intervals returns every stored value of a kind in insertion order.
func (s *Store) Intervals(ctx context.Context, runID string, kind Kind) ([]int64, error) {
	query := fmt.Sprintf(`SELECT ms FROM %s WHERE run_id = ? ORDER BY rowid ASC`, kind.table())
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var values []int64
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return values, nil
}
