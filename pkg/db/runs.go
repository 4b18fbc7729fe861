package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dtnitsch/llm-log-parser/models"
	"github.com/dtnitsch/llm-log-parser/pkg/mapreduce"
)

// ErrRunNotFound is returned when no run matches an id or id prefix.
var ErrRunNotFound = errors.New("run not found")

// Run is one stored aggregation run.
type Run struct {
	RunID          string
	CreatedAt      time.Time
	Root           string
	Baseline       string
	RunDir         string
	Summary        models.RunSummary
	CanonicalCount int
}

// RunItem is one canonical item row of a run.
type RunItem struct {
	Position     int
	Key          string
	Language     string
	Occurrences  int
	MistakeCount int
	MistakeRate  float64
}

// InsertRun stores a run with its canonical items and mistake records in one transaction.
func (db *DB) InsertRun(run Run, items []models.CanonicalItem, stats []mapreduce.AggregateStats, mistakes map[string][]models.MistakeRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after Commit

	s := run.Summary
	_, err = tx.Exec(`
		INSERT INTO runs (run_id, created_at, root, baseline, run_dir,
			submissions, files_processed, files_skipped, records, payload_not_found,
			parse_failures, items, unmatched_items, canonical_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.RunID, run.CreatedAt, run.Root, run.Baseline, run.RunDir,
		s.Submissions, s.FilesProcessed, s.FilesSkipped, s.Records, s.PayloadNotFound,
		s.ParseFailures, s.Items, s.UnmatchedItems, len(items))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	byKey := make(map[string]mapreduce.AggregateStats, len(stats))
	for _, st := range stats {
		byKey[st.Key] = st
	}
	for _, it := range items {
		st := byKey[it.Key]
		_, err := tx.Exec(`
			INSERT INTO canonical_items (run_id, position, key, language, occurrences, mistake_count, mistake_rate)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, run.RunID, it.Index, it.Key, it.Language, st.Occurrences, st.MistakeCount, st.Rate)
		if err != nil {
			return fmt.Errorf("failed to insert canonical item: %w", err)
		}
	}

	for _, it := range items {
		for _, m := range mistakes[it.Key] {
			_, err := tx.Exec(`
				INSERT INTO mistake_records (run_id, key, submitter, mistake, comment, source_file)
				VALUES (?, ?, ?, ?, ?, ?)
			`, run.RunID, m.Key, m.Submitter, m.Mistake, m.Comment, m.SourceFile)
			if err != nil {
				return fmt.Errorf("failed to insert mistake record: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

const runColumns = `run_id, created_at, root, baseline, COALESCE(run_dir, ''),
	submissions, files_processed, files_skipped, records, payload_not_found,
	parse_failures, items, unmatched_items, canonical_count`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	s := &r.Summary
	err := row.Scan(&r.RunID, &r.CreatedAt, &r.Root, &r.Baseline, &r.RunDir,
		&s.Submissions, &s.FilesProcessed, &s.FilesSkipped, &s.Records, &s.PayloadNotFound,
		&s.ParseFailures, &s.Items, &s.UnmatchedItems, &r.CanonicalCount)
	return r, err
}

// ListRuns returns runs newest first. limit <= 0 returns all.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun looks a run up by full id or unique id prefix.
func (db *DB) GetRun(id string) (*Run, error) {
	rows, err := db.Query(`SELECT `+runColumns+` FROM runs WHERE run_id LIKE ? || '%' LIMIT 2`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer rows.Close()

	var found []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// LatestRun returns the most recent run.
func (db *DB) LatestRun() (*Run, error) {
	r, err := scanRun(db.QueryRow(`SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return &r, nil
}

// GetRunItems returns a run's canonical items in position order.
func (db *DB) GetRunItems(runID string) ([]RunItem, error) {
	rows, err := db.Query(`
		SELECT position, key, COALESCE(language, ''), occurrences, mistake_count, mistake_rate
		FROM canonical_items
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run items: %w", err)
	}
	defer rows.Close()

	var items []RunItem
	for rows.Next() {
		var it RunItem
		if err := rows.Scan(&it.Position, &it.Key, &it.Language, &it.Occurrences, &it.MistakeCount, &it.MistakeRate); err != nil {
			return nil, fmt.Errorf("failed to scan run item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetRunMistakes returns a run's mistake records in insertion order.
func (db *DB) GetRunMistakes(runID string) ([]models.MistakeRecord, error) {
	rows, err := db.Query(`
		SELECT key, submitter, COALESCE(mistake, ''), COALESCE(comment, ''), COALESCE(source_file, '')
		FROM mistake_records
		WHERE run_id = ?
		ORDER BY record_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run mistakes: %w", err)
	}
	defer rows.Close()

	var records []models.MistakeRecord
	for rows.Next() {
		m := models.MistakeRecord{IsMistake: true}
		if err := rows.Scan(&m.Key, &m.Submitter, &m.Mistake, &m.Comment, &m.SourceFile); err != nil {
			return nil, fmt.Errorf("failed to scan mistake record: %w", err)
		}
		records = append(records, m)
	}
	return records, rows.Err()
}

// DeleteRun removes a run with its items and mistakes.
func (db *DB) DeleteRun(runID string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"mistake_records", "canonical_items"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE run_id = ?`, runID); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}
	res, err := tx.Exec(`DELETE FROM runs WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return tx.Commit()
}
