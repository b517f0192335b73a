package runlog

import "time"

// Run is one recorded sync run.
type Run struct {
	ID              int64
	StartedAt       string
	FinishedAt      string
	Status          string // "completed" or "failed"
	Institutions    int
	StoredFound     int
	Unparseable     int
	Downloaded      int
	Rejected        int
	SkippedInvalid  int
	WindowStart     string
	WindowEnd       string
	DurationSeconds float64
}

// RunError is one structured error captured during a run.
type RunError struct {
	ID         int64
	RunID      int64
	Kind       string
	Ticker     string
	Message    string
	OccurredAt string
}

// InsertRun records a completed run and its errors. Returns the run ID.
func (db *DB) InsertRun(run Run, errs []RunError) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}

	result, err := tx.Exec(
		`INSERT INTO runs (started_at, finished_at, status, institutions,
			stored_found, unparseable, downloaded, rejected, skipped_invalid,
			window_start, window_end, duration_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt, run.FinishedAt, run.Status, run.Institutions,
		run.StoredFound, run.Unparseable, run.Downloaded, run.Rejected,
		run.SkippedInvalid, run.WindowStart, run.WindowEnd, run.DurationSeconds,
	)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	runID, err := result.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	for _, e := range errs {
		occurred := e.OccurredAt
		if occurred == "" {
			occurred = time.Now().Format(time.RFC3339)
		}
		if _, err := tx.Exec(
			`INSERT INTO run_errors (run_id, kind, ticker, message, occurred_at)
			VALUES (?, ?, ?, ?, ?)`,
			runID, e.Kind, e.Ticker, e.Message, occurred,
		); err != nil {
			tx.Rollback()
			return 0, err
		}
	}

	return runID, tx.Commit()
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	rows, err := db.conn.Query(
		`SELECT id, started_at, finished_at, status, institutions, stored_found,
			unparseable, downloaded, rejected, skipped_invalid,
			window_start, window_end, duration_seconds
		FROM runs ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Status,
			&r.Institutions, &r.StoredFound, &r.Unparseable, &r.Downloaded,
			&r.Rejected, &r.SkippedInvalid, &r.WindowStart, &r.WindowEnd,
			&r.DurationSeconds); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ErrorsForRun returns the error entries recorded for one run.
func (db *DB) ErrorsForRun(runID int64) ([]RunError, error) {
	rows, err := db.conn.Query(
		`SELECT id, run_id, kind, ticker, message, occurred_at
		FROM run_errors WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var errs []RunError
	for rows.Next() {
		var e RunError
		if err := rows.Scan(&e.ID, &e.RunID, &e.Kind, &e.Ticker, &e.Message, &e.OccurredAt); err != nil {
			return nil, err
		}
		errs = append(errs, e)
	}
	return errs, rows.Err()
}
