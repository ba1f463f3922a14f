package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Run represents one ingestion run.
type Run struct {
	RunID              int64
	StartedAt          time.Time
	FinishedAt         time.Time
	FullRebuild        bool
	DryRun             bool
	Status             string
	ErrorMessage       string
	DocumentsSeen      int
	DocumentsNew       int
	DocumentsUpdated   int
	DocumentsUnchanged int
	DocumentsRemoved   int
	ChunksStaged       int
	ChunksWritten      int
}

// RunDocument is one document decision within a run.
type RunDocument struct {
	Title       string
	URL         string
	Category    string
	Change      string
	ContentLen  int
	TopKeywords string
}

// RunStats carries the counters written back when a run finishes.
type RunStats struct {
	DocumentsSeen      int
	DocumentsNew       int
	DocumentsUpdated   int
	DocumentsUnchanged int
	DocumentsRemoved   int
	ChunksStaged       int
	ChunksWritten      int
}

// StartRun creates a new run record in the running state.
func (db *DB) StartRun(fullRebuild, dryRun bool) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO runs (full_rebuild, dry_run, status)
		VALUES (?, ?, 'running')
	`, fullRebuild, dryRun)
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return runID, nil
}

// RecordDocument stores one document decision for a run.
func (db *DB) RecordDocument(runID int64, doc RunDocument) error {
	_, err := db.Exec(`
		INSERT INTO run_documents (run_id, title, url, category, change, content_len, top_keywords)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, runID, doc.Title, doc.URL, doc.Category, doc.Change, doc.ContentLen, doc.TopKeywords)
	if err != nil {
		return fmt.Errorf("failed to record document %q: %w", doc.Title, err)
	}
	return nil
}

// FinishRun marks a run completed and writes its counters.
func (db *DB) FinishRun(runID int64, stats RunStats) error {
	_, err := db.Exec(`
		UPDATE runs
		SET finished_at = CURRENT_TIMESTAMP,
		    status = 'completed',
		    documents_seen = ?,
		    documents_new = ?,
		    documents_updated = ?,
		    documents_unchanged = ?,
		    documents_removed = ?,
		    chunks_staged = ?,
		    chunks_written = ?
		WHERE run_id = ?
	`, stats.DocumentsSeen, stats.DocumentsNew, stats.DocumentsUpdated,
		stats.DocumentsUnchanged, stats.DocumentsRemoved,
		stats.ChunksStaged, stats.ChunksWritten, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run %d: %w", runID, err)
	}
	return nil
}

// FailRun marks a run failed with its error message.
func (db *DB) FailRun(runID int64, message string) error {
	_, err := db.Exec(`
		UPDATE runs
		SET finished_at = CURRENT_TIMESTAMP, status = 'failed', error_message = ?
		WHERE run_id = ?
	`, message, runID)
	if err != nil {
		return fmt.Errorf("failed to mark run %d failed: %w", runID, err)
	}
	return nil
}

// GetRunByID retrieves a run by its ID.
func (db *DB) GetRunByID(runID int64) (*Run, error) {
	var run Run
	var finishedAt sql.NullTime
	var errorMessage sql.NullString
	err := db.QueryRow(`
		SELECT run_id, started_at, finished_at, full_rebuild, dry_run, status, error_message,
		       documents_seen, documents_new, documents_updated, documents_unchanged,
		       documents_removed, chunks_staged, chunks_written
		FROM runs
		WHERE run_id = ?
	`, runID).Scan(
		&run.RunID,
		&run.StartedAt,
		&finishedAt,
		&run.FullRebuild,
		&run.DryRun,
		&run.Status,
		&errorMessage,
		&run.DocumentsSeen,
		&run.DocumentsNew,
		&run.DocumentsUpdated,
		&run.DocumentsUnchanged,
		&run.DocumentsRemoved,
		&run.ChunksStaged,
		&run.ChunksWritten,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	if errorMessage.Valid {
		run.ErrorMessage = errorMessage.String
	}
	return &run, nil
}

// ListRuns retrieves runs ordered by most recent first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `
		SELECT run_id, started_at, finished_at, full_rebuild, dry_run, status, error_message,
		       documents_seen, documents_new, documents_updated, documents_unchanged,
		       documents_removed, chunks_staged, chunks_written
		FROM runs
		ORDER BY started_at DESC, run_id DESC
	`
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
		var run Run
		var finishedAt sql.NullTime
		var errorMessage sql.NullString
		if err := rows.Scan(
			&run.RunID, &run.StartedAt, &finishedAt, &run.FullRebuild, &run.DryRun,
			&run.Status, &errorMessage,
			&run.DocumentsSeen, &run.DocumentsNew, &run.DocumentsUpdated,
			&run.DocumentsUnchanged, &run.DocumentsRemoved,
			&run.ChunksStaged, &run.ChunksWritten,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if finishedAt.Valid {
			run.FinishedAt = finishedAt.Time
		}
		if errorMessage.Valid {
			run.ErrorMessage = errorMessage.String
		}
		runs = append(runs, run)
	}

	return runs, nil
}

// GetRunDocuments retrieves all document decisions for a run.
func (db *DB) GetRunDocuments(runID int64) ([]RunDocument, error) {
	rows, err := db.Query(`
		SELECT title, url, category, change, content_len, top_keywords
		FROM run_documents
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run documents: %w", err)
	}
	defer rows.Close()

	var docs []RunDocument
	for rows.Next() {
		var doc RunDocument
		var url, category, keywords sql.NullString
		if err := rows.Scan(&doc.Title, &url, &category, &doc.Change, &doc.ContentLen, &keywords); err != nil {
			return nil, fmt.Errorf("failed to scan run document: %w", err)
		}
		if url.Valid {
			doc.URL = url.String
		}
		if category.Valid {
			doc.Category = category.String
		}
		if keywords.Valid {
			doc.TopKeywords = keywords.String
		}
		docs = append(docs, doc)
	}

	return docs, nil
}
