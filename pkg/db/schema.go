package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Runs: one row per ingestion run
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    finished_at TIMESTAMP,
    full_rebuild BOOLEAN DEFAULT 0,
    dry_run BOOLEAN DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'running',   -- running, completed, failed
    error_message TEXT,

    -- Delta counts against the previous snapshot
    documents_seen INTEGER DEFAULT 0,
    documents_new INTEGER DEFAULT 0,
    documents_updated INTEGER DEFAULT 0,
    documents_unchanged INTEGER DEFAULT 0,
    documents_removed INTEGER DEFAULT 0,

    -- Index write counts
    chunks_staged INTEGER DEFAULT 0,
    chunks_written INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);

-- Run documents: per-document decision within a run
CREATE TABLE IF NOT EXISTS run_documents (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    title TEXT NOT NULL,
    url TEXT,
    category TEXT,
    change TEXT NOT NULL,                     -- new, updated, unchanged, removed
    content_len INTEGER DEFAULT 0,

    -- Top keywords as JSON-ish text: "faith:12, grace:7, ..."
    top_keywords TEXT,

    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE,
    UNIQUE(run_id, title)
);

CREATE INDEX IF NOT EXISTS idx_run_documents_run ON run_documents(run_id);
CREATE INDEX IF NOT EXISTS idx_run_documents_change ON run_documents(change);
`
