package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Runs: one row per aggregation run
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL,
    root TEXT NOT NULL,
    baseline TEXT NOT NULL,
    run_dir TEXT,

    -- Run summary counters
    submissions INTEGER DEFAULT 0,
    files_processed INTEGER DEFAULT 0,
    files_skipped INTEGER DEFAULT 0,
    records INTEGER DEFAULT 0,
    payload_not_found INTEGER DEFAULT 0,
    parse_failures INTEGER DEFAULT 0,
    items INTEGER DEFAULT 0,
    unmatched_items INTEGER DEFAULT 0,
    canonical_count INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

-- Canonical items established by the baseline of a run
CREATE TABLE IF NOT EXISTS canonical_items (
    item_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    key TEXT NOT NULL,
    language TEXT,
    occurrences INTEGER DEFAULT 0,
    mistake_count INTEGER DEFAULT 0,
    mistake_rate REAL DEFAULT 0,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE,
    UNIQUE(run_id, key)
);

CREATE INDEX IF NOT EXISTS idx_items_run ON canonical_items(run_id);

-- Mistake records attributed to submitters
CREATE TABLE IF NOT EXISTS mistake_records (
    record_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    key TEXT NOT NULL,
    submitter TEXT NOT NULL,
    mistake TEXT,
    comment TEXT,
    source_file TEXT,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_mistakes_run ON mistake_records(run_id);
CREATE INDEX IF NOT EXISTS idx_mistakes_submitter ON mistake_records(submitter);
`
