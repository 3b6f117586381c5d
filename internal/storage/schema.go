// FILE: internal/storage/schema.go
package storage

import "time"

// SearchRecord represents a row in the searches table
type SearchRecord struct {
	SearchID     string    `db:"search_id" json:"id"`
	Position     string    `db:"position" json:"position"`
	GoArgs       string    `db:"go_args" json:"go"`
	BestMove     string    `db:"best_move" json:"bestMove"`
	PonderMove   string    `db:"ponder_move" json:"ponderMove"`
	Outcome      string    `db:"outcome" json:"outcome"`
	InfoCount    int       `db:"info_count" json:"infoCount"`
	Error        string    `db:"error" json:"error,omitempty"`
	StartedUTC   time.Time `db:"started_at_utc" json:"startedAt"`
	FinishedUTC  time.Time `db:"finished_at_utc" json:"finishedAt"`
	TranscriptSz int       `db:"transcript_size" json:"transcriptBytes"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS searches (
	search_id TEXT PRIMARY KEY,
	position TEXT NOT NULL,
	go_args TEXT NOT NULL DEFAULT '',
	best_move TEXT NOT NULL DEFAULT '',
	ponder_move TEXT NOT NULL DEFAULT '',
	outcome TEXT NOT NULL CHECK(outcome IN ('completed', 'stopped', 'forfeited', 'failed')),
	info_count INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',
	transcript BLOB,
	started_at_utc DATETIME NOT NULL,
	finished_at_utc DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_searches_started ON searches(started_at_utc);
CREATE INDEX IF NOT EXISTS idx_searches_best_move ON searches(best_move);
`
