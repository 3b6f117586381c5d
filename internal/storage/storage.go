// FILE: internal/storage/storage.go
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gambit/internal/response"
	"gambit/internal/search"

	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a search id has no row
var ErrNotFound = errors.New("search not found")

// Store journals settled searches to SQLite. Rows are queued by Record and
// written by one goroutine; it satisfies search.Recorder.
type Store struct {
	db      *sql.DB
	path    string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	log     zerolog.Logger

	healthy atomic.Bool

	// mu guards closed and the send side of queue
	mu      sync.RWMutex
	closed  bool
	queue   chan searchRow
	stopped chan struct{}
	once    sync.Once
}

// searchRow is one pending insert
type searchRow struct {
	SearchRecord
	transcript []byte
}

const (
	queueSize    = 256
	drainTimeout = 2 * time.Second
)

// NewStore opens the journal and starts the writer
func NewStore(dataSourceName string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// the engine process and the journal CLI may have the file open together
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout = 2000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("transcript encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("transcript decoder: %w", err)
	}

	s := &Store{
		db:      db,
		path:    dataSourceName,
		encoder: encoder,
		decoder: decoder,
		log:     log.With().Str("component", "journal").Logger(),
		queue:   make(chan searchRow, queueSize),
		stopped: make(chan struct{}),
	}
	s.healthy.Store(true)

	go s.write()
	return s, nil
}

// write inserts queued rows until Close closes the queue. After the first
// failure the journal is degraded and the rest are discarded.
func (s *Store) write() {
	defer close(s.stopped)

	for row := range s.queue {
		if !s.healthy.Load() {
			continue
		}
		if err := s.insert(row); err != nil {
			s.log.Error().Err(err).Str("search", row.SearchID).Msg("journal degraded")
			s.healthy.Store(false)
		}
	}
}

func (s *Store) insert(row searchRow) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO searches (
		search_id, position, go_args, best_move, ponder_move,
		outcome, info_count, error, transcript,
		started_at_utc, finished_at_utc
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.SearchID, row.Position, row.GoArgs, row.BestMove, row.PonderMove,
		row.Outcome, row.InfoCount, row.Error, row.transcript,
		row.StartedUTC, row.FinishedUTC,
	)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return tx.Commit()
}

// Record queues a settled search. It never blocks the search goroutine:
// a full queue drops the row, and rows after Close are ignored.
func (s *Store) Record(sum search.Summary) {
	if !s.healthy.Load() {
		return
	}

	row := searchRow{SearchRecord: SearchRecord{
		SearchID:    sum.ID,
		Position:    sum.Position.String(),
		GoArgs:      sum.Config.String(),
		BestMove:    sum.Result.BestMove,
		PonderMove:  sum.Result.PonderMove,
		Outcome:     sum.Outcome.String(),
		InfoCount:   len(sum.Infos),
		StartedUTC:  sum.Started.UTC(),
		FinishedUTC: sum.Finished.UTC(),
	}}
	if sum.Err != nil {
		row.Error = sum.Err.Error()
	}
	if len(sum.Infos) > 0 {
		lines := make([]string, 0, len(sum.Infos))
		for _, info := range sum.Infos {
			lines = append(lines, response.FormatInfo(info))
		}
		row.transcript = s.encoder.EncodeAll([]byte(strings.Join(lines, "\n")), nil)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.queue <- row:
	default:
		s.log.Warn().Str("search", sum.ID).Msg("journal queue full, dropping search")
	}
}

// IsHealthy reports whether writes are still being accepted
func (s *Store) IsHealthy() bool {
	return s.healthy.Load()
}

// Close stops accepting rows, writes everything already queued and closes
// the database. Calls after the first return nil.
func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.queue)
		s.mu.Unlock()

		select {
		case <-s.stopped:
		case <-time.After(drainTimeout):
			s.log.Warn().Int("pending", len(s.queue)).Msg("journal drain timed out, some searches are lost")
		}

		s.encoder.Close()
		s.decoder.Close()
		err = s.db.Close()
	})
	return err
}

// InitDB creates the schema if it is missing
func (s *Store) InitDB() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// DeleteDB closes the store and removes the database file
func (s *Store) DeleteDB() error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	for _, p := range []string{s.path, s.path + "-wal", s.path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete %s: %w", p, err)
		}
	}
	return nil
}

// QuerySearches returns the newest searches first. bestMove filters when
// not empty or "*"; limit <= 0 means no limit.
func (s *Store) QuerySearches(bestMove string, limit int) ([]SearchRecord, error) {
	query := `SELECT
		search_id, position, go_args, best_move, ponder_move,
		outcome, info_count, error, started_at_utc, finished_at_utc,
		COALESCE(LENGTH(transcript), 0)
	FROM searches WHERE 1=1`

	var args []interface{}
	if bestMove != "" && bestMove != "*" {
		query += " AND best_move = ?"
		args = append(args, bestMove)
	}
	query += " ORDER BY started_at_utc DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var records []SearchRecord
	for rows.Next() {
		var r SearchRecord
		err := rows.Scan(
			&r.SearchID, &r.Position, &r.GoArgs, &r.BestMove, &r.PonderMove,
			&r.Outcome, &r.InfoCount, &r.Error, &r.StartedUTC, &r.FinishedUTC,
			&r.TranscriptSz,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return records, nil
}

// Transcript returns the info lines journaled for one search
func (s *Store) Transcript(searchID string) ([]string, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT transcript FROM searches WHERE search_id = ?`, searchID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	if len(blob) == 0 {
		return nil, nil
	}

	raw, err := s.decoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("corrupt transcript: %w", err)
	}
	return strings.Split(string(raw), "\n"), nil
}
