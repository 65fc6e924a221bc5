//go:build !mips64 && !mips64le && !ppc64 && !s390x

package history

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO required)
)

const schema = `
CREATE TABLE IF NOT EXISTS request_history (
    id TEXT PRIMARY KEY,
    ts INTEGER NOT NULL,
    request TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS response_history (
    id TEXT PRIMARY KEY,
    ts INTEGER NOT NULL,
    response_raw TEXT NOT NULL,
    status_code INTEGER DEFAULT 0,
    cost_ms REAL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_request_history_ts ON request_history(ts);
CREATE INDEX IF NOT EXISTS idx_response_history_ts ON response_history(ts);
`

// SQLiteStore implements Store using SQLite with WAL mode.
type SQLiteStore struct {
	db      *sql.DB
	maxRows int
	pruneMu sync.Mutex
	logger  *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// It enables WAL mode for better concurrent performance.
func NewSQLiteStore(path string, maxRows int, logger *slog.Logger) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_journal=WAL&_sync=NORMAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteStore{
		db:      db,
		maxRows: maxRows,
		logger:  logger,
	}, nil
}

// AppendRequest adds a request record.
func (s *SQLiteStore) AppendRequest(rec *RequestRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := s.db.Exec(
		`INSERT INTO request_history (id, ts, request) VALUES (?, ?, ?)`,
		rec.ID, int64(rec.Timestamp), rec.Request,
	)
	if err != nil {
		return fmt.Errorf("insert request record: %w", err)
	}

	// Pruning check is best effort, off the hot path.
	go s.maybePrune("request_history")

	return nil
}

// AppendResponse adds a response record.
func (s *SQLiteStore) AppendResponse(rec *ResponseRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := s.db.Exec(
		`INSERT INTO response_history (id, ts, response_raw, status_code, cost_ms) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, int64(rec.Timestamp), rec.ResponseRaw, rec.StatusCode, rec.CostMs,
	)
	if err != nil {
		return fmt.Errorf("insert response record: %w", err)
	}

	go s.maybePrune("response_history")

	return nil
}

// Requests returns up to limit request records, newest first.
func (s *SQLiteStore) Requests(limit int) ([]RequestRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.Query(
		`SELECT id, ts, request FROM request_history ORDER BY ts DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list request records: %w", err)
	}
	defer rows.Close()

	var out []RequestRecord
	for rows.Next() {
		var rec RequestRecord
		var ts int64
		if err := rows.Scan(&rec.ID, &ts, &rec.Request); err != nil {
			return nil, fmt.Errorf("scan request record: %w", err)
		}
		rec.Timestamp = Timestamp(ts)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Responses returns up to limit response records, newest first.
func (s *SQLiteStore) Responses(limit int) ([]ResponseRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.Query(
		`SELECT id, ts, response_raw, status_code, cost_ms FROM response_history ORDER BY ts DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list response records: %w", err)
	}
	defer rows.Close()

	var out []ResponseRecord
	for rows.Next() {
		var rec ResponseRecord
		var ts int64
		if err := rows.Scan(&rec.ID, &ts, &rec.ResponseRaw, &rec.StatusCode, &rec.CostMs); err != nil {
			return nil, fmt.Errorf("scan response record: %w", err)
		}
		rec.Timestamp = Timestamp(ts)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// maybePrune deletes the oldest rows of a table once it exceeds maxRows
// by a 10% slack, mirroring the producer's bounded history lists.
func (s *SQLiteStore) maybePrune(table string) {
	s.pruneMu.Lock()
	defer s.pruneMu.Unlock()

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&count); err != nil {
		s.logger.Warn("prune count failed", "table", table, "err", err)
		return
	}
	if count <= s.maxRows+s.maxRows/10 {
		return
	}

	_, err := s.db.Exec(
		`DELETE FROM `+table+` WHERE rowid IN (
			SELECT rowid FROM `+table+` ORDER BY ts ASC, rowid ASC LIMIT ?
		)`, count-s.maxRows,
	)
	if err != nil {
		s.logger.Warn("prune failed", "table", table, "err", err)
		return
	}
	s.logger.Debug("pruned history", "table", table, "deleted", count-s.maxRows)
}
