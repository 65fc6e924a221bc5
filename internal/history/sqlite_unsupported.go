//go:build mips64 || mips64le || ppc64 || s390x

package history

import (
	"errors"
	"log/slog"
)

// SQLiteStore implements Store using SQLite with WAL mode.
// This is a stub implementation for unsupported platforms.
type SQLiteStore struct{}

// NewSQLiteStore creates a new SQLite store at the given path.
// On unsupported platforms, this returns an error.
func NewSQLiteStore(path string, maxRows int, logger *slog.Logger) (*SQLiteStore, error) {
	return nil, errors.New("SQLite storage is not supported on this platform, use memory storage instead")
}

// AppendRequest adds a request record.
func (s *SQLiteStore) AppendRequest(rec *RequestRecord) error {
	return errors.New("SQLite storage not available")
}

// AppendResponse adds a response record.
func (s *SQLiteStore) AppendResponse(rec *ResponseRecord) error {
	return errors.New("SQLite storage not available")
}

// Requests returns up to limit request records, newest first.
func (s *SQLiteStore) Requests(limit int) ([]RequestRecord, error) {
	return nil, errors.New("SQLite storage not available")
}

// Responses returns up to limit response records, newest first.
func (s *SQLiteStore) Responses(limit int) ([]ResponseRecord, error) {
	return nil, errors.New("SQLite storage not available")
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return nil
}
