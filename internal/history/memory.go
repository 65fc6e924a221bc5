package history

import (
	"sync"

	"github.com/google/uuid"
)

// MemoryStore implements Store using in-memory ring buffers.
// This is used when STORAGE=memory or as a fallback.
type MemoryStore struct {
	mu        sync.RWMutex
	requests  ring[RequestRecord]
	responses ring[ResponseRecord]
}

// NewMemoryStore creates a new in-memory store bounded to maxRows records
// per record kind.
func NewMemoryStore(maxRows int) *MemoryStore {
	return &MemoryStore{
		requests:  newRing[RequestRecord](maxRows),
		responses: newRing[ResponseRecord](maxRows),
	}
}

// AppendRequest adds a request record.
func (s *MemoryStore) AppendRequest(rec *RequestRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	s.requests.push(*rec)
	return nil
}

// AppendResponse adds a response record.
func (s *MemoryStore) AppendResponse(rec *ResponseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	s.responses.push(*rec)
	return nil
}

// Requests returns up to limit request records, newest first.
func (s *MemoryStore) Requests(limit int) ([]RequestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requests.newest(limit), nil
}

// Responses returns up to limit response records, newest first.
func (s *MemoryStore) Responses(limit int) ([]ResponseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.responses.newest(limit), nil
}

// Close is a no-op for memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// ring is a fixed-size overwrite buffer.
type ring[T any] struct {
	items   []T
	maxRows int
	head    int // next write position
	count   int
}

func newRing[T any](maxRows int) ring[T] {
	// A non-positive capacity would make push panic; hold at least one.
	if maxRows < 1 {
		maxRows = 1
	}
	return ring[T]{
		items:   make([]T, maxRows),
		maxRows: maxRows,
	}
}

func (r *ring[T]) push(item T) {
	r.items[r.head] = item
	r.head = (r.head + 1) % r.maxRows
	if r.count < r.maxRows {
		r.count++
	}
}

// newest returns up to limit items, most recently pushed first.
func (r *ring[T]) newest(limit int) []T {
	if r.count == 0 || limit <= 0 {
		return nil
	}
	n := r.count
	if limit < n {
		n = limit
	}
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		idx := (r.head - 1 - i + r.maxRows) % r.maxRows
		out = append(out, r.items[idx])
	}
	return out
}
