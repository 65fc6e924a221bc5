package history

// Store is the interface for history record storage.
// List methods return records newest first.
type Store interface {
	// AppendRequest adds a request record. A missing ID is assigned.
	AppendRequest(rec *RequestRecord) error

	// AppendResponse adds a response record. A missing ID is assigned.
	AppendResponse(rec *ResponseRecord) error

	// Requests returns up to limit request records, newest first.
	Requests(limit int) ([]RequestRecord, error)

	// Responses returns up to limit response records, newest first.
	Responses(limit int) ([]ResponseRecord, error)

	// Close releases resources.
	Close() error
}

// Latest returns the newest requests and responses as a positional pair.
func Latest(s Store, limit int) (LatestPayload, error) {
	reqs, err := s.Requests(limit)
	if err != nil {
		return LatestPayload{}, err
	}
	resps, err := s.Responses(limit)
	if err != nil {
		return LatestPayload{}, err
	}
	return LatestPayload{Request: reqs, Response: resps}, nil
}
