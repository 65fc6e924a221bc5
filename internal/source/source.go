// Package source abstracts where history records are read from: the
// embedded store, or another instance of this service over HTTP.
package source

import (
	"context"
	"fmt"

	"analysis-history/internal/history"
)

// Source provides the record lists the viewer renders.
type Source interface {
	Requests(ctx context.Context, limit int) ([]history.RequestRecord, error)
	Responses(ctx context.Context, limit int) ([]history.ResponseRecord, error)
	Latest(ctx context.Context, limit int) (history.LatestPayload, error)
}

// Local reads from an in-process store.
type Local struct {
	Store history.Store
}

// NewLocal wraps a store as a Source.
func NewLocal(store history.Store) *Local {
	return &Local{Store: store}
}

func (l *Local) Requests(_ context.Context, limit int) ([]history.RequestRecord, error) {
	recs, err := l.Store.Requests(limit)
	if err != nil {
		return nil, fmt.Errorf("local requests: %w", err)
	}
	return recs, nil
}

func (l *Local) Responses(_ context.Context, limit int) ([]history.ResponseRecord, error) {
	recs, err := l.Store.Responses(limit)
	if err != nil {
		return nil, fmt.Errorf("local responses: %w", err)
	}
	return recs, nil
}

func (l *Local) Latest(_ context.Context, limit int) (history.LatestPayload, error) {
	pair, err := history.Latest(l.Store, limit)
	if err != nil {
		return history.LatestPayload{}, fmt.Errorf("local latest: %w", err)
	}
	return pair, nil
}
