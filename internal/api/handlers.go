package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"analysis-history/internal/history"
	"analysis-history/internal/view"
)

const (
	defaultListLimit = 50
	defaultPairLimit = 1

	ingestBodyMaxBytes = 10 * 1024 * 1024
)

// ListResponse is the wire shape of the list endpoints.
type ListResponse struct {
	Count int `json:"count"`
	Data  any `json:"data"`
}

// handlePage serves the viewer shell.
// GET /
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := view.PageData{
		DefaultLimit: s.cfg.DefaultLimit,
		MaxLimit:     s.cfg.MaxListLimit,
	}
	if err := view.RenderPage(w, data); err != nil {
		s.logger.Error("failed to render page", "err", err)
	}
}

// handleReport serves the rendered card list as an HTML fragment.
// GET /report?type=responses|requests|latest&limit=20
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("type")
	if mode == "" {
		mode = "responses"
	}

	start := time.Now()
	cards, err := s.buildReport(r, mode)
	if err != nil {
		if errors.Is(err, errUnknownMode) {
			s.writeError(w, http.StatusBadRequest, "unknown type: "+mode)
			return
		}
		// The failure becomes part of the report so the page always has
		// something to show.
		s.logger.Error("failed to load records", "mode", mode, "err", err)
		s.metrics.RecordFetchFailure(mode)
		cards = []view.Card{view.ErrorCard(err)}
	}
	s.accountCards(mode, cards, time.Since(start))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.RenderReport(w, cards); err != nil {
		s.logger.Error("failed to render report", "mode", mode, "err", err)
	}
}

var errUnknownMode = errors.New("unknown report type")

func (s *Server) buildReport(r *http.Request, mode string) ([]view.Card, error) {
	ctx := r.Context()
	switch mode {
	case "requests":
		limit := parseLimit(r, s.cfg.DefaultLimit, s.cfg.MaxListLimit)
		recs, err := s.src.Requests(ctx, limit)
		if err != nil {
			return nil, err
		}
		return view.RequestCards(recs), nil
	case "responses":
		limit := parseLimit(r, s.cfg.DefaultLimit, s.cfg.MaxListLimit)
		recs, err := s.src.Responses(ctx, limit)
		if err != nil {
			return nil, err
		}
		return view.ResponseCards(recs), nil
	case "latest":
		limit := parseLimit(r, defaultPairLimit, s.cfg.MaxPairLimit)
		pair, err := s.src.Latest(ctx, limit)
		if err != nil {
			return nil, err
		}
		return view.LatestCards(pair), nil
	default:
		return nil, errUnknownMode
	}
}

func (s *Server) accountCards(mode string, cards []view.Card, elapsed time.Duration) {
	kinds := make([]string, len(cards))
	for i, c := range cards {
		kinds[i] = string(c.Kind)
		if c.DecisionParseFailed {
			s.metrics.RecordDecisionParseFailure()
		}
		if c.EnvelopeFallback {
			s.metrics.RecordEnvelopeFallback()
		}
	}
	s.metrics.RecordReport(mode, kinds, elapsed)
}

// handleListRequests returns the newest request records.
// GET /requests?limit=50
func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, defaultListLimit, s.cfg.MaxListLimit)
	recs, err := s.src.Requests(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list requests", "err", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list requests")
		return
	}
	if recs == nil {
		recs = []history.RequestRecord{}
	}
	s.writeJSON(w, ListResponse{Count: len(recs), Data: recs})
}

// handleListResponses returns the newest response records.
// GET /responses?limit=50
func (s *Server) handleListResponses(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, defaultListLimit, s.cfg.MaxListLimit)
	recs, err := s.src.Responses(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list responses", "err", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list responses")
		return
	}
	if recs == nil {
		recs = []history.ResponseRecord{}
	}
	s.writeJSON(w, ListResponse{Count: len(recs), Data: recs})
}

// handleLatest returns the newest request/response pairs.
// GET /latest?limit=1
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, defaultPairLimit, s.cfg.MaxPairLimit)
	pair, err := s.src.Latest(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to load latest pair", "err", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load latest pair")
		return
	}
	// Empty sides stay [] on the wire, never null.
	if pair.Request == nil {
		pair.Request = []history.RequestRecord{}
	}
	if pair.Response == nil {
		pair.Response = []history.ResponseRecord{}
	}
	s.writeJSON(w, pair)
}

// handleIngest appends one record to the embedded store.
// POST /requests, POST /responses
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request, kind string) {
	if !s.cfg.IngestEnabled {
		http.NotFound(w, r)
		return
	}
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no local store: ingestion unavailable on a remote-backed viewer")
		return
	}

	body := http.MaxBytesReader(w, r.Body, ingestBodyMaxBytes)
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var id string
	switch kind {
	case "request":
		var rec history.RequestRecord
		if err := dec.Decode(&rec); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request record: "+err.Error())
			return
		}
		if rec.Timestamp == 0 {
			rec.Timestamp = history.Now()
		}
		if err := s.store.AppendRequest(&rec); err != nil {
			s.logger.Error("failed to append request", "err", err)
			s.writeError(w, http.StatusInternalServerError, "failed to append request")
			return
		}
		id = rec.ID
	case "response":
		var rec history.ResponseRecord
		if err := dec.Decode(&rec); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid response record: "+err.Error())
			return
		}
		if rec.Timestamp == 0 {
			rec.Timestamp = history.Now()
		}
		if err := s.store.AppendResponse(&rec); err != nil {
			s.logger.Error("failed to append response", "err", err)
			s.writeError(w, http.StatusInternalServerError, "failed to append response")
			return
		}
		id = rec.ID
	}

	s.metrics.RecordIngested(kind)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	s.writeJSONBody(w, map[string]string{"id": id})
}

// handleHealth reports liveness.
// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// writeJSONBody encodes without touching headers; used after an explicit
// WriteHeader call.
func (s *Server) writeJSONBody(w http.ResponseWriter, data any) {
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "err", err)
	}
}
