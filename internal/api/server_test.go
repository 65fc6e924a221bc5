package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"analysis-history/internal/config"
	"analysis-history/internal/history"
	"analysis-history/internal/metrics"
	"analysis-history/internal/source"
)

const testEnvelope = `{"choices":[{"message":{"content":"<reasoning>why</reasoning><decision>[{\"action\":\"hold\"}]</decision>"}}]}`

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *history.MemoryStore) {
	t.Helper()
	cfg := config.Config{
		DefaultLimit:    20,
		MaxListLimit:    500,
		MaxPairLimit:    300,
		IngestEnabled:   true,
		CORSAllowOrigin: "*",
	}
	if mutate != nil {
		mutate(&cfg)
	}
	store := history.NewMemoryStore(100)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	staticFS := fstest.MapFS{
		"style.css": &fstest.MapFile{Data: []byte("body{}")},
	}
	srv := NewServer(cfg, source.NewLocal(store), store, metrics.NewMetrics(), staticFS, logger)
	return srv, store
}

func do(srv *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestPage(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(srv, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `id="report"`)
	assert.Contains(t, rec.Body.String(), `value="20"`)
}

func TestReportResponses(t *testing.T) {
	srv, store := newTestServer(t, nil)
	require.NoError(t, store.AppendResponse(&history.ResponseRecord{
		Timestamp:   history.Now(),
		ResponseRaw: testEnvelope,
		StatusCode:  200,
	}))

	rec := do(srv, http.MethodGet, "/report?type=responses&limit=10", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `class="card response"`)
	assert.Contains(t, body, "why")
	assert.Contains(t, body, `<span class="key">`)
}

func TestReportEmptyStore(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(srv, http.MethodGet, "/report?type=requests", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="card placeholder"`)
}

// failingSource simulates an unreachable backend.
type failingSource struct{}

func (failingSource) Requests(context.Context, int) ([]history.RequestRecord, error) {
	return nil, errors.New("backend unreachable")
}

func (failingSource) Responses(context.Context, int) ([]history.ResponseRecord, error) {
	return nil, errors.New("backend unreachable")
}

func (failingSource) Latest(context.Context, int) (history.LatestPayload, error) {
	return history.LatestPayload{}, errors.New("backend unreachable")
}

func TestReportFetchFailureRendersSingleErrorCard(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	srv.src = failingSource{}

	for _, mode := range []string{"requests", "responses", "latest"} {
		rec := do(srv, http.MethodGet, "/report?type="+mode, nil)

		require.Equal(t, http.StatusOK, rec.Code, "mode %s", mode)
		body := rec.Body.String()
		assert.Equal(t, 1, strings.Count(body, `<div class="card`), "mode %s: exactly one card", mode)
		assert.Contains(t, body, `class="card error"`, "mode %s", mode)
		assert.Contains(t, body, "backend unreachable", "mode %s", mode)
	}
}

func TestReportUnknownType(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(srv, http.MethodGet, "/report?type=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportLatestPairs(t *testing.T) {
	srv, store := newTestServer(t, nil)
	require.NoError(t, store.AppendRequest(&history.RequestRecord{Request: "the prompt"}))
	require.NoError(t, store.AppendResponse(&history.ResponseRecord{ResponseRaw: testEnvelope}))

	rec := do(srv, http.MethodGet, "/report?type=latest", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "the prompt")
}

func TestListRequests(t *testing.T) {
	srv, store := newTestServer(t, nil)
	require.NoError(t, store.AppendRequest(&history.RequestRecord{Timestamp: 1761821056000, Request: "q1"}))
	require.NoError(t, store.AppendRequest(&history.RequestRecord{Timestamp: 1761821057000, Request: "q2"}))

	rec := do(srv, http.MethodGet, "/requests?limit=10", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var payload struct {
		Count int `json:"count"`
		Data  []struct {
			Timestamp int64  `json:"timestamp"`
			Request   string `json:"request"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, 2, payload.Count)
	assert.Equal(t, "q2", payload.Data[0].Request, "newest first")
	assert.Equal(t, int64(1761821057000), payload.Data[0].Timestamp)
}

func TestListEndpointsEmitEmptyArrays(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(srv, http.MethodGet, "/requests", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)

	rec = do(srv, http.MethodGet, "/responses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)

	rec = do(srv, http.MethodGet, "/latest", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"request":[]`)
	assert.Contains(t, rec.Body.String(), `"response":[]`)
}

func TestLatestShape(t *testing.T) {
	srv, store := newTestServer(t, nil)
	require.NoError(t, store.AppendRequest(&history.RequestRecord{Request: "q"}))
	require.NoError(t, store.AppendResponse(&history.ResponseRecord{ResponseRaw: "a"}))

	rec := do(srv, http.MethodGet, "/latest", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Contains(t, payload, "request")
	assert.Contains(t, payload, "response")
}

func TestIngestRequest(t *testing.T) {
	srv, store := newTestServer(t, nil)

	rec := do(srv, http.MethodPost, "/requests", strings.NewReader(`{"request":"posted"}`))

	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created["id"])

	recs, err := store.Requests(10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "posted", recs[0].Request)
	assert.NotZero(t, recs[0].Timestamp, "missing timestamp is filled in")
}

func TestIngestResponseKeepsFields(t *testing.T) {
	srv, store := newTestServer(t, nil)

	body := `{"timestamp":1761821056000,"response_raw":"raw body","status_code":200,"cost_ms":42.5}`
	rec := do(srv, http.MethodPost, "/responses", strings.NewReader(body))
	require.Equal(t, http.StatusCreated, rec.Code)

	recs, err := store.Responses(10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, history.Timestamp(1761821056000), recs[0].Timestamp)
	assert.Equal(t, 200, recs[0].StatusCode)
	assert.Equal(t, 42.5, recs[0].CostMs)
}

func TestIngestInvalidBody(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(srv, http.MethodPost, "/requests", strings.NewReader("not json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestDisabled(t *testing.T) {
	srv, _ := newTestServer(t, func(cfg *config.Config) { cfg.IngestEnabled = false })
	rec := do(srv, http.MethodPost, "/requests", strings.NewReader(`{"request":"x"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIngestWithoutLocalStore(t *testing.T) {
	srv, store := newTestServer(t, nil)
	srv.store = nil
	_ = store

	rec := do(srv, http.MethodPost, "/responses", strings.NewReader(`{"response_raw":"x"}`))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(srv, http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStaticFiles(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(srv, http.MethodGet, "/static/style.css", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())
}

func TestUnknownPath(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(srv, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		query string
		def   int
		max   int
		want  int
	}{
		{"", 50, 500, 50},
		{"limit=10", 50, 500, 10},
		{"limit=9999", 50, 500, 500},
		{"limit=0", 50, 500, 1},
		{"limit=abc", 50, 500, 50},
		{"limit=-3", 50, 500, 50},
		{"limit=99999999999999999999999", 50, 500, 50},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/requests?"+tt.query, nil)
		assert.Equal(t, tt.want, parseLimit(r, tt.def, tt.max), "query %q", tt.query)
	}
}
