package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"analysis-history/internal/history"
)

// Remote reads history from another instance of this service.
type Remote struct {
	BaseURL *url.URL
	HTTP    *http.Client
}

// NewRemote constructs a remote source for the given base URL.
func NewRemote(base string) (*Remote, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url %q: scheme and host required", base)
	}
	return &Remote{
		BaseURL: u,
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// listPayload is the wire shape of the list endpoints. Items are decoded
// one by one so a single malformed record cannot poison the whole page.
type listPayload struct {
	Count int               `json:"count"`
	Data  []json.RawMessage `json:"data"`
}

type latestPayload struct {
	Request  []json.RawMessage `json:"request"`
	Response []json.RawMessage `json:"response"`
}

func (r *Remote) Requests(ctx context.Context, limit int) ([]history.RequestRecord, error) {
	var payload listPayload
	if err := r.get(ctx, "/requests", limit, &payload); err != nil {
		return nil, err
	}
	return decodeRequests(payload.Data), nil
}

func (r *Remote) Responses(ctx context.Context, limit int) ([]history.ResponseRecord, error) {
	var payload listPayload
	if err := r.get(ctx, "/responses", limit, &payload); err != nil {
		return nil, err
	}
	return decodeResponses(payload.Data), nil
}

func (r *Remote) Latest(ctx context.Context, limit int) (history.LatestPayload, error) {
	var payload latestPayload
	if err := r.get(ctx, "/latest", limit, &payload); err != nil {
		return history.LatestPayload{}, err
	}
	return history.LatestPayload{
		Request:  decodeRequests(payload.Request),
		Response: decodeResponses(payload.Response),
	}, nil
}

// Healthy probes the backend's health endpoint.
func (r *Remote) Healthy(ctx context.Context) error {
	u := r.BaseURL.ResolveReference(&url.URL{Path: "/healthz"})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := r.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("backend health: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("backend health: status %d", resp.StatusCode)
	}
	return nil
}

func (r *Remote) get(ctx context.Context, path string, limit int, out any) error {
	u := r.BaseURL.ResolveReference(&url.URL{
		Path:     path,
		RawQuery: url.Values{"limit": {strconv.Itoa(limit)}}.Encode(),
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("backend %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		buf, _ := readAllLimit(resp.Body, 1024*1024)
		return fmt.Errorf("backend %s: status %d: %s", path, resp.StatusCode, string(buf))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("backend %s: decode: %w", path, err)
	}
	return nil
}

// rawRequest and rawResponse accept the backend's fallback wrapper for
// entries it could not parse ({"raw": "..."}).
type rawRequest struct {
	history.RequestRecord
	Raw string `json:"raw"`
}

type rawResponse struct {
	history.ResponseRecord
	Raw string `json:"raw"`
}

func decodeRequests(items []json.RawMessage) []history.RequestRecord {
	out := make([]history.RequestRecord, 0, len(items))
	for _, item := range items {
		var rec rawRequest
		if err := json.Unmarshal(item, &rec); err != nil {
			continue
		}
		if rec.Request == "" && rec.Raw != "" {
			rec.Request = rec.Raw
		}
		out = append(out, rec.RequestRecord)
	}
	return out
}

func decodeResponses(items []json.RawMessage) []history.ResponseRecord {
	out := make([]history.ResponseRecord, 0, len(items))
	for _, item := range items {
		var rec rawResponse
		if err := json.Unmarshal(item, &rec); err != nil {
			continue
		}
		if rec.ResponseRaw == "" && rec.Raw != "" {
			rec.ResponseRaw = rec.Raw
		}
		out = append(out, rec.ResponseRecord)
	}
	return out
}

func readAllLimit(r io.Reader, max int64) ([]byte, error) {
	buf := &bytes.Buffer{}
	if max <= 0 {
		return io.ReadAll(r)
	}
	_, err := io.CopyN(buf, r, max+1)
	if err != nil && err != io.EOF {
		return nil, err
	}
	b := buf.Bytes()
	if int64(len(b)) > max {
		return b[:max], nil
	}
	return b, nil
}
