// Package history provides persistence for model analysis history records.
// It stores the raw request text sent to the model and the raw response
// body returned by it, newest first.
package history

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Timestamp is a record instant stored as unix milliseconds.
//
// Producers have written several shapes over time: epoch milliseconds,
// epoch seconds (sometimes fractional), and ISO strings. Decoding accepts
// all of them; encoding always emits epoch milliseconds.
type Timestamp int64

// Now returns the current instant as a Timestamp.
func Now() Timestamp {
	return Timestamp(time.Now().UnixMilli())
}

// Time converts the timestamp to a time.Time.
func (t Timestamp) Time() time.Time {
	return time.UnixMilli(int64(t))
}

// MarshalJSON emits the timestamp as an epoch-milliseconds number.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(t), 10)), nil
}

// UnmarshalJSON accepts epoch milliseconds, epoch seconds (integer or
// fractional), and common string forms. An unrecognized value decodes to
// zero rather than failing the whole record.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*t = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			*t = 0
			return nil
		}
		*t = parseTimeString(str)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*t = fromEpoch(f)
		return nil
	}
	*t = 0
	return nil
}

// fromEpoch interprets a numeric epoch value. Values below 1e11 are
// seconds (1e11 ms is still 1973), everything else is milliseconds.
func fromEpoch(v float64) Timestamp {
	if v < 1e11 {
		return Timestamp(v * 1000)
	}
	return Timestamp(v)
}

func parseTimeString(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(f)
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return Timestamp(ts.UnixMilli())
		}
	}
	return 0
}

// RequestRecord is one raw analysis request sent to the model.
type RequestRecord struct {
	ID        string    `json:"-"`
	Timestamp Timestamp `json:"timestamp"`
	Request   string    `json:"request"`
}

// ResponseRecord is one raw model response body, kept verbatim.
// StatusCode and CostMs are producer-side extras and may be absent.
type ResponseRecord struct {
	ID          string    `json:"-"`
	Timestamp   Timestamp `json:"timestamp"`
	ResponseRaw string    `json:"response_raw"`
	StatusCode  int       `json:"status_code,omitempty"`
	CostMs      float64   `json:"cost_ms,omitempty"`
}

// LatestPayload pairs the newest requests and responses positionally.
// The two slices are independently bounded and may differ in length.
type LatestPayload struct {
	Request  []RequestRecord  `json:"request"`
	Response []ResponseRecord `json:"response"`
}
