// Package view composes history records into report cards and renders them
// to markup. Building and rendering are pure; handlers own the writing.
package view

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"analysis-history/internal/extract"
	"analysis-history/internal/highlight"
	"analysis-history/internal/history"
	"analysis-history/internal/util"
)

// ReasoningPlaceholder is shown when a response carries no reasoning
// region. Producers suppress the chain of thought to save tokens, so this
// is a normal state, not an error.
const ReasoningPlaceholder = "(reasoning output disabled)"

// Kind selects the card template.
type Kind string

const (
	KindResponse    Kind = "response"    // timestamp + sections
	KindRequest     Kind = "request"     // timestamp + raw request, no sections
	KindPlaceholder Kind = "placeholder" // empty result set
	KindError       Kind = "error"       // failed load
)

// Card is the view-model for one report entry.
type Card struct {
	Kind  Kind
	Title string
	Time  string
	Meta  string

	// RequestText is the paired raw request, empty when absent.
	RequestText string

	// Reasoning is always set on response cards (placeholder when absent).
	Reasoning string

	// DecisionHTML and DecisionCopy are set together when the decision
	// block parsed as JSON. DecisionRaw carries an unparseable block.
	DecisionHTML template.HTML
	DecisionCopy string
	DecisionRaw  string

	// Message is the placeholder or error text.
	Message string

	// DecisionParseFailed and EnvelopeFallback surface pipeline outcomes
	// for accounting. Neither affects rendering beyond the fields above.
	DecisionParseFailed bool
	EnvelopeFallback    bool
}

// ResponseCard builds a full card for one response, optionally paired with
// the request that produced it.
func ResponseCard(req *history.RequestRecord, resp history.ResponseRecord) Card {
	c := Card{
		Kind:  KindResponse,
		Title: "Analysis Response",
		Time:  formatTime(resp.Timestamp),
		Meta:  responseMeta(resp),
	}
	if req != nil && strings.TrimSpace(req.Request) != "" {
		c.RequestText = req.Request
	}

	content := extract.Parse(resp.ResponseRaw)
	c.EnvelopeFallback = content.RawFallback

	c.Reasoning = content.Reasoning
	if c.Reasoning == "" {
		c.Reasoning = ReasoningPlaceholder
	}

	if content.HasDecision() {
		pretty, err := util.PrettyJSON(content.Decision)
		if err == nil {
			c.DecisionHTML = highlight.JSON(pretty)
			c.DecisionCopy = EncodeCopyText(pretty)
			return c
		}
	}
	c.DecisionRaw = content.DecisionText
	c.DecisionParseFailed = content.DecisionText != ""
	return c
}

// RequestCard builds a simple card for one request record.
func RequestCard(rec history.RequestRecord) Card {
	return Card{
		Kind:        KindRequest,
		Title:       "Analysis Request",
		Time:        formatTime(rec.Timestamp),
		RequestText: rec.Request,
	}
}

// PlaceholderCard builds the single card shown for an empty result set.
func PlaceholderCard(message string) Card {
	return Card{Kind: KindPlaceholder, Title: "No Data", Message: message}
}

// ErrorCard builds the single card shown when a load fails outright.
func ErrorCard(err error) Card {
	return Card{Kind: KindError, Title: "Load Failed", Message: err.Error()}
}

// RequestCards builds the report for the requests mode.
func RequestCards(recs []history.RequestRecord) []Card {
	if len(recs) == 0 {
		return []Card{PlaceholderCard("no request records")}
	}
	cards := make([]Card, 0, len(recs))
	for _, rec := range recs {
		cards = append(cards, RequestCard(rec))
	}
	return cards
}

// ResponseCards builds the report for the responses mode.
func ResponseCards(recs []history.ResponseRecord) []Card {
	if len(recs) == 0 {
		return []Card{PlaceholderCard("no response records")}
	}
	cards := make([]Card, 0, len(recs))
	for _, rec := range recs {
		cards = append(cards, ResponseCard(nil, rec))
	}
	return cards
}

// LatestCards builds the report for the latest mode. Records are paired by
// position; a request list shorter than the response list means the extra
// responses render without a request section. Either list being empty
// yields a single placeholder.
func LatestCards(pair history.LatestPayload) []Card {
	if len(pair.Request) == 0 || len(pair.Response) == 0 {
		return []Card{PlaceholderCard("no paired records")}
	}
	cards := make([]Card, 0, len(pair.Response))
	for i, resp := range pair.Response {
		var req *history.RequestRecord
		if i < len(pair.Request) {
			req = &pair.Request[i]
		}
		cards = append(cards, ResponseCard(req, resp))
	}
	return cards
}

// EncodeCopyText percent-encodes text for embedding in a data attribute.
// The client decodes it with decodeURIComponent, so spaces must be %20,
// never '+'.
func EncodeCopyText(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

func formatTime(ts history.Timestamp) string {
	if ts == 0 {
		return "-"
	}
	return ts.Time().Local().Format("2006-01-02 15:04:05")
}

func responseMeta(rec history.ResponseRecord) string {
	var parts []string
	if rec.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", rec.StatusCode))
	}
	if rec.CostMs > 0 {
		parts = append(parts, fmt.Sprintf("%.1f ms", rec.CostMs))
	}
	return strings.Join(parts, " | ")
}
