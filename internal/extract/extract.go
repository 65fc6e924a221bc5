// Package extract turns a raw model response body into displayable parts:
// free-text reasoning, the decision block text, and the decision parsed as
// structured data.
//
// Every stage recovers silently. A response that fails envelope decoding is
// treated as literal text; a missing tag yields an empty string; a decision
// block that is not valid JSON yields no structured value. None of these
// conditions is an error.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"analysis-history/internal/util"
)

// Content is the extraction result for one response body.
type Content struct {
	// Reasoning is the interior of the first <reasoning> region, or empty.
	Reasoning string

	// DecisionText is the interior of the first <decision> region, or empty.
	DecisionText string

	// Decision is DecisionText parsed as JSON (UseNumber semantics),
	// nil when DecisionText is empty or not valid JSON.
	Decision any

	// RawFallback is true when no envelope form matched and the body was
	// treated as literal text.
	RawFallback bool
}

// HasDecision reports whether a structured decision value was parsed.
func (c Content) HasDecision() bool {
	return c.Decision != nil
}

// contentStrategies are the envelope forms tried, in order, before falling
// back to treating the body as literal text. Each returns ok=false when the
// body is not that form.
var contentStrategies = []func(string) (string, bool){
	fromChatCompletion,
	fromMessage,
}

// Text resolves the text to extract tags from. The stored response body is
// usually a chat-completion JSON envelope whose content field holds the
// model output, but older records hold the output directly.
func Text(responseRaw string) string {
	text, _ := resolveText(responseRaw)
	return text
}

func resolveText(responseRaw string) (text string, fromEnvelope bool) {
	trimmed := strings.TrimSpace(responseRaw)
	if trimmed == "" {
		return "", false
	}
	for _, strategy := range contentStrategies {
		if text, ok := strategy(trimmed); ok {
			return text, true
		}
	}
	return responseRaw, false
}

// fromChatCompletion decodes {"choices":[{"message":{"content":...}}]}.
func fromChatCompletion(raw string) (string, bool) {
	var env struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return "", false
	}
	if len(env.Choices) == 0 || env.Choices[0].Message.Content == "" {
		return "", false
	}
	return env.Choices[0].Message.Content, true
}

// fromMessage decodes {"message":{"content":...}}.
func fromMessage(raw string) (string, bool) {
	var env struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return "", false
	}
	if env.Message.Content == "" {
		return "", false
	}
	return env.Message.Content, true
}

var (
	reasoningTag = mustTagPattern("reasoning")
	decisionTag  = mustTagPattern("decision")
)

// tagPattern matches the shortest span between the first opening marker and
// the first closing marker after it, case-insensitively, across newlines.
// A literal marker inside the region will cut the match short; that matches
// the producer's convention and is accepted.
func tagPattern(tag string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?is)<` + regexp.QuoteMeta(tag) + `>(.*?)</` + regexp.QuoteMeta(tag) + `>`)
}

func mustTagPattern(tag string) *regexp.Regexp {
	re, err := tagPattern(tag)
	if err != nil {
		panic(err)
	}
	return re
}

// TagContent returns the trimmed interior of the first <tag>...</tag>
// region in raw, or an empty string when no such region exists.
func TagContent(raw, tag string) string {
	re, err := tagPattern(tag)
	if err != nil {
		return ""
	}
	return firstMatch(re, raw)
}

func firstMatch(re *regexp.Regexp, raw string) string {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Parse runs the full pipeline on one stored response body.
func Parse(responseRaw string) Content {
	text, fromEnvelope := resolveText(responseRaw)

	c := Content{
		Reasoning:    firstMatch(reasoningTag, text),
		DecisionText: firstMatch(decisionTag, text),
		RawFallback:  !fromEnvelope && strings.TrimSpace(responseRaw) != "",
	}
	if c.DecisionText != "" {
		if v, err := util.DecodeJSONValue([]byte(c.DecisionText)); err == nil {
			c.Decision = v
		}
	}
	return c
}
