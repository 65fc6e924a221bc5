// Package highlight annotates pretty-printed JSON text with category
// markers for display.
package highlight

import (
	"html/template"
	"regexp"
	"strings"
)

// tokenRe scans for quoted strings (with escapes, optionally followed by a
// colon), the true/false/null literals, and numbers. Everything else
// (whitespace, punctuation, braces) passes through untouched.
var tokenRe = regexp.MustCompile(`("(?:\\u[0-9a-fA-F]{4}|\\[^u]|[^\\"])*"(?:\s*:)?|\btrue\b|\bfalse\b|\bnull\b|-?\d+(?:\.\d*)?(?:[eE][+-]?\d+)?)`)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// JSON wraps each token of a pretty-printed JSON text in a category span
// (key, string, number, boolean, null). The input is HTML-escaped before
// tokenizing so values embedded in the JSON can never inject markup.
//
// The output is final markup: applying JSON to its own output is not
// supported.
func JSON(pretty string) template.HTML {
	escaped := escaper.Replace(pretty)
	marked := tokenRe.ReplaceAllStringFunc(escaped, func(tok string) string {
		return `<span class="` + classify(tok) + `">` + tok + `</span>`
	})
	return template.HTML(marked)
}

func classify(tok string) string {
	switch {
	case strings.HasPrefix(tok, `"`):
		if strings.HasSuffix(tok, ":") {
			return "key"
		}
		return "string"
	case tok == "true" || tok == "false":
		return "boolean"
	case tok == "null":
		return "null"
	default:
		return "number"
	}
}
