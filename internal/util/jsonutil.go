package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// DecodeJSONValue decodes JSON into an arbitrary value tree
// (map[string]any / []any / scalars).
//
// We enable json.Decoder.UseNumber() so numbers are preserved as json.Number.
// This avoids lossy float conversions for large integer fields (timestamps,
// position sizes) and keeps re-encoded output identical to the input digits.
func DecodeJSONValue(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	// Ensure there is no trailing non-whitespace content.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("unexpected trailing JSON content")
		}
		return nil, fmt.Errorf("unexpected trailing JSON content: %w", err)
	}
	return v, nil
}

// PrettyJSON renders a value as indented JSON.
// json.Number values round-trip with their original digits.
func PrettyJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
