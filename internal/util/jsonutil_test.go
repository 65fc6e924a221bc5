package util

import (
	"encoding/json"
	"testing"
)

func TestDecodeJSONValuePreservesNumbers(t *testing.T) {
	v, err := DecodeJSONValue([]byte(`{"ts": 1761823456789, "ratio": 0.25}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", v)
	}
	n, ok := m["ts"].(json.Number)
	if !ok {
		t.Fatalf("expected json.Number, got %T", m["ts"])
	}
	if n.String() != "1761823456789" {
		t.Errorf("ts = %s, want 1761823456789", n)
	}
}

func TestDecodeJSONValueRejectsTrailing(t *testing.T) {
	if _, err := DecodeJSONValue([]byte(`{"a":1} garbage`)); err == nil {
		t.Fatal("expected error for trailing content")
	}
	if _, err := DecodeJSONValue([]byte(`{"a":1}{"b":2}`)); err == nil {
		t.Fatal("expected error for second JSON value")
	}
}

func TestPrettyJSONRoundTripsNumbers(t *testing.T) {
	v, err := DecodeJSONValue([]byte(`{"qty":0.10,"ts":1761823456789}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out, err := PrettyJSON(v)
	if err != nil {
		t.Fatalf("pretty: %v", err)
	}
	want := "{\n  \"qty\": 0.10,\n  \"ts\": 1761823456789\n}"
	if out != want {
		t.Errorf("pretty = %q, want %q", out, want)
	}
}
