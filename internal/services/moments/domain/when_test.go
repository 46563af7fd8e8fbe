package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseWhenAcceptsAllShapes(t *testing.T) {
	want := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		in   any
	}{
		{"native time", want},
		{"pointer time", &want},
		{"epoch seconds int", int(want.Unix())},
		{"epoch seconds int64", want.Unix()},
		{"epoch seconds float", float64(want.Unix())},
		{"epoch millis", float64(want.UnixMilli())},
		{"json number", json.Number("1755691200")},
		{"rfc3339", "2025-08-20T12:00:00Z"},
		{"space separated", "2025-08-20 12:00:00"},
		{"digit string", "1755691200"},
	}
	for _, tc := range cases {
		got, ok := ParseWhen(tc.in)
		if !ok {
			t.Fatalf("%s: not parsed", tc.name)
		}
		if !got.Equal(want) {
			t.Fatalf("%s: got %v want %v", tc.name, got, want)
		}
	}
}

func TestParseWhenDateOnly(t *testing.T) {
	got, ok := ParseWhen("2025-08-20")
	if !ok || !got.Equal(time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date-only parse wrong: %v %v", got, ok)
	}
}

func TestParseWhenRejectsGarbage(t *testing.T) {
	for _, in := range []any{nil, "", "not a time", "soon", -5, 0, 0.0, time.Time{}, struct{}{}, []int{1}} {
		if got, ok := ParseWhen(in); ok {
			t.Fatalf("ParseWhen(%v) = %v, want not-ok", in, got)
		}
	}
}

func TestRawItemSignalKeepsZeroTimeOnBadTimestamp(t *testing.T) {
	sig := RawItem{Source: "hn", ID: "41", Title: "t", CreatedAt: "???"}.Signal()
	if !sig.CreatedAt.IsZero() {
		t.Fatalf("unparsable timestamp must stay zero, got %v", sig.CreatedAt)
	}
	if sig.Source != "hn" || sig.ID != "41" {
		t.Fatalf("fields dropped: %+v", sig)
	}
}
