package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// millisCutoff splits epoch seconds from epoch milliseconds. Anything above
// it is read as millis; the boundary sits in the year 33658 for seconds
const millisCutoff = 1e12

// ParseWhen interprets a loosely-typed upstream timestamp. It accepts native
// time.Time values, epoch seconds or milliseconds (int/float/json.Number),
// and common ISO-8601 string layouts. ok is false when nothing parses;
// callers must treat that as "unknown", never as "now"
func ParseWhen(v any) (t time.Time, ok bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return x.UTC(), true
	case *time.Time:
		if x == nil || x.IsZero() {
			return time.Time{}, false
		}
		return x.UTC(), true
	case int:
		return fromEpoch(float64(x))
	case int64:
		return fromEpoch(float64(x))
	case float64:
		return fromEpoch(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromEpoch(f)
	case string:
		return fromString(x)
	default:
		return time.Time{}, false
	}
}

func fromEpoch(f float64) (time.Time, bool) {
	if f <= 0 {
		return time.Time{}, false
	}
	if f >= millisCutoff {
		return time.UnixMilli(int64(f)).UTC(), true
	}
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC(), true
}

func fromString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	// all-digit strings are epochs in disguise
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(n)
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
