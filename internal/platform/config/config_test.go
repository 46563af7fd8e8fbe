package config

import (
	"testing"
	"time"

	"zeitgeist/internal/platform/testkit"
)

func TestMustStringPanicsWhenMissing(t *testing.T) {
	c := New().Prefix("NOPE_")
	testkit.MustPanic(t, func() { c.MustString("ABSENT") })

	t.Setenv("NOPE_PRESENT", "value")
	testkit.MustNotPanic(t, func() {
		if got := c.MustString("PRESENT"); got != "value" {
			t.Fatalf("lookup failed: %q", got)
		}
	})
}

func TestMustPortValidates(t *testing.T) {
	c := New().Prefix("API_")

	t.Setenv("API_PORT", "8080")
	testkit.MustNotPanic(t, func() {
		if got := c.MustPort("PORT"); got != ":8080" {
			t.Fatalf("port addr wrong: %q", got)
		}
	})

	t.Setenv("API_PORT", "70000")
	testkit.MustPanic(t, func() { c.MustPort("PORT") })
}

func TestPrefixComposesKeys(t *testing.T) {
	t.Setenv("PG_URL", "postgres://localhost/zeitgeist")
	c := New().Prefix("PG_")
	if got := c.MayString("URL", ""); got != "postgres://localhost/zeitgeist" {
		t.Fatalf("prefix lookup failed: %q", got)
	}
}

func TestMayIntFallsBack(t *testing.T) {
	t.Setenv("SCAN_MAX", "not-a-number")
	c := New().Prefix("SCAN_")
	if got := c.MayInt("MAX", 25); got != 25 {
		t.Fatalf("invalid int must fall back to default, got %d", got)
	}
	t.Setenv("SCAN_MAX", "40")
	if got := c.MayInt("MAX", 25); got != 40 {
		t.Fatalf("valid int ignored, got %d", got)
	}
}

func TestMayFloat64(t *testing.T) {
	t.Setenv("CLUSTER_MERGE", "0.22")
	c := New().Prefix("CLUSTER_")
	if got := c.MayFloat64("MERGE", 0.5); got != 0.22 {
		t.Fatalf("float lookup failed: %v", got)
	}
	if got := c.MayFloat64("MISSING", 0.5); got != 0.5 {
		t.Fatalf("missing float must default: %v", got)
	}
}

func TestMayDuration(t *testing.T) {
	t.Setenv("HN_TIMEOUT", "6s")
	c := New().Prefix("HN_")
	if got := c.MayDuration("TIMEOUT", time.Second); got != 6*time.Second {
		t.Fatalf("duration lookup failed: %v", got)
	}
}

func TestMayCSV(t *testing.T) {
	t.Setenv("API_ORIGINS", "https://a.example, https://b.example ,")
	c := New().Prefix("API_")
	got := c.MayCSV("ORIGINS", nil)
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("csv parse failed: %v", got)
	}
}
