package reddit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const hotListing = `{
	"data": {
		"children": [
			{"data": {"id": "abc", "title": "Reactor ignition milestone", "selftext": "details", "subreddit": "energy", "score": 900, "created_utc": 1755688800.0}},
			{"data": {"id": "pin", "title": "Subreddit rules", "subreddit": "energy", "score": 10, "created_utc": 1755688800.0, "stickied": true}},
			{"data": {"id": "blank", "title": "   ", "subreddit": "energy", "score": 5, "created_utc": 1755688800.0}}
		]
	}
}`

func TestCollectParsesListing(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Path != "/r/energy/hot.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, hotListing)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, HTTP: srv.Client(), Subreddits: []string{"energy"}})
	items, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if gotUA != defaultUA {
		t.Fatalf("user agent = %q, want %q", gotUA, defaultUA)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1 (stickied and blank skipped)", len(items))
	}
	it := items[0]
	if it.Source != "reddit" || it.ID != "abc" || it.Category != "energy" || it.Weight != 900 {
		t.Fatalf("item wrong: %+v", it)
	}
	if sig := it.Signal(); sig.CreatedAt.Unix() != 1755688800 {
		t.Fatalf("timestamp wrong: %v", sig.CreatedAt)
	}
}

func TestCollectToleratesOneDeadSubreddit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/r/down/hot.json" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, hotListing)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, HTTP: srv.Client(), Subreddits: []string{"down", "energy"}})
	items, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("one dead subreddit must not fail the collect: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
}

func TestCollectFailsWhenAllSubredditsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, HTTP: srv.Client(), Subreddits: []string{"a", "b"}})
	if _, err := c.Collect(context.Background()); err == nil {
		t.Fatalf("total blackout must error")
	}
}
