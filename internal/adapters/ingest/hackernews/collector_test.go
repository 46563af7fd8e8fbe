package hackernews

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func hnServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[1, 2, 3, 4]`)
	})
	mux.HandleFunc("/item/1.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"id":1,"type":"story","title":"Reactor ignition milestone","score":420,"time":1755688800,"url":"https://example.com"}`)
	})
	mux.HandleFunc("/item/2.json", func(w http.ResponseWriter, _ *http.Request) {
		// job postings are not stories
		fmt.Fprint(w, `{"id":2,"type":"job","title":"Hiring","score":1,"time":1755688800}`)
	})
	mux.HandleFunc("/item/3.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"id":3,"type":"story","title":"Flagged post","dead":true,"time":1755688800}`)
	})
	mux.HandleFunc("/item/4.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `not json at all`)
	})
	return httptest.NewServer(mux)
}

func TestCollectSkipsNonStories(t *testing.T) {
	srv := hnServer(t)
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, HTTP: srv.Client()})
	items, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1 (jobs, dead, and garbage skipped)", len(items))
	}
	it := items[0]
	if it.Source != "hn" || it.ID != "1" || it.Title != "Reactor ignition milestone" {
		t.Fatalf("item wrong: %+v", it)
	}
	if it.Weight != 420 {
		t.Fatalf("weight = %v, want 420", it.Weight)
	}
	if sig := it.Signal(); sig.CreatedAt.Unix() != 1755688800 {
		t.Fatalf("timestamp wrong: %v", sig.CreatedAt)
	}
}

func TestCollectHonorsLimit(t *testing.T) {
	var itemCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[1, 2, 3, 4, 5, 6, 7, 8]`)
	})
	mux.HandleFunc("/item/", func(w http.ResponseWriter, _ *http.Request) {
		itemCalls++
		fmt.Fprint(w, `{"id":1,"type":"story","title":"A story worth reading","score":10,"time":1755688800}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, HTTP: srv.Client(), Limit: 3})
	items, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if itemCalls != 3 || len(items) != 3 {
		t.Fatalf("calls/items = %d/%d, want 3/3", itemCalls, len(items))
	}
}

func TestCollectFailsWhenIDListIsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, HTTP: srv.Client()})
	if _, err := c.Collect(context.Background()); err == nil {
		t.Fatalf("dead id list must fail the collect")
	}
}
