// Package hackernews collects front-page stories from the Hacker News
// Firebase API
package hackernews

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	perr "zeitgeist/internal/platform/errors"
	"zeitgeist/internal/platform/logger"
	"zeitgeist/internal/services/moments/domain"
)

const (
	baseURLDefault = "https://hacker-news.firebaseio.com/v0"
	defaultUA      = "zeitgeist-scan"
	defaultLimit   = 25
	maxLimit       = 100
)

// SourceName tags every item this collector produces
const SourceName = "hn"

// Options configures the collector
type Options struct {
	BaseURL   string
	UserAgent string
	// Limit caps how many front-page stories one Collect fetches
	Limit int
	// HTTP overrides the transport, mostly for tests. Timeouts come from the
	// caller's ctx, not from the client
	HTTP *http.Client
}

// Collector fetches the current top stories
type Collector struct {
	opts Options
	http *http.Client
	log  logger.Logger
}

// New creates a Collector with sane defaults
func New(o Options) *Collector {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Limit <= 0 {
		o.Limit = defaultLimit
	}
	if o.Limit > maxLimit {
		o.Limit = maxLimit
	}
	h := o.HTTP
	if h == nil {
		h = &http.Client{}
	}
	return &Collector{opts: o, http: h, log: *logger.Named("hackernews")}
}

// Name implements domain.CollectorPort
func (c *Collector) Name() string { return SourceName }

// story is the subset of the HN item payload the pipeline cares about
type story struct {
	ID      int64  `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Text    string `json:"text"`
	URL     string `json:"url"`
	Score   int    `json:"score"`
	Time    int64  `json:"time"`
	Deleted bool   `json:"deleted"`
	Dead    bool   `json:"dead"`
}

// Collect fetches the top-story id list and then each story. Individual
// stories that fail to fetch or decode are skipped; only a dead id list
// endpoint fails the whole call
func (c *Collector) Collect(ctx context.Context) ([]domain.RawItem, error) {
	var ids []int64
	if err := c.getJSON(ctx, "/topstories.json", &ids); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "hn topstories")
	}
	if len(ids) > c.opts.Limit {
		ids = ids[:c.opts.Limit]
	}

	out := make([]domain.RawItem, 0, len(ids))
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return out, nil
		default:
		}
		var st story
		if err := c.getJSON(ctx, fmt.Sprintf("/item/%d.json", id), &st); err != nil {
			c.log.Debug().Int64("item", id).Err(err).Msg("hn item skipped")
			continue
		}
		if st.Deleted || st.Dead || st.Type != "story" || st.Title == "" {
			continue
		}
		out = append(out, domain.RawItem{
			Source:    SourceName,
			ID:        strconv.FormatInt(st.ID, 10),
			Title:     st.Title,
			Summary:   st.Text,
			URL:       st.URL,
			Weight:    float64(st.Score),
			CreatedAt: time.Unix(st.Time, 0).UTC(),
		})
	}
	return out, nil
}

func (c *Collector) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return perr.Unavailablef("hn status %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
