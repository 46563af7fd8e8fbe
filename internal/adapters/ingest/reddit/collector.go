// Package reddit collects hot posts from the public Reddit listing API
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	perr "zeitgeist/internal/platform/errors"
	"zeitgeist/internal/platform/logger"
	"zeitgeist/internal/services/moments/domain"
)

const (
	baseURLDefault = "https://www.reddit.com"
	// Reddit rejects default Go user agents, so ship a descriptive one
	defaultUA    = "zeitgeist-scan/1.0"
	defaultLimit = 25
	maxLimit     = 100
)

// SourceName tags every item this collector produces
const SourceName = "reddit"

// Options configures the collector
type Options struct {
	BaseURL   string
	UserAgent string
	// Subreddits to pull hot listings from, defaults to r/all
	Subreddits []string
	// Limit caps posts per subreddit
	Limit int
	HTTP  *http.Client
}

// Collector fetches hot posts across the configured subreddits
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
	if len(o.Subreddits) == 0 {
		o.Subreddits = []string{"all"}
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
	return &Collector{opts: o, http: h, log: *logger.Named("reddit")}
}

// Name implements domain.CollectorPort
func (c *Collector) Name() string { return SourceName }

type listing struct {
	Data struct {
		Children []struct {
			Data post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type post struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	SelfText   string  `json:"selftext"`
	URL        string  `json:"url"`
	Subreddit  string  `json:"subreddit"`
	Score      float64 `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
	Stickied   bool    `json:"stickied"`
}

// Collect pulls the hot listing for each configured subreddit. A subreddit
// that fails is skipped; Collect errors only when every one failed
func (c *Collector) Collect(ctx context.Context) ([]domain.RawItem, error) {
	var (
		out    []domain.RawItem
		failed int
	)
	for _, sub := range c.opts.Subreddits {
		items, err := c.collectSub(ctx, sub)
		if err != nil {
			failed++
			c.log.Warn().Str("subreddit", sub).Err(err).Msg("reddit listing skipped")
			continue
		}
		out = append(out, items...)
	}
	if failed == len(c.opts.Subreddits) {
		return nil, perr.Unavailablef("all %d subreddit listings failed", failed)
	}
	return out, nil
}

func (c *Collector) collectSub(ctx context.Context, sub string) ([]domain.RawItem, error) {
	url := fmt.Sprintf("%s/r/%s/hot.json?limit=%d&raw_json=1", c.opts.BaseURL, sub, c.opts.Limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, perr.Unavailablef("reddit status %d for r/%s", resp.StatusCode, sub)
	}

	var l listing
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "decode reddit listing")
	}

	out := make([]domain.RawItem, 0, len(l.Data.Children))
	for _, ch := range l.Data.Children {
		p := ch.Data
		if p.Stickied || strings.TrimSpace(p.Title) == "" {
			continue
		}
		out = append(out, domain.RawItem{
			Source:    SourceName,
			ID:        p.ID,
			Title:     p.Title,
			Summary:   p.SelfText,
			URL:       p.URL,
			Category:  p.Subreddit,
			Weight:    p.Score,
			CreatedAt: p.CreatedUTC,
		})
	}
	return out, nil
}
