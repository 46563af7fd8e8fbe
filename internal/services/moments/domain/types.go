// Package domain defines the types and ports for the moments service
package domain

import (
	"time"

	"zeitgeist/internal/core/decision"
	"zeitgeist/internal/core/qualify"
)

// RawItem is one loosely-typed unit as a collector delivered it. CreatedAt
// accepts whatever the upstream sent (epoch seconds/millis, ISO string, or a
// native time.Time); ParseWhen is the single place it gets interpreted
type RawItem struct {
	Source    string   `json:"source"`
	ID        string   `json:"id,omitempty"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary,omitempty"`
	URL       string   `json:"url,omitempty"`
	Category  string   `json:"category,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
	Weight    float64  `json:"weight,omitempty"`
	CreatedAt any      `json:"created_at,omitempty"`
}

// Signal converts the raw item into the strict evidence shape. Unparsable
// timestamps become the zero time, never "now"
func (r RawItem) Signal() qualify.Signal {
	when, _ := ParseWhen(r.CreatedAt)
	return qualify.Signal{
		Source:    r.Source,
		ID:        r.ID,
		Title:     r.Title,
		Summary:   r.Summary,
		Keywords:  r.Keywords,
		CreatedAt: when,
	}
}

// Moment is the persisted, write-once record for a qualified candidate
type Moment struct {
	ID              string                `json:"id"`
	Title           string                `json:"title"`
	Category        string                `json:"category,omitempty"`
	Keywords        []string              `json:"keywords,omitempty"`
	FirstSeenAt     time.Time             `json:"first_seen_at"`
	LastConfirmedAt time.Time             `json:"last_confirmed_at"`
	SignalCount     int                   `json:"signal_count"`
	SourceCount     int                   `json:"source_count"`
	Qualification   qualify.Qualification `json:"qualification"`
	Decision        decision.Surface      `json:"decision"`
	Signals         []qualify.Signal      `json:"signals,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}
