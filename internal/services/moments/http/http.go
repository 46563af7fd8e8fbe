// Package http exposes the moments API: persisted moment reads plus the
// stateless qualify and decision endpoints
package http

import (
	stdhttp "net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"zeitgeist/internal/core/decision"
	"zeitgeist/internal/core/qualify"
	perr "zeitgeist/internal/platform/errors"
	zhttp "zeitgeist/internal/platform/net/http"
	"zeitgeist/internal/platform/net/http/bind"
	"zeitgeist/internal/services/moments/domain"
)

// Handlers carries the moments HTTP surface
type Handlers struct {
	reader domain.ReaderPort
	clock  func() time.Time
}

// NewHandlers constructs the handler set. clock may be nil for wall time
func NewHandlers(reader domain.ReaderPort, clock func() time.Time) *Handlers {
	if clock == nil {
		clock = time.Now
	}
	return &Handlers{reader: reader, clock: clock}
}

// Routes mounts the surface under the given router
func (h *Handlers) Routes(r zhttp.Router) {
	r.Route("/v1", func(r zhttp.Router) {
		r.Get("/moments", h.list)
		r.Get("/moments/{id}", h.get)
		r.Post("/qualify", h.qualifyCandidate)
		r.Post("/decision", h.decide)
	})
}

func (h *Handlers) list(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := queryInt(r, "page_size", 50)
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	items, total, err := h.reader.List(r.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		zhttp.RespondError(w, r, err)
		return
	}
	zhttp.RespondList(w, r, items, total, page, pageSize)
}

func (h *Handlers) get(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		zhttp.RespondError(w, r, perr.InvalidArgf("moment id is required"))
		return
	}
	m, err := h.reader.Get(r.Context(), id)
	if err != nil {
		zhttp.RespondError(w, r, err)
		return
	}
	zhttp.RespondOK(w, r, m)
}

type signalPayload struct {
	Source    string   `json:"source" validate:"required"`
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	Keywords  []string `json:"keywords"`
	CreatedAt any      `json:"created_at"`
}

type qualifyRequest struct {
	ID               string              `json:"id" validate:"required"`
	Title            string              `json:"title"`
	Description      string              `json:"description"`
	Keywords         []string            `json:"keywords"`
	FirstSeenAt      any                 `json:"first_seen_at"`
	CollapsedFromIDs []string            `json:"collapsed_from_ids"`
	Signals          []signalPayload     `json:"signals" validate:"required,min=1,dive"`
	Weights          *qualify.Weights    `json:"weights"`
	Thresholds       *qualify.Thresholds `json:"thresholds"`
	MaturityOnFail   bool                `json:"maturity_on_fail"`
}

// qualifyCandidate scores caller-supplied evidence without persisting
// anything. Timestamps arrive in whatever shape the caller has and go
// through the same normalization as collector output
func (h *Handlers) qualifyCandidate(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	req, err := bind.ParseJSON[qualifyRequest](r)
	if err != nil {
		zhttp.RespondError(w, r, err)
		return
	}

	cand := qualify.Candidate{
		ID:               req.ID,
		Title:            req.Title,
		Description:      req.Description,
		Keywords:         req.Keywords,
		CollapsedFromIDs: req.CollapsedFromIDs,
		Signals:          make([]qualify.Signal, 0, len(req.Signals)),
	}
	if t, ok := domain.ParseWhen(req.FirstSeenAt); ok {
		cand.FirstSeenAt = t
	}
	for _, s := range req.Signals {
		cand.Signals = append(cand.Signals, domain.RawItem{
			Source:    s.Source,
			ID:        s.ID,
			Title:     s.Title,
			Summary:   s.Summary,
			Keywords:  s.Keywords,
			CreatedAt: s.CreatedAt,
		}.Signal())
	}

	// nil means "use defaults"; a supplied zero struct is honored as-is
	opts := qualify.Options{
		Weights:        req.Weights,
		Thresholds:     req.Thresholds,
		MaturityOnFail: req.MaturityOnFail,
	}
	zhttp.RespondOK(w, r, qualify.Qualify(cand, opts))
}

type decisionRequest struct {
	SignalCount     int `json:"signal_count" validate:"min=0"`
	SourceCount     int `json:"source_count" validate:"min=0"`
	FirstSeenAt     any `json:"first_seen_at"`
	LastConfirmedAt any `json:"last_confirmed_at"`
	Now             any `json:"now"`
}

// decide surfaces a decision for caller-supplied evidence. The caller may
// pin the reference clock for reproducible output; otherwise server time
func (h *Handlers) decide(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	req, err := bind.ParseJSON[decisionRequest](r)
	if err != nil {
		zhttp.RespondError(w, r, err)
		return
	}

	ev := decision.Evidence{
		SignalCount: req.SignalCount,
		SourceCount: req.SourceCount,
	}
	if t, ok := domain.ParseWhen(req.FirstSeenAt); ok {
		ev.FirstSeenAt = t
	}
	if t, ok := domain.ParseWhen(req.LastConfirmedAt); ok {
		ev.LastConfirmedAt = t
	}
	now := h.clock().UTC()
	if t, ok := domain.ParseWhen(req.Now); ok {
		now = t
	}
	zhttp.RespondOK(w, r, decision.SurfaceDecision(ev, now))
}

func queryInt(r *stdhttp.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
