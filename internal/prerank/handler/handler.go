// Package handler exposes the pre-ranker over HTTP. Each request replays one
// query session: Init, the given cycles of candidates, then Finish.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/feature"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/geo"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/partition"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/preranker"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/tracing"
	"github.com/google/uuid"
)

const maxBodyBytes = 8 << 20

// Invalidator drops cached partition data.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// StoreFunc persists a partition snapshot.
type StoreFunc func(ctx context.Context, id feature.PartitionID, snap *partition.Snapshot) error

// Config wires the handler.
type Config struct {
	PreRanker *preranker.PreRanker
	Collector *ranker.Collector
	// Publisher, when set, is told the query ID before each session.
	Publisher   *ranker.Publisher
	Invalidator Invalidator
	Store       StoreFunc
	Defaults    preranker.Params
	MaxCycles   int
}

// Handler serves pre-ranking sessions one at a time; the pre-ranker is a
// single-writer component.
type Handler struct {
	mu  sync.Mutex
	cfg Config

	logger *slog.Logger
}

// New creates a Handler.
func New(cfg Config) *Handler {
	if cfg.MaxCycles <= 0 {
		cfg.MaxCycles = 64
	}
	return &Handler{
		cfg:    cfg,
		logger: slog.Default().With("component", "prerank-handler"),
	}
}

// PrerankRequest is the body of POST /api/v1/prerank. Params fields that are
// omitted keep the configured defaults.
type PrerankRequest struct {
	QueryID   string                  `json:"query_id"`
	Params    preranker.Params        `json:"params"`
	Cycles    [][]preranker.Candidate `json:"cycles"`
	Cancelled bool                    `json:"cancelled"`
}

// PrerankResponse reports what the ranker received.
type PrerankResponse struct {
	QueryID                string         `json:"query_id"`
	Batches                []ranker.Batch `json:"batches"`
	NumSentResults         int            `json:"num_sent_results"`
	HaveFullyMatchedResult bool           `json:"have_fully_matched_result"`
	Cancelled              bool           `json:"cancelled"`
	LatencyMs              int64          `json:"latency_ms"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (*PrerankRequest, error) {
	req := &PrerankRequest{Params: h.cfg.Defaults}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(req); err != nil {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "decoding request: %v", err)
	}
	if len(req.Cycles) == 0 {
		return nil, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "at least one cycle is required")
	}
	if len(req.Cycles) > h.cfg.MaxCycles {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "at most %d cycles are allowed", h.cfg.MaxCycles)
	}
	if req.Params.BatchSize < 0 || req.Params.Limit < 0 || req.Params.NumQueryTokens < 0 {
		return nil, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "batch_size, limit and num_query_tokens must not be negative")
	}
	if req.Params.RankWeight < 0 || req.Params.PopularityWeight < 0 {
		return nil, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "rank_weight and popularity_weight must not be negative")
	}
	for i, cycle := range req.Cycles {
		for _, c := range cycle {
			if c.ID.Partition == "" {
				return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "cycle %d: candidate without partition", i)
			}
		}
	}
	if req.QueryID == "" {
		req.QueryID = uuid.New().String()
	}
	return req, nil
}

// Prerank runs one query session.
func (h *Handler) Prerank(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, err := h.decode(w, r)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	ctx := logger.WithQueryID(r.Context(), req.QueryID)
	log := logger.FromContext(ctx)

	h.mu.Lock()
	defer h.mu.Unlock()

	pre := h.cfg.PreRanker
	h.cfg.Collector.Reset()
	if h.cfg.Publisher != nil {
		h.cfg.Publisher.Begin(req.QueryID)
	}

	ctx, span := tracing.StartSpan(ctx, "prerank", req.QueryID)
	pre.Init(req.Params)
	cancelled := req.Cancelled
	for i, cycle := range req.Cycles {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		h.runCycle(ctx, cycle, i == len(req.Cycles)-1)
	}
	pre.Finish(ctx, cancelled)
	span.SetAttr("cancelled", cancelled)
	span.End()
	span.Log(ctx, log)

	resp := PrerankResponse{
		QueryID:                req.QueryID,
		Batches:                h.cfg.Collector.Batches(),
		NumSentResults:         pre.NumSentResults(),
		HaveFullyMatchedResult: pre.HaveFullyMatchedResult(),
		Cancelled:              cancelled,
		LatencyMs:              time.Since(start).Milliseconds(),
	}
	log.Info("pre-ranking session completed",
		"cycles", len(req.Cycles),
		"sent", resp.NumSentResults,
		"cancelled", cancelled,
		"latency_ms", resp.LatencyMs,
	)
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) runCycle(ctx context.Context, cycle []preranker.Candidate, last bool) {
	pre := h.cfg.PreRanker
	ctx, span := tracing.StartChildSpan(ctx, "cycle")
	defer span.End()
	sentBefore := pre.NumSentResults()
	for _, c := range cycle {
		pre.Emplace(c)
	}
	span.SetAttr("emplaced", pre.Size())
	pre.UpdateResults(ctx, last)
	span.SetAttr("sent", pre.NumSentResults()-sentBefore)
	span.SetAttr("final", last)
}

// ClearCaches forgets cross-query state and cached partition sections.
func (h *Handler) ClearCaches(w http.ResponseWriter, r *http.Request) {
	if err := h.clearCaches(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *Handler) clearCaches(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cfg.PreRanker.ClearCaches()
	if h.cfg.Invalidator != nil {
		return h.cfg.Invalidator.Invalidate(ctx)
	}
	return nil
}

// PartitionRequest is the body of PUT /api/v1/partitions/{id}. Ranks and
// Popularity travel as base64 strings.
type PartitionRequest struct {
	Bounds     geo.Rect     `json:"bounds"`
	Ranks      []uint8      `json:"ranks"`
	Popularity []uint8      `json:"popularity"`
	Centers    []*geo.Point `json:"centers"`
}

// Snapshot converts the request into partition sections. Absent tables stay
// absent; null centers are stored as missing entries.
func (p PartitionRequest) Snapshot() *partition.Snapshot {
	snap := &partition.Snapshot{Bounds: p.Bounds, Sections: make(map[partition.Tag][]byte)}
	if p.Ranks != nil {
		snap.Sections[partition.TagSearchRanks] = append([]byte(nil), p.Ranks...)
	}
	if p.Popularity != nil {
		snap.Sections[partition.TagPopularityRanks] = append([]byte(nil), p.Popularity...)
	}
	if p.Centers != nil {
		centers := make([]geo.Point, len(p.Centers))
		present := make([]bool, len(p.Centers))
		for i, c := range p.Centers {
			if c != nil {
				centers[i], present[i] = *c, true
			}
		}
		snap.Sections[partition.TagCenters] = partition.EncodeCenters(centers, present)
	}
	return snap
}

// PutPartition stores a partition snapshot and drops everything cached about
// the previous one.
func (h *Handler) PutPartition(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Store == nil {
		h.writeError(w, http.StatusServiceUnavailable, "partition store is read-only")
		return
	}
	id := feature.PartitionID(r.PathValue("id"))
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "partition id is required")
		return
	}
	var req PartitionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("decoding partition: %v", err))
		return
	}
	if err := h.cfg.Store(r.Context(), id, req.Snapshot()); err != nil {
		h.logger.Error("storing partition failed", "partition", id, "error", err)
		h.writeErr(w, err)
		return
	}
	if err := h.clearCaches(r.Context()); err != nil {
		h.logger.Warn("cache invalidation after partition update failed", "partition", id, "error", err)
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "stored", "partition": string(id)})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		h.writeError(w, appErr.StatusCode, appErr.Message)
		return
	}
	h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
}
