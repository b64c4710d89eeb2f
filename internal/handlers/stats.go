package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"rawda/internal/corpus"
	"rawda/internal/service"
	"rawda/internal/storage"
)

// MaxPageIncrement bounds a single counter increment.
const MaxPageIncrement = 1000

// StatsHandler serves the reading counters shown in the site footer.
type StatsHandler struct {
	store storage.CounterStore
	now   func() time.Time
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(store storage.CounterStore) *StatsHandler {
	return &StatsHandler{
		store: store,
		now:   time.Now,
	}
}

// CountResponse carries a counter value.
//
// swagger:model CountResponse
type CountResponse struct {
	Count int64 `json:"count"`
}

// TotalPagesRequest increments the all-time counter.
type TotalPagesRequest struct {
	TotalPages *int64 `json:"totalPages"`
}

// DailyPagesRequest increments today's counter.
type DailyPagesRequest struct {
	DailyPages *int64 `json:"dailyPages"`
}

// GetTotalPages returns the all-time pages read counter.
func (h *StatsHandler) GetTotalPages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count, err := h.store.TotalPages(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to read total pages")
		return
	}
	writeJSON(ctx, w, http.StatusOK, CountResponse{Count: count})
}

// AddTotalPages adds the posted totalPages (default 1) to the all-time counter.
func (h *StatsHandler) AddTotalPages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req TotalPagesRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		handleServiceError(ctx, w, err, "Invalid request body")
		return
	}
	n, err := increment(req.TotalPages, "totalPages")
	if err != nil {
		handleServiceError(ctx, w, err, "Invalid request body")
		return
	}

	count, err := h.store.AddTotalPages(ctx, n)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to update total pages")
		return
	}
	writeJSON(ctx, w, http.StatusOK, CountResponse{Count: count})
}

// GetDailyPages returns the pages read today (UTC).
func (h *StatsHandler) GetDailyPages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count, err := h.store.DailyPages(ctx, h.now())
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to read daily pages")
		return
	}
	writeJSON(ctx, w, http.StatusOK, CountResponse{Count: count})
}

// AddDailyPages adds the posted dailyPages (default 1) to today's counter.
func (h *StatsHandler) AddDailyPages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req DailyPagesRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		handleServiceError(ctx, w, err, "Invalid request body")
		return
	}
	n, err := increment(req.DailyPages, "dailyPages")
	if err != nil {
		handleServiceError(ctx, w, err, "Invalid request body")
		return
	}

	count, err := h.store.AddDailyPages(ctx, h.now(), n)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to update daily pages")
		return
	}
	writeJSON(ctx, w, http.StatusOK, CountResponse{Count: count})
}

// GetChapterViews returns per-chapter view counts of a document.
func (h *StatsHandler) GetChapterViews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name, err := pathParam(r, "name")
	if err != nil {
		handleServiceError(ctx, w, err, "Invalid document name")
		return
	}

	file, err := corpus.NormalizeName(name)
	if err != nil {
		handleServiceError(ctx, w, &service.ValidationError{Field: "name", Message: err.Error()}, "Invalid document name")
		return
	}

	views, err := h.store.ChapterViews(ctx, file)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to read chapter views")
		return
	}
	writeJSON(ctx, w, http.StatusOK, views)
}

// decodeOptionalBody decodes a JSON body into v; an empty body leaves v unchanged.
func decodeOptionalBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return &service.ValidationError{Field: "body", Message: "invalid JSON"}
}

func increment(v *int64, field string) (int64, error) {
	if v == nil {
		return 1, nil
	}
	if *v < 1 || *v > MaxPageIncrement {
		return 0, &service.ValidationError{Field: field, Message: fmt.Sprintf("must be between 1 and %d", MaxPageIncrement)}
	}
	return *v, nil
}
