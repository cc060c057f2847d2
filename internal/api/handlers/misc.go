package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dvloznov/household-finance/internal/advisor"
	"github.com/dvloznov/household-finance/internal/api/middleware"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/dvloznov/household-finance/internal/extract"
	"github.com/dvloznov/household-finance/internal/jobs"
	"github.com/dvloznov/household-finance/internal/statement"
)

// CategoriesHandler handles category-related endpoints.
type CategoriesHandler struct {
	ledgers Ledgers
	seed    []string
	log     zerolog.Logger
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(ledgers Ledgers, seed []string, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{ledgers: ledgers, seed: seed, log: log}
}

// ListCategories handles GET /api/categories
func (h *CategoriesHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	l, ok := ledgerFor(w, r, h.ledgers)
	if !ok {
		return
	}
	categories := domain.AvailableCategories(h.seed, l.Transactions(), l.Budget())

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// ReceiptsHandler handles POST /api/receipts
type ReceiptsHandler struct {
	extractor extract.ReceiptExtractor
	log       zerolog.Logger
}

func NewReceiptsHandler(extractor extract.ReceiptExtractor, log zerolog.Logger) *ReceiptsHandler {
	return &ReceiptsHandler{extractor: extractor, log: log}
}

// ExtractReceipt turns an uploaded photo into a candidate. Nothing is stored;
// the client confirms and posts it as a transaction.
func (h *ReceiptsHandler) ExtractReceipt(w http.ResponseWriter, r *http.Request) {
	if h.extractor == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "AI extraction is not configured")
		return
	}
	data, header, ok := readUpload(w, r)
	if !ok {
		return
	}
	if !statement.IsImage(header.Filename) {
		middleware.WriteError(w, http.StatusUnsupportedMediaType, "Receipt must be an image")
		return
	}

	candidate, err := h.extractor.ExtractReceipt(r.Context(), data, statement.ImageMIMEType(header.Filename))
	if err != nil {
		middleware.WriteServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, candidate)
}

// Adviser answers chat messages. *advisor.Advisor satisfies it.
type Adviser interface {
	Ask(ctx context.Context, snap advisor.Snapshot, history []advisor.Turn, message string) (string, error)
}

// AdvisorHandler handles POST /api/advisor
type AdvisorHandler struct {
	ledgers Ledgers
	adviser Adviser
	log     zerolog.Logger
}

func NewAdvisorHandler(ledgers Ledgers, adviser Adviser, log zerolog.Logger) *AdvisorHandler {
	return &AdvisorHandler{ledgers: ledgers, adviser: adviser, log: log}
}

func (h *AdvisorHandler) Ask(w http.ResponseWriter, r *http.Request) {
	if h.adviser == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "AI advisor is not configured")
		return
	}
	var req struct {
		Message string         `json:"message"`
		History []advisor.Turn `json:"history"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	l, ok := ledgerFor(w, r, h.ledgers)
	if !ok {
		return
	}

	snap := advisor.Snapshot{Transactions: l.Transactions(), Goals: l.Goals()}
	reply, err := h.adviser.Ask(r.Context(), snap, req.History, req.Message)
	if err != nil {
		if errors.Is(err, advisor.ErrAdviceFailed) {
			middleware.WriteServiceError(w, r, err)
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}. Jobs of other households are not found.
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil || job.Household != middleware.HouseholdFromContext(r.Context()) {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Household: middleware.HouseholdFromContext(r.Context()),
		Status:    jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
