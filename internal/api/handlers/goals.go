package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/household-finance/internal/aggregate"
	"github.com/dvloznov/household-finance/internal/api/middleware"
	"github.com/dvloznov/household-finance/internal/domain"
)

// GoalsHandler handles savings goal endpoints.
type GoalsHandler struct {
	ledgers Ledgers
	now     func() time.Time
	log     zerolog.Logger
}

func NewGoalsHandler(ledgers Ledgers, log zerolog.Logger) *GoalsHandler {
	return &GoalsHandler{ledgers: ledgers, now: time.Now, log: log}
}

// ListGoals handles GET /api/goals and returns each goal with its progress.
func (h *GoalsHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	l, ok := ledgerFor(w, r, h.ledgers)
	if !ok {
		return
	}
	now := h.now()
	statuses := []aggregate.GoalStatus{}
	for _, g := range l.Goals() {
		statuses = append(statuses, aggregate.GoalProgress(g, now))
	}
	middleware.WriteJSON(w, http.StatusOK, statuses)
}

// UpsertGoal handles POST /api/goals. A goal without id is created.
func (h *GoalsHandler) UpsertGoal(w http.ResponseWriter, r *http.Request) {
	var g domain.Goal
	if !decodeJSON(w, r, &g) {
		return
	}
	status := http.StatusOK
	if g.ID == "" {
		g.ID = uuid.NewString()
		status = http.StatusCreated
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = h.now().UTC()
	}
	l, ok := ledgerFor(w, r, h.ledgers)
	if !ok {
		return
	}

	if err := l.UpsertGoal(r.Context(), g); err != nil {
		middleware.WriteServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, status, g)
}

// DeleteGoal handles DELETE /api/goals/{id}
func (h *GoalsHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	l, ok := ledgerFor(w, r, h.ledgers)
	if !ok {
		return
	}
	if err := l.DeleteGoal(r.Context(), r.PathValue("id")); err != nil {
		middleware.WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
