package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/household-finance/internal/aggregate"
	"github.com/dvloznov/household-finance/internal/api/middleware"
)

// DashboardHandler handles GET /api/dashboard
type DashboardHandler struct {
	ledgers  Ledgers
	keywords []string
	now      func() time.Time
	log      zerolog.Logger
}

func NewDashboardHandler(ledgers Ledgers, keywords []string, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{ledgers: ledgers, keywords: keywords, now: time.Now, log: log}
}

func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	month, err := monthParam(r, now)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid month format")
		return
	}
	l, ok := ledgerFor(w, r, h.ledgers)
	if !ok {
		return
	}

	middleware.WriteJSON(w, http.StatusOK, aggregate.BuildDashboard(l.Transactions(), l.Budget(), l.Goals(), month, h.keywords, now))
}
