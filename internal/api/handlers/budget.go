package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/household-finance/internal/api/middleware"
	"github.com/dvloznov/household-finance/internal/domain"
)

// BudgetHandler handles the monthly budget endpoints.
type BudgetHandler struct {
	ledgers Ledgers
	log     zerolog.Logger
}

func NewBudgetHandler(ledgers Ledgers, log zerolog.Logger) *BudgetHandler {
	return &BudgetHandler{ledgers: ledgers, log: log}
}

// ListBudget handles GET /api/budget. ?month=YYYY-MM narrows the list.
func (h *BudgetHandler) ListBudget(w http.ResponseWriter, r *http.Request) {
	l, ok := ledgerFor(w, r, h.ledgers)
	if !ok {
		return
	}

	items := l.Budget()
	if r.URL.Query().Get("month") != "" {
		month, err := monthParam(r, time.Now())
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid month format")
			return
		}
		filtered := items[:0]
		for _, it := range items {
			if it.Month == month {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}
	if items == nil {
		items = []domain.BudgetItem{}
	}
	middleware.WriteJSON(w, http.StatusOK, items)
}

// ReplaceBudget handles PUT /api/budget. The body is the complete budget;
// items missing from it are deleted.
func (h *BudgetHandler) ReplaceBudget(w http.ResponseWriter, r *http.Request) {
	var items []domain.BudgetItem
	if !decodeJSON(w, r, &items) {
		return
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
	}
	l, ok := ledgerFor(w, r, h.ledgers)
	if !ok {
		return
	}

	if err := l.ReplaceBudget(r.Context(), items); err != nil {
		middleware.WriteServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.BudgetItem{}
	}
	middleware.WriteJSON(w, http.StatusOK, items)
}

// AddBudgetItem handles POST /api/budget. Recurring items expand into
// "recurrence" monthly copies, 12 by default.
func (h *BudgetHandler) AddBudgetItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		domain.BudgetItem
		Recurrence int `json:"recurrence"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Recurrence < 0 || req.Recurrence > 120 {
		middleware.WriteError(w, http.StatusBadRequest, "recurrence must be between 0 and 120")
		return
	}
	l, ok := ledgerFor(w, r, h.ledgers)
	if !ok {
		return
	}

	items, err := l.AddBudgetItem(r.Context(), req.BudgetItem, req.Recurrence)
	if err != nil {
		middleware.WriteServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, items)
}
