package handlers

import (
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/household-finance/internal/aggregate"
	"github.com/dvloznov/household-finance/internal/api/middleware"
	"github.com/dvloznov/household-finance/internal/domain"
)

// TransactionsHandler handles transaction-related endpoints.
type TransactionsHandler struct {
	ledgers       Ledgers
	defaultMember domain.Member
	log           zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(ledgers Ledgers, defaultMember domain.Member, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{ledgers: ledgers, defaultMember: defaultMember, log: log}
}

type transactionRequest struct {
	Date        civil.Date      `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Member      string          `json:"member"`
}

func (h *TransactionsHandler) toTransaction(w http.ResponseWriter, req transactionRequest, id string) (domain.Transaction, bool) {
	t, err := domain.ParseType(req.Type)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return domain.Transaction{}, false
	}
	m, err := parseMember(req.Member, h.defaultMember)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return domain.Transaction{}, false
	}
	category := req.Category
	if category == "" {
		category = domain.CategoryFallback
	}
	return domain.Transaction{
		ID:          id,
		Date:        req.Date,
		Description: req.Description,
		Amount:      req.Amount,
		Type:        t,
		Category:    category,
		Member:      m,
	}, true
}

// ListTransactions handles GET /api/transactions. ?month=YYYY-MM narrows the list.
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	l, ok := ledgerFor(w, r, h.ledgers)
	if !ok {
		return
	}

	txs := l.Transactions()
	if r.URL.Query().Get("month") != "" {
		month, err := monthParam(r, time.Now())
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid month format")
			return
		}
		txs = aggregate.InMonth(txs, month)
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, txs)
}

// CreateTransaction handles POST /api/transactions
func (h *TransactionsHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tx, ok := h.toTransaction(w, req, uuid.NewString())
	if !ok {
		return
	}
	l, ok := ledgerFor(w, r, h.ledgers)
	if !ok {
		return
	}

	if err := l.AddTransaction(r.Context(), tx); err != nil {
		middleware.WriteServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// UpdateTransaction handles PUT /api/transactions/{id}
func (h *TransactionsHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tx, ok := h.toTransaction(w, req, r.PathValue("id"))
	if !ok {
		return
	}
	l, ok := ledgerFor(w, r, h.ledgers)
	if !ok {
		return
	}

	if err := l.UpdateTransaction(r.Context(), tx); err != nil {
		middleware.WriteServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, tx)
}

// DeleteTransaction handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	l, ok := ledgerFor(w, r, h.ledgers)
	if !ok {
		return
	}
	if err := l.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		middleware.WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
