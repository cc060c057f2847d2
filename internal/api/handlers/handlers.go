// Package handlers serves the household finance HTTP API. Every handler acts on
// the household resolved by middleware.Auth.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/dvloznov/household-finance/internal/api/middleware"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/dvloznov/household-finance/internal/ledger"
)

// MaxUploadBytes caps statement and receipt uploads.
const MaxUploadBytes = 20 << 20

// Ledgers resolves a household to its ledger. *ledger.Registry satisfies it.
type Ledgers interface {
	Get(ctx context.Context, household string) (*ledger.Ledger, error)
}

// ledgerFor loads the request's household ledger, writing the error response on failure.
func ledgerFor(w http.ResponseWriter, r *http.Request, ledgers Ledgers) (*ledger.Ledger, bool) {
	l, err := ledgers.Get(r.Context(), middleware.HouseholdFromContext(r.Context()))
	if err != nil {
		middleware.WriteServiceError(w, r, err)
		return nil, false
	}
	return l, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// readUpload returns the "file" part of a multipart request.
func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "File too large")
			return nil, nil, false
		}
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return nil, nil, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "file is required")
		return nil, nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read file")
		return nil, nil, false
	}
	return data, header, true
}

// parseMember falls back to def when s is empty.
func parseMember(s string, def domain.Member) (domain.Member, error) {
	if s == "" {
		return def, nil
	}
	return domain.ParseMember(s)
}

// monthParam reads ?month=YYYY-MM, defaulting to the month of now.
func monthParam(r *http.Request, now time.Time) (domain.Month, error) {
	s := r.URL.Query().Get("month")
	if s == "" {
		return domain.MonthOf(now), nil
	}
	return domain.ParseMonth(s)
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
