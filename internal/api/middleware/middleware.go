package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/household-finance/internal/advisor"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/dvloznov/household-finance/internal/extract"
	"github.com/dvloznov/household-finance/internal/jobs"
	"github.com/dvloznov/household-finance/internal/ledger"
	"github.com/dvloznov/household-finance/internal/logger"
	"github.com/dvloznov/household-finance/internal/pipeline"
	"github.com/dvloznov/household-finance/internal/statement"
	"github.com/dvloznov/household-finance/internal/store"
)

// HouseholdHeader selects the household a request acts on.
const HouseholdHeader = "X-Household-ID"

var householdPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Logger adds structured logging to HTTP requests and puts a request-scoped
// logger in the context.
func Logger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status code
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			reqLog := log.With().Str("request_id", RequestIDFromContext(r.Context())).Logger()
			ctx := logger.WithContext(r.Context(), reqLog)

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			reqLog.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapped.statusCode).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Msg("HTTP request")
		})
	}
}

// CORS adds Cross-Origin Resource Sharing headers.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+HouseholdHeader)
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Recovery recovers from panics and returns a 500 error.
func Recovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error().
						Interface("error", err).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("Panic recovered")

					WriteError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RequestID adds a unique request ID to the context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Auth resolves the household from the X-Household-ID header, falling back to
// defaultHousehold. /health is served without one.
func Auth(defaultHousehold string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			household := r.Header.Get(HouseholdHeader)
			if household == "" {
				household = defaultHousehold
			}
			if !householdPattern.MatchString(household) {
				WriteError(w, http.StatusUnauthorized, "Missing or invalid "+HouseholdHeader)
				return
			}

			ctx := context.WithValue(r.Context(), householdKey, household)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HouseholdFromContext returns the household set by Auth.
func HouseholdFromContext(ctx context.Context) string {
	h, _ := ctx.Value(householdKey).(string)
	return h
}

// RequestIDFromContext returns the id set by RequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

type contextKey string

const (
	requestIDKey contextKey = "requestID"
	householdKey contextKey = "household"
)

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// StatusFor maps a service error to its HTTP status and a user-facing message.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, extract.ErrExtractionFailed):
		return http.StatusUnprocessableEntity, "Não foi possível interpretar o extrato."
	case errors.Is(err, pipeline.ErrNotRecognized):
		return http.StatusUnprocessableEntity, "Formato de extrato não reconhecido."
	case errors.Is(err, statement.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "Formato de ficheiro não suportado."
	case errors.Is(err, domain.ErrInvalidTransaction),
		errors.Is(err, domain.ErrInvalidBudgetItem),
		errors.Is(err, domain.ErrInvalidGoal):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, store.ErrNotFound), errors.Is(err, jobs.ErrJobNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, advisor.ErrAdviceFailed):
		return http.StatusBadGateway, "O consultor não está disponível de momento."
	case errors.Is(err, ledger.ErrPersistFailed):
		return http.StatusInternalServerError, "Não foi possível guardar as alterações."
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Request timed out"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// WriteServiceError logs err and writes the mapped status and message.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := StatusFor(err)
	log := logger.FromContext(r.Context())
	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).Int("status", status).Str("path", r.URL.Path).Msg("Request failed")
	WriteError(w, status, message)
}
