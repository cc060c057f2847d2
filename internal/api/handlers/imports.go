package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/household-finance/internal/api/middleware"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/dvloznov/household-finance/internal/infra/gcs"
	"github.com/dvloznov/household-finance/internal/jobs"
	"github.com/dvloznov/household-finance/internal/pipeline"
)

// Uploader stores statement files. *gcs.Storage satisfies it.
type Uploader interface {
	Upload(ctx context.Context, objectName string, r io.Reader, contentType string) (string, error)
}

// ImportsHandler handles statement import endpoints.
type ImportsHandler struct {
	ledgers       Ledgers
	importer      *pipeline.Importer
	publisher     jobs.Publisher
	uploader      Uploader
	defaultMember domain.Member
	now           func() time.Time
	log           zerolog.Logger
}

// NewImportsHandler creates a new imports handler. A nil uploader disables
// POST /api/imports/upload and a nil publisher disables both job endpoints.
func NewImportsHandler(ledgers Ledgers, importer *pipeline.Importer, publisher jobs.Publisher, uploader Uploader, defaultMember domain.Member, log zerolog.Logger) *ImportsHandler {
	return &ImportsHandler{
		ledgers:       ledgers,
		importer:      importer,
		publisher:     publisher,
		uploader:      uploader,
		defaultMember: defaultMember,
		now:           time.Now,
		log:           log,
	}
}

// Import handles POST /api/imports. It accepts a multipart "file" or a JSON
// body with pasted text.
func (h *ImportsHandler) Import(w http.ResponseWriter, r *http.Request) {
	var (
		in     pipeline.Input
		member string
	)

	if isMultipart(r) {
		data, header, ok := readUpload(w, r)
		if !ok {
			return
		}
		in.Filename = header.Filename
		in.Data = data
		member = r.FormValue("member")
		in.DryRun, _ = strconv.ParseBool(r.FormValue("dry_run"))
	} else {
		var req struct {
			Text   string `json:"text"`
			Member string `json:"member"`
			DryRun bool   `json:"dry_run"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			middleware.WriteError(w, http.StatusBadRequest, "text is required")
			return
		}
		in.Text = req.Text
		in.DryRun = req.DryRun
		member = req.Member
	}

	m, err := parseMember(member, h.defaultMember)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	in.Member = m

	l, ok := ledgerFor(w, r, h.ledgers)
	if !ok {
		return
	}

	res, err := h.importer.Import(r.Context(), l, in)
	if err != nil {
		middleware.WriteServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, res)
}

// EnqueueImport handles POST /api/imports/jobs
func (h *ImportsHandler) EnqueueImport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GCSURI   string `json:"gcs_uri"`
		Member   string `json:"member"`
		Filename string `json:"filename"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, _, err := gcs.ParseURI(req.GCSURI); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "gcs_uri must be gs://bucket/object")
		return
	}
	m, err := parseMember(req.Member, h.defaultMember)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.enqueue(w, r, req.GCSURI, req.Filename, m)
}

// UploadAndEnqueue handles POST /api/imports/upload
func (h *ImportsHandler) UploadAndEnqueue(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Uploads are not configured")
		return
	}

	data, header, ok := readUpload(w, r)
	if !ok {
		return
	}
	m, err := parseMember(r.FormValue("member"), h.defaultMember)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	household := middleware.HouseholdFromContext(r.Context())
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	uri, err := h.uploader.Upload(r.Context(), gcs.ObjectName(household, header.Filename, h.now()), bytes.NewReader(data), contentType)
	if err != nil {
		middleware.WriteServiceError(w, r, err)
		return
	}

	h.enqueue(w, r, uri, header.Filename, m)
}

func (h *ImportsHandler) enqueue(w http.ResponseWriter, r *http.Request, uri, filename string, member domain.Member) {
	if h.publisher == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Background imports are not configured")
		return
	}
	job := &jobs.ImportStatementJob{
		Household: middleware.HouseholdFromContext(r.Context()),
		Member:    string(member),
		GCSURI:    uri,
		Filename:  filename,
	}
	if err := h.publisher.PublishImportStatement(r.Context(), job); err != nil {
		h.log.Error().Err(err).Str("gcs_uri", uri).Msg("Failed to enqueue import job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue import job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("gcs_uri", uri).Msg("Import job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  job.JobID,
		"gcs_uri": uri,
		"status":  string(job.Status),
	})
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/")
}
