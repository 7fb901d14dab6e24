package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/starford/docstamp/internal/apperr"
	"github.com/starford/docstamp/internal/docservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *docservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *docservice.Service) *Handler {
	return &Handler{svc: svc}
}

// documentPath extracts the document path from the URL (everything after /api/documents/).
// Supports encoded slashes from OpenAPI clients (e.g. Context%2FSystem%2FGuide.md).
func documentPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List corpus documents with their header state
//	@Tags			documents
//	@Produce		json
//	@Param			stale	query		bool	false	"Only documents that need a bump"
//	@Success		200		{object}	DocumentListResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.ListDocuments(r.Context())
	if err != nil {
		if errors.Is(err, apperr.ErrCorpusMissing) {
			writeJSON(w, http.StatusNotFound, errorBody("corpus not found"))
			return
		}
		slog.Error("list documents failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if onlyStale, _ := strconv.ParseBool(r.URL.Query().Get("stale")); onlyStale {
		filtered := docs[:0]
		for _, d := range docs {
			if d.Stale {
				filtered = append(filtered, d)
			}
		}
		docs = filtered
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: docs, Total: len(docs)})
}

// GetDocument handles GET /api/documents/*.
//
//	@Summary		Get a single document with header state and bump history
//	@Tags			documents
//	@Produce		json
//	@Param			path	path		string	true	"Document path"
//	@Success		200		{object}	DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{path} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	path := documentPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	doc, err := h.svc.GetDocument(r.Context(), path)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrNotTextDocument):
			writeJSON(w, http.StatusBadRequest, errorBody("not a text document"))
		default:
			slog.Error("get document failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Bump handles POST /api/bump.
//
//	@Summary		Bump stale document headers
//	@Tags			headers
//	@Accept			json
//	@Produce		json
//	@Param			body	body		BumpRequest	false	"Targets and options"
//	@Success		200		{object}	BumpResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/bump [post]
func (h *Handler) Bump(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req BumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.MarginSeconds != nil && *req.MarginSeconds < 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("margin_seconds must not be negative"))
		return
	}

	opts := h.svc.Defaults()
	setBool(&opts.Force, req.Force)
	setBool(&opts.DateOnly, req.DateOnly)
	setBool(&opts.SyncModTime, req.SyncModTime)
	setBool(&opts.DryRun, req.DryRun)
	if req.MarginSeconds != nil {
		opts.Margin = time.Duration(*req.MarginSeconds) * time.Second
	}

	sum, err := h.svc.Bump(r.Context(), docservice.Selection{Paths: req.Files, FromGit: req.FromGit}, opts)
	if err != nil {
		if errors.Is(err, apperr.ErrCorpusMissing) {
			writeJSON(w, http.StatusNotFound, errorBody("corpus not found"))
			return
		}
		slog.Error("bump failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// Validate handles GET /api/validate.
//
//	@Summary		Validate document headers and the index document
//	@Tags			headers
//	@Produce		json
//	@Success		200		{object}	ValidationResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/validate [get]
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Validate(r.Context())
	if err != nil {
		if errors.Is(err, apperr.ErrCorpusMissing) {
			writeJSON(w, http.StatusNotFound, errorBody("corpus not found"))
			return
		}
		slog.Error("validate failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ValidationResponse{OK: rep.OK(), Checked: rep.Checked, Violations: rep.Violations})
}

// LastValidation handles GET /api/validate/last.
//
//	@Summary		Most recent recorded validation run
//	@Tags			headers
//	@Produce		json
//	@Success		200		{object}	LastValidationResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/validate/last [get]
func (h *Handler) LastValidation(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.LastValidation(r.Context())
	if err != nil {
		slog.Error("last validation failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, errorBody("no validation recorded"))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// History handles GET /api/history.
//
//	@Summary		Recorded header bumps
//	@Tags			headers
//	@Produce		json
//	@Param			path	query		string	false	"Restrict to one document"
//	@Param			limit	query		int		false	"Max records"
//	@Success		200		{object}	HistoryResponse
//	@Security		BearerAuth
//	@Router			/history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	recs, err := h.svc.History(r.Context(), q.Get("path"), limit)
	if err != nil {
		slog.Error("history failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Bumps: recs})
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
