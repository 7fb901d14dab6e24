package api

import (
	"github.com/starford/docstamp/internal/docservice"
	"github.com/starford/docstamp/internal/engine"
	"github.com/starford/docstamp/internal/models"
)

// BumpRequest is the request body for POST /api/bump. Every field is
// optional; omitted options fall back to the server configuration.
type BumpRequest struct {
	Files         []string `json:"files,omitempty" example:"Context/System/Guide.md"`
	FromGit       bool     `json:"from_git,omitempty"`
	Force         *bool    `json:"force,omitempty"`
	DateOnly      *bool    `json:"date_only,omitempty"`
	MarginSeconds *int     `json:"margin_seconds,omitempty" example:"2"`
	SyncModTime   *bool    `json:"sync_mtime,omitempty"`
	DryRun        *bool    `json:"dry_run,omitempty"`
}

// DocumentDetail is the full document response type (aliased from the domain layer).
type DocumentDetail = docservice.DocumentDetail

// HeaderSummary is one entry of a document listing (aliased from the domain layer).
type HeaderSummary = models.HeaderSummary

// DocumentListResponse wraps document listings.
type DocumentListResponse struct {
	Documents []HeaderSummary `json:"documents" validate:"required"`
	Total     int             `json:"total" example:"42" validate:"required"`
}

// BumpResponse wraps the outcome of a bump run.
type BumpResponse = engine.Summary

// ValidationResponse is returned by GET /api/validate.
type ValidationResponse struct {
	OK         bool     `json:"ok" validate:"required"`
	Checked    int      `json:"checked" example:"12"`
	Violations []string `json:"violations" validate:"required"`
}

// HistoryResponse wraps recorded bumps.
type HistoryResponse struct {
	Bumps []models.BumpRecord `json:"bumps" validate:"required"`
}

// LastValidationResponse is returned by GET /api/validate/last.
type LastValidationResponse = models.ValidationRecord
