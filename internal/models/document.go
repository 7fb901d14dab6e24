// Package models defines the domain types shared across docstamp packages.
package models

import "time"

// DocumentMetadata describes a corpus file on disk.
type DocumentMetadata struct {
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Checksum string    `json:"checksum,omitempty"`
	ModTime  time.Time `json:"mod_time"`
}

// HeaderSummary is the header of a document as currently recorded.
type HeaderSummary struct {
	Path        string    `json:"path"`
	Version     int       `json:"version"`
	HasVersion  bool      `json:"has_version"`
	LastUpdated string    `json:"last_updated,omitempty"`
	ModTime     time.Time `json:"mod_time"`
	Stale       bool      `json:"stale"`
	Canonical   bool      `json:"canonical"`
}

// BumpRecord is one persisted header bump.
type BumpRecord struct {
	ID       int64     `json:"id"`
	Path     string    `json:"path"`
	Version  int       `json:"version"`
	Stamp    string    `json:"stamp"`
	Checksum string    `json:"checksum"`
	BumpedAt time.Time `json:"bumped_at"`
}

// ValidationRecord is one persisted validation run.
type ValidationRecord struct {
	ID         int64     `json:"id"`
	RanAt      time.Time `json:"ran_at"`
	OK         bool      `json:"ok"`
	Violations []string  `json:"violations"`
}
