package ledger

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/docstamp/internal/models"
)

const defaultLimit = 50

// RecordBump appends a bump to the history.
func (db *DB) RecordBump(rec models.BumpRecord) error {
	if rec.BumpedAt.IsZero() {
		rec.BumpedAt = time.Now()
	}
	_, err := db.conn.Exec(`
		INSERT INTO bumps (path, version, stamp, checksum, bumped_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.Path, rec.Version, rec.Stamp, rec.Checksum, rec.BumpedAt.UTC())
	if err != nil {
		return fmt.Errorf("ledger: insert bump: %w", err)
	}
	return nil
}

// History returns the bumps of one document, newest first.
func (db *DB) History(path string, limit int) ([]models.BumpRecord, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := db.conn.Query(`
		SELECT id, path, version, stamp, checksum, bumped_at
		FROM bumps
		WHERE path = ?
		ORDER BY id DESC
		LIMIT ?
	`, path, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger: history: %w", err)
	}
	return scanBumps(rows)
}

// LatestBumps returns the most recent bumps across all documents.
func (db *DB) LatestBumps(limit int) ([]models.BumpRecord, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := db.conn.Query(`
		SELECT id, path, version, stamp, checksum, bumped_at
		FROM bumps
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger: latest bumps: %w", err)
	}
	return scanBumps(rows)
}

func scanBumps(rows *sql.Rows) ([]models.BumpRecord, error) {
	defer rows.Close()
	var out []models.BumpRecord
	for rows.Next() {
		var r models.BumpRecord
		if err := rows.Scan(&r.ID, &r.Path, &r.Version, &r.Stamp, &r.Checksum, &r.BumpedAt); err != nil {
			return nil, fmt.Errorf("ledger: scan bump: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecordValidation appends a validation run.
func (db *DB) RecordValidation(rec models.ValidationRecord) error {
	if rec.RanAt.IsZero() {
		rec.RanAt = time.Now()
	}
	if rec.Violations == nil {
		rec.Violations = []string{}
	}
	violations, err := json.Marshal(rec.Violations)
	if err != nil {
		return fmt.Errorf("ledger: encode violations: %w", err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO validations (ran_at, ok, violations)
		VALUES (?, ?, ?)
	`, rec.RanAt.UTC(), rec.OK, string(violations))
	if err != nil {
		return fmt.Errorf("ledger: insert validation: %w", err)
	}
	return nil
}

// LastValidation returns the most recent validation run, or nil when none
// was recorded.
func (db *DB) LastValidation() (*models.ValidationRecord, error) {
	var (
		rec        models.ValidationRecord
		violations string
	)
	err := db.conn.QueryRow(`
		SELECT id, ran_at, ok, violations
		FROM validations
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&rec.ID, &rec.RanAt, &rec.OK, &violations)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: last validation: %w", err)
	}
	if err := json.Unmarshal([]byte(violations), &rec.Violations); err != nil {
		return nil, fmt.Errorf("ledger: decode violations: %w", err)
	}
	return &rec, nil
}
