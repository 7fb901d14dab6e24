package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/docstamp/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "state", "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM bumps`).Scan(&count); err != nil {
		t.Fatalf("bumps table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM validations`).Scan(&count); err != nil {
		t.Fatalf("validations table missing: %v", err)
	}
}

func TestRecordBumpAndHistory(t *testing.T) {
	db := testDB(t)
	at := time.Date(2026, 1, 17, 22, 23, 11, 0, time.UTC)
	for v := 1; v <= 3; v++ {
		err := db.RecordBump(models.BumpRecord{
			Path:     "Context/a.md",
			Version:  v,
			Stamp:    "2026-01-17",
			Checksum: "abc",
			BumpedAt: at,
		})
		if err != nil {
			t.Fatalf("RecordBump: %v", err)
		}
	}
	_ = db.RecordBump(models.BumpRecord{Path: "Context/b.md", Version: 1, Stamp: "2026-01-17"})

	hist, err := db.History("Context/a.md", 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("len = %d, want 2", len(hist))
	}
	if hist[0].Version != 3 || hist[1].Version != 2 {
		t.Errorf("history not newest-first: %+v", hist)
	}
	if !hist[0].BumpedAt.Equal(at) {
		t.Errorf("bumped_at = %v, want %v", hist[0].BumpedAt, at)
	}

	latest, err := db.LatestBumps(0)
	if err != nil {
		t.Fatalf("LatestBumps: %v", err)
	}
	if len(latest) != 4 || latest[0].Path != "Context/b.md" {
		t.Errorf("latest = %+v", latest)
	}
}

func TestHistory_UnknownPath(t *testing.T) {
	db := testDB(t)
	hist, err := db.History("nope.md", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 0 {
		t.Errorf("expected empty history, got %+v", hist)
	}
}

func TestValidationRoundTrip(t *testing.T) {
	db := testDB(t)
	rec, err := db.LastValidation()
	if err != nil {
		t.Fatalf("LastValidation: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected no validation yet, got %+v", rec)
	}

	_ = db.RecordValidation(models.ValidationRecord{OK: true})
	if err := db.RecordValidation(models.ValidationRecord{
		OK:         false,
		Violations: []string{"index: duplicate DocID a"},
	}); err != nil {
		t.Fatalf("RecordValidation: %v", err)
	}

	rec, err = db.LastValidation()
	if err != nil {
		t.Fatalf("LastValidation: %v", err)
	}
	if rec == nil || rec.OK || len(rec.Violations) != 1 || rec.Violations[0] != "index: duplicate DocID a" {
		t.Errorf("last validation = %+v", rec)
	}
}
