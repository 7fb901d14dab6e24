package ledger

import "github.com/starford/docstamp/internal/models"

// Recorder persists bumps and validation outcomes. Consumers depend on this
// interface rather than *DB so the ledger stays optional.
type Recorder interface {
	RecordBump(rec models.BumpRecord) error
	RecordValidation(rec models.ValidationRecord) error
}

// Reader queries recorded history.
type Reader interface {
	History(path string, limit int) ([]models.BumpRecord, error)
	LatestBumps(limit int) ([]models.BumpRecord, error)
	LastValidation() (*models.ValidationRecord, error)
}

// Verify *DB satisfies both interfaces at compile time.
var (
	_ Recorder = (*DB)(nil)
	_ Reader   = (*DB)(nil)
)
