// Package staleness decides whether a document's recorded LastUpdated lags
// behind its modification time.
package staleness

import (
	"time"

	"github.com/starford/docstamp/internal/stamp"
)

// DefaultMargin is the slack by which the modification time must lead the
// recorded stamp before a document counts as stale.
const DefaultMargin = 2 * time.Second

// Policy compares modification times against recorded stamps.
type Policy struct {
	Margin time.Duration
}

// New returns a Policy with the given margin. Negative margins are clamped
// to zero.
func New(margin time.Duration) Policy {
	if margin < 0 {
		margin = 0
	}
	return Policy{Margin: margin}
}

// NeedsUpdate reports whether a document must be bumped. A missing or
// unparsable recorded stamp (ok == false) is always stale. A naive recorded
// stamp is read in modTime's location.
func (p Policy) NeedsUpdate(modTime time.Time, recorded stamp.Instant, ok, force bool) bool {
	if force || !ok {
		return true
	}
	last := recorded.In(modTime.Location())
	return modTime.Sub(last) > p.Margin
}
