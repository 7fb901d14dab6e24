// Package stamp parses and renders the LastUpdated timestamps embedded in
// document headers.
package stamp

import (
	"strings"
	"time"
)

// Layouts used when rendering a stamp.
const (
	DateLayout = "2006-01-02"
	FullLayout = "2006-01-02T15:04:05-07:00"
)

var offsetLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05-0700",
	"2006-01-02T15:04:05-07",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// Instant is a parsed timestamp. Naive instants carried no UTC offset in
// their textual form; their Time holds the wall clock in UTC and must be
// resolved with In before being compared to anything.
type Instant struct {
	Time  time.Time
	Naive bool
}

// FromTime wraps an offset-bearing time.
func FromTime(t time.Time) Instant {
	return Instant{Time: t}
}

// In resolves the instant in loc. A naive instant keeps its wall clock and
// takes loc's offset; an offset-bearing instant is converted.
func (i Instant) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	if i.Naive {
		t := i.Time
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
	}
	return i.Time.In(loc)
}

// Parse reads a date-only (YYYY-MM-DD) or ISO-8601 datetime stamp. It
// reports false when the text matches no accepted form.
func Parse(raw string) (Instant, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return Instant{}, false
	}

	if t, err := time.Parse(DateLayout, v); err == nil {
		return Instant{Time: t, Naive: true}, true
	}

	if strings.HasSuffix(v, "Z") {
		v = strings.TrimSuffix(v, "Z") + "+00:00"
	}
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return Instant{Time: t}, true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return Instant{Time: t, Naive: true}, true
		}
	}
	return Instant{}, false
}

// Format renders the instant for a header. Date-only stamps use the calendar
// date in loc; full stamps are second-precision with a numeric offset.
func Format(in Instant, dateOnly bool, loc *time.Location) string {
	t := in.In(loc)
	if dateOnly {
		return t.Format(DateLayout)
	}
	return t.Truncate(time.Second).Format(FullLayout)
}
