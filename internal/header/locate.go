package header

import (
	"regexp"
	"strconv"
	"strings"
)

// CanonicalMarker is the literal that opens the authoritative index document.
const CanonicalMarker = "CHATGPT_CONTEXT_INDEX_CANONICAL"

const (
	// DefaultWindow is how many leading lines Locate inspects.
	DefaultWindow = 40
	// markerScanLines bounds the search for the first non-blank line.
	markerScanLines = 10
)

var (
	versionRe     = regexp.MustCompile(`^(\s*Version:\s*)(\d+)\s*$`)
	lastUpdatedRe = regexp.MustCompile(`^(\s*LastUpdated:\s*)(.+?)\s*$`)
	markerRe      = regexp.MustCompile(`^\s*` + regexp.QuoteMeta(CanonicalMarker) + `\s*$`)
)

// Info is the result of scanning a document's leading lines. Indices are -1
// when the field was not found inside the window; Version is only meaningful
// when HasVersion is set.
type Info struct {
	VersionIdx     int
	LastUpdatedIdx int
	Version        int
	HasVersion     bool
	LastUpdatedRaw string
}

// Complete reports whether both fields were found.
func (i Info) Complete() bool {
	return i.VersionIdx >= 0 && i.LastUpdatedIdx >= 0
}

// Locate finds the first Version and LastUpdated lines among the first
// window lines. Later occurrences are ignored.
func Locate(lines []Line, window int) Info {
	if window <= 0 {
		window = DefaultWindow
	}
	info := Info{VersionIdx: -1, LastUpdatedIdx: -1}
	for i, line := range lines {
		if i >= window {
			break
		}
		if info.VersionIdx < 0 {
			if m := versionRe.FindStringSubmatch(line.Text); m != nil {
				info.VersionIdx = i
				if v, err := strconv.Atoi(m[2]); err == nil {
					info.Version, info.HasVersion = v, true
				}
				continue
			}
		}
		if info.LastUpdatedIdx < 0 {
			if m := lastUpdatedRe.FindStringSubmatch(line.Text); m != nil {
				info.LastUpdatedIdx = i
				info.LastUpdatedRaw = strings.TrimSpace(m[2])
			}
		}
	}
	return info
}

// IsMarker reports whether text is the canonical marker line.
func IsMarker(text string) bool {
	return markerRe.MatchString(text)
}

// InsertionPoint returns the line index at which a missing header block is
// inserted: after the canonical marker (and one blank line following it)
// when the document opens with the marker, otherwise the top.
func InsertionPoint(lines []Line) int {
	first := -1
	for i, line := range lines {
		if i >= markerScanLines {
			break
		}
		if strings.TrimSpace(line.Text) != "" {
			first = i
			break
		}
	}
	if first < 0 || !IsMarker(lines[first].Text) {
		return 0
	}
	idx := first + 1
	if idx < len(lines) && strings.TrimSpace(lines[idx].Text) == "" {
		idx++
	}
	return idx
}
