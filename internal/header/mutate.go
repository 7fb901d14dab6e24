package header

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"

	"github.com/starford/docstamp/internal/apperr"
)

// Mutation is a rewritten document and the header values written into it.
type Mutation struct {
	Lines    []Line
	Version  int
	Stamp    string
	Inserted bool
}

// Mutate bumps the header of lines to the next version and sets LastUpdated
// to stampText. A missing field causes a fresh header block to be inserted
// first. Lines outside the header are returned untouched; the input slice is
// not modified.
func Mutate(lines []Line, info Info, stampText string, window int) (Mutation, error) {
	out := slices.Clone(lines)
	eol := documentEOL(lines)

	base := 0
	if info.HasVersion {
		base = info.Version
	}

	inserted := false
	if !info.Complete() {
		at := InsertionPoint(out)
		if at > 0 && out[at-1].EOL == "" {
			out[at-1].EOL = eol
		}
		block := []Line{
			{Text: "Version: 1", EOL: eol},
			{Text: "LastUpdated: " + stampText, EOL: eol},
			{Text: "", EOL: eol},
		}
		out = slices.Insert(out, at, block...)
		info = Locate(out, window)
		inserted = true
	}
	if !info.Complete() {
		return Mutation{}, fmt.Errorf("%w: Version/LastUpdated not found after insertion", apperr.ErrHeaderParse)
	}

	version := base + 1
	var ok bool
	if out[info.VersionIdx], ok = replaceValue(out[info.VersionIdx], versionRe, strconv.Itoa(version), eol); !ok {
		return Mutation{}, fmt.Errorf("%w: line %d is not a Version field", apperr.ErrHeaderParse, info.VersionIdx+1)
	}
	if out[info.LastUpdatedIdx], ok = replaceValue(out[info.LastUpdatedIdx], lastUpdatedRe, stampText, eol); !ok {
		return Mutation{}, fmt.Errorf("%w: line %d is not a LastUpdated field", apperr.ErrHeaderParse, info.LastUpdatedIdx+1)
	}

	return Mutation{Lines: out, Version: version, Stamp: stampText, Inserted: inserted}, nil
}

// replaceValue swaps the field value while keeping indentation and the field
// name. A line without an ending gets eol.
func replaceValue(line Line, re *regexp.Regexp, value, eol string) (Line, bool) {
	m := re.FindStringSubmatch(line.Text)
	if m == nil {
		return line, false
	}
	line.Text = m[1] + value
	if line.EOL == "" {
		line.EOL = eol
	}
	return line, true
}
