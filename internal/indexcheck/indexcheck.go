// Package indexcheck validates the entries of the corpus index document.
//
// Entries look like
//
//	- DocID: ops-guide
//	  FilePath: Context/Ops/Guide.md
//	  Owns: deployment runbooks
//
// A DocID line opens an entry and closes the previous one. DocIDs and
// FilePaths must be unique across the index and every entry needs a
// FilePath and an Owns line.
package indexcheck

import (
	"fmt"
	"regexp"
)

var (
	docIDRe    = regexp.MustCompile(`^\s*-\s*DocID:\s*(\S+)\s*$`)
	filePathRe = regexp.MustCompile(`^\s*FilePath:\s*(\S+)\s*$`)
	ownsRe     = regexp.MustCompile(`^\s*Owns:\s*(.+)\s*$`)
)

// Kind classifies a violation.
type Kind string

const (
	DuplicateDocID    Kind = "duplicate-docid"
	MissingFilePath   Kind = "missing-filepath"
	DuplicateFilePath Kind = "duplicate-filepath"
	MissingOwns       Kind = "missing-owns"
)

// Violation is one structural problem found in the index. Line is the
// 1-based line of the DocID that opened the offending entry.
type Violation struct {
	Kind     Kind   `json:"kind"`
	Source   string `json:"source"`
	Line     int    `json:"line"`
	DocID    string `json:"doc_id"`
	FilePath string `json:"file_path,omitempty"`
}

func (v Violation) String() string {
	switch v.Kind {
	case DuplicateDocID:
		return fmt.Sprintf("%s: duplicate DocID %s", v.Source, v.DocID)
	case MissingFilePath:
		return fmt.Sprintf("%s: DocID %s missing FilePath", v.Source, v.DocID)
	case DuplicateFilePath:
		return fmt.Sprintf("%s: duplicate FilePath %s", v.Source, v.FilePath)
	case MissingOwns:
		return fmt.Sprintf("%s: DocID %s missing Owns:", v.Source, v.DocID)
	}
	return fmt.Sprintf("%s: %s %s", v.Source, v.Kind, v.DocID)
}

type entry struct {
	docID       string
	line        int
	filePath    string
	hasFilePath bool
	hasOwns     bool
}

// checker is the fold state. It lives for exactly one Check call.
type checker struct {
	source     string
	open       *entry
	docIDs     map[string]struct{}
	filePaths  map[string]struct{}
	violations []Violation
}

// Check scans the index lines and returns every violation, in the order the
// entries close. It never stops early.
func Check(source string, lines []string) []Violation {
	c := &checker{
		source:    source,
		docIDs:    make(map[string]struct{}),
		filePaths: make(map[string]struct{}),
	}
	for i, line := range lines {
		c.step(i+1, line)
	}
	c.close()
	return c.violations
}

func (c *checker) step(lineNo int, line string) {
	if m := docIDRe.FindStringSubmatch(line); m != nil {
		c.close()
		c.open = &entry{docID: m[1], line: lineNo}
		return
	}
	if c.open == nil {
		return
	}
	if m := filePathRe.FindStringSubmatch(line); m != nil {
		// Only the first FilePath of an entry counts.
		if !c.open.hasFilePath {
			c.open.filePath, c.open.hasFilePath = m[1], true
		}
		return
	}
	if ownsRe.MatchString(line) {
		c.open.hasOwns = true
	}
}

func (c *checker) close() {
	e := c.open
	if e == nil {
		return
	}
	c.open = nil

	if _, dup := c.docIDs[e.docID]; dup {
		c.report(DuplicateDocID, e)
	} else {
		c.docIDs[e.docID] = struct{}{}
	}

	if !e.hasFilePath {
		c.report(MissingFilePath, e)
	} else if _, dup := c.filePaths[e.filePath]; dup {
		c.report(DuplicateFilePath, e)
	} else {
		c.filePaths[e.filePath] = struct{}{}
	}

	if !e.hasOwns {
		c.report(MissingOwns, e)
	}
}

func (c *checker) report(kind Kind, e *entry) {
	c.violations = append(c.violations, Violation{
		Kind:     kind,
		Source:   c.source,
		Line:     e.line,
		DocID:    e.docID,
		FilePath: e.filePath,
	})
}
