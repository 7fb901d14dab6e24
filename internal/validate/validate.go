// Package validate checks a corpus: every document carries a header near the
// top and the index document is consistent.
package validate

import (
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/starford/docstamp/internal/apperr"
	"github.com/starford/docstamp/internal/header"
	"github.com/starford/docstamp/internal/indexcheck"
	"github.com/starford/docstamp/internal/storage"
)

// DefaultWindow is the number of leading lines a header must appear in.
const DefaultWindow = 30

// Config selects what is validated.
type Config struct {
	CorpusDir  string
	IndexPath  string
	Extensions []string
	Window     int
}

// Report is the result of one validation run.
type Report struct {
	Checked    int      `json:"checked"`
	Violations []string `json:"violations"`
}

// OK reports whether the run found no violations.
func (r Report) OK() bool { return len(r.Violations) == 0 }

// Write prints the report the way the CLI shows it.
func (r Report) Write(w io.Writer) error {
	if r.OK() {
		_, err := fmt.Fprintln(w, "Validation OK.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Validation failed:"); err != nil {
		return err
	}
	for _, v := range r.Violations {
		if _, err := fmt.Fprintln(w, "-", v); err != nil {
			return err
		}
	}
	return nil
}

// Run validates the corpus. It fails with apperr.ErrCorpusMissing when the
// corpus directory does not exist; everything else is a violation.
func Run(store storage.Provider, cfg Config) (Report, error) {
	window := cfg.Window
	if window <= 0 {
		window = DefaultWindow
	}

	if !store.IsDir(cfg.CorpusDir) {
		return Report{}, fmt.Errorf("validate: %s: %w", cfg.CorpusDir, apperr.ErrCorpusMissing)
	}
	docs, err := store.List(cfg.CorpusDir, cfg.Extensions)
	if err != nil {
		return Report{}, fmt.Errorf("validate: %w", err)
	}

	rep := Report{Checked: len(docs), Violations: []string{}}
	for _, d := range docs {
		data, err := store.Read(d.Path)
		if err != nil {
			rep.Violations = append(rep.Violations, fmt.Sprintf("%s: unreadable: %v", d.Path, err))
			continue
		}
		// Same matcher as bumping, so indented header lines count as present.
		info := header.Locate(header.Split(data), window)
		if info.VersionIdx < 0 {
			rep.Violations = append(rep.Violations, fmt.Sprintf("%s: missing Version header in first %d lines", d.Path, window))
		}
		if info.LastUpdatedIdx < 0 {
			rep.Violations = append(rep.Violations, fmt.Sprintf("%s: missing LastUpdated header in first %d lines", d.Path, window))
		}
	}

	if cfg.IndexPath == "" {
		return rep, nil
	}
	data, err := store.Read(cfg.IndexPath)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return Report{}, fmt.Errorf("validate: %w", err)
		}
		rep.Violations = append(rep.Violations, path.Clean(cfg.IndexPath)+" not found")
		return rep, nil
	}
	for _, v := range indexcheck.Check(cfg.IndexPath, header.Texts(header.Split(data))) {
		rep.Violations = append(rep.Violations, v.String())
	}
	return rep, nil
}
