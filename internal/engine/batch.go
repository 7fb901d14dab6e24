package engine

import (
	"fmt"
	"log/slog"

	"github.com/starford/docstamp/internal/storage"
)

// Summary aggregates a batch run.
type Summary struct {
	Results []Result `json:"results"`
	Changed int      `json:"changed"`
	Total   int      `json:"total"`
}

// String renders the closing line of a run.
func (s Summary) String() string {
	return fmt.Sprintf("Done. Files bumped: %d / %d", s.Changed, s.Total)
}

// Candidates normalizes paths to root-relative form and keeps only existing
// text documents. Duplicates are dropped; order is preserved.
func (e *Engine) Candidates(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	var out []string
	for _, p := range paths {
		rel, err := e.store.Rel(p)
		if err != nil {
			e.logger.Debug("candidate outside root", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		if !storage.HasExt(rel, e.exts) {
			continue
		}
		if _, dup := seen[rel]; dup {
			continue
		}
		if _, err := e.store.Stat(rel); err != nil {
			continue
		}
		seen[rel] = struct{}{}
		out = append(out, rel)
	}
	return out
}

// BumpAll filters paths through Candidates and bumps each one. A failing
// document never stops the batch.
func (e *Engine) BumpAll(paths []string, opts Options) Summary {
	targets := e.Candidates(paths)
	sum := Summary{Total: len(targets), Results: make([]Result, 0, len(targets))}
	for _, p := range targets {
		r := e.BumpFile(p, opts)
		if r.Changed {
			sum.Changed++
		}
		sum.Results = append(sum.Results, r)
	}
	return sum
}
