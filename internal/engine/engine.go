// Package engine runs the header lifecycle over corpus documents: it decides
// staleness, rewrites headers and keeps modification times in step with the
// recorded stamps.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/docstamp/internal/apperr"
	"github.com/starford/docstamp/internal/header"
	"github.com/starford/docstamp/internal/ledger"
	"github.com/starford/docstamp/internal/models"
	"github.com/starford/docstamp/internal/stamp"
	"github.com/starford/docstamp/internal/staleness"
	"github.com/starford/docstamp/internal/storage"
)

// Outcome classifies the result of processing one document.
type Outcome string

const (
	OutcomeNoBump       Outcome = "no-bump"
	OutcomeBumped       Outcome = "bumped"
	OutcomeDryRun       Outcome = "dry-run"
	OutcomeMissing      Outcome = "skipped-missing"
	OutcomeParseFailure Outcome = "skipped-parse-failure"
	OutcomeFailed       Outcome = "failed"
)

// Options control a bump run.
type Options struct {
	Force       bool
	DateOnly    bool
	Margin      time.Duration
	SyncModTime bool
	DryRun      bool
}

// DefaultOptions mirrors the command-line defaults.
func DefaultOptions() Options {
	return Options{Margin: staleness.DefaultMargin, SyncModTime: true}
}

// Result is the outcome for one document.
type Result struct {
	Path    string  `json:"path"`
	Changed bool    `json:"changed"`
	Outcome Outcome `json:"outcome"`
	Version int     `json:"version,omitempty"`
	Stamp   string  `json:"stamp,omitempty"`
	Message string  `json:"message"`
}

// Engine bumps document headers stored behind a storage.Provider.
type Engine struct {
	store    storage.Provider
	recorder ledger.Recorder
	logger   *slog.Logger
	now      func() time.Time
	loc      *time.Location
	window   int
	exts     []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder records every successful bump.
func WithRecorder(r ledger.Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the zone stamps are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

// WithWindow sets how many leading lines are searched for the header.
func WithWindow(n int) Option {
	return func(e *Engine) { e.window = n }
}

// WithExtensions sets which file extensions count as text documents.
func WithExtensions(exts []string) Option {
	return func(e *Engine) { e.exts = exts }
}

// New creates an Engine.
func New(store storage.Provider, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
		loc:    time.Local,
		window: header.DefaultWindow,
		exts:   []string{".md"},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Inspect reads the current header of path and evaluates staleness with
// the given margin.
func (e *Engine) Inspect(path string, margin time.Duration) (models.HeaderSummary, error) {
	meta, err := e.store.Stat(path)
	if err != nil {
		return models.HeaderSummary{}, err
	}
	data, err := e.store.Read(path)
	if err != nil {
		return models.HeaderSummary{}, err
	}
	lines := header.Split(data)
	info := header.Locate(lines, e.window)
	recorded, ok := stamp.Parse(info.LastUpdatedRaw)
	return models.HeaderSummary{
		Path:        meta.Path,
		Version:     info.Version,
		HasVersion:  info.HasVersion,
		LastUpdated: info.LastUpdatedRaw,
		ModTime:     meta.ModTime,
		Stale:       staleness.New(margin).NeedsUpdate(meta.ModTime.In(e.loc), recorded, ok, false),
		Canonical:   header.InsertionPoint(lines) > 0,
	}, nil
}

// BumpFile processes a single document. It never returns an error; every
// failure is reported through the Result.
func (e *Engine) BumpFile(path string, opts Options) Result {
	meta, err := e.store.Stat(path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Result{Path: path, Outcome: OutcomeMissing, Message: fmt.Sprintf("SKIP (missing): %s", path)}
		}
		return e.failed(path, err)
	}

	data, err := e.store.Read(path)
	if err != nil {
		return e.failed(path, err)
	}
	lines := header.Split(data)
	info := header.Locate(lines, e.window)
	recorded, ok := stamp.Parse(info.LastUpdatedRaw)

	// Naive stamps are written in e.loc, so they are read back in it too.
	policy := staleness.New(opts.Margin)
	if !policy.NeedsUpdate(meta.ModTime.In(e.loc), recorded, ok, opts.Force) {
		return Result{Path: path, Outcome: OutcomeNoBump, Message: fmt.Sprintf("OK (no bump): %s", path)}
	}

	now := e.now().In(e.loc).Truncate(time.Second)
	stampText := stamp.Format(stamp.FromTime(now), opts.DateOnly, e.loc)

	mut, err := header.Mutate(lines, info, stampText, e.window)
	if err != nil {
		e.logger.Warn("header mutation failed", slog.String("path", path), slog.String("error", err.Error()))
		return Result{Path: path, Outcome: OutcomeParseFailure, Message: fmt.Sprintf("SKIP (header parse failed): %s", path)}
	}

	detail := fmt.Sprintf("%s -> Version %d, LastUpdated %s", path, mut.Version, mut.Stamp)
	if opts.DryRun {
		return Result{
			Path: path, Changed: true, Outcome: OutcomeDryRun,
			Version: mut.Version, Stamp: mut.Stamp,
			Message: "DRY-RUN bump: " + detail,
		}
	}

	content := header.Join(mut.Lines)
	if err := e.store.Write(path, content); err != nil {
		return e.failed(path, err)
	}

	if opts.SyncModTime {
		canonical, _ := stamp.Parse(mut.Stamp)
		if err := e.store.Touch(path, canonical.In(e.loc)); err != nil {
			e.logger.Warn("sync mtime failed", slog.String("path", path), slog.String("error", err.Error()))
		}
	}

	if e.recorder != nil {
		err := e.recorder.RecordBump(models.BumpRecord{
			Path:     path,
			Version:  mut.Version,
			Stamp:    mut.Stamp,
			Checksum: storage.Checksum(content),
			BumpedAt: now,
		})
		if err != nil {
			e.logger.Warn("record bump failed", slog.String("path", path), slog.String("error", err.Error()))
		}
	}

	e.logger.Debug("bumped", slog.String("path", path), slog.Int("version", mut.Version), slog.String("stamp", mut.Stamp))
	return Result{
		Path: path, Changed: true, Outcome: OutcomeBumped,
		Version: mut.Version, Stamp: mut.Stamp,
		Message: "BUMPED: " + detail,
	}
}

func (e *Engine) failed(path string, err error) Result {
	e.logger.Warn("bump failed", slog.String("path", path), slog.String("error", err.Error()))
	return Result{Path: path, Outcome: OutcomeFailed, Message: fmt.Sprintf("ERROR: %s: %v", path, err)}
}
