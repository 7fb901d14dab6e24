// Package docservice coordinates the engine, validation, the ledger and event
// publishing behind one API shared by the CLI, HTTP and MCP surfaces.
package docservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/docstamp/internal/apperr"
	"github.com/starford/docstamp/internal/changes"
	"github.com/starford/docstamp/internal/engine"
	"github.com/starford/docstamp/internal/ledger"
	"github.com/starford/docstamp/internal/models"
	"github.com/starford/docstamp/internal/storage"
	"github.com/starford/docstamp/internal/validate"
	"github.com/starford/docstamp/internal/watcher"
)

// Publisher receives bump and validation events.
type Publisher interface {
	PublishBump(path string, version int, stamp string)
	PublishValidation(ok bool, violations []string)
}

// Config holds the corpus layout and default bump options.
type Config struct {
	CorpusDir      string
	IndexPath      string
	Extensions     []string
	Bump           engine.Options
	ValidateWindow int
}

// Selection chooses bump targets. Explicit Paths win over FromGit; with
// neither, every document under the corpus directory is scanned.
type Selection struct {
	Paths   []string
	FromGit bool
}

// DocumentDetail is a document together with its header state and history.
type DocumentDetail struct {
	models.HeaderSummary
	Checksum string              `json:"checksum"`
	Content  string              `json:"content"`
	History  []models.BumpRecord `json:"history"`
}

// Service coordinates storage, engine, validation and ledger operations.
// Mutating operations are serialised.
type Service struct {
	mu     sync.Mutex
	store  storage.Provider
	eng    *engine.Engine
	rec    ledger.Recorder
	hist   ledger.Reader
	events Publisher
	cfg    Config
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLedger records bumps and validations in db and serves history from it.
func WithLedger(db *ledger.DB) Option {
	return func(s *Service) {
		if db != nil {
			s.rec, s.hist = db, db
		}
	}
}

// WithPublisher publishes events to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a service over eng. The engine should share store and,
// when one is configured, the ledger.
func NewService(store storage.Provider, eng *engine.Engine, cfg Config, opts ...Option) *Service {
	s := &Service{store: store, eng: eng, cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ watcher.Handler = (*Service)(nil)

// Defaults returns the configured bump options.
func (s *Service) Defaults() engine.Options { return s.cfg.Bump }

// Targets resolves a selection into candidate paths (not yet filtered). A
// corpus scan wraps apperr.ErrCorpusMissing when the corpus directory is absent.
func (s *Service) Targets(ctx context.Context, sel Selection) ([]string, error) {
	switch {
	case len(sel.Paths) > 0:
		return sel.Paths, nil
	case sel.FromGit:
		return changes.GitChanged(ctx, s.store.Root())
	}
	if !s.store.IsDir(s.cfg.CorpusDir) {
		return nil, fmt.Errorf("docservice: %s: %w", s.cfg.CorpusDir, apperr.ErrCorpusMissing)
	}
	docs, err := s.store.List(s.cfg.CorpusDir, s.cfg.Extensions)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(docs))
	for i, d := range docs {
		paths[i] = d.Path
	}
	return paths, nil
}

// Bump resolves the selection and bumps every candidate with opts.
func (s *Service) Bump(ctx context.Context, sel Selection, opts engine.Options) (engine.Summary, error) {
	paths, err := s.Targets(ctx, sel)
	if err != nil {
		return engine.Summary{}, err
	}
	return s.bump(paths, opts), nil
}

func (s *Service) bump(paths []string, opts engine.Options) engine.Summary {
	s.mu.Lock()
	sum := s.eng.BumpAll(paths, opts)
	s.mu.Unlock()

	if s.events != nil && !opts.DryRun {
		for _, r := range sum.Results {
			if r.Outcome == engine.OutcomeBumped {
				s.events.PublishBump(r.Path, r.Version, r.Stamp)
			}
		}
	}
	return sum
}

// Validate runs corpus validation, records the outcome and publishes it.
func (s *Service) Validate(_ context.Context) (validate.Report, error) {
	s.mu.Lock()
	rep, err := validate.Run(s.store, validate.Config{
		CorpusDir:  s.cfg.CorpusDir,
		IndexPath:  s.cfg.IndexPath,
		Extensions: s.cfg.Extensions,
		Window:     s.cfg.ValidateWindow,
	})
	s.mu.Unlock()
	if err != nil {
		return validate.Report{}, err
	}

	if s.rec != nil {
		err := s.rec.RecordValidation(models.ValidationRecord{
			RanAt:      time.Now(),
			OK:         rep.OK(),
			Violations: rep.Violations,
		})
		if err != nil {
			s.logger.Warn("record validation failed", slog.String("error", err.Error()))
		}
	}
	if s.events != nil {
		s.events.PublishValidation(rep.OK(), rep.Violations)
	}
	return rep, nil
}

// ListDocuments returns the header state of every corpus document.
func (s *Service) ListDocuments(_ context.Context) ([]models.HeaderSummary, error) {
	if !s.store.IsDir(s.cfg.CorpusDir) {
		return nil, fmt.Errorf("docservice: %s: %w", s.cfg.CorpusDir, apperr.ErrCorpusMissing)
	}
	docs, err := s.store.List(s.cfg.CorpusDir, s.cfg.Extensions)
	if err != nil {
		return nil, err
	}
	out := make([]models.HeaderSummary, 0, len(docs))
	for _, d := range docs {
		sum, err := s.eng.Inspect(d.Path, s.cfg.Bump.Margin)
		if err != nil {
			s.logger.Warn("inspect failed", slog.String("path", d.Path), slog.String("error", err.Error()))
			continue
		}
		out = append(out, sum)
	}
	return out, nil
}

// GetDocument returns one document with its header state and bump history.
func (s *Service) GetDocument(ctx context.Context, path string) (*DocumentDetail, error) {
	rel, err := s.store.Rel(path)
	if err != nil {
		return nil, fmt.Errorf("docservice: %s: %w", path, apperr.ErrNotFound)
	}
	if !storage.HasExt(rel, s.cfg.Extensions) {
		return nil, fmt.Errorf("docservice: %s: %w", rel, apperr.ErrNotTextDocument)
	}
	data, err := s.store.Read(rel)
	if err != nil {
		return nil, err
	}
	sum, err := s.eng.Inspect(rel, s.cfg.Bump.Margin)
	if err != nil {
		return nil, err
	}
	hist, err := s.History(ctx, rel, 0)
	if err != nil {
		return nil, err
	}
	return &DocumentDetail{
		HeaderSummary: sum,
		Checksum:      storage.Checksum(data),
		Content:       string(data),
		History:       hist,
	}, nil
}

// History returns recorded bumps for path, or the latest bumps across the
// corpus when path is empty. Without a ledger it is always empty.
func (s *Service) History(_ context.Context, path string, limit int) ([]models.BumpRecord, error) {
	if s.hist == nil {
		return []models.BumpRecord{}, nil
	}
	var (
		recs []models.BumpRecord
		err  error
	)
	if path == "" {
		recs, err = s.hist.LatestBumps(limit)
	} else {
		recs, err = s.hist.History(path, limit)
	}
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []models.BumpRecord{}
	}
	return recs, nil
}

// LastValidation returns the most recent recorded validation, or nil.
func (s *Service) LastValidation(_ context.Context) (*models.ValidationRecord, error) {
	if s.hist == nil {
		return nil, nil
	}
	return s.hist.LastValidation()
}

// DocumentsChanged bumps settled paths reported by the watcher with the
// configured options.
func (s *Service) DocumentsChanged(_ context.Context, paths []string) {
	sum := s.bump(paths, s.cfg.Bump)
	for _, r := range sum.Results {
		if r.Outcome == engine.OutcomeNoBump {
			continue
		}
		s.logger.Info(r.Message, slog.String("path", r.Path), slog.String("outcome", string(r.Outcome)))
	}
}

// IndexChanged re-runs validation after the index document changed.
func (s *Service) IndexChanged(ctx context.Context) {
	rep, err := s.Validate(ctx)
	if err != nil {
		s.logger.Warn("validation failed to run", slog.String("error", err.Error()))
		return
	}
	s.logger.Info("validation completed", slog.Bool("ok", rep.OK()), slog.Int("violations", len(rep.Violations)))
}
