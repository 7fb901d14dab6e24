package internal

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/docstamp/internal/docservice"
	"github.com/starford/docstamp/internal/engine"
	"github.com/starford/docstamp/internal/ledger"
	"github.com/starford/docstamp/internal/storage"
)

// runtime holds the collaborators shared by every command.
type runtime struct {
	cfg    *Config
	out    io.Writer
	logger *slog.Logger
	store  storage.Provider
	db     *ledger.DB
	svc    *docservice.Service
}

// setup applies opts and builds storage, ledger, engine and service. Logs go
// to defaultLog unless WithLogOutput overrides it.
func setup(opts []Option, defaultLog io.Writer, extra ...docservice.Option) (*runtime, error) {
	app := &application{out: os.Stdout, logOut: defaultLog, now: time.Now}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config
	for _, fn := range app.bumpAdjust {
		fn(&cfg.Bump)
	}

	logger := slog.New(slog.NewJSONHandler(app.logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	store, err := storage.NewFS(cfg.Corpus.Root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	rt := &runtime{cfg: cfg, out: app.out, logger: logger, store: store}

	engOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithClock(app.now),
		engine.WithWindow(cfg.Bump.HeaderWindow),
		engine.WithExtensions(cfg.Corpus.Extensions),
	}
	svcOpts := []docservice.Option{docservice.WithLogger(logger)}

	if cfg.Ledger.Enabled() {
		path := cfg.Ledger.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(store.Root(), path)
		}
		db, err := ledger.Open(path)
		if err != nil {
			return nil, fmt.Errorf("init ledger: %w", err)
		}
		rt.db = db
		engOpts = append(engOpts, engine.WithRecorder(db))
		svcOpts = append(svcOpts, docservice.WithLedger(db))
	}

	eng := engine.New(store, engOpts...)
	rt.svc = docservice.NewService(store, eng, docservice.Config{
		CorpusDir:      cfg.Corpus.Dir,
		IndexPath:      cfg.Corpus.Index,
		Extensions:     cfg.Corpus.Extensions,
		Bump:           cfg.Bump.Options(),
		ValidateWindow: cfg.Validation.HeaderWindow,
	}, append(svcOpts, extra...)...)

	logger.Debug("Configuration loaded",
		slog.String("corpus_root", store.Root()),
		slog.String("corpus_dir", cfg.Corpus.Dir),
		slog.Bool("ledger", cfg.Ledger.Enabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	return rt, nil
}

// Close releases the ledger.
func (r *runtime) Close() {
	if r.db != nil {
		r.db.Close()
	}
}
