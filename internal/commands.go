package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/docstamp/internal/apperr"
	"github.com/starford/docstamp/internal/docservice"
	"github.com/starford/docstamp/internal/mcpserver"
	"github.com/starford/docstamp/internal/pack"
	"github.com/starford/docstamp/internal/watcher"
)

// BumpRequest selects targets and per-run switches for Bump. Persistent
// options (date-only, margin, mtime sync) come from the configuration.
type BumpRequest struct {
	Files   []string
	FromGit bool
	Force   bool
	DryRun  bool
}

// Bump bumps stale headers and prints one line per candidate plus a summary.
// Scanning a missing corpus directory wraps apperr.ErrCorpusMissing.
func Bump(ctx context.Context, req BumpRequest, opts ...Option) error {
	rt, err := setup(opts, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	bumpOpts := rt.svc.Defaults()
	bumpOpts.Force = req.Force
	bumpOpts.DryRun = req.DryRun

	sum, err := rt.svc.Bump(ctx, docservice.Selection{Paths: req.Files, FromGit: req.FromGit}, bumpOpts)
	if err != nil {
		if errors.Is(err, apperr.ErrCorpusMissing) {
			fmt.Fprintf(rt.out, "ERROR: %s/ not found\n", filepath.ToSlash(rt.cfg.Corpus.Dir))
		}
		return fmt.Errorf("resolve targets: %w", err)
	}
	for _, r := range sum.Results {
		fmt.Fprintln(rt.out, r.Message)
	}
	fmt.Fprintf(rt.out, "\n%s\n", sum)
	return nil
}

// Validate checks the corpus and prints the report. It returns
// apperr.ErrValidationFailed when violations were found and wraps
// apperr.ErrCorpusMissing when the corpus directory does not exist.
func Validate(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	rep, err := rt.svc.Validate(ctx)
	if err != nil {
		if errors.Is(err, apperr.ErrCorpusMissing) {
			fmt.Fprintf(rt.out, "ERROR: %s/ not found\n", filepath.ToSlash(rt.cfg.Corpus.Dir))
		}
		return err
	}
	if err := rep.Write(rt.out); err != nil {
		return err
	}
	if !rep.OK() {
		return apperr.ErrValidationFailed
	}
	return nil
}

// Pack zips the pack root (relative to the corpus root) into out.
func Pack(_ context.Context, root, out string, opts ...Option) error {
	rt, err := setup(opts, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	if root == "" {
		root = rt.cfg.Pack.Root
	}
	if out == "" {
		out = rt.cfg.Pack.Out
	}
	src := root
	if !filepath.IsAbs(src) {
		src = filepath.Join(rt.cfg.Corpus.Root, root)
	}

	n, err := pack.Build(src, out)
	if err != nil {
		return err
	}
	rt.logger.Info("pack built", slog.String("out", out), slog.Int("files", n))
	fmt.Fprintf(rt.out, "Built: %s (from %s)\n", out, src)
	return nil
}

// History prints recorded bumps, newest first.
func History(ctx context.Context, path string, limit int, opts ...Option) error {
	rt, err := setup(opts, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.db == nil {
		return fmt.Errorf("history: the ledger is disabled (ledger.path is empty)")
	}
	recs, err := rt.svc.History(ctx, path, limit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(rt.out, "No bumps recorded.")
		return nil
	}
	for _, r := range recs {
		fmt.Fprintf(rt.out, "%s  %s -> Version %d, LastUpdated %s\n",
			r.BumpedAt.Local().Format("2006-01-02 15:04:05"), r.Path, r.Version, r.Stamp)
	}
	return nil
}

// Watch bumps documents as they change until interrupted.
func Watch(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watcher.Watch(gCtx, rt.store, rt.watchConfig(), rt.logger, rt.svc)
	})
	g.Go(func() error {
		waitForSignal(gCtx, rt.logger)
		cancel()
		return nil
	})
	return g.Wait()
}

// ServeMCP serves the MCP tools over stdio. Logs go to stderr because stdout
// carries the protocol.
func ServeMCP(_ context.Context, opts ...Option) error {
	rt, err := setup(opts, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.logger.Info("MCP server starting on stdio")
	return mcpserver.New(rt.svc).ServeStdio()
}

func (r *runtime) watchConfig() watcher.Config {
	return watcher.Config{
		Dir:        r.cfg.Corpus.Dir,
		IndexPath:  r.cfg.Corpus.Index,
		Extensions: r.cfg.Corpus.Extensions,
	}
}

// waitForSignal blocks until SIGINT/SIGTERM or ctx is done.
func waitForSignal(ctx context.Context, logger *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled, initiating shutdown")
	}
}
