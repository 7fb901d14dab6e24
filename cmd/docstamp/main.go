package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/docstamp/internal"
	"github.com/starford/docstamp/internal/apperr"
	pkgconfig "github.com/starford/docstamp/pkg/config"
)

// loadOptions reads the config file (a missing file means defaults) and
// applies root-level overrides.
func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if root := cmd.String("repo-root"); root != "" {
		cfg.Corpus.Root = root
	}
	if cmd.Bool("verbose") {
		cfg.App.LogLevel = slog.LevelDebug
	}
	return []internal.Option{internal.WithConfig(cfg)}, nil
}

// exitCode maps domain errors to process exit codes. A missing corpus exits
// with missingCorpus; the message has already been printed.
func exitCode(err error, missingCorpus int) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperr.ErrValidationFailed):
		return cli.Exit("", 1)
	case errors.Is(err, apperr.ErrCorpusMissing):
		return cli.Exit("", missingCorpus)
	}
	return err
}

func runBump(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	// --date-only, --margin-seconds and --no-sync-mtime override the config
	// only when given.
	if cmd.IsSet("date-only") || cmd.IsSet("margin-seconds") || cmd.IsSet("no-sync-mtime") {
		opts = append(opts, bumpOverrides(cmd))
	}
	req := internal.BumpRequest{
		Files:   cmd.StringSlice("files"),
		FromGit: cmd.Bool("from-git") && !cmd.Bool("auto-scan"),
		Force:   cmd.Bool("force"),
		DryRun:  cmd.Bool("dry-run"),
	}
	return exitCode(internal.Bump(ctx, req, opts...), 1)
}

func bumpOverrides(cmd *cli.Command) internal.Option {
	return internal.WithBumpConfig(func(b *internal.BumpConfig) {
		if cmd.IsSet("date-only") {
			b.DateOnly = cmd.Bool("date-only")
		}
		if cmd.IsSet("margin-seconds") {
			b.MarginSeconds = int(cmd.Int("margin-seconds"))
		}
		if cmd.IsSet("no-sync-mtime") {
			b.SyncMTime = !cmd.Bool("no-sync-mtime")
		}
	})
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return exitCode(internal.Validate(ctx, opts...), 2)
}

func runPack(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.Pack(ctx, cmd.String("root"), cmd.String("out"), opts...)
}

func runHistory(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.History(ctx, cmd.String("path"), int(cmd.Int("limit")), opts...)
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.Watch(ctx, opts...)
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.Serve(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, opts...)
}

func main() {
	cmd := &cli.Command{
		Name:  "docstamp",
		Usage: "Keep Version/LastUpdated headers of a Markdown corpus in step with file changes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (optional)",
				DefaultText: "docstamp.yaml",
				Value:       "docstamp.yaml",
				Sources:     cli.EnvVars("DOCSTAMP_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "repo-root",
				Usage:   "Repository root containing the corpus (overrides corpus.root)",
				Sources: cli.EnvVars("DOCSTAMP_REPO_ROOT"),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "bump",
				Usage:  "Increment Version and refresh LastUpdated for stale documents",
				Action: runBump,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "files", Usage: "Explicit files to process (repo-relative)"},
					&cli.BoolFlag{Name: "from-git", Usage: "Process files changed according to git"},
					&cli.BoolFlag{Name: "auto-scan", Usage: "Scan the whole corpus directory (default)"},
					&cli.BoolFlag{Name: "force", Usage: "Bump even when the header is current"},
					&cli.BoolFlag{Name: "date-only", Usage: "Write YYYY-MM-DD instead of a full timestamp"},
					&cli.IntFlag{Name: "margin-seconds", Usage: "Tolerance before a header counts as stale", Value: 2},
					&cli.BoolFlag{Name: "no-sync-mtime", Usage: "Do not set the file mtime to LastUpdated"},
					&cli.BoolFlag{Name: "dry-run", Usage: "Report what would change without writing"},
				},
			},
			{
				Name:   "validate",
				Usage:  "Check headers and index consistency",
				Action: runValidate,
			},
			{
				Name:   "pack",
				Usage:  "Zip the corpus into a single archive",
				Action: runPack,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "root", Usage: "Directory to pack (default pack.root)"},
					&cli.StringFlag{Name: "out", Usage: "Output archive (default pack.out)"},
				},
			},
			{
				Name:   "history",
				Usage:  "Show recorded bumps",
				Action: runHistory,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Usage: "Limit to one document"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum records", Value: 20},
				},
			},
			{
				Name:   "watch",
				Usage:  "Bump documents as they change",
				Action: runWatch,
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API with live events and the watcher",
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
