package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/nodegraph"
	"github.com/meikuraledutech/nodegraph/clipboard"
	"github.com/meikuraledutech/nodegraph/config"
	"github.com/meikuraledutech/nodegraph/editor"
	"github.com/meikuraledutech/nodegraph/memstore"
	"github.com/meikuraledutech/nodegraph/postgres"
)

func main() {
	cfg, err := config.Load(os.Getenv("NODEGRAPH_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := cfg.Logger(os.Stderr)
	slog.SetDefault(logger)

	registry := builtinTypes()
	if cfg.NodeTypes != "" {
		registry, err = config.LoadNodeTypes(cfg.NodeTypes)
		if err != nil {
			log.Fatalf("node types: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store nodegraph.Store
	if cfg.Database.URL != "" {
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("connect: %v", err)
		}
		defer pool.Close()
		store = postgres.New(pool)
	} else {
		logger.Warn("DATABASE_URL is not set, graphs are kept in memory")
		store = memstore.New()
	}

	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	g, err := store.GetGraph(ctx, cfg.Server.GraphID)
	if err != nil {
		log.Fatalf("load graph: %v", err)
	}

	p := newPersister(store, cfg.Server.GraphID, cfg.Editor.PersistDebounce, logger)

	opts := cfg.EditorOptions()
	opts.Registry = registry
	opts.Logger = logger
	opts.OnChange = p.commit
	switch cfg.Clipboard.Backend {
	case "system":
		opts.Clipboard = clipboard.NewSystem()
	default:
		opts.Clipboard = clipboard.NewMemory()
	}
	ed := editor.New(g, opts)

	app := newApp(ed, p, logger)
	go func() {
		<-ctx.Done()
		if err := app.Shutdown(); err != nil {
			logger.Error("shutdown", slog.Any("error", err))
		}
	}()

	logger.Info("serving graph",
		slog.String("graph", cfg.Server.GraphID),
		slog.String("listen", cfg.Server.Listen),
		slog.Int("node_types", len(registry)))
	if err := app.Listen(cfg.Server.Listen); err != nil {
		logger.Error("listen", slog.Any("error", err))
	}

	ed.Close()
	p.flush()
}
