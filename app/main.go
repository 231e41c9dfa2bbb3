package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"stormsense/app/api"
	"stormsense/app/cfg"
	"stormsense/app/config"
	"stormsense/app/database"
	"stormsense/app/ingest"
	"stormsense/app/nlp"
	"stormsense/app/pipeline"
	"stormsense/app/preprocess"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if c == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if c.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting stormsense", "version", c.Version)

	db, err := database.NewConnection(c.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", c.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", c.DBPath, "schema_version", version, "dirty", dirty)

	lexicon, err := nlp.LoadLexicon(c.LexiconsDir)
	if err != nil {
		slog.Error("Failed to load lexicon", "dir", c.LexiconsDir, "error", err)
		os.Exit(1)
	}
	damage, err := nlp.LoadTaxonomy(filepath.Join(c.LexiconsDir, "damage.yaml"), "damage_types")
	if err != nil {
		slog.Error("Failed to load damage taxonomy", "error", err)
		os.Exit(1)
	}
	relief, err := nlp.LoadTaxonomy(filepath.Join(c.LexiconsDir, "relief.yaml"), "relief_items")
	if err != nil {
		slog.Error("Failed to load relief taxonomy", "error", err)
		os.Exit(1)
	}
	tokenizer, err := nlp.NewTokenizerFromFile(filepath.Join(c.LexiconsDir, "stopwords.txt"))
	if err != nil {
		slog.Error("Failed to load stopwords", "error", err)
		os.Exit(1)
	}

	connectors, err := buildConnectors(c)
	if err != nil {
		slog.Error("Failed to build connectors", "error", err)
		os.Exit(1)
	}
	slog.Info("Sources configured", "connectors", len(connectors))

	postRepo := database.NewPostRepository(db)
	analyticsRepo := database.NewAnalyticsRepository(db)
	runRepo := database.NewRunRepository(db)

	service := pipeline.NewService(
		ingest.NewAdapter(connectors),
		preprocess.NewNormalizer(),
		lexicon,
		damage, relief,
		tokenizer,
		postRepo, analyticsRepo, runRepo,
		c.WorkerCount,
	)

	from, err := parseBound(c.From)
	if err != nil {
		slog.Error("Invalid --from value", "value", c.From, "error", err)
		os.Exit(1)
	}
	to, err := parseBound(c.To)
	if err != nil {
		slog.Error("Invalid --to value", "value", c.To, "error", err)
		os.Exit(1)
	}

	summary, err := service.Run(context.Background(), c.Keyword, from, to, c.Limit)
	if err != nil {
		slog.Error("Pipeline run failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Run %s complete: %d posts ingested, %d analyzed\n",
		summary.RunID, summary.Ingested, summary.Analyzed)

	if !c.Serve {
		return
	}

	serve(c, analyticsRepo, runRepo)
}

// buildConnectors loads every enabled source definition and instantiates its
// connector, in name order so merged results stay deterministic.
func buildConnectors(c *cfg.Cfg) ([]ingest.Connector, error) {
	configs, err := config.NewLoader(c.SourcesDir).LoadAll()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	var connectors []ingest.Connector
	for _, name := range names {
		sourceConfig := configs[name]
		if !sourceConfig.Settings.Enabled {
			slog.Info("Source disabled, skipping", "source", name)
			continue
		}
		connector, err := ingest.NewConnector(sourceConfig, c.UserAgent)
		if err != nil {
			return nil, err
		}
		connectors = append(connectors, connector)
	}
	return connectors, nil
}

func serve(c *cfg.Cfg, analyticsRepo database.AnalyticsRepository, runRepo database.RunRepository) {
	handler := api.NewHandler(analyticsRepo, runRepo, c.Version)

	httpServer := &http.Server{
		Addr:         ":" + c.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", c.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("HTTP server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}

func parseBound(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
