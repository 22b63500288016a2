package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/juan975/cail-matching/internal/admission"
	"github.com/juan975/cail-matching/internal/catalog"
	"github.com/juan975/cail-matching/internal/config"
	"github.com/juan975/cail-matching/internal/embedder"
	"github.com/juan975/cail-matching/internal/logger"
	"github.com/juan975/cail-matching/internal/matching"
	"github.com/juan975/cail-matching/internal/retriever"
	"github.com/juan975/cail-matching/internal/scoring"
	"github.com/juan975/cail-matching/internal/storage"
)

const catalogCacheSize = 256

// application holds the wired components shared by every command
type application struct {
	cfg          config.Config
	log          *zap.Logger
	store        *storage.SQLiteStorage
	embedder     *embedder.Resilient
	orchestrator *matching.Orchestrator
	workflow     *admission.Workflow
}

// openApplication loads config and builds storage, the embedder, the
// orchestrator and the admission workflow on top of one store.
func openApplication(ctx context.Context) (*application, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	dbPath, err := config.ExpandPath(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	emb, err := embedder.NewResilientFromConfig(ctx, cfg.Embedding, log)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	log.Debug("application initialized",
		zap.String("db", dbPath),
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("build_mode", storage.BuildMode),
	)
	return newApplication(cfg, log, store, emb), nil
}

// newApplication wires the catalog, orchestrator and admission workflow on
// top of an open store and embedder.
func newApplication(cfg config.Config, log *zap.Logger, store *storage.SQLiteStorage, emb *embedder.Resilient) *application {
	cat := catalog.NewCached(catalog.NewStore(store), catalogCacheSize, catalog.DefaultCacheTTL)

	orch := matching.NewOrchestrator(cfg.Matching, matching.Deps{
		Offers:     store,
		Candidates: store,
		Catalog:    cat,
		Embedder:   emb,
		Retriever:  retriever.New(store, log),
		Scorer:     scoring.NewEngine(cfg.Scoring, log),
	}, log)

	return &application{
		cfg:          cfg,
		log:          log,
		store:        store,
		embedder:     emb,
		orchestrator: orch,
		workflow:     admission.NewWorkflow(store, cfg.Admission, log),
	}
}

// Close releases the embedder and the store
func (a *application) Close() error {
	_ = a.log.Sync()
	return errors.Join(a.embedder.Close(), a.store.Close())
}

func printJSON(w io.Writer, v interface{}) error {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(pretty))
	return err
}
