// Package storage provides SQLite-based persistence for offers, candidates,
// applications and the sector and level catalogs.
//
// # Database Schema
//
// Tables:
//   - catalog_entries: sectors and hierarchy levels, seeded by migration 1.1.0
//   - offers: job offers with JSON-encoded skills and an optional embedding
//   - candidates: candidate profiles synchronized from the profile service
//   - applications: one row per submission, with a partial unique index that
//     allows a single PENDING or UNDER_REVIEW row per (candidate, offer)
//   - schema_version: applied migrations
//
// Embeddings are stored as little-endian float32 blobs. Timestamps are
// stored as unix milliseconds.
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage("~/.cail-matching/matching.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	offer, err := store.GetOffer(ctx, "offer-1")
//	if errors.Is(err, storage.ErrNotFound) {
//	    // ...
//	}
//
// # Transactions
//
// The pool holds a single connection, so BeginTx blocks until any other
// transaction finishes. Inside a transaction only the Tx methods may be
// used:
//
//	tx, err := store.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	n, _ := tx.CountApplicationsSince(ctx, candidateID, midnight)
//	_ = tx.CreateApplication(ctx, app)
//
//	return tx.Commit()
//
// # Vector Search
//
// SearchCandidates and SearchOffers return the nearest rows of one sector
// with similarity normalized to [0,1]. Offers are restricted to ACTIVE ones.
//
// # Build Tags
//
// CGO build (sqlite_vec tag) uses github.com/mattn/go-sqlite3 and computes
// distances in SQL:
//
//	CGO_ENABLED=1 go build -tags "sqlite_vec"
//
// Pure Go build (default, or purego tag) uses modernc.org/sqlite and ranks
// in Go:
//
//	CGO_ENABLED=0 go build -tags "purego"
package storage
