// Package embedder turns offer and candidate text into vector embeddings.
//
// Providers (Gemini or Vertex AI via google.golang.org/genai, OpenAI, Jina,
// and a deterministic local provider) implement the Embedder interface. Each
// provider performs a single remote call per request. Timeouts and retries
// are layered on top by Resilient.
//
// # Basic Usage
//
//	emb, err := embedder.NewResilientFromConfig(ctx, cfg.Embedding, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer emb.Close()
//
//	vector, err := emb.Embed(ctx, "Backend Engineer Go PostgreSQL")
//
// # Resilience
//
// Resilient races every attempt against a timer (default 5s) and makes at
// most MaxRetries attempts (default 3). After failed attempt n it waits
// RetryDelay*n (default 1s, so 1s then 2s). A timeout counts as a failure.
// When attempts run out the caller receives *types.EmbeddingError whose
// message is the last failure's message:
//
//	_, err := emb.Embed(ctx, text)
//	var embErr *types.EmbeddingError
//	if errors.As(err, &embErr) {
//	    log.Printf("gave up after %d attempts: %v", embErr.Attempts, embErr.Cause)
//	}
//
// Caller cancellation aborts immediately, including during the backoff
// sleep, and is returned as ctx.Err().
//
// # Provider Selection
//
// embedder.New uses cfg.Provider. When it is empty DetectProvider picks the
// first provider with credentials:
//
//  1. GEMINI_API_KEY or GOOGLE_API_KEY → gemini
//  2. OPENAI_API_KEY → openai
//  3. JINA_API_KEY → jina
//  4. otherwise → local (offline, deterministic)
//
// Setting embedding.vertex.project switches the gemini provider to the Vertex
// AI backend, authenticated with application default credentials.
//
// # Provider Comparison
//
// Gemini (text-embedding-004):
//   - Dimensions: 768
//
// OpenAI (text-embedding-3-small):
//   - Dimensions: 1536
//
// Jina AI (jina-embeddings-v3):
//   - Dimensions: 1024
//
// Local:
//   - Dimensions: 768
//   - Hash-derived, no semantics; identical text gives identical vectors
//
// # Caching
//
// Providers accept an optional LRU cache keyed by model and content hash.
// Cached vectors are copied on both Set and Get so callers may mutate results.
package embedder
