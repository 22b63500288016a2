package embedder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/juan975/cail-matching/internal/config"
	"github.com/juan975/cail-matching/internal/logger"
	"github.com/juan975/cail-matching/pkg/types"
)

// Resilient wraps an Embedder with a per-attempt timeout and bounded,
// linearly backed-off retries. It keeps no state across calls and is safe for
// concurrent use.
type Resilient struct {
	inner  Embedder
	retry  RetryConfig
	logger *zap.Logger
}

// NewResilient creates a resilience adapter around inner
func NewResilient(inner Embedder, cfg config.ResilienceConfig, log *zap.Logger) *Resilient {
	return &Resilient{
		inner:  inner,
		retry:  RetryConfigFrom(cfg),
		logger: logger.Named(log, "embedder").With(zap.String("provider", inner.Provider())),
	}
}

// Embed returns the vector for text. Once every attempt has failed or timed
// out it returns a *types.EmbeddingError carrying the last failure; it never
// returns a partial or empty vector. Caller cancellation is returned as-is.
func (r *Resilient) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ValidateRequest(EmbeddingRequest{Text: text}); err != nil {
		return nil, types.NewEmbeddingError(0, err)
	}

	onFailure := func(attempt int, wait time.Duration, err error) {
		r.logger.Warn("embedding attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.retry.MaxAttempts),
			zap.Duration("retry_in", wait),
			zap.Error(err))
	}

	vector, attempts, err := retryWithBackoff(ctx, r.retry, onFailure, r.attempt(text))
	if err == nil {
		return vector, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	r.logger.Error("embedding attempts exhausted", zap.Int("attempts", attempts), zap.Error(err))
	return nil, types.NewEmbeddingError(attempts, err)
}

// attempt performs one call and rejects unusable vectors
func (r *Resilient) attempt(text string) func(ctx context.Context) ([]float32, error) {
	return func(ctx context.Context) ([]float32, error) {
		emb, err := r.inner.GenerateEmbedding(ctx, EmbeddingRequest{Text: text})
		if err != nil {
			return nil, err
		}
		if emb == nil || len(emb.Vector) == 0 {
			return nil, ErrEmptyVector
		}
		if dim := r.inner.Dimension(); dim > 0 && len(emb.Vector) != dim {
			return nil, fmt.Errorf("%w: got dimension %d, want %d", ErrProviderFailed, len(emb.Vector), dim)
		}
		return emb.Vector, nil
	}
}

// Dimension returns the wrapped provider's dimension
func (r *Resilient) Dimension() int {
	return r.inner.Dimension()
}

// Provider returns the wrapped provider's name
func (r *Resilient) Provider() string {
	return r.inner.Provider()
}

// Close releases the wrapped provider
func (r *Resilient) Close() error {
	return r.inner.Close()
}
