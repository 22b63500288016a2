package embedder

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/juan975/cail-matching/internal/config"
)

// New creates the provider selected by cfg.Provider. An empty provider is
// resolved with DetectProvider.
func New(ctx context.Context, cfg config.EmbeddingConfig) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = DetectProvider()
	}

	switch provider {
	case ProviderGemini:
		return NewGeminiProvider(ctx, GeminiOptions{
			APIKey:   cfg.APIKey,
			Model:    cfg.Model,
			Project:  cfg.Vertex.Project,
			Location: cfg.Vertex.Location,
			BaseURL:  cfg.BaseURL,
		}, cache)
	case ProviderJina:
		p, err := NewJinaProvider(cfg.APIKey, cfg.BaseURL, cache)
		if err != nil {
			return nil, err
		}
		return p.WithModel(cfg.Model), nil
	case ProviderOpenAI:
		p, err := NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cache)
		if err != nil {
			return nil, err
		}
		return p.WithModel(cfg.Model), nil
	case ProviderLocal:
		return NewLocalProvider(cache)
	default:
		return nil, fmt.Errorf("%w: unknown provider %s", ErrUnsupportedModel, cfg.Provider)
	}
}

// NewResilientFromConfig creates the configured provider wrapped in the
// resilience adapter.
func NewResilientFromConfig(ctx context.Context, cfg config.EmbeddingConfig, log *zap.Logger) (*Resilient, error) {
	inner, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewResilient(inner, cfg.ResilienceConfig, log), nil
}

// DetectProvider returns the provider implied by available credentials:
// Gemini, then OpenAI, then Jina, falling back to local.
func DetectProvider() string {
	if os.Getenv(EnvGeminiAPIKey) != "" || os.Getenv(EnvGoogleAPIKey) != "" {
		return ProviderGemini
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}
	if os.Getenv(EnvJinaAPIKey) != "" {
		return ProviderJina
	}
	return ProviderLocal
}
