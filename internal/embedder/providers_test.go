package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juan975/cail-matching/internal/config"
)

// embeddingsServer serves the OpenAI-compatible /embeddings endpoint,
// returning a vector of dim values per input, in reverse order to exercise
// index handling.
func embeddingsServer(t *testing.T, dim int, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		data := make([]map[string]interface{}, 0, len(body.Input))
		for i := len(body.Input) - 1; i >= 0; i-- {
			vec := make([]float32, dim)
			vec[0] = float32(i + 1)
			data = append(data, map[string]interface{}{"index": i, "embedding": vec})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"model": body.Model,
			"data":  data,
		})
	}))
}

func TestHTTPProviders(t *testing.T) {
	tests := []struct {
		name      string
		construct func(apiKey, baseURL string, cache *Cache) (*HTTPProvider, error)
		provider  string
		model     string
		dimension int
	}{
		{"jina", NewJinaProvider, ProviderJina, DefaultJinaModel, JinaDimension},
		{"openai", NewOpenAIProvider, ProviderOpenAI, DefaultOpenAIModel, OpenAIDimension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := embeddingsServer(t, tt.dimension, &calls)
			defer server.Close()

			p, err := tt.construct("test-key", server.URL+"/v1", NewCache(10))
			require.NoError(t, err)
			defer p.Close()

			assert.Equal(t, tt.provider, p.Provider())
			assert.Equal(t, tt.model, p.Model())
			assert.Equal(t, tt.dimension, p.Dimension())

			ctx := context.Background()
			emb, err := p.GenerateEmbedding(ctx, EmbeddingRequest{Text: "backend engineer"})
			require.NoError(t, err)
			assert.Len(t, emb.Vector, tt.dimension)
			assert.Equal(t, tt.provider, emb.Provider)

			// second call is served from cache
			_, err = p.GenerateEmbedding(ctx, EmbeddingRequest{Text: "backend engineer"})
			require.NoError(t, err)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

			batch, err := p.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: []string{"a", "b", "c"}})
			require.NoError(t, err)
			require.Len(t, batch.Embeddings, 3)
			for i, e := range batch.Embeddings {
				assert.Equal(t, float32(i+1), e.Vector[0], "embedding %d out of order", i)
			}
		})
	}
}

func TestHTTPProviderErrors(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		t.Setenv(EnvJinaAPIKey, "")
		_, err := NewJinaProvider("", "", nil)
		assert.ErrorIs(t, err, ErrNoProviderEnabled)
	})

	t.Run("api key from env", func(t *testing.T) {
		t.Setenv(EnvOpenAIAPIKey, "env-key")
		p, err := NewOpenAIProvider("", "", nil)
		require.NoError(t, err)
		assert.Equal(t, "env-key", p.apiKey)
		assert.Equal(t, DefaultOpenAIBaseURL+"/embeddings", p.endpoint)
	})

	t.Run("server error is a provider failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		p, err := NewOpenAIProvider("test-key", server.URL, nil)
		require.NoError(t, err)

		_, err = p.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: "x"})
		require.ErrorIs(t, err, ErrProviderFailed)
		assert.Contains(t, err.Error(), "overloaded")
	})

	t.Run("validation", func(t *testing.T) {
		p, err := NewJinaProvider("test-key", "", nil)
		require.NoError(t, err)
		ctx := context.Background()

		_, err = p.GenerateEmbedding(ctx, EmbeddingRequest{Text: ""})
		assert.ErrorIs(t, err, ErrEmptyText)

		_, err = p.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: []string{}})
		assert.ErrorIs(t, err, ErrInvalidInput)

		large := make([]string, MaxBatchSize+1)
		for i := range large {
			large[i] = "text"
		}
		_, err = p.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: large})
		assert.ErrorIs(t, err, ErrBatchTooLarge)
	})

	t.Run("model override", func(t *testing.T) {
		p, err := NewJinaProvider("test-key", "", nil)
		require.NoError(t, err)
		assert.Equal(t, "jina-embeddings-v2", p.WithModel("jina-embeddings-v2").Model())
		assert.Equal(t, "jina-embeddings-v2", p.WithModel("").Model())
	})
}

func TestGeminiClientConfig(t *testing.T) {
	t.Run("api key backend", func(t *testing.T) {
		cfg, err := geminiClientConfig(GeminiOptions{APIKey: "k"})
		require.NoError(t, err)
		assert.Equal(t, "k", cfg.APIKey)
	})

	t.Run("vertex backend", func(t *testing.T) {
		cfg, err := geminiClientConfig(GeminiOptions{Project: "cail-project"})
		require.NoError(t, err)
		assert.Equal(t, "cail-project", cfg.Project)
		assert.Equal(t, "us-central1", cfg.Location)
		assert.Empty(t, cfg.APIKey)
	})

	t.Run("missing credentials", func(t *testing.T) {
		t.Setenv(EnvGeminiAPIKey, "")
		t.Setenv(EnvGoogleAPIKey, "")
		_, err := geminiClientConfig(GeminiOptions{})
		assert.ErrorIs(t, err, ErrNoProviderEnabled)
	})

	t.Run("google api key fallback", func(t *testing.T) {
		t.Setenv(EnvGeminiAPIKey, "")
		t.Setenv(EnvGoogleAPIKey, "google-key")
		cfg, err := geminiClientConfig(GeminiOptions{})
		require.NoError(t, err)
		assert.Equal(t, "google-key", cfg.APIKey)
	})
}

func TestNewGeminiProvider(t *testing.T) {
	p, err := NewGeminiProvider(context.Background(), GeminiOptions{APIKey: "test-key"}, nil)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, ProviderGemini, p.Provider())
	assert.Equal(t, DefaultGeminiModel, p.Model())
	assert.Equal(t, GeminiDimension, p.Dimension())

	_, err = p.GenerateEmbedding(context.Background(), EmbeddingRequest{})
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestHTTPProvider_ModelOverride(t *testing.T) {
	resilience := config.ResilienceConfig{Timeout: time.Second, MaxRetries: 2, RetryDelay: time.Millisecond}

	tests := []struct {
		name       string
		model      string
		serverDim  int
		initialDim int
	}{
		{"known model uses its native size", "text-embedding-3-large", 3072, 3072},
		{"unknown model learns size from first response", "custom-embed", 256, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := embeddingsServer(t, tt.serverDim, &calls)
			defer server.Close()

			p, err := NewOpenAIProvider("test-key", server.URL+"/v1", nil)
			require.NoError(t, err)
			p = p.WithModel(tt.model)
			assert.Equal(t, tt.model, p.Model())
			assert.Equal(t, tt.initialDim, p.Dimension())

			emb := NewResilient(p, resilience, nil)
			vec, err := emb.Embed(context.Background(), "backend engineer")
			require.NoError(t, err)
			assert.Len(t, vec, tt.serverDim)
			assert.Equal(t, tt.serverDim, p.Dimension())
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		})
	}
}

func TestHTTPProvider_LearnedDimensionIsEnforced(t *testing.T) {
	var calls int32
	dim := 256
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		size := dim
		if n > 1 {
			size = dim * 2
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"model": "custom-embed",
			"data":  []map[string]interface{}{{"index": 0, "embedding": make([]float32, size)}},
		})
	}))
	defer server.Close()

	p, err := NewOpenAIProvider("test-key", server.URL, nil)
	require.NoError(t, err)
	emb := NewResilient(p.WithModel("custom-embed"), config.ResilienceConfig{Timeout: time.Second, MaxRetries: 1}, nil)

	ctx := context.Background()
	_, err = emb.Embed(ctx, "first")
	require.NoError(t, err)
	_, err = emb.Embed(ctx, "second")
	assert.ErrorIs(t, err, ErrProviderFailed)
}
