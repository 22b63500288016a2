package embedder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeHash(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "empty string",
			text: "",
			want: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name: "simple text",
			text: "hello world",
			want: "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeHash(tt.text))
			assert.Equal(t, ComputeHash(tt.text), ComputeHash(tt.text))
		})
	}
}

func TestCacheKeyIsModelScoped(t *testing.T) {
	assert.NotEqual(t, cacheKey("a", "text"), cacheKey("b", "text"))
	assert.Equal(t, cacheKey("a", "text"), cacheKey("a", "text"))
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     EmbeddingRequest
		wantErr error
	}{
		{"valid request", EmbeddingRequest{Text: "test text"}, nil},
		{"empty text", EmbeddingRequest{Text: ""}, ErrEmptyText},
		{"whitespace text", EmbeddingRequest{Text: "  \n"}, ErrEmptyText},
		{"with model", EmbeddingRequest{Text: "test", Model: "custom-model"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestValidateBatchRequest(t *testing.T) {
	assert.NoError(t, ValidateBatchRequest(BatchEmbeddingRequest{Texts: []string{"a", "b"}}))
	assert.ErrorIs(t, ValidateBatchRequest(BatchEmbeddingRequest{}), ErrInvalidInput)
	assert.ErrorIs(t, ValidateBatchRequest(BatchEmbeddingRequest{Texts: []string{"a", ""}}), ErrInvalidInput)
}

func TestCache(t *testing.T) {
	t.Run("get returns a copy", func(t *testing.T) {
		cache := NewCache(10)
		cache.Set("k", &Embedding{Vector: []float32{1, 2, 3}, Dimension: 3})

		got, ok := cache.Get("k")
		require.True(t, ok)
		got.Vector[0] = 99

		again, ok := cache.Get("k")
		require.True(t, ok)
		assert.Equal(t, float32(1), again.Vector[0])
	})

	t.Run("set stores a copy", func(t *testing.T) {
		cache := NewCache(10)
		emb := &Embedding{Vector: []float32{1, 2, 3}}
		cache.Set("k", emb)
		emb.Vector[0] = 42

		got, _ := cache.Get("k")
		assert.Equal(t, float32(1), got.Vector[0])
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		cache := NewCache(2)
		cache.Set("a", &Embedding{Vector: []float32{1}})
		cache.Set("b", &Embedding{Vector: []float32{2}})
		_, _ = cache.Get("a")
		cache.Set("c", &Embedding{Vector: []float32{3}})

		assert.Equal(t, 2, cache.Size())
		_, ok := cache.Get("b")
		assert.False(t, ok)
		_, ok = cache.Get("a")
		assert.True(t, ok)
	})

	t.Run("clear", func(t *testing.T) {
		cache := NewCache(0)
		cache.Set("a", &Embedding{Vector: []float32{1}})
		cache.Clear()
		assert.Equal(t, 0, cache.Size())
	})
}

func TestNormalizeVector(t *testing.T) {
	v := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)

	zero := []float32{0, 0}
	assert.Equal(t, zero, NormalizeVector(zero))
}

func TestLocalProvider(t *testing.T) {
	ctx := context.Background()
	p, err := NewLocalProvider(NewCache(10))
	require.NoError(t, err)
	defer p.Close()

	a, err := p.GenerateEmbedding(ctx, EmbeddingRequest{Text: "golang developer"})
	require.NoError(t, err)
	b, err := p.GenerateEmbedding(ctx, EmbeddingRequest{Text: "golang developer"})
	require.NoError(t, err)
	c, err := p.GenerateEmbedding(ctx, EmbeddingRequest{Text: "nurse"})
	require.NoError(t, err)

	assert.Len(t, a.Vector, LocalDimension)
	assert.Equal(t, a.Vector, b.Vector, "same text must embed identically")
	assert.NotEqual(t, a.Vector, c.Vector)

	var norm float64
	for _, x := range a.Vector {
		norm += float64(x * x)
	}
	assert.InDelta(t, 1.0, norm, 1e-4)

	assert.Equal(t, ProviderLocal, p.Provider())
	assert.Equal(t, LocalDimension, p.Dimension())
	assert.Equal(t, DefaultLocalModel, p.Model())

	_, err = p.GenerateEmbedding(ctx, EmbeddingRequest{})
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestLocalProviderBatch(t *testing.T) {
	p, _ := NewLocalProvider(nil)

	resp, err := p.GenerateBatch(context.Background(), BatchEmbeddingRequest{Texts: []string{"a", "b"}})
	require.NoError(t, err)
	require.Len(t, resp.Embeddings, 2)
	assert.Equal(t, ProviderLocal, resp.Provider)
}

func TestLocalProviderHonorsCancellation(t *testing.T) {
	p, _ := NewLocalProvider(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.GenerateEmbedding(ctx, EmbeddingRequest{Text: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}
