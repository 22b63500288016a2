package embedder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// GeminiOptions configures the Google GenAI embedder. Setting Project selects
// the Vertex AI backend; otherwise the Gemini API backend is used with APIKey.
type GeminiOptions struct {
	APIKey   string
	Model    string
	Project  string
	Location string
	BaseURL  string
}

// GeminiProvider implements Embedder using the Google GenAI SDK
type GeminiProvider struct {
	client    *genai.Client
	model     string
	dimension int
	cache     *Cache
}

// NewGeminiProvider creates a new Gemini/Vertex AI embedder
func NewGeminiProvider(ctx context.Context, opts GeminiOptions, cache *Cache) (*GeminiProvider, error) {
	cfg, err := geminiClientConfig(opts)
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultGeminiModel
	}

	return &GeminiProvider{
		client:    client,
		model:     model,
		dimension: GeminiDimension,
		cache:     cache,
	}, nil
}

func geminiClientConfig(opts GeminiOptions) (*genai.ClientConfig, error) {
	cfg := &genai.ClientConfig{}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	if project := strings.TrimSpace(opts.Project); project != "" {
		location := strings.TrimSpace(opts.Location)
		if location == "" {
			location = "us-central1"
		}
		cfg.Backend = genai.BackendVertexAI
		cfg.Project = project
		cfg.Location = location
		return cfg, nil
	}

	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		apiKey = os.Getenv(EnvGeminiAPIKey)
	}
	if apiKey == "" {
		apiKey = os.Getenv(EnvGoogleAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, EnvGeminiAPIKey)
	}
	cfg.Backend = genai.BackendGeminiAPI
	cfg.APIKey = apiKey
	return cfg, nil
}

func (g *GeminiProvider) GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = g.model
	}

	key := cacheKey(model, req.Text)
	if g.cache != nil {
		if emb, ok := g.cache.Get(key); ok {
			return emb, nil
		}
	}

	resp, err := g.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: []string{req.Text}, Model: model})
	if err != nil {
		return nil, err
	}
	return resp.Embeddings[0], nil
}

func (g *GeminiProvider) GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error) {
	if err := ValidateBatchRequest(req); err != nil {
		return nil, err
	}
	if len(req.Texts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: max %d texts allowed", ErrBatchTooLarge, MaxBatchSize)
	}

	model := req.Model
	if model == "" {
		model = g.model
	}

	contents := make([]*genai.Content, len(req.Texts))
	for i, text := range req.Texts {
		contents[i] = &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: text}},
		}
	}

	dim := int32(g.dimension)
	resp, err := g.client.Models.EmbedContent(ctx, model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	if resp == nil || len(resp.Embeddings) != len(req.Texts) {
		return nil, fmt.Errorf("%w: %w", ErrProviderFailed, errors.New("embedding count does not match input"))
	}

	embeddings := make([]*Embedding, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, fmt.Errorf("%w: %w for input %d", ErrProviderFailed, ErrEmptyVector, i)
		}
		embeddings[i] = &Embedding{
			Vector:    e.Values,
			Dimension: len(e.Values),
			Provider:  ProviderGemini,
			Model:     model,
			Hash:      ComputeHash(req.Texts[i]),
		}
		if g.cache != nil {
			g.cache.Set(cacheKey(model, req.Texts[i]), embeddings[i])
		}
	}

	return &BatchEmbeddingResponse{
		Embeddings: embeddings,
		Provider:   ProviderGemini,
		Model:      model,
	}, nil
}

func (g *GeminiProvider) Dimension() int {
	return g.dimension
}

func (g *GeminiProvider) Provider() string {
	return ProviderGemini
}

func (g *GeminiProvider) Model() string {
	return g.model
}

func (g *GeminiProvider) Close() error {
	return nil
}
