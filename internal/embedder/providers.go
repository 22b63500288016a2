package embedder

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// Provider configuration
const (
	ProviderJina   = "jina"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderLocal  = "local"

	// Default models
	DefaultJinaModel   = "jina-embeddings-v3"
	DefaultOpenAIModel = "text-embedding-3-small"
	DefaultGeminiModel = "text-embedding-004"
	DefaultLocalModel  = "local-hash-embeddings"

	// Dimensions
	JinaDimension   = 1024
	OpenAIDimension = 1536
	GeminiDimension = 768
	LocalDimension  = 768

	// Batch limits
	DefaultBatchSize = 50
	MaxBatchSize     = 100

	// Endpoints
	DefaultJinaBaseURL   = "https://api.jina.ai/v1"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	// Environment variables holding provider credentials
	EnvJinaAPIKey   = "JINA_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvGoogleAPIKey = "GOOGLE_API_KEY"

	httpClientTimeout = 30 * time.Second
)

// HTTPProvider implements Embedder against an OpenAI-compatible
// /embeddings endpoint. Jina and OpenAI share the wire format.
//
// HTTPProvider makes exactly one HTTP call per request; retries and
// per-attempt timeouts belong to Resilient.
type HTTPProvider struct {
	name       string
	apiKey     string
	model      string
	dimension  atomic.Int64 // 0 until known, then fixed by the first response
	endpoint   string
	httpClient *http.Client
	cache      *Cache
}

// NewJinaProvider creates a new Jina AI embedder. An empty baseURL selects
// the public API.
func NewJinaProvider(apiKey, baseURL string, cache *Cache) (*HTTPProvider, error) {
	return newHTTPProvider(ProviderJina, apiKey, EnvJinaAPIKey, baseURL, DefaultJinaBaseURL, DefaultJinaModel, JinaDimension, cache)
}

// NewOpenAIProvider creates a new OpenAI embedder. An empty baseURL selects
// the public API.
func NewOpenAIProvider(apiKey, baseURL string, cache *Cache) (*HTTPProvider, error) {
	return newHTTPProvider(ProviderOpenAI, apiKey, EnvOpenAIAPIKey, baseURL, DefaultOpenAIBaseURL, DefaultOpenAIModel, OpenAIDimension, cache)
}

func newHTTPProvider(name, apiKey, envKey, baseURL, defaultURL, model string, dimension int, cache *Cache) (*HTTPProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(envKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, envKey)
	}
	if baseURL == "" {
		baseURL = defaultURL
	}

	p := &HTTPProvider{
		name:     name,
		apiKey:   apiKey,
		model:    model,
		endpoint: strings.TrimRight(baseURL, "/") + "/embeddings",
		httpClient: &http.Client{
			Timeout: httpClientTimeout,
		},
		cache: cache,
	}
	p.dimension.Store(int64(dimension))
	return p, nil
}

// knownDimensions lists the native vector size of common models
var knownDimensions = map[string]int{
	"text-embedding-3-small":      1536,
	"text-embedding-3-large":      3072,
	"text-embedding-ada-002":      1536,
	"jina-embeddings-v3":          1024,
	"jina-embeddings-v2-base-en":  768,
	"jina-embeddings-v2-small-en": 512,
	"jina-clip-v2":                1024,
}

// WithModel overrides the default model. The dimension follows the model:
// known models use their native size, others learn it from the first response.
func (p *HTTPProvider) WithModel(model string) *HTTPProvider {
	if model != "" && model != p.model {
		p.model = model
		p.dimension.Store(int64(knownDimensions[model]))
	}
	return p
}

func (p *HTTPProvider) GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = p.model
	}

	key := cacheKey(model, req.Text)
	if p.cache != nil {
		if emb, ok := p.cache.Get(key); ok {
			return emb, nil
		}
	}

	resp, err := p.GenerateBatch(ctx, BatchEmbeddingRequest{
		Texts: []string{req.Text},
		Model: model,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", ErrProviderFailed)
	}

	return resp.Embeddings[0], nil
}

func (p *HTTPProvider) GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error) {
	if err := ValidateBatchRequest(req); err != nil {
		return nil, err
	}

	if len(req.Texts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: max %d texts allowed", ErrBatchTooLarge, MaxBatchSize)
	}

	model := req.Model
	if model == "" {
		model = p.model
	}

	embeddings, err := p.callAPI(ctx, req.Texts, model)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	if len(embeddings) != len(req.Texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ErrProviderFailed, len(req.Texts), len(embeddings))
	}
	if model == p.model && len(embeddings[0].Vector) > 0 {
		p.dimension.CompareAndSwap(0, int64(len(embeddings[0].Vector)))
	}

	if p.cache != nil {
		for i, emb := range embeddings {
			key := cacheKey(model, req.Texts[i])
			emb.Hash = ComputeHash(req.Texts[i])
			p.cache.Set(key, emb)
		}
	}

	return &BatchEmbeddingResponse{
		Embeddings: embeddings,
		Provider:   p.name,
		Model:      model,
	}, nil
}

func (p *HTTPProvider) callAPI(ctx context.Context, texts []string, model string) ([]*Embedding, error) {
	reqBody := map[string]interface{}{
		"input": texts,
		"model": model,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var apiResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
		Model string `json:"model"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// Responses may come back out of order; index is authoritative
	embeddings := make([]*Embedding, len(apiResp.Data))
	for _, data := range apiResp.Data {
		if data.Index < 0 || data.Index >= len(embeddings) {
			return nil, fmt.Errorf("response index %d out of range", data.Index)
		}
		embeddings[data.Index] = &Embedding{
			Vector:    data.Embedding,
			Dimension: len(data.Embedding),
			Provider:  p.name,
			Model:     apiResp.Model,
		}
	}
	for i, emb := range embeddings {
		if emb == nil {
			return nil, fmt.Errorf("missing embedding for input %d", i)
		}
	}

	return embeddings, nil
}

func (p *HTTPProvider) Dimension() int {
	return int(p.dimension.Load())
}

func (p *HTTPProvider) Provider() string {
	return p.name
}

func (p *HTTPProvider) Model() string {
	return p.model
}

func (p *HTTPProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

// LocalProvider produces deterministic pseudo-embeddings from a hash of the
// text. Identical texts always map to identical unit vectors, which makes it
// suitable for offline development and tests. It carries no semantics.
type LocalProvider struct {
	model     string
	dimension int
	cache     *Cache
}

// NewLocalProvider creates a new local embedder
func NewLocalProvider(cache *Cache) (*LocalProvider, error) {
	return &LocalProvider{
		model:     DefaultLocalModel,
		dimension: LocalDimension,
		cache:     cache,
	}, nil
}

func (l *LocalProvider) GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := cacheKey(l.model, req.Text)
	if l.cache != nil {
		if emb, ok := l.cache.Get(key); ok {
			return emb, nil
		}
	}

	emb := &Embedding{
		Vector:    NormalizeVector(hashVector(req.Text, l.dimension)),
		Dimension: l.dimension,
		Provider:  ProviderLocal,
		Model:     l.model,
		Hash:      ComputeHash(req.Text),
	}

	if l.cache != nil {
		l.cache.Set(key, emb)
	}

	return emb, nil
}

// hashVector expands SHA-256(text || block) into dim values in [-1, 1]
func hashVector(text string, dim int) []float32 {
	vector := make([]float32, dim)
	var block [4]byte
	for i := 0; i < dim; i += 8 {
		binary.LittleEndian.PutUint32(block[:], uint32(i/8))
		sum := sha256.Sum256(append([]byte(text), block[:]...))
		for j := 0; j < 8 && i+j < dim; j++ {
			bits := binary.LittleEndian.Uint32(sum[j*4:])
			vector[i+j] = float32(bits)/float32(math.MaxUint32)*2 - 1
		}
	}
	return vector
}

func (l *LocalProvider) GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error) {
	if err := ValidateBatchRequest(req); err != nil {
		return nil, err
	}

	embeddings := make([]*Embedding, len(req.Texts))
	for i, text := range req.Texts {
		emb, err := l.GenerateEmbedding(ctx, EmbeddingRequest{Text: text, Model: req.Model})
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		embeddings[i] = emb
	}

	return &BatchEmbeddingResponse{
		Embeddings: embeddings,
		Provider:   ProviderLocal,
		Model:      l.model,
	}, nil
}

func (l *LocalProvider) Dimension() int {
	return l.dimension
}

func (l *LocalProvider) Provider() string {
	return ProviderLocal
}

func (l *LocalProvider) Model() string {
	return l.model
}

func (l *LocalProvider) Close() error {
	return nil
}

// NormalizeVector normalizes a vector to unit length (for cosine similarity)
func NormalizeVector(v []float32) []float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val * val)
	}

	if sum == 0 {
		return v
	}

	norm := float32(math.Sqrt(sum))
	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / norm
	}

	return result
}
