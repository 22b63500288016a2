package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput is returned for malformed requests
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyText is returned when the text to embed is blank
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrBatchTooLarge is returned when a batch exceeds the provider limit
	ErrBatchTooLarge = errors.New("batch size exceeds limit")

	// ErrProviderFailed wraps remote provider failures
	ErrProviderFailed = errors.New("embedding provider failed")
	// ErrUnsupportedModel is returned for an unknown provider or model
	ErrUnsupportedModel = errors.New("unsupported model")
	// ErrNoProviderEnabled is returned when a provider lacks credentials
	ErrNoProviderEnabled = errors.New("no embedding provider configured")

	// ErrAttemptTimeout is the cause recorded when one attempt overruns its deadline
	ErrAttemptTimeout = errors.New("embedding attempt timed out")
	// ErrEmptyVector is returned when a provider answers without a vector
	ErrEmptyVector = errors.New("provider returned an empty vector")
)

// Embedder turns offer and candidate text into vectors. Implementations make
// one provider call per request and leave timeouts and retries to Resilient.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error)
	GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error)

	// Dimension is the length of every vector the provider returns
	Dimension() int
	Provider() string
	Model() string
	Close() error
}

// EmbeddingRequest asks for the vector of one text
type EmbeddingRequest struct {
	Text  string
	Model string // Empty uses the provider default
}

// BatchEmbeddingRequest asks for the vectors of several texts, in order
type BatchEmbeddingRequest struct {
	Texts []string
	Model string
}

// BatchEmbeddingResponse holds one embedding per requested text, in request order
type BatchEmbeddingResponse struct {
	Embeddings []*Embedding
	Provider   string
	Model      string
}

// Embedding is a vector plus the provider and model that produced it
type Embedding struct {
	Vector    []float32
	Dimension int
	Provider  string
	Model     string
	Hash      string // SHA-256 of the source text
}

// Clone returns a copy that shares no memory with e
func (e *Embedding) Clone() *Embedding {
	c := *e
	c.Vector = append([]float32(nil), e.Vector...)
	return &c
}

// ValidateRequest rejects blank text
func ValidateRequest(req EmbeddingRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return ErrEmptyText
	}
	return nil
}

// ValidateBatchRequest rejects an empty batch or any blank text in it
func ValidateBatchRequest(req BatchEmbeddingRequest) error {
	if len(req.Texts) == 0 {
		return fmt.Errorf("%w: no texts provided", ErrInvalidInput)
	}
	for i, text := range req.Texts {
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("%w: text at index %d is empty", ErrInvalidInput, i)
		}
	}
	return nil
}

// ComputeHash returns the hex SHA-256 of text
func ComputeHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// cacheKey scopes a content hash to the model that produced the vector,
// so switching models never serves a vector of the wrong dimension.
func cacheKey(model, text string) string {
	return model + ":" + ComputeHash(text)
}
