// Package config holds the immutable configuration shared by every component.
//
// A Config value is built once at startup, validated, and passed by value into
// constructors. Nothing reads tunables from package-level state.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix is the prefix for environment overrides (CAIL_MATCHING_TOP_K, ...)
const EnvPrefix = "CAIL"

// DefaultStoragePath is where the database lives unless configured otherwise
const DefaultStoragePath = "~/.cail-matching/matching.db"

const weightTolerance = 1e-9

// Config is the root configuration
type Config struct {
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Admission AdmissionConfig `mapstructure:"admission"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Log       LogConfig       `mapstructure:"log"`
}

// Weights are the sub-score weights. They must sum to 1.0.
type Weights struct {
	Similarity float64 `mapstructure:"similarity"`
	Mandatory  float64 `mapstructure:"mandatory"`
	Desirable  float64 `mapstructure:"desirable"`
	Level      float64 `mapstructure:"level"`
}

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	return w.Similarity + w.Mandatory + w.Desirable + w.Level
}

// ScoringConfig configures the scoring engine
type ScoringConfig struct {
	Weights        Weights `mapstructure:"weights"`
	SkillInference bool    `mapstructure:"skill-inference"`
}

// MatchingConfig configures retrieval sizes for both matching directions
type MatchingConfig struct {
	TopK              int `mapstructure:"top-k"`
	MaxResults        int `mapstructure:"max-results"`
	ReverseTopK       int `mapstructure:"reverse-top-k"`
	ReverseMaxResults int `mapstructure:"reverse-max-results"`
}

// AdmissionConfig configures the application admission rules
type AdmissionConfig struct {
	MaxDailyApplications int `mapstructure:"max-daily-applications"`
}

// ResilienceConfig bounds every embedding call
type ResilienceConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max-retries"`
	RetryDelay time.Duration `mapstructure:"retry-delay"` // Linear: attempt n waits RetryDelay*n
}

// VertexConfig selects the Vertex AI backend for the gemini provider
type VertexConfig struct {
	Project  string `mapstructure:"project"`
	Location string `mapstructure:"location"`
}

// EmbeddingConfig selects and tunes the embedding provider
type EmbeddingConfig struct {
	Provider  string       `mapstructure:"provider"`
	Model     string       `mapstructure:"model"`
	APIKey    string       `mapstructure:"api-key"`
	BaseURL   string       `mapstructure:"base-url"`
	CacheSize int          `mapstructure:"cache-size"`
	Vertex    VertexConfig `mapstructure:"vertex"`

	ResilienceConfig `mapstructure:",squash"`
}

// StorageConfig locates the database
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig configures the logger
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// Default returns the configuration used when nothing is overridden
func Default() Config {
	return Config{
		Scoring: ScoringConfig{
			Weights: Weights{
				Similarity: 0.40,
				Mandatory:  0.30,
				Desirable:  0.15,
				Level:      0.15,
			},
		},
		Matching: MatchingConfig{
			TopK:              20,
			MaxResults:        10,
			ReverseTopK:       50,
			ReverseMaxResults: 20,
		},
		Admission: AdmissionConfig{
			MaxDailyApplications: 10,
		},
		Embedding: EmbeddingConfig{
			Provider:  "local",
			CacheSize: 10000,
			ResilienceConfig: ResilienceConfig{
				Timeout:    5000 * time.Millisecond,
				MaxRetries: 3,
				RetryDelay: 1000 * time.Millisecond,
			},
		},
		Storage: StorageConfig{
			Path: DefaultStoragePath,
		},
	}
}

// SetDefaults registers every default on v so that environment variables and
// config files can override each key.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("scoring.weights.similarity", d.Scoring.Weights.Similarity)
	v.SetDefault("scoring.weights.mandatory", d.Scoring.Weights.Mandatory)
	v.SetDefault("scoring.weights.desirable", d.Scoring.Weights.Desirable)
	v.SetDefault("scoring.weights.level", d.Scoring.Weights.Level)
	v.SetDefault("scoring.skill-inference", d.Scoring.SkillInference)

	v.SetDefault("matching.top-k", d.Matching.TopK)
	v.SetDefault("matching.max-results", d.Matching.MaxResults)
	v.SetDefault("matching.reverse-top-k", d.Matching.ReverseTopK)
	v.SetDefault("matching.reverse-max-results", d.Matching.ReverseMaxResults)

	v.SetDefault("admission.max-daily-applications", d.Admission.MaxDailyApplications)

	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.model", "")
	v.SetDefault("embedding.api-key", "")
	v.SetDefault("embedding.base-url", "")
	v.SetDefault("embedding.cache-size", d.Embedding.CacheSize)
	v.SetDefault("embedding.vertex.project", "")
	v.SetDefault("embedding.vertex.location", "")
	v.SetDefault("embedding.timeout", d.Embedding.Timeout)
	v.SetDefault("embedding.max-retries", d.Embedding.MaxRetries)
	v.SetDefault("embedding.retry-delay", d.Embedding.RetryDelay)

	v.SetDefault("storage.path", d.Storage.Path)

	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.debug", d.Log.Debug)
}

// Load builds a validated Config from defaults, the config file already read
// into v (if any), CAIL_* environment variables and bound flags.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the cross-field invariants
func (c Config) Validate() error {
	w := c.Scoring.Weights
	for name, val := range map[string]float64{
		"similarity": w.Similarity,
		"mandatory":  w.Mandatory,
		"desirable":  w.Desirable,
		"level":      w.Level,
	} {
		if val < 0 {
			return fmt.Errorf("%w: weight %s is negative (%v)", ErrInvalidConfig, name, val)
		}
	}
	if math.Abs(w.Sum()-1.0) > weightTolerance {
		return fmt.Errorf("%w: weights sum to %v, want 1.0", ErrInvalidConfig, w.Sum())
	}

	m := c.Matching
	if m.MaxResults < 1 || m.TopK < m.MaxResults {
		return fmt.Errorf("%w: top-k (%d) must be >= max-results (%d) >= 1", ErrInvalidConfig, m.TopK, m.MaxResults)
	}
	if m.ReverseMaxResults < 1 || m.ReverseTopK < m.ReverseMaxResults {
		return fmt.Errorf("%w: reverse-top-k (%d) must be >= reverse-max-results (%d) >= 1", ErrInvalidConfig, m.ReverseTopK, m.ReverseMaxResults)
	}

	if c.Admission.MaxDailyApplications < 1 {
		return fmt.Errorf("%w: max-daily-applications must be >= 1", ErrInvalidConfig)
	}

	return c.Embedding.ResilienceConfig.Validate()
}

// Validate checks the resilience bounds
func (r ResilienceConfig) Validate() error {
	if r.MaxRetries < 1 {
		return fmt.Errorf("%w: max-retries must be >= 1", ErrInvalidConfig)
	}
	if r.Timeout <= 0 {
		return fmt.Errorf("%w: embedding timeout must be positive", ErrInvalidConfig)
	}
	if r.RetryDelay < 0 {
		return fmt.Errorf("%w: retry-delay cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// ExpandPath resolves a leading ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
