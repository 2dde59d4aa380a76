package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/bellagrands/sentinel/internal/cache"
	"github.com/bellagrands/sentinel/internal/model"
)

// RemoteEngine backs Embed with the OpenAI embeddings API. Entity
// recognition stays local: the heuristic recognizer is good enough and a
// network round-trip per document for NER is not worth it. Vectors are
// cached by content hash so category prototypes and repeated documents
// embed once.
type RemoteEngine struct {
	local   *HeuristicEngine
	client  *openai.Client
	model   string
	cache   cache.Cache
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
}

// NewRemoteEngine creates an OpenAI-backed engine.
func NewRemoteEngine(cfg model.ClassifierConfig, c cache.Cache, logger *slog.Logger) (*RemoteEngine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai engine: API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	embeddingModel := cfg.Model
	if embeddingModel == "" {
		embeddingModel = string(openai.SmallEmbedding3)
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RemoteEngine{
		local:   NewHeuristicEngine(),
		client:  openai.NewClientWithConfig(clientConfig),
		model:   embeddingModel,
		cache:   c,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Name returns the engine name
func (e *RemoteEngine) Name() string { return "openai" }

// Entities delegates to the local recognizer.
func (e *RemoteEngine) Entities(text string) ([]Entity, error) {
	return e.local.Entities(text)
}

// Similarity compares two vectors
func (e *RemoteEngine) Similarity(a, b []float64) float64 {
	return Cosine(a, b)
}

// Embed returns the embedding vector for the text, serving repeats from
// cache and rate-limiting remote calls.
func (e *RemoteEngine) Embed(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, fmt.Errorf("embed: empty text")
	}

	key := cache.Key(e.model, text)
	if e.cache != nil {
		if data, found := e.cache.Get(key); found {
			var vec []float64
			if err := json.Unmarshal(data, &vec); err == nil {
				return vec, nil
			}
			// corrupt entry, drop it and re-embed
			_ = e.cache.Delete(key)
		}
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embed rate limit: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.CreateEmbeddings(callCtx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embed: empty response")
	}

	vec := make([]float64, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float64(v)
	}

	if e.cache != nil {
		if data, err := json.Marshal(vec); err == nil {
			if err := e.cache.Set(key, data, 0); err != nil {
				e.logger.Warn("failed to cache embedding", "error", err)
			}
		}
	}

	return vec, nil
}
