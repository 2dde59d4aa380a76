// Package nlp provides the language capabilities the pipeline depends on:
// text normalization, sentence splitting, named-entity recognition and
// document embeddings. The model-backed pieces sit behind the Engine
// interface so the pipeline runs degraded, but correctly, without any
// remote model.
package nlp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/bellagrands/sentinel/internal/cache"
	"github.com/bellagrands/sentinel/internal/model"
)

// ErrNoEmbeddings is returned by engines that cannot produce document
// vectors. Callers fall back to keyword scoring.
var ErrNoEmbeddings = errors.New("nlp: embeddings unavailable")

// Entity is one recognized span surface with its type label.
type Entity struct {
	Label string
	Text  string
}

// Engine is the pluggable NLP capability. Entities is pure CPU work;
// Embed may call out to a model service and so takes a context.
type Engine interface {
	// Name returns the engine name
	Name() string

	// Entities returns named entities found in the text
	Entities(text string) ([]Entity, error)

	// Embed returns a vector for the text, or ErrNoEmbeddings
	Embed(ctx context.Context, text string) ([]float64, error)

	// Similarity compares two vectors
	Similarity(a, b []float64) float64
}

// NewEngine builds an engine from the classifier/embedding configuration.
// An empty or "local" provider yields the heuristic engine; "openai" wraps
// it with remote embeddings.
func NewEngine(cfg model.ClassifierConfig, c cache.Cache, logger *slog.Logger) (Engine, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "local", "keyword":
		// keyword classification needs no embeddings
		return NewHeuristicEngine(), nil
	case "openai", "centroid":
		return NewRemoteEngine(cfg, c, logger)
	default:
		return nil, fmt.Errorf("unknown nlp provider: %s (supported: local, keyword, openai)", cfg.Provider)
	}
}

// Cosine returns the cosine similarity of two vectors, 0 when either has
// zero magnitude or the lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
