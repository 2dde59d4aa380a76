package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bellagrands/sentinel/internal/nlp"
	"github.com/bellagrands/sentinel/internal/taxonomy"
)

// CentroidClassifier classifies text by embedding it and comparing against
// per-label centroid vectors. Centroids come from a trained artifact when
// one exists, otherwise they are seeded from the taxonomy term lists so the
// classifier is usable before any training run.
type CentroidClassifier struct {
	engine    nlp.Engine
	centroids map[string][]float64
	logger    *slog.Logger
}

// NewCentroidClassifier builds the classifier. The engine must support
// embeddings; artifact may be nil.
func NewCentroidClassifier(ctx context.Context, engine nlp.Engine, tax *taxonomy.Taxonomy, artifact *Artifact, logger *slog.Logger) (*CentroidClassifier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &CentroidClassifier{engine: engine, logger: logger}

	if artifact != nil && len(artifact.Centroids) > 0 {
		c.centroids = artifact.Centroids
		logger.Info("classifier loaded trained centroids",
			"labels", len(artifact.Centroids), "examples", artifact.Examples)
		return c, nil
	}

	// seed from taxonomy term lists
	centroids := make(map[string][]float64, len(tax.Categories))
	for category, terms := range tax.Categories {
		vec, err := engine.Embed(ctx, strings.Join(terms, " "))
		if err != nil {
			return nil, fmt.Errorf("seed centroid %s: %w", category, err)
		}
		centroids[category] = vec
	}
	c.centroids = centroids
	logger.Info("classifier seeded from taxonomy", "labels", len(centroids))
	return c, nil
}

// Name returns the provider name
func (c *CentroidClassifier) Name() string { return "centroid" }

// Classify embeds the text and reports every label whose rescaled cosine
// similarity clears the threshold. Cosine lands in [-1,1]; confidences are
// mapped to [0,1] so thresholds compose with the rest of the score model.
func (c *CentroidClassifier) Classify(ctx context.Context, text string, threshold float64) (map[string]float64, error) {
	if text == "" {
		return nil, nil
	}

	vec, err := c.engine.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("classify embed: %w", err)
	}

	results := make(map[string]float64)
	for label, centroid := range c.centroids {
		confidence := (c.engine.Similarity(vec, centroid) + 1) / 2
		if confidence > threshold {
			results[label] = confidence
		}
	}
	return results, nil
}
