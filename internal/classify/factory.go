package classify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bellagrands/sentinel/internal/model"
	"github.com/bellagrands/sentinel/internal/nlp"
	"github.com/bellagrands/sentinel/internal/taxonomy"
)

// New creates a classifier from configuration. An empty provider returns
// (nil, nil): augmentation disabled, which callers must treat as a valid
// degraded mode, not an error.
func New(ctx context.Context, cfg model.ClassifierConfig, engine nlp.Engine, tax *taxonomy.Taxonomy, logger *slog.Logger) (Classifier, error) {
	switch strings.ToLower(cfg.Provider) {
	case "":
		return nil, nil

	case "keyword":
		return NewKeywordClassifier(tax), nil

	case "openai", "centroid":
		var artifact *Artifact
		if cfg.ArtifactPath != "" {
			loaded, err := LoadArtifact(cfg.ArtifactPath)
			if err != nil {
				if os.IsNotExist(err) {
					logger.Warn("classifier artifact not found, seeding from taxonomy", "path", cfg.ArtifactPath)
				} else {
					return nil, fmt.Errorf("load classifier artifact: %w", err)
				}
			} else {
				artifact = loaded
			}
		}
		return NewCentroidClassifier(ctx, engine, tax, artifact, logger)

	default:
		return nil, fmt.Errorf("unknown classifier provider: %s (supported: keyword, openai)", cfg.Provider)
	}
}
