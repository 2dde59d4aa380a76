// Package score turns extracted signals into bounded threat scores:
// category similarity, anti-democratic pattern matches, entity
// relationships, and the weighted fusion of the three.
package score

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bellagrands/sentinel/internal/model"
	"github.com/bellagrands/sentinel/internal/nlp"
	"github.com/bellagrands/sentinel/internal/taxonomy"
)

// CategoryScorer scores text against the fixed category taxonomy. The
// primary path embeds the document and compares it to precomputed category
// prototype vectors; when the engine has no embeddings it falls back to
// keyword-frequency scoring. Both paths return the full category key set.
type CategoryScorer struct {
	engine     nlp.Engine
	tax        *taxonomy.Taxonomy
	prototypes map[string][]float64 // nil when embeddings are unavailable
	logger     *slog.Logger
}

// NewCategoryScorer builds the scorer, precomputing one prototype vector
// per category from its concatenated term list. Embedding failure is not
// fatal: the scorer degrades to the keyword path.
func NewCategoryScorer(ctx context.Context, engine nlp.Engine, tax *taxonomy.Taxonomy, logger *slog.Logger) (*CategoryScorer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &CategoryScorer{engine: engine, tax: tax, logger: logger}

	prototypes := make(map[string][]float64, len(tax.Categories))
	for category, terms := range tax.Categories {
		vec, err := engine.Embed(ctx, strings.Join(terms, " "))
		if err != nil {
			if errors.Is(err, nlp.ErrNoEmbeddings) {
				logger.Info("embeddings unavailable, category scoring uses keyword frequency")
				return s, nil
			}
			return nil, fmt.Errorf("embed category %s: %w", category, err)
		}
		prototypes[category] = vec
	}

	s.prototypes = prototypes
	return s, nil
}

// UsesEmbeddings reports whether the similarity path is active.
func (s *CategoryScorer) UsesEmbeddings() bool {
	return s.prototypes != nil
}

// Score returns a score in [0,1] for every category in the taxonomy.
func (s *CategoryScorer) Score(ctx context.Context, text string) model.CategoryScores {
	if text == "" {
		return s.emptyScores()
	}

	if s.prototypes != nil {
		scores, err := s.similarityScores(ctx, text)
		if err == nil {
			return scores
		}
		s.logger.Warn("similarity scoring failed, falling back to keywords", "error", err)
	}

	return s.KeywordScores(text)
}

// similarityScores embeds the document, takes cosine similarity against
// every prototype, then min-max normalizes across categories so the least
// similar category maps to 0 and the most to 1. Equal similarities pass
// through unnormalized.
func (s *CategoryScorer) similarityScores(ctx context.Context, text string) (model.CategoryScores, error) {
	docVec, err := s.engine.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	similarities := make(model.CategoryScores, len(s.prototypes))
	minSim, maxSim := 1.0, -1.0
	for category, proto := range s.prototypes {
		sim := s.engine.Similarity(docVec, proto)
		similarities[category] = sim
		if sim < minSim {
			minSim = sim
		}
		if sim > maxSim {
			maxSim = sim
		}
	}

	if maxSim <= minSim {
		// All categories equally similar: pass through, clamped to keep
		// the [0,1] score invariant.
		for category, sim := range similarities {
			similarities[category] = clamp01(sim)
		}
		return similarities, nil
	}

	normalized := make(model.CategoryScores, len(similarities))
	for category, sim := range similarities {
		normalized[category] = (sim - minSim) / (maxSim - minSim)
	}
	return normalized, nil
}

// KeywordScores counts case-insensitive occurrences of each category's
// terms, normalized by term-list size and capped at 1.0.
func (s *CategoryScorer) KeywordScores(text string) model.CategoryScores {
	lower := strings.ToLower(text)

	scores := make(model.CategoryScores, len(s.tax.Categories))
	for category, terms := range s.tax.Categories {
		count := 0
		for _, term := range terms {
			count += strings.Count(lower, strings.ToLower(term))
		}
		score := float64(count) / float64(len(terms))
		if score > 1 {
			score = 1
		}
		scores[category] = score
	}
	return scores
}

func (s *CategoryScorer) emptyScores() model.CategoryScores {
	scores := make(model.CategoryScores, len(s.tax.Categories))
	for category := range s.tax.Categories {
		scores[category] = 0
	}
	return scores
}
