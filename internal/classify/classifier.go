// Package classify is the optional augmentation layer: a pluggable, more
// expensive classifier whose output is merged into the cheap-path category
// scores. The pipeline runs correctly with no provider configured.
package classify

import (
	"context"
	"strings"

	"github.com/bellagrands/sentinel/internal/model"
)

// Classifier is the injectable classification capability.
type Classifier interface {
	// Name returns the provider name
	Name() string

	// Classify returns category labels with confidence above threshold
	Classify(ctx context.Context, text string, threshold float64) (map[string]float64, error)
}

// ClassifyChunks classifies long text by breaking it into overlapping
// chunks and keeping, per category, the maximum confidence across chunks.
// Text at or under the chunk size is classified in one call.
func ClassifyChunks(ctx context.Context, c Classifier, text string, cfg model.ClassifierConfig) (map[string]float64, error) {
	if text == "" {
		return nil, nil
	}

	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 512
	}
	overlap := cfg.ChunkOverlap
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	// chunk boundaries fall on runes so multi-byte text never splits
	// mid-character into invalid UTF-8
	runes := []rune(text)
	if len(runes) <= chunkSize {
		return c.Classify(ctx, text, cfg.Threshold)
	}

	step := chunkSize - overlap
	aggregated := make(map[string]float64)
	for i := 0; i < len(runes); i += step {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := string(runes[i:end])
		if end-i <= chunkSize/2 {
			continue // tail fragment, not substantial enough
		}

		results, err := c.Classify(ctx, chunk, cfg.Threshold)
		if err != nil {
			return nil, err
		}
		for category, confidence := range results {
			if confidence > aggregated[category] {
				aggregated[category] = confidence
			}
		}
	}

	return aggregated, nil
}

// MergeScores folds classifier results into the category score map:
// categories present in both are averaged, new categories are added
// outright. Labels are normalized to taxonomy key form.
func MergeScores(scores model.CategoryScores, results map[string]float64) {
	for label, confidence := range results {
		key := NormalizeLabel(label)
		if existing, ok := scores[key]; ok {
			scores[key] = (existing + confidence) / 2
		} else {
			scores[key] = confidence
		}
	}
}

// NormalizeLabel converts a classifier label to taxonomy key form:
// lowercase with underscores.
func NormalizeLabel(label string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "_")
}
