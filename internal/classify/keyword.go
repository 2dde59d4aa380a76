package classify

import (
	"context"
	"strings"

	"github.com/bellagrands/sentinel/internal/taxonomy"
)

// KeywordClassifier is the no-network provider: confidence is term
// frequency against the taxonomy term lists. Useful for air-gapped runs
// and as a deterministic test double.
type KeywordClassifier struct {
	tax *taxonomy.Taxonomy
}

// NewKeywordClassifier creates a keyword-frequency classifier.
func NewKeywordClassifier(tax *taxonomy.Taxonomy) *KeywordClassifier {
	return &KeywordClassifier{tax: tax}
}

// Name returns the provider name
func (c *KeywordClassifier) Name() string { return "keyword" }

// Classify counts category term occurrences, normalized by term-list size
// and capped at 1.0, reporting labels above threshold.
func (c *KeywordClassifier) Classify(ctx context.Context, text string, threshold float64) (map[string]float64, error) {
	if text == "" {
		return nil, nil
	}

	lower := strings.ToLower(text)
	results := make(map[string]float64)
	for category, terms := range c.tax.Categories {
		count := 0
		for _, term := range terms {
			count += strings.Count(lower, strings.ToLower(term))
		}
		confidence := float64(count) / float64(len(terms))
		if confidence > 1 {
			confidence = 1
		}
		if confidence > threshold {
			results[category] = confidence
		}
	}
	return results, nil
}
