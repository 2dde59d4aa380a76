package score

import (
	"sort"

	"github.com/bellagrands/sentinel/internal/model"
)

// Aggregator fuses the three sub-scores into the overall threat score
// using fixed weights. The weights are configuration so tests can vary
// them, but production runs use 0.4/0.4/0.2.
type Aggregator struct {
	weights model.WeightConfig
}

// NewAggregator creates an aggregator with the given weights.
func NewAggregator(weights model.WeightConfig) Aggregator {
	return Aggregator{weights: weights}
}

// CategoryThreat is the mean of the top 3 category scores. Fewer than 3
// categories means the mean of what exists; an empty map scores 0.
func (a Aggregator) CategoryThreat(scores model.CategoryScores) float64 {
	if len(scores) == 0 {
		return 0
	}

	values := make([]float64, 0, len(scores))
	for _, v := range scores {
		values = append(values, v)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))

	n := 3
	if len(values) < n {
		n = len(values)
	}

	sum := 0.0
	for _, v := range values[:n] {
		sum += v
	}
	return sum / float64(n)
}

// Overall combines the category, pattern, and relationship sub-scores.
// Inputs and output are clamped to [0,1]; no further normalization.
func (a Aggregator) Overall(category, pattern, relationship float64) float64 {
	category = clamp01(category)
	pattern = clamp01(pattern)
	relationship = clamp01(relationship)

	overall := a.weights.Category*category +
		a.weights.Pattern*pattern +
		a.weights.Relationship*relationship
	return clamp01(overall)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
