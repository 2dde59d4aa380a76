// Package summary produces the short extractive rationale attached to each
// analysis: the highest-signal sentences, in document order.
package summary

import (
	"sort"
	"strings"

	"github.com/bellagrands/sentinel/internal/model"
	"github.com/bellagrands/sentinel/internal/nlp"
	"github.com/bellagrands/sentinel/internal/taxonomy"
)

// Sentence scoring weights
const (
	positionWeight   = 0.2  // per slot among the first 3 sentences
	entityWeight     = 0.1  // per contained entity
	categoryBonus    = 0.15 // any category term, first match only
	patternBonus     = 0.2  // any anti-democratic pattern, first match only
	minSentenceWords = 5
	topSentences     = 3
)

// Summarizer extracts and ranks sentences into a short rationale.
type Summarizer struct {
	tax       *taxonomy.Taxonomy
	lib       *taxonomy.PatternLibrary
	maxLength int
}

// New creates a summarizer capped at maxLength characters.
func New(tax *taxonomy.Taxonomy, lib *taxonomy.PatternLibrary, maxLength int) *Summarizer {
	if maxLength <= 0 {
		maxLength = 150
	}
	return &Summarizer{tax: tax, lib: lib, maxLength: maxLength}
}

type scoredSentence struct {
	index int
	text  string
	score float64
}

// Summarize scores the sentences of the cased text and joins the top 3 in
// document order, truncated to the configured length. When no sentence
// qualifies for scoring it degrades to the first 3 raw sentences.
func (s *Summarizer) Summarize(cased string, entities model.EntityBag) string {
	if cased == "" {
		return ""
	}

	sentences := nlp.Sentences(cased)
	if len(sentences) == 0 {
		return s.truncate(cased)
	}

	var scored []scoredSentence
	for i, sentence := range sentences {
		if len(strings.Fields(sentence)) < minSentenceWords {
			continue
		}

		score := 0.0
		if i < topSentences {
			score += float64(topSentences-i) * positionWeight
		}
		score += float64(containedEntities(sentence, entities)) * entityWeight
		if s.containsCategoryTerm(sentence) {
			score += categoryBonus
		}
		if s.matchesPattern(sentence) {
			score += patternBonus
		}

		scored = append(scored, scoredSentence{index: i, text: sentence, score: score})
	}

	if len(scored) == 0 {
		return s.rawFallback(cased)
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	top := scored
	if len(top) > topSentences {
		top = top[:topSentences]
	}

	// restore original document order
	sort.Slice(top, func(i, j int) bool { return top[i].index < top[j].index })

	parts := make([]string, len(top))
	for i, sc := range top {
		parts[i] = sc.text
	}
	return s.truncate(strings.Join(parts, " "))
}

// rawFallback takes the first 3 raw sentences when scoring cannot run.
func (s *Summarizer) rawFallback(text string) string {
	sentences := strings.SplitN(text, ".", topSentences+1)
	if len(sentences) > topSentences {
		sentences = sentences[:topSentences]
	}
	return s.truncate(strings.Join(sentences, ".") + ".")
}

func (s *Summarizer) containsCategoryTerm(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, terms := range s.tax.Categories {
		for _, term := range terms {
			if strings.Contains(lower, strings.ToLower(term)) {
				return true
			}
		}
	}
	return false
}

func (s *Summarizer) matchesPattern(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, p := range s.lib.Patterns() {
		if p.Match(lower) {
			return true
		}
	}
	return false
}

func containedEntities(sentence string, entities model.EntityBag) int {
	lower := strings.ToLower(sentence)
	count := 0
	for _, surfaces := range entities {
		for _, surface := range surfaces {
			if strings.Contains(lower, strings.ToLower(surface)) {
				count++
			}
		}
	}
	return count
}

func (s *Summarizer) truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= s.maxLength {
		return text
	}
	return string(runes[:s.maxLength]) + "..."
}
