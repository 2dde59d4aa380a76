package nlp

import (
	"context"
	"regexp"
	"strings"
)

// HeuristicEngine is the lightweight statistical fallback: capitalization
// and gazetteer based entity recognition, no embeddings. It keeps the
// pipeline functional when no model service is configured.
type HeuristicEngine struct{}

// NewHeuristicEngine creates the local engine.
func NewHeuristicEngine() *HeuristicEngine {
	return &HeuristicEngine{}
}

// Name returns the engine name
func (e *HeuristicEngine) Name() string { return "heuristic" }

// Embed always reports embeddings as unavailable; category scoring falls
// back to keyword frequency.
func (e *HeuristicEngine) Embed(ctx context.Context, text string) ([]float64, error) {
	return nil, ErrNoEmbeddings
}

// Similarity compares two vectors
func (e *HeuristicEngine) Similarity(a, b []float64) float64 {
	return Cosine(a, b)
}

var (
	dateRe = regexp.MustCompile(`\b(?:(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}|\d{4}-\d{2}-\d{2}|\b(?:19|20)\d{2}\b)`)

	honorifics = map[string]bool{
		"president": true, "senator": true, "rep.": true, "representative": true,
		"gov.": true, "governor": true, "judge": true, "justice": true,
		"secretary": true, "attorney": true, "mr.": true, "ms.": true,
		"mrs.": true, "dr.": true,
	}

	orgKeywords = []string{
		"Department", "Agency", "Commission", "Bureau", "Office", "Committee",
		"Court", "Administration", "Service", "Congress", "Senate", "House",
		"Association", "Institute", "Council", "Board", "Party",
	}

	locations = map[string]bool{
		"United States": true, "America": true, "Washington": true, "Texas": true,
		"Florida": true, "California": true, "New York": true, "Georgia": true,
		"Arizona": true, "Michigan": true, "Pennsylvania": true, "Wisconsin": true,
		"Nevada": true, "Ohio": true, "Virginia": true, "North Carolina": true,
	}

	norps = map[string]bool{
		"Democrat": true, "Democrats": true, "Democratic": true,
		"Republican": true, "Republicans": true, "American": true, "Americans": true,
	}

	// words allowed inside a capitalized phrase without breaking it
	phraseConnectors = map[string]bool{"of": true, "the": true, "and": true, "for": true}
)

// Entities recognizes entities from capitalization runs, a small location
// gazetteer, and date expressions. Precision is deliberately traded for
// zero external dependencies.
func (e *HeuristicEngine) Entities(text string) ([]Entity, error) {
	var entities []Entity

	for _, match := range dateRe.FindAllString(text, -1) {
		entities = append(entities, Entity{Label: "DATE", Text: match})
	}

	words := strings.Fields(text)
	for i := 0; i < len(words); i++ {
		phrase, end := capitalizedRun(words, i)
		if phrase == "" {
			continue
		}

		switch {
		case norps[phrase]:
			entities = append(entities, Entity{Label: "NORP", Text: phrase})
		case locations[phrase]:
			entities = append(entities, Entity{Label: "GPE", Text: phrase})
		case containsAny(phrase, orgKeywords):
			entities = append(entities, Entity{Label: "ORG", Text: phrase})
		case i > 0 && honorifics[strings.ToLower(words[i-1])]:
			entities = append(entities, Entity{Label: "PERSON", Text: phrase})
		default:
			// "Senator Jane Smithfield": the title is capitalized and gets
			// absorbed into the run, so check the run's own first word
			if name, ok := splitHonorificRun(phrase); ok {
				entities = append(entities, Entity{Label: "PERSON", Text: name})
			}
		}

		i = end
	}

	return entities, nil
}

// capitalizedRun collects a run of capitalized words starting at index i,
// allowing lowercase connectors inside ("Department of the Interior").
// Returns the phrase and the index of its last word, or "" when words[i]
// does not start a run.
func capitalizedRun(words []string, i int) (string, int) {
	clean := func(w string) string {
		return strings.Trim(w, ".,;:!?()'\"")
	}

	first := clean(words[i])
	if !isCapitalized(first) {
		return "", i
	}

	phrase := []string{first}
	end := i
	for j := i + 1; j < len(words); j++ {
		w := clean(words[j])
		if isCapitalized(w) {
			phrase = append(phrase, w)
			end = j
			continue
		}
		// allow one connector between capitalized words
		if phraseConnectors[w] && j+1 < len(words) && isCapitalized(clean(words[j+1])) {
			phrase = append(phrase, w)
			continue
		}
		break
	}

	// single common sentence-initial words are too noisy to report
	if len(phrase) == 1 && len(first) <= 3 {
		return "", i
	}
	return strings.Join(phrase, " "), end
}

// splitHonorificRun strips a leading title from a capitalized run and
// returns the remaining name, if any.
func splitHonorificRun(phrase string) (string, bool) {
	parts := strings.Fields(phrase)
	if len(parts) < 2 || !honorifics[strings.ToLower(parts[0])] {
		return "", false
	}
	return strings.Join(parts[1:], " "), true
}

func isCapitalized(w string) bool {
	if w == "" {
		return false
	}
	r := rune(w[0])
	return r >= 'A' && r <= 'Z'
}

func containsAny(phrase string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(phrase, kw) {
			return true
		}
	}
	return false
}
