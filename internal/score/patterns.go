package score

import (
	"strings"

	"github.com/bellagrands/sentinel/internal/model"
	"github.com/bellagrands/sentinel/internal/nlp"
	"github.com/bellagrands/sentinel/internal/taxonomy"
)

// PatternWeight is the fixed confidence assigned to every fired pattern.
// Uniform on purpose: the library carries no graduated confidence.
const PatternWeight = 0.9

// Relationship scores by type
const (
	agencyVotingScore    = 0.8
	lawCivilLibertyScore = 0.75
)

// PatternDetector matches the anti-democratic pattern library against
// normalized text.
type PatternDetector struct {
	lib *taxonomy.PatternLibrary
}

// NewPatternDetector creates a detector over the given library.
func NewPatternDetector(lib *taxonomy.PatternLibrary) *PatternDetector {
	return &PatternDetector{lib: lib}
}

// Detect returns one entry per pattern that fires at least once. Repeat
// matches of the same pattern do not raise the weight.
func (d *PatternDetector) Detect(normalized string) model.PatternMatches {
	matches := make(model.PatternMatches)
	if normalized == "" {
		return matches
	}
	for _, p := range d.lib.Patterns() {
		if p.Match(normalized) {
			matches[p.Label] = PatternWeight
		}
	}
	return matches
}

// AntiDemocraticScore is the arithmetic mean of fired pattern weights,
// 0 when none fired.
func AntiDemocraticScore(matches model.PatternMatches) float64 {
	if len(matches) == 0 {
		return 0
	}
	sum := 0.0
	for _, w := range matches {
		sum += w
	}
	return sum / float64(len(matches))
}

// RelationshipDetector finds single-sentence co-occurrences of extracted
// entities with restrictive-action language.
type RelationshipDetector struct {
	tax *taxonomy.Taxonomy
}

// NewRelationshipDetector creates a detector over the given vocabulary.
func NewRelationshipDetector(tax *taxonomy.Taxonomy) *RelationshipDetector {
	return &RelationshipDetector{tax: tax}
}

// Detect walks the sentences of the cased text. A sentence holding a
// government agency plus a voting keyword plus a restrictive verb emits one
// agency_voting_restriction per matching agency; a sentence holding a
// legal/statutory entity plus a civil-liberty keyword plus a restrictive
// verb emits one law_civil_liberty_restriction per matching term.
func (d *RelationshipDetector) Detect(cased string, entities model.EntityBag) []model.EntityRelationship {
	if cased == "" || entities.Count() == 0 {
		return nil
	}

	agencies := entities[model.EntityGovAgency]

	var laws []string
	laws = append(laws, entities[model.EntityLawTerm]...)
	laws = append(laws, entities[model.EntityLaw]...)
	laws = append(laws, entities[model.EntityUSCCitation]...)

	var relationships []model.EntityRelationship
	for _, sentence := range nlp.Sentences(cased) {
		lower := strings.ToLower(sentence)

		hasVerb := containsAnyKeyword(lower, d.tax.RestrictiveVerbs)
		if !hasVerb {
			continue
		}

		if containsAnyKeyword(lower, d.tax.VotingKeywords) {
			for _, agency := range agencies {
				if strings.Contains(lower, strings.ToLower(agency)) {
					relationships = append(relationships, model.EntityRelationship{
						Type:        model.RelationAgencyVoting,
						Entity:      agency,
						Sentence:    sentence,
						ThreatScore: agencyVotingScore,
					})
				}
			}
		}

		if containsAnyKeyword(lower, d.tax.CivilLibertyKeywords) {
			for _, law := range laws {
				if strings.Contains(lower, strings.ToLower(law)) {
					relationships = append(relationships, model.EntityRelationship{
						Type:        model.RelationLawCivilLiberty,
						Entity:      law,
						Sentence:    sentence,
						ThreatScore: lawCivilLibertyScore,
					})
				}
			}
		}
	}

	return relationships
}

// RelationshipScore is the maximum threat score across relationships,
// 0 when none were found.
func RelationshipScore(relationships []model.EntityRelationship) float64 {
	max := 0.0
	for _, rel := range relationships {
		if rel.ThreatScore > max {
			max = rel.ThreatScore
		}
	}
	return max
}

func containsAnyKeyword(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
