package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Entity type labels produced by the extractor
const (
	EntityPerson      = "PERSON"
	EntityOrg         = "ORG"
	EntityLocation    = "GPE"
	EntityLaw         = "LAW"
	EntityDate        = "DATE"
	EntityNORP        = "NORP"
	EntityEvent       = "EVENT"
	EntityGovAgency   = "GOV_AGENCY"
	EntityLawTerm     = "LAW_TERM"
	EntityUSCCitation = "USC_CITATION"
	EntityBill        = "BILL"
	EntityFRCitation  = "FR_CITATION"
)

// EntityBag maps an entity type label to the distinct surface strings found
// in a document. Deduplication is case-insensitive per type; first surface
// form wins.
type EntityBag map[string][]string

// Add records a surface string under the given type unless an equal string
// (ignoring case) is already present.
func (b EntityBag) Add(label, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	lower := strings.ToLower(text)
	for _, existing := range b[label] {
		if strings.ToLower(existing) == lower {
			return
		}
	}
	b[label] = append(b[label], text)
}

// Contains reports whether the bag holds the given surface string under the
// given type, ignoring case.
func (b EntityBag) Contains(label, text string) bool {
	lower := strings.ToLower(text)
	for _, existing := range b[label] {
		if strings.ToLower(existing) == lower {
			return true
		}
	}
	return false
}

// Count returns the total number of entities across all types.
func (b EntityBag) Count() int {
	n := 0
	for _, values := range b {
		n += len(values)
	}
	return n
}

// CategoryScores maps a threat category name to a score in [0,1].
type CategoryScores map[string]float64

// PatternMatches maps a pattern label to its fixed confidence weight.
// A pattern either fires or it does not; repeat matches do not stack.
type PatternMatches map[string]float64

// Relationship types
const (
	RelationAgencyVoting    = "agency_voting_restriction"
	RelationLawCivilLiberty = "law_civil_liberty_restriction"
)

// EntityRelationship is a single-sentence co-occurrence of an extracted
// entity with restrictive-action language.
type EntityRelationship struct {
	Type        string  `json:"type"`
	Entity      string  `json:"entity"`
	Sentence    string  `json:"sentence"`
	ThreatScore float64 `json:"threat_score"`
}

// MatcherStatus reports how one sub-matcher fared during extraction.
type MatcherStatus string

const (
	MatcherOK     MatcherStatus = "ok"
	MatcherFailed MatcherStatus = "failed"
)

// MatcherReport records the outcome of one extraction sub-matcher so the
// aggregator can reason about degraded confidence instead of silently
// swallowing failures.
type MatcherReport struct {
	Name   string        `json:"name"`
	Status MatcherStatus `json:"status"`
	Error  string        `json:"error,omitempty"`
}

// Analysis levels
const (
	LevelBasic = "basic"
	LevelFull  = "full"
)

// Analysis is the terminal artifact for one document: the original record
// plus every enrichment the pipeline produced. Ownership passes to the
// caller once the pipeline returns it.
type Analysis struct {
	Document

	Analyzed      bool   `json:"analyzed"`
	ProcessedText string `json:"processed_text,omitempty"`

	Entities EntityBag       `json:"entities,omitempty"`
	Matchers []MatcherReport `json:"matchers,omitempty"`

	ThreatCategories          CategoryScores `json:"threat_categories,omitempty"`
	TransformerClassification CategoryScores `json:"classifier_results,omitempty"`

	AntiDemocraticMatches PatternMatches `json:"anti_democratic_matches,omitempty"`
	AntiDemocraticScore   float64        `json:"anti_democratic_score"`

	EntityRelationships     []EntityRelationship `json:"entity_relationships,omitempty"`
	RelationshipThreatScore float64              `json:"relationship_threat_score"`

	ThreatScore float64 `json:"threat_score"`

	AnalysisSummary string    `json:"analysis_summary,omitempty"`
	AnalysisLevel   string    `json:"analysis_level,omitempty"`
	AnalyzedAt      time.Time `json:"analysis_timestamp,omitzero"`
}

// enrichment mirrors the analysis fields of Analysis. Document's custom
// MarshalJSON/UnmarshalJSON are promoted through the embedding and would
// otherwise serialize an Analysis as its document alone, so both codecs
// below handle the two halves explicitly and merge them.
type enrichment struct {
	Analyzed      bool   `json:"analyzed"`
	ProcessedText string `json:"processed_text,omitempty"`

	Entities EntityBag       `json:"entities,omitempty"`
	Matchers []MatcherReport `json:"matchers,omitempty"`

	ThreatCategories          CategoryScores `json:"threat_categories,omitempty"`
	TransformerClassification CategoryScores `json:"classifier_results,omitempty"`

	AntiDemocraticMatches PatternMatches `json:"anti_democratic_matches,omitempty"`
	AntiDemocraticScore   float64        `json:"anti_democratic_score"`

	EntityRelationships     []EntityRelationship `json:"entity_relationships,omitempty"`
	RelationshipThreatScore float64              `json:"relationship_threat_score"`

	ThreatScore float64 `json:"threat_score"`

	AnalysisSummary string    `json:"analysis_summary,omitempty"`
	AnalysisLevel   string    `json:"analysis_level,omitempty"`
	AnalyzedAt      time.Time `json:"analysis_timestamp,omitzero"`
}

// enrichmentKeys lists the JSON keys owned by the analysis half, so
// document decoding does not claim them as collector metadata.
var enrichmentKeys = map[string]bool{
	"analyzed": true, "processed_text": true, "entities": true, "matchers": true,
	"threat_categories": true, "classifier_results": true,
	"anti_democratic_matches": true, "anti_democratic_score": true,
	"entity_relationships": true, "relationship_threat_score": true,
	"threat_score": true, "analysis_summary": true, "analysis_level": true,
	"analysis_timestamp": true,
}

// MarshalJSON writes the document fields and the analysis fields as one
// flat object.
func (a Analysis) MarshalJSON() ([]byte, error) {
	docData, err := json.Marshal(a.Document)
	if err != nil {
		return nil, err
	}
	analysisData, err := json.Marshal(enrichment{
		Analyzed:      a.Analyzed,
		ProcessedText: a.ProcessedText,

		Entities: a.Entities,
		Matchers: a.Matchers,

		ThreatCategories:          a.ThreatCategories,
		TransformerClassification: a.TransformerClassification,

		AntiDemocraticMatches: a.AntiDemocraticMatches,
		AntiDemocraticScore:   a.AntiDemocraticScore,

		EntityRelationships:     a.EntityRelationships,
		RelationshipThreatScore: a.RelationshipThreatScore,

		ThreatScore: a.ThreatScore,

		AnalysisSummary: a.AnalysisSummary,
		AnalysisLevel:   a.AnalysisLevel,
		AnalyzedAt:      a.AnalyzedAt,
	})
	if err != nil {
		return nil, err
	}

	merged := make(map[string]json.RawMessage)
	if err := json.Unmarshal(docData, &merged); err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(analysisData, &fields); err != nil {
		return nil, err
	}
	for key, val := range fields {
		merged[key] = val
	}
	return json.Marshal(merged)
}

// UnmarshalJSON decodes the document half and the analysis half from the
// same flat object.
func (a *Analysis) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &a.Document); err != nil {
		return err
	}
	// the document decoder sweeps unknown string fields into Extra;
	// analysis keys are not collector metadata
	for key := range a.Extra {
		if enrichmentKeys[key] {
			delete(a.Extra, key)
		}
	}

	var fields enrichment
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	a.Analyzed = fields.Analyzed
	a.ProcessedText = fields.ProcessedText
	a.Entities = fields.Entities
	a.Matchers = fields.Matchers
	a.ThreatCategories = fields.ThreatCategories
	a.TransformerClassification = fields.TransformerClassification
	a.AntiDemocraticMatches = fields.AntiDemocraticMatches
	a.AntiDemocraticScore = fields.AntiDemocraticScore
	a.EntityRelationships = fields.EntityRelationships
	a.RelationshipThreatScore = fields.RelationshipThreatScore
	a.ThreatScore = fields.ThreatScore
	a.AnalysisSummary = fields.AnalysisSummary
	a.AnalysisLevel = fields.AnalysisLevel
	a.AnalyzedAt = fields.AnalyzedAt
	return nil
}
