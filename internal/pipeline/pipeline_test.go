package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/bellagrands/sentinel/internal/model"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	cfg := model.DefaultConfig()
	p, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Expected pipeline to build, got %v", err)
	}
	return p
}

func TestPipeline_DefaultConfigHasNoClassifier(t *testing.T) {
	p := newTestPipeline(t)
	if p.HasClassifier() {
		t.Error("Expected no classifier with default config")
	}
}

func TestPipeline_AnalyzeVotingRestrictionNotice(t *testing.T) {
	p := newTestPipeline(t)

	doc := model.Document{
		SourceType: model.SourceFederalRegister,
		Title:      "Election Procedures Rule",
		Abstract: "The Department of Justice proposes to restrict voting procedures " +
			"and remove voters from rolls in several jurisdictions.",
	}

	analysis, err := p.Analyze(context.Background(), doc, false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !analysis.Analyzed {
		t.Fatal("Expected document to be analyzed")
	}
	if analysis.ID == "" {
		t.Error("Expected an ID to be assigned")
	}
	if analysis.ProcessedText != strings.ToLower(analysis.ProcessedText) {
		t.Error("Expected processed text to be lowercased")
	}

	if !analysis.Entities.Contains(model.EntityGovAgency, "Department of Justice") {
		t.Errorf("Expected GOV_AGENCY 'Department of Justice', got %v", analysis.Entities)
	}

	if len(analysis.AntiDemocraticMatches) == 0 {
		t.Fatal("Expected anti-democratic patterns to fire")
	}
	if analysis.AntiDemocraticScore <= 0 {
		t.Errorf("Expected positive anti-democratic score, got %g", analysis.AntiDemocraticScore)
	}

	foundAgencyVoting := false
	for _, rel := range analysis.EntityRelationships {
		if rel.Type == model.RelationAgencyVoting && rel.Entity == "Department of Justice" {
			foundAgencyVoting = true
			if rel.ThreatScore != 0.8 {
				t.Errorf("Expected relationship score 0.8, got %g", rel.ThreatScore)
			}
		}
	}
	if !foundAgencyVoting {
		t.Errorf("Expected agency_voting_restriction relationship, got %v", analysis.EntityRelationships)
	}
	if analysis.RelationshipThreatScore != 0.8 {
		t.Errorf("Expected relationship threat score 0.8, got %g", analysis.RelationshipThreatScore)
	}

	if analysis.ThreatScore <= 0 || analysis.ThreatScore > 1 {
		t.Errorf("Expected overall score in (0,1], got %g", analysis.ThreatScore)
	}
	if analysis.AnalysisSummary == "" {
		t.Error("Expected an extractive summary")
	}
	if analysis.AnalysisLevel != model.LevelBasic {
		t.Errorf("Expected basic analysis level without classifier, got %s", analysis.AnalysisLevel)
	}
	if analysis.AnalyzedAt.IsZero() {
		t.Error("Expected analysis timestamp")
	}
}

func TestPipeline_EmptyDocumentPassesThrough(t *testing.T) {
	p := newTestPipeline(t)

	doc := model.Document{SourceType: model.SourceFederalRegister, Title: ""}
	analysis, err := p.Analyze(context.Background(), doc, false)
	if err != nil {
		t.Fatalf("Expected passthrough, got %v", err)
	}
	if analysis.Analyzed {
		t.Error("Expected empty document to stay unanalyzed")
	}
	if analysis.ThreatScore != 0 {
		t.Errorf("Expected zero threat score, got %g", analysis.ThreatScore)
	}
}

func TestPipeline_BenignDocumentScoresLow(t *testing.T) {
	p := newTestPipeline(t)

	benign := model.Document{
		SourceType: model.SourceFederalRegister,
		Title:      "Migratory Bird Permit Applications",
		Abstract:   "Routine notice of receipt of permit applications for scientific collecting.",
	}
	threatening := model.Document{
		SourceType: model.SourceFederalRegister,
		Title:      "Emergency Election Order",
		Abstract: "The order would restrict voting, delay the election, and invoke " +
			"emergency powers while suspending the constitution.",
	}

	b, err := p.Analyze(context.Background(), benign, false)
	if err != nil {
		t.Fatal(err)
	}
	h, err := p.Analyze(context.Background(), threatening, false)
	if err != nil {
		t.Fatal(err)
	}

	if b.ThreatScore >= h.ThreatScore {
		t.Errorf("Expected benign (%g) below threatening (%g)", b.ThreatScore, h.ThreatScore)
	}
	if len(b.AntiDemocraticMatches) != 0 {
		t.Errorf("Expected no patterns on benign text, got %v", b.AntiDemocraticMatches)
	}
}

func TestPipeline_InitialScoreTracksCheapSignals(t *testing.T) {
	p := newTestPipeline(t)

	quiet := model.Document{
		SourceType: model.SourceFederalRegister,
		Title:      "Routine Filing",
		Abstract:   "Quarterly report of administrative filings received.",
	}
	loud := model.Document{
		SourceType: model.SourceFederalRegister,
		Title:      "Voting Order",
		Abstract:   "An order to restrict voting and cancel the election under emergency powers.",
	}

	low := p.InitialScore(context.Background(), quiet)
	high := p.InitialScore(context.Background(), loud)

	if low < 0 || low > 1 || high < 0 || high > 1 {
		t.Fatalf("Expected scores in [0,1], got %g and %g", low, high)
	}
	if high <= low {
		t.Errorf("Expected louder document to pre-score higher, got %g vs %g", high, low)
	}
}

func TestPipeline_MaxTextLengthTruncates(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Pipeline.MaxTextLength = 50

	p, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	doc := model.Document{
		SourceType: "misc",
		Text:       strings.Repeat("restrict voting now. ", 50),
	}
	analysis, err := p.Analyze(context.Background(), doc, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(analysis.ProcessedText) > 50 {
		t.Errorf("Expected processed text capped at 50, got %d", len(analysis.ProcessedText))
	}
}

func TestPipeline_InvalidConfigFails(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Pipeline.BatchSize = 0
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Error("Expected invalid config to fail pipeline construction")
	}
}

func TestPipeline_KeywordClassifierAugmentation(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Classifier.Provider = "keyword"
	cfg.Classifier.Threshold = 0.05

	p, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !p.HasClassifier() {
		t.Fatal("Expected keyword classifier to be available")
	}

	doc := model.Document{
		SourceType: model.SourceFederalRegister,
		Title:      "Voter Rules",
		Abstract:   "Voter suppression through voter id checks and voter purge lists statewide.",
	}

	analysis, err := p.Analyze(context.Background(), doc, true)
	if err != nil {
		t.Fatal(err)
	}
	if analysis.AnalysisLevel != model.LevelFull {
		t.Errorf("Expected full analysis level with augmentation, got %s", analysis.AnalysisLevel)
	}
	if len(analysis.TransformerClassification) == 0 {
		t.Error("Expected classifier results to be recorded")
	}
	if analysis.TransformerClassification["voting_rights"] <= 0 {
		t.Errorf("Expected voting_rights classification, got %v", analysis.TransformerClassification)
	}

	// augment=false must keep the classifier out of the loop
	plain, err := p.Analyze(context.Background(), doc, false)
	if err != nil {
		t.Fatal(err)
	}
	if plain.AnalysisLevel != model.LevelBasic || plain.TransformerClassification != nil {
		t.Error("Expected basic analysis without augmentation")
	}
}
