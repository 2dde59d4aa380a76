package nlp

import (
	"testing"

	"github.com/bellagrands/sentinel/internal/model"
	"github.com/bellagrands/sentinel/internal/taxonomy"
)

func newTestExtractor() *Extractor {
	return NewExtractor(NewHeuristicEngine(), taxonomy.Default(), nil)
}

func TestExtract_AgencyPhrases(t *testing.T) {
	e := newTestExtractor()

	result := e.Extract("The Department of Justice announced new rules to restrict voter registration.")
	if result.Degraded() {
		t.Fatal("Expected all matchers to succeed")
	}

	if !result.Entities.Contains(model.EntityGovAgency, "Department of Justice") {
		t.Errorf("Expected GOV_AGENCY 'Department of Justice', got %v", result.Entities)
	}
}

func TestExtract_LongestSpanWins(t *testing.T) {
	e := newTestExtractor()

	// "Department of Justice" and "DOJ" are both phrases; the full name and
	// the acronym occupy different spans so both survive, but the full name
	// must not also fire as a shorter overlapping match.
	result := e.Extract("The Department of Justice (DOJ) filed suit.")

	agencies := result.Entities[model.EntityGovAgency]
	if len(agencies) != 2 {
		t.Fatalf("Expected 2 agency surfaces, got %v", agencies)
	}
	if !result.Entities.Contains(model.EntityGovAgency, "Department of Justice") ||
		!result.Entities.Contains(model.EntityGovAgency, "DOJ") {
		t.Errorf("Expected both full name and acronym, got %v", agencies)
	}
}

func TestExtract_WholeWordBoundary(t *testing.T) {
	e := newTestExtractor()

	// "ICE" must not fire inside "service" or "justice"
	result := e.Extract("The postal service delivers justice daily.")
	if result.Entities.Contains(model.EntityGovAgency, "ICE") {
		t.Errorf("Expected no ICE match inside larger words, got %v", result.Entities)
	}

	result = e.Extract("ICE detained the applicants.")
	if !result.Entities.Contains(model.EntityGovAgency, "ICE") {
		t.Errorf("Expected standalone ICE to match, got %v", result.Entities)
	}
}

func TestExtract_USCCitations(t *testing.T) {
	e := newTestExtractor()

	result := e.Extract("Authority under 5 U.S.C. § 552 and 8 USC 1182.")
	citations := result.Entities[model.EntityUSCCitation]
	if len(citations) != 2 {
		t.Fatalf("Expected 2 citations, got %v", citations)
	}
	if !result.Entities.Contains(model.EntityUSCCitation, "5 U.S.C. § 552") {
		t.Errorf("Expected normalized section citation, got %v", citations)
	}
	if !result.Entities.Contains(model.EntityUSCCitation, "8 U.S.C. § 1182") {
		t.Errorf("Expected normalized USC form, got %v", citations)
	}
}

func TestExtract_BillAndFedRegCitations(t *testing.T) {
	e := newTestExtractor()

	result := e.Extract("H.R. 1234 was introduced; see 89 Fed. Reg. 5678 for details.")
	if !result.Entities.Contains(model.EntityBill, "H.R. 1234") {
		t.Errorf("Expected bill citation, got %v", result.Entities[model.EntityBill])
	}
	if !result.Entities.Contains(model.EntityFRCitation, "89 Fed. Reg. 5678") {
		t.Errorf("Expected Fed. Reg. citation, got %v", result.Entities[model.EntityFRCitation])
	}
}

func TestExtract_DedupeAcrossOccurrences(t *testing.T) {
	e := newTestExtractor()

	result := e.Extract("The FBI opened a case. Later the FBI closed it.")
	if got := len(result.Entities[model.EntityGovAgency]); got != 1 {
		t.Errorf("Expected 1 deduplicated FBI entry, got %d", got)
	}
}

func TestFilterSpans_PrefersLongerThenEarlier(t *testing.T) {
	spans := []span{
		{start: 0, end: 5, label: "A", text: "short"},
		{start: 0, end: 12, label: "B", text: "longer match"},
		{start: 20, end: 25, label: "C", text: "clear"},
	}
	kept := filterSpans(spans)
	if len(kept) != 2 {
		t.Fatalf("Expected 2 spans, got %d", len(kept))
	}
	for _, s := range kept {
		if s.label == "A" {
			t.Error("Expected shorter overlapping span to be dropped")
		}
	}
}
