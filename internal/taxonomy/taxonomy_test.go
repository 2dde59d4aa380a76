package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bellagrands/sentinel/internal/model"
)

func TestDefault_CategorySet(t *testing.T) {
	tax := Default()

	expected := []string{
		"voting_rights", "civil_liberties", "edu_rights", "executive_power",
		"transparency", "immigration", "anti_democratic",
	}
	if len(tax.Categories) != len(expected) {
		t.Fatalf("Expected %d categories, got %d", len(expected), len(tax.Categories))
	}
	for _, name := range expected {
		if len(tax.Categories[name]) == 0 {
			t.Errorf("Expected category '%s' with terms", name)
		}
	}

	if len(tax.Agencies) == 0 || len(tax.LegalTerms) == 0 {
		t.Error("Expected agency and legal-term phrase lists")
	}
	if len(tax.VotingKeywords) != 8 {
		t.Errorf("Expected 8 voting keywords, got %d", len(tax.VotingKeywords))
	}
	if len(tax.RestrictiveVerbs) != 9 {
		t.Errorf("Expected 9 restrictive verbs, got %d", len(tax.RestrictiveVerbs))
	}
}

func TestLoad_OverlayReplacesSectionsWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	content := `
categories:
  custom_only:
    - some term
agencies:
  - Test Agency
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tax, err := Load(model.TaxonomyConfig{CategoriesPath: path})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(tax.Categories) != 1 {
		t.Errorf("Expected overlay to replace categories wholesale, got %d", len(tax.Categories))
	}
	if len(tax.Agencies) != 1 || tax.Agencies[0] != "Test Agency" {
		t.Errorf("Expected overlay agencies, got %v", tax.Agencies)
	}
	// omitted sections keep their defaults
	if len(tax.VotingKeywords) != 8 {
		t.Errorf("Expected default voting keywords to survive, got %d", len(tax.VotingKeywords))
	}
}

func TestCategoryNames_Sorted(t *testing.T) {
	names := Default().CategoryNames()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("Expected sorted names, got %v", names)
		}
	}
}
