// Package taxonomy holds the fixed vocabularies the pipeline scores
// against: threat categories and their term lists, government agency and
// legal-term phrase lists, and the co-occurrence keyword sets used by the
// relationship detector. Everything here is loaded once at startup and
// treated as read-only afterwards, so concurrent readers need no locking.
package taxonomy

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/bellagrands/sentinel/internal/model"
)

// Taxonomy is the full vocabulary set injected into pipeline components.
type Taxonomy struct {
	Categories map[string][]string `yaml:"categories"`

	Agencies   []string `yaml:"agencies"`
	LegalTerms []string `yaml:"legal_terms"`

	VotingKeywords       []string `yaml:"voting_keywords"`
	RestrictiveVerbs     []string `yaml:"restrictive_verbs"`
	CivilLibertyKeywords []string `yaml:"civil_liberty_keywords"`
}

// Default returns the built-in taxonomy.
func Default() *Taxonomy {
	return &Taxonomy{
		Categories: map[string][]string{
			"voting_rights": {
				"voter suppression", "voter id", "voter purge", "registration restriction",
				"polling location", "early voting", "mail-in ballot", "absentee ballot",
				"ballot access", "voter disenfranchisement", "electoral college",
			},
			"civil_liberties": {
				"free speech", "freedom of assembly", "privacy rights", "surveillance",
				"due process", "search and seizure", "first amendment", "fourth amendment",
				"fifth amendment", "fourteenth amendment", "civil liberties", "racial profiling",
			},
			"edu_rights": {
				"book ban", "curriculum restriction", "education funding", "school privatization",
				"student rights", "public education", "education access", "school voucher",
				"academic freedom", "segregation", "education equity", "library access",
			},
			"executive_power": {
				"executive order", "emergency power", "war power", "regulatory authority",
				"agency discretion", "presidential directive", "executive privilege",
				"executive branch", "separation of powers", "checks and balances",
				"unitary executive", "signing statement",
			},
			"transparency": {
				"freedom of information", "government transparency", "open records",
				"public disclosure", "whistleblower", "classified information",
				"state secrets", "sunshine law", "open meeting", "records retention",
				"media access", "press freedom",
			},
			"immigration": {
				"detention", "deportation", "asylum", "refugee", "border enforcement",
				"immigration enforcement", "sanctuary", "birthright citizenship",
				"family separation", "migrant rights", "immigration court", "visa restriction",
			},
			"anti_democratic": {
				"restrict voting", "gerrymandering", "purge voter", "voter id requirement",
				"polling place closure", "election interference", "electoral integrity",
				"ballot harvesting", "cancel election", "postpone election", "delay election",
				"election certification", "electoral certification", "election challenge",
				"overturn election", "emergency powers", "presidential immunity",
				"executive privilege", "martial law", "insurrection act", "suspend constitution",
				"constitutional convention", "term limits repeal", "impeachment restriction",
				"judicial independence", "court packing", "court reform", "media censorship",
				"freedom of press", "press credentials", "press access", "legislative override",
				"state legislature", "independent commission", "election commission",
				"federal overreach", "states rights", "legislative immunity",
			},
		},

		Agencies: []string{
			"Department of Justice", "DOJ", "FBI", "Department of Homeland Security", "DHS",
			"ICE", "Department of Defense", "DOD", "Department of State", "Department of the Interior",
			"Department of Education", "Department of Energy", "Department of Health and Human Services",
			"HHS", "Federal Election Commission", "FEC", "Federal Communications Commission", "FCC",
			"Environmental Protection Agency", "EPA", "Federal Trade Commission", "FTC",
			"Securities and Exchange Commission", "SEC", "Internal Revenue Service", "IRS",
			"Department of Treasury", "Federal Reserve", "Customs and Border Protection", "CBP",
		},

		LegalTerms: []string{
			"U.S. Code", "USC", "Title", "Section", "Public Law", "U.S.C.",
			"Code of Federal Regulations", "CFR", "Federal Register", "Fed. Reg.",
			"Executive Order", "Presidential Memorandum", "Proclamation", "Rule", "Regulation",
			"Bill", "Act", "Amendment", "Constitution", "Constitutional", "Statute", "Statutory",
			"Federal Rules", "Administrative Procedure Act", "Freedom of Information Act", "FOIA",
		},

		VotingKeywords: []string{
			"vote", "voting", "ballot", "election", "poll", "polling", "voter", "registration",
		},
		RestrictiveVerbs: []string{
			"restrict", "limit", "reduce", "eliminate", "curtail", "constrain", "obstruct", "impede", "block",
		},
		CivilLibertyKeywords: []string{
			"speech", "assembly", "protest", "privacy", "press", "religion",
			"search", "seizure", "due process", "rights",
		},
	}
}

// Load builds the taxonomy from defaults plus any YAML overrides named in
// the configuration. An override file replaces the corresponding section
// wholesale; sections it omits keep their defaults.
func Load(cfg model.TaxonomyConfig) (*Taxonomy, error) {
	t := Default()
	if cfg.CategoriesPath != "" {
		if err := t.overlayFile(cfg.CategoriesPath); err != nil {
			return nil, fmt.Errorf("load taxonomy overrides: %w", err)
		}
	}
	return t, nil
}

func (t *Taxonomy) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var overlay Taxonomy
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if len(overlay.Categories) > 0 {
		t.Categories = overlay.Categories
	}
	if len(overlay.Agencies) > 0 {
		t.Agencies = overlay.Agencies
	}
	if len(overlay.LegalTerms) > 0 {
		t.LegalTerms = overlay.LegalTerms
	}
	if len(overlay.VotingKeywords) > 0 {
		t.VotingKeywords = overlay.VotingKeywords
	}
	if len(overlay.RestrictiveVerbs) > 0 {
		t.RestrictiveVerbs = overlay.RestrictiveVerbs
	}
	if len(overlay.CivilLibertyKeywords) > 0 {
		t.CivilLibertyKeywords = overlay.CivilLibertyKeywords
	}
	return nil
}

// CategoryNames returns the category names in sorted order.
func (t *Taxonomy) CategoryNames() []string {
	names := make([]string, 0, len(t.Categories))
	for name := range t.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
