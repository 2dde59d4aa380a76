package taxonomy

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Pattern is one anti-democratic language pattern. The label is the stable,
// human-readable key reported in match results; the expression is matched
// case-insensitively against normalized text.
type Pattern struct {
	Label string `yaml:"label"`
	Expr  string `yaml:"expr"`

	re *regexp.Regexp
}

// Match reports whether the pattern fires anywhere in the text.
func (p *Pattern) Match(text string) bool {
	return p.re.MatchString(text)
}

// PatternLibrary holds the compiled pattern set. Compiled once at startup;
// read-only afterwards.
type PatternLibrary struct {
	patterns []Pattern
}

// Patterns returns the compiled patterns.
func (l *PatternLibrary) Patterns() []Pattern {
	return l.patterns
}

// Len returns the number of patterns in the library.
func (l *PatternLibrary) Len() int {
	return len(l.patterns)
}

// defaultPatterns mirrors the curated anti-democratic pattern set. Inflected
// verb forms are folded into each expression so "restricting voting" and
// "restricted voting" fire the same label.
var defaultPatterns = []Pattern{
	{Label: "restrict voting", Expr: `restrict(?:ing|s|ed)?\s+(?:voting|ballot|election)`},
	{Label: "remove voters from rolls", Expr: `remov(?:e|ing|ed)\s+(?:voters?|names)\s+(?:from|off)\s+(?:rolls?|registration)`},
	{Label: "close polling locations", Expr: `(?:close|reduce|limit|restrict)\s+polling\s+(?:stations?|places?|locations?)`},
	{Label: "voter identification", Expr: `voter\s+identification`},
	{Label: "strict voter id", Expr: `strict(?:er)?\s+voter\s+id`},
	{Label: "delay election", Expr: `delay(?:ing|ed)?\s+(?:the\s+)?election`},
	{Label: "postpone election", Expr: `postpon(?:e|ing|ed)\s+(?:the\s+)?election`},
	{Label: "cancel election", Expr: `cancel(?:ing|ed|lation of)?\s+(?:the\s+)?election`},
	{Label: "contest election results", Expr: `(?:reject|challeng(?:e|ing)|contest(?:ing|ed)?|invalidat(?:e|ing|ed)?)\s+(?:election|electoral)\s+results`},
	{Label: "refuse to certify", Expr: `(?:refus(?:e|ing|al)|declin(?:e|ing)|reject(?:ing|ed)?)\s+to\s+certify`},
	{Label: "expand executive powers", Expr: `expand(?:ing|ed)?\s+(?:presidential|executive)\s+powers`},
	{Label: "emergency powers", Expr: `emergency\s+powers`},
	{Label: "invoke martial law", Expr: `(?:invok(?:e|ing)|implement(?:ing|ed)?)\s+(?:the\s+)?martial\s+law`},
	{Label: "suspend constitution", Expr: `suspend(?:ing|ed)?\s+(?:the\s+)?constitution`},
	{Label: "limit judicial review", Expr: `limit(?:ing|ed|s)?\s+(?:judicial|court)\s+review`},
	{Label: "pack the court", Expr: `pack(?:ing)?\s+(?:the\s+)?(?:court|supreme court)`},
	{Label: "restrict press access", Expr: `restrict(?:ing|s|ed)?\s+(?:press|media|journalist)\s+access`},
	{Label: "censor the press", Expr: `(?:censor(?:ing|ed|ship)?|restrict(?:ing|s|ed)?)\s+(?:the\s+)?(?:press|media|news)`},
	{Label: "seal government records", Expr: `(?:classify|seal|restrict)\s+(?:government|public)\s+(?:documents|records|information)`},
	{Label: "bypass legislative approval", Expr: `(?:bypass(?:ing|ed)?|circumvent(?:ing|ed)?)\s+(?:legislative|congressional)\s+(?:approval|process|oversight)`},
	{Label: "limit congressional oversight", Expr: `limit(?:ing|s|ed)?\s+(?:legislative|congressional)\s+oversight`},
	{Label: "override legislative authority", Expr: `override\s+(?:legislative|congressional)\s+(?:authority|power)`},
}

// DefaultPatterns compiles and returns the built-in pattern library.
func DefaultPatterns() *PatternLibrary {
	lib, err := compile(defaultPatterns)
	if err != nil {
		// Built-in expressions are fixed; a compile failure is a programming error.
		panic(err)
	}
	return lib
}

// LoadPatterns builds the pattern library, replacing the built-in set with
// the YAML file at path when one is configured.
func LoadPatterns(path string) (*PatternLibrary, error) {
	if path == "" {
		return DefaultPatterns(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load pattern library: %w", err)
	}

	var patterns []Pattern
	if err := yaml.Unmarshal(data, &patterns); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("pattern library %s is empty", path)
	}

	return compile(patterns)
}

func compile(patterns []Pattern) (*PatternLibrary, error) {
	compiled := make([]Pattern, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(`(?i)` + p.Expr)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p.Label, err)
		}
		compiled[i] = Pattern{Label: p.Label, Expr: p.Expr, re: re}
	}
	return &PatternLibrary{patterns: compiled}, nil
}
