package nlp

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/bellagrands/sentinel/internal/model"
	"github.com/bellagrands/sentinel/internal/taxonomy"
)

var (
	uscCitationRe = regexp.MustCompile(`\b(\d+)\s+(U\.S\.C\.|U\.S\.C|USC)\s*(?:(§|[Ss]ec\.|[Ss]ection)\s*)?(\d+[a-z]*)?`)
	billRe        = regexp.MustCompile(`\b(H\.R\.|HR|S\.|H\. Con\. Res\.|S\. Con\. Res\.|H\. Res\.|S\. Res\.|H\. J\. Res\.|S\. J\. Res\.)\s*(\d+)\b`)
	fedRegRe      = regexp.MustCompile(`\b(\d+)\s*Fed\.\s*Reg\.\s*(\d+)\b`)
)

// ner labels the extractor accepts from the engine
var acceptedNERLabels = map[string]bool{
	model.EntityPerson: true, model.EntityOrg: true, model.EntityLocation: true,
	model.EntityLaw: true, model.EntityDate: true, model.EntityNORP: true,
	model.EntityEvent: true,
}

// Extractor combines model-based NER, phrase-list matching for government
// agencies and legal terms, and citation grammar matching. Each sub-matcher
// is isolated: a failure in one is reported and the others still
// contribute.
type Extractor struct {
	engine Engine
	tax    *taxonomy.Taxonomy
	logger *slog.Logger
}

// NewExtractor creates an entity extractor over the given engine and
// vocabulary.
func NewExtractor(engine Engine, tax *taxonomy.Taxonomy, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{engine: engine, tax: tax, logger: logger}
}

// ExtractResult carries the entity bag plus a per-matcher report so
// downstream scoring can tell complete results from degraded ones.
type ExtractResult struct {
	Entities model.EntityBag
	Reports  []model.MatcherReport
}

// Degraded reports whether any sub-matcher failed.
func (r ExtractResult) Degraded() bool {
	for _, rep := range r.Reports {
		if rep.Status == model.MatcherFailed {
			return true
		}
	}
	return false
}

// Extract runs all sub-matchers over the text. Entity and phrase matching
// use the cased text (capitalization carries signal); citation matching
// also needs the cased text for "U.S.C." and "Fed. Reg." forms.
// Deduplication is case-insensitive per entity type.
func (e *Extractor) Extract(cased string) ExtractResult {
	result := ExtractResult{Entities: make(model.EntityBag)}

	run := func(name string, matcher func(string, model.EntityBag) error) {
		report := model.MatcherReport{Name: name, Status: model.MatcherOK}
		if err := matcher(cased, result.Entities); err != nil {
			report.Status = model.MatcherFailed
			report.Error = err.Error()
			e.logger.Warn("entity matcher failed", "matcher", name, "error", err)
		}
		result.Reports = append(result.Reports, report)
	}

	run("ner", e.matchNER)
	run("phrases", e.matchPhrases)
	run("citations", e.matchCitations)

	return result
}

func (e *Extractor) matchNER(text string, bag model.EntityBag) error {
	entities, err := e.engine.Entities(text)
	if err != nil {
		return fmt.Errorf("engine entities: %w", err)
	}
	for _, ent := range entities {
		if acceptedNERLabels[ent.Label] {
			bag.Add(ent.Label, ent.Text)
		}
	}
	return nil
}

// span is a candidate phrase match in the text
type span struct {
	start, end int
	label      string
	text       string
}

// matchPhrases finds agency and legal-term phrases. Overlapping candidates
// are resolved by preferring longer spans, then earlier ones, mirroring how
// span filtering works in phrase-matching NLP toolkits.
func (e *Extractor) matchPhrases(text string, bag model.EntityBag) error {
	lower := strings.ToLower(text)

	var spans []span
	collect := func(phrases []string, label string) {
		for _, phrase := range phrases {
			needle := strings.ToLower(phrase)
			offset := 0
			for {
				idx := strings.Index(lower[offset:], needle)
				if idx < 0 {
					break
				}
				start := offset + idx
				end := start + len(needle)
				if wholeWords(lower, start, end) {
					spans = append(spans, span{start: start, end: end, label: label, text: text[start:end]})
				}
				offset = end
			}
		}
	}

	collect(e.tax.Agencies, model.EntityGovAgency)
	collect(e.tax.LegalTerms, model.EntityLawTerm)

	for _, s := range filterSpans(spans) {
		bag.Add(s.label, s.text)
	}
	return nil
}

// wholeWords checks the match is not embedded in a larger word, so "ICE"
// does not fire inside "service".
func wholeWords(text string, start, end int) bool {
	if start > 0 && isWordChar(text[start-1]) {
		return false
	}
	if end < len(text) && isWordChar(text[end]) {
		return false
	}
	return true
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// filterSpans keeps the longest non-overlapping spans, breaking length
// ties by earlier start.
func filterSpans(spans []span) []span {
	sort.Slice(spans, func(i, j int) bool {
		li, lj := spans[i].end-spans[i].start, spans[j].end-spans[j].start
		if li != lj {
			return li > lj
		}
		return spans[i].start < spans[j].start
	})

	var kept []span
	for _, candidate := range spans {
		overlaps := false
		for _, k := range kept {
			if candidate.start < k.end && k.start < candidate.end {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, candidate)
		}
	}
	return kept
}

// matchCitations applies the fixed citation grammars: U.S. Code sections,
// bill identifiers, and Federal Register cites.
func (e *Extractor) matchCitations(text string, bag model.EntityBag) error {
	for _, m := range uscCitationRe.FindAllStringSubmatch(text, -1) {
		citation := m[1] + " U.S.C."
		if m[4] != "" {
			citation += " § " + m[4]
		}
		bag.Add(model.EntityUSCCitation, citation)
	}

	for _, m := range billRe.FindAllStringSubmatch(text, -1) {
		bag.Add(model.EntityBill, strings.TrimSpace(m[1]+" "+m[2]))
	}

	for _, m := range fedRegRe.FindAllStringSubmatch(text, -1) {
		bag.Add(model.EntityFRCitation, m[1]+" Fed. Reg. "+m[2])
	}

	return nil
}
