package nlp

import "strings"

// abbreviations that end with a period but do not terminate a sentence.
// Legal documents are dense with these; splitting inside "5 U.S.C. § 552"
// or "89 Fed. Reg. 1234" would shred citation context.
var abbreviations = map[string]bool{
	"u.s": true, "u.s.c": true, "usc": true, "fed": true, "reg": true,
	"h.r": true, "s": true, "res": true, "con": true, "j": true,
	"no": true, "sec": true, "v": true, "vs": true, "etc": true,
	"mr": true, "mrs": true, "ms": true, "dr": true, "jr": true, "sr": true,
	"gov": true, "sen": true, "rep": true, "inc": true, "st": true,
}

// Sentences splits text into sentences on ./!/? followed by whitespace,
// guarding against common legal abbreviations. Case is preserved.
func Sentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteString(string(r))

		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && runes[i+1] != ' ' && runes[i+1] != '\t' {
			continue
		}
		if r == '.' && endsWithAbbreviation(current.String()) {
			continue
		}

		if sentence := strings.TrimSpace(current.String()); sentence != "" {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	if sentence := strings.TrimSpace(current.String()); sentence != "" {
		sentences = append(sentences, sentence)
	}

	return sentences
}

// endsWithAbbreviation checks whether the text ends in a known
// non-terminating abbreviation such as "U.S.C." or "Fed."
func endsWithAbbreviation(text string) bool {
	trimmed := strings.TrimSuffix(text, ".")
	idx := strings.LastIndexAny(trimmed, " \t")
	word := trimmed
	if idx >= 0 {
		word = trimmed[idx+1:]
	}
	return abbreviations[strings.ToLower(word)]
}
