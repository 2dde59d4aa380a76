package nlp

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/bellagrands/sentinel/internal/model"
)

var (
	urlRe        = regexp.MustCompile(`https?://\S+|www\.\S+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// genericTextFields is the fallback priority order for unknown source types.
var genericTextFields = []string{"text", "content", "body", "description", "summary"}

// ExtractText pulls the main text content out of a document record. Known
// source types have dedicated field priorities; everything else walks the
// generic fields and, as a last resort, concatenates any substantial
// string-valued field the collector attached. Returns "" when the document
// carries no usable text.
func ExtractText(doc model.Document) string {
	switch doc.SourceType {
	case model.SourceFederalRegister:
		var parts []string
		if doc.Title != "" {
			parts = append(parts, doc.Title)
		}
		if doc.Abstract != "" {
			parts = append(parts, doc.Abstract)
		}
		return strings.Join(parts, " ")

	case model.SourceCongress:
		var parts []string
		if doc.Title != "" {
			parts = append(parts, doc.Title)
		}
		if doc.LatestAction != "" {
			parts = append(parts, doc.LatestAction)
		}
		if doc.SearchTerm != "" {
			parts = append(parts, "This document matched the search term: "+doc.SearchTerm)
		}
		return strings.Join(parts, " ")
	}

	for _, field := range genericTextFields {
		if v := genericField(doc, field); v != "" {
			return v
		}
	}

	// Last resort: concatenate every substantial string field
	var parts []string
	if len(doc.Title) > 20 {
		parts = append(parts, doc.Title)
	}
	for _, field := range []string{doc.Abstract, doc.LatestAction} {
		if len(field) > 20 {
			parts = append(parts, field)
		}
	}
	for _, v := range doc.Extra {
		if len(v) > 20 {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func genericField(doc model.Document, name string) string {
	switch name {
	case "text":
		return doc.Text
	case "content":
		return doc.Content
	case "body":
		return doc.Body
	case "description":
		return doc.Description
	case "summary":
		return doc.Summary
	}
	return ""
}

// Clean prepares cased text for sentence-level stages: HTML bodies are
// reduced to visible text, URLs removed, whitespace collapsed. Case is
// preserved for entity and relationship detection.
func Clean(text string) string {
	if looksLikeHTML(text) {
		text = stripHTML(text)
	}
	text = urlRe.ReplaceAllString(text, "")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// Normalize lowercases cleaned text for keyword and pattern matching.
func Normalize(text string) string {
	return strings.ToLower(Clean(text))
}

// Truncate caps text at max characters to bound latency and memory on
// very large documents.
func Truncate(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}

func looksLikeHTML(text string) bool {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "<") {
		return false
	}
	lower := strings.ToLower(trimmed)
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<body") ||
		strings.Contains(lower, "<p>") || strings.Contains(lower, "<div")
}

// stripHTML extracts visible text nodes, skipping script/style content.
func stripHTML(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return content
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return buf.String()
}
