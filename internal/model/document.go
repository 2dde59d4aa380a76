package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Known source types emitted by the collection subsystem
const (
	SourceFederalRegister = "federal_register"
	SourceCongress        = "congress"
)

// Document is one input record handed to the analysis pipeline.
// Known source types carry dedicated fields; anything else the collector
// attached survives in Extra so the generic text fallback can use it.
type Document struct {
	ID         string `json:"document_id,omitempty"`
	Title      string `json:"title,omitempty"`
	SourceType string `json:"source_type,omitempty"`
	SourceFile string `json:"source_file,omitempty"`

	// Generic text-bearing fields, checked in priority order
	Text        string `json:"text,omitempty"`
	Content     string `json:"content,omitempty"`
	Body        string `json:"body,omitempty"`
	Description string `json:"description,omitempty"`
	Summary     string `json:"summary,omitempty"`

	// Federal Register fields
	Abstract string `json:"abstract,omitempty"`

	// Congress fields
	LatestAction string `json:"latest_action,omitempty"`
	SearchTerm   string `json:"search_term,omitempty"`

	// Prior metadata from the collector
	PublishedAt string `json:"published_at,omitempty"`
	CaseNumber  string `json:"case_number,omitempty"`
	BillNumber  string `json:"bill_number,omitempty"`

	// Extra holds string fields we do not model explicitly
	Extra map[string]string `json:"-"`
}

// knownDocumentFields are the JSON keys mapped to struct fields above.
var knownDocumentFields = map[string]bool{
	"document_id": true, "title": true, "source_type": true, "source_file": true,
	"text": true, "content": true, "body": true, "description": true, "summary": true,
	"abstract": true, "latest_action": true, "search_term": true,
	"published_at": true, "case_number": true, "bill_number": true,
}

// UnmarshalJSON decodes known fields into the struct and keeps every other
// string-valued field in Extra. Collectors attach unpredictable metadata and
// the last-resort text fallback needs to see it.
func (d *Document) UnmarshalJSON(data []byte) error {
	type alias Document
	var known alias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = Document(known)
	for key, val := range raw {
		if knownDocumentFields[key] {
			continue
		}
		var s string
		if err := json.Unmarshal(val, &s); err != nil {
			continue // non-string field, not text-bearing
		}
		if d.Extra == nil {
			d.Extra = make(map[string]string)
		}
		d.Extra[key] = s
	}
	return nil
}

// MarshalJSON writes known fields plus any Extra fields at the top level.
func (d Document) MarshalJSON() ([]byte, error) {
	type alias Document
	data, err := json.Marshal(alias(d))
	if err != nil {
		return nil, err
	}
	if len(d.Extra) == 0 {
		return data, nil
	}

	var merged map[string]interface{}
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for key, val := range d.Extra {
		if _, exists := merged[key]; !exists {
			merged[key] = val
		}
	}
	return json.Marshal(merged)
}

// EnsureID assigns a deterministic identifier if the collector did not.
func (d *Document) EnsureID() {
	if d.ID != "" {
		return
	}
	sum := sha256.Sum256([]byte(d.Title + "|" + d.SourceType + "|" + d.SourceFile))
	d.ID = hex.EncodeToString(sum[:])[:16]
}

// Validate checks the record at the ingestion boundary. A document with no
// text anywhere is still valid: the pipeline passes it through unanalyzed.
func (d *Document) Validate() error {
	switch d.SourceType {
	case "", SourceFederalRegister, SourceCongress:
	default:
		// Unknown source tags fall back to generic field resolution,
		// but a tag that is pure whitespace is a collector bug.
		if strings.TrimSpace(d.SourceType) == "" {
			return fmt.Errorf("document %s: blank source_type", d.ID)
		}
	}
	return nil
}
