package classify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bellagrands/sentinel/internal/nlp"
)

// stubEngine embeds every text to a fixed vector, optionally failing on
// texts containing a marker.
type stubEngine struct {
	vec      []float64
	failWord string
}

func (e *stubEngine) Name() string { return "stub" }

func (e *stubEngine) Entities(text string) ([]nlp.Entity, error) { return nil, nil }

func (e *stubEngine) Embed(ctx context.Context, text string) ([]float64, error) {
	if e.failWord != "" && strings.Contains(text, e.failWord) {
		return nil, errors.New("embed refused")
	}
	return e.vec, nil
}

func (e *stubEngine) Similarity(a, b []float64) float64 { return nlp.Cosine(a, b) }

func TestPrepareTrainingData_FiltersLowScores(t *testing.T) {
	dir := t.TempDir()

	alerts := map[string]string{
		"a1.json": `{"summary": "Voting restrictions proposed.", "threat_categories": [
			{"category": "Voting Rights", "score": 0.9},
			{"category": "transparency", "score": 0.4}
		]}`,
		"a2.json": `{"summary": "", "threat_categories": [{"category": "voting_rights", "score": 0.9}]}`,
		"a3.json": `{"summary": "All categories weak.", "threat_categories": [{"category": "x", "score": 0.5}]}`,
	}
	for name, content := range alerts {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	examples, err := PrepareTrainingData(dir, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(examples) != 1 {
		t.Fatalf("Expected 1 usable example, got %d", len(examples))
	}
	if len(examples[0].Labels) != 1 || examples[0].Labels[0] != "voting_rights" {
		t.Errorf("Expected normalized high-score label only, got %v", examples[0].Labels)
	}
}

func TestTrain_AveragesPerLabel(t *testing.T) {
	engine := &stubEngine{vec: []float64{2, 4}}

	examples := []Example{
		{Text: "first", Labels: []string{"voting_rights"}},
		{Text: "second", Labels: []string{"voting_rights", "transparency"}},
	}

	artifact, err := Train(context.Background(), engine, examples, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if artifact.Examples != 2 {
		t.Errorf("Expected 2 embedded examples, got %d", artifact.Examples)
	}
	got := artifact.Centroids["voting_rights"]
	if len(got) != 2 || got[0] != 2 || got[1] != 4 {
		t.Errorf("Expected centroid {2,4}, got %v", got)
	}
	if len(artifact.Centroids["transparency"]) != 2 {
		t.Errorf("Expected transparency centroid, got %v", artifact.Centroids)
	}
}

func TestTrain_SkipsFailedEmbeddings(t *testing.T) {
	engine := &stubEngine{vec: []float64{1, 1}, failWord: "bad"}

	examples := []Example{
		{Text: "good example", Labels: []string{"a"}},
		{Text: "bad example", Labels: []string{"b"}},
	}

	artifact, err := Train(context.Background(), engine, examples, nil)
	if err != nil {
		t.Fatalf("Expected partial training to succeed, got %v", err)
	}
	if artifact.Examples != 1 {
		t.Errorf("Expected 1 embedded example, got %d", artifact.Examples)
	}
	if _, found := artifact.Centroids["b"]; found {
		t.Error("Expected failed example to contribute no centroid")
	}
}

func TestTrain_AllFailedIsError(t *testing.T) {
	engine := &stubEngine{vec: []float64{1}, failWord: "x"}
	if _, err := Train(context.Background(), engine, []Example{{Text: "x", Labels: []string{"a"}}}, nil); err == nil {
		t.Error("Expected error when every example fails to embed")
	}
}

func TestArtifact_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "artifact.json")

	artifact := &Artifact{
		Model:     "stub",
		Examples:  3,
		Centroids: map[string][]float64{"voting_rights": {0.1, 0.2}},
	}
	if err := artifact.Save(path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	loaded, err := LoadArtifact(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if loaded.Model != "stub" || loaded.Examples != 3 {
		t.Errorf("Expected round-tripped metadata, got %+v", loaded)
	}
	if len(loaded.Centroids["voting_rights"]) != 2 {
		t.Errorf("Expected centroid preserved, got %v", loaded.Centroids)
	}
}
