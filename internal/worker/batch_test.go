package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bellagrands/sentinel/internal/model"
)

// fakeAnalyzer returns a minimal analysis per document and can be told to
// fail or panic on specific document IDs.
type fakeAnalyzer struct {
	hasClassifier bool
	initialScore  float64
	failID        string
	panicID       string

	analyzed  []string
	augmented map[string]bool
}

func (a *fakeAnalyzer) InitialScore(ctx context.Context, doc model.Document) float64 {
	return a.initialScore
}

func (a *fakeAnalyzer) HasClassifier() bool { return a.hasClassifier }

func (a *fakeAnalyzer) Analyze(ctx context.Context, doc model.Document, augment bool) (*model.Analysis, error) {
	if doc.ID == a.panicID {
		panic("analyzer exploded")
	}
	if doc.ID == a.failID {
		return nil, errors.New("analysis failed")
	}
	a.analyzed = append(a.analyzed, doc.ID)
	if a.augmented == nil {
		a.augmented = make(map[string]bool)
	}
	a.augmented[doc.ID] = augment
	return &model.Analysis{Document: doc, Analyzed: true}, nil
}

func makeDocs(n int) []model.Document {
	docs := make([]model.Document, n)
	for i := range docs {
		docs[i] = model.Document{ID: fmt.Sprintf("doc-%02d", i), Title: fmt.Sprintf("Document %d", i)}
	}
	return docs
}

func testConfig(batchSize int) model.PipelineConfig {
	return model.PipelineConfig{BatchSize: batchSize, AugmentThreshold: 0.3}
}

func TestOrchestrator_BatchesAndOrder(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	o := NewOrchestrator(analyzer, testConfig(10), nil, nil)

	reclaims := 0
	o.SetReclaim(func() { reclaims++ })

	docs := makeDocs(25)
	results, err := o.Process(context.Background(), docs)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(results) != 25 {
		t.Fatalf("Expected 25 results, got %d", len(results))
	}
	for i, r := range results {
		if r.ID != docs[i].ID {
			t.Fatalf("Expected input order preserved, got %s at %d", r.ID, i)
		}
	}

	// 3 batches, reclamation only between them
	if reclaims != 2 {
		t.Errorf("Expected 2 reclamations for 25 docs in batches of 10, got %d", reclaims)
	}
}

func TestOrchestrator_ErrorIsolation(t *testing.T) {
	analyzer := &fakeAnalyzer{failID: "doc-01"}
	collector := NewErrorCollector()
	o := NewOrchestrator(analyzer, testConfig(10), collector, nil)
	o.SetReclaim(func() {})

	results, err := o.Process(context.Background(), makeDocs(3))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("Expected passthrough to preserve result count, got %d", len(results))
	}
	if results[1].Analyzed {
		t.Error("Expected failed document to pass through unanalyzed")
	}
	if results[1].ID != "doc-01" {
		t.Errorf("Expected failed slot to hold the original document, got %s", results[1].ID)
	}

	errs := collector.Errors()
	if len(errs) != 1 {
		t.Fatalf("Expected 1 recorded error, got %d", len(errs))
	}
	if errs[0].DocumentID != "doc-01" || errs[0].Stage != "analyze" {
		t.Errorf("Expected doc-01/analyze, got %+v", errs[0])
	}
	if errs[0].Timestamp.IsZero() {
		t.Error("Expected error timestamp")
	}
}

func TestOrchestrator_PanicRecovery(t *testing.T) {
	analyzer := &fakeAnalyzer{panicID: "doc-02"}
	collector := NewErrorCollector()
	o := NewOrchestrator(analyzer, testConfig(10), collector, nil)
	o.SetReclaim(func() {})

	results, err := o.Process(context.Background(), makeDocs(4))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("Expected 4 results despite panic, got %d", len(results))
	}
	if results[2].Analyzed {
		t.Error("Expected panicking document to pass through unanalyzed")
	}

	errs := collector.Errors()
	if len(errs) != 1 {
		t.Fatalf("Expected 1 recorded error, got %d", len(errs))
	}
	if errs[0].Stack == "" {
		t.Error("Expected stack trace for panic")
	}
}

func TestOrchestrator_AugmentationPrecheck(t *testing.T) {
	// below threshold: no augmentation
	analyzer := &fakeAnalyzer{hasClassifier: true, initialScore: 0.1}
	o := NewOrchestrator(analyzer, testConfig(10), nil, nil)
	o.SetReclaim(func() {})

	if _, err := o.Process(context.Background(), makeDocs(1)); err != nil {
		t.Fatal(err)
	}
	if analyzer.augmented["doc-00"] {
		t.Error("Expected augmentation skipped below threshold")
	}

	// above threshold: augmented
	analyzer = &fakeAnalyzer{hasClassifier: true, initialScore: 0.5}
	o = NewOrchestrator(analyzer, testConfig(10), nil, nil)
	o.SetReclaim(func() {})

	if _, err := o.Process(context.Background(), makeDocs(1)); err != nil {
		t.Fatal(err)
	}
	if !analyzer.augmented["doc-00"] {
		t.Error("Expected augmentation above threshold")
	}

	// no classifier: never augmented, no precheck needed
	analyzer = &fakeAnalyzer{hasClassifier: false, initialScore: 0.9}
	o = NewOrchestrator(analyzer, testConfig(10), nil, nil)
	o.SetReclaim(func() {})

	if _, err := o.Process(context.Background(), makeDocs(1)); err != nil {
		t.Fatal(err)
	}
	if analyzer.augmented["doc-00"] {
		t.Error("Expected no augmentation without a classifier")
	}
}

func TestOrchestrator_CancellationPreservesCompletedBatches(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	o := NewOrchestrator(analyzer, testConfig(5), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	o.SetReclaim(cancel) // cancel after the first batch completes

	results, err := o.Process(ctx, makeDocs(12))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if len(results) != 5 {
		t.Errorf("Expected the completed first batch to be returned, got %d results", len(results))
	}
}
