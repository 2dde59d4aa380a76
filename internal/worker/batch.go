// Package worker drives the analysis pipeline over document sets in
// fixed-size batches, reclaiming memory between batches and isolating
// per-document failures so one bad record never sinks its siblings.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/bellagrands/sentinel/internal/model"
)

// Analyzer is the per-document analysis contract the orchestrator drives.
type Analyzer interface {
	// InitialScore returns the cheap-path threat score used for the
	// augmentation pre-check
	InitialScore(ctx context.Context, doc model.Document) float64

	// Analyze runs the full pipeline, with or without augmentation
	Analyze(ctx context.Context, doc model.Document, augment bool) (*model.Analysis, error)

	// HasClassifier reports whether augmentation is available at all
	HasClassifier() bool
}

// Orchestrator processes documents batch by batch, sequentially within a
// batch. Cancellation is honored at batch granularity: results for
// completed batches are always preserved.
type Orchestrator struct {
	analyzer         Analyzer
	batchSize        int
	augmentThreshold float64
	sink             ErrorSink
	logger           *slog.Logger

	// reclaim triggers memory reclamation between batches; injectable so
	// tests can count invocations
	reclaim func()
}

// NewOrchestrator creates an orchestrator. A nil sink gets an in-memory
// collector.
func NewOrchestrator(analyzer Analyzer, cfg model.PipelineConfig, sink ErrorSink, logger *slog.Logger) *Orchestrator {
	batchSize := cfg.BatchSize
	if batchSize < 1 {
		batchSize = 10
	}
	if sink == nil {
		sink = NewErrorCollector()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		analyzer:         analyzer,
		batchSize:        batchSize,
		augmentThreshold: cfg.AugmentThreshold,
		sink:             sink,
		logger:           logger,
		reclaim:          reclaimMemory,
	}
}

// SetReclaim overrides the between-batch memory reclamation hook.
func (o *Orchestrator) SetReclaim(fn func()) {
	if fn != nil {
		o.reclaim = fn
	}
}

// Process runs every document through the analyzer and returns one
// analysis per input document, in input order. Per-document failures are
// recorded to the sink and yield a passthrough record. A canceled context
// stops before the next batch and returns what completed, with the
// context's error.
func (o *Orchestrator) Process(ctx context.Context, docs []model.Document) ([]*model.Analysis, error) {
	total := len(docs)
	batches := (total + o.batchSize - 1) / o.batchSize
	o.logger.Info("processing documents", "count", total, "batch_size", o.batchSize, "batches", batches)

	results := make([]*model.Analysis, 0, total)
	for start := 0; start < total; start += o.batchSize {
		if err := ctx.Err(); err != nil {
			o.logger.Warn("processing canceled", "completed", len(results), "remaining", total-len(results))
			return results, err
		}

		end := start + o.batchSize
		if end > total {
			end = total
		}
		batchNum := start/o.batchSize + 1

		o.logMemory(fmt.Sprintf("batch %d/%d start", batchNum, batches))
		for _, doc := range docs[start:end] {
			results = append(results, o.processOne(ctx, doc))
		}
		o.logMemory(fmt.Sprintf("batch %d/%d done", batchNum, batches))

		if end < total {
			o.reclaim()
			o.logger.Debug("memory reclaimed between batches", "batch", batchNum)
		}
	}

	o.logger.Info("processing complete", "count", len(results))
	return results, nil
}

// processOne analyzes a single document, converting errors and panics into
// sink records plus a passthrough analysis so batch shape is preserved.
func (o *Orchestrator) processOne(ctx context.Context, doc model.Document) (result *model.Analysis) {
	doc.EnsureID()

	defer func() {
		if r := recover(); r != nil {
			o.record(doc.ID, "pipeline", fmt.Sprintf("panic: %v", r), string(debug.Stack()))
			result = &model.Analysis{Document: doc}
		}
	}()

	augment := false
	if o.analyzer.HasClassifier() {
		initial := o.analyzer.InitialScore(ctx, doc)
		augment = initial >= o.augmentThreshold
		if !augment {
			o.logger.Debug("skipping augmentation", "document_id", doc.ID, "initial_score", initial)
		}
	}

	analysis, err := o.analyzer.Analyze(ctx, doc, augment)
	if err != nil {
		o.record(doc.ID, "analyze", err.Error(), "")
		return &model.Analysis{Document: doc}
	}
	return analysis
}

func (o *Orchestrator) record(docID, stage, message, stack string) {
	o.logger.Error("document processing failed", "document_id", docID, "stage", stage, "error", message)
	o.sink.Record(ProcessingError{
		DocumentID: docID,
		Stage:      stage,
		Message:    message,
		Stack:      stack,
		Timestamp:  time.Now().UTC(),
	})
}

// logMemory reports resident memory metrics around batch boundaries.
func (o *Orchestrator) logMemory(label string) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	o.logger.Info("memory",
		"at", label,
		"heap_alloc_mb", m.HeapAlloc/(1024*1024),
		"sys_mb", m.Sys/(1024*1024),
		"num_gc", m.NumGC,
	)
}

// reclaimMemory forces a collection and returns freed pages to the OS.
func reclaimMemory() {
	runtime.GC()
	debug.FreeOSMemory()
}
