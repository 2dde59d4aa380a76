// Package pipeline wires the analysis stages into the per-document flow:
// normalize, extract entities, score categories, detect patterns and
// relationships, aggregate, summarize, and optionally augment with the
// configured classifier.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bellagrands/sentinel/internal/cache"
	"github.com/bellagrands/sentinel/internal/classify"
	"github.com/bellagrands/sentinel/internal/model"
	"github.com/bellagrands/sentinel/internal/nlp"
	"github.com/bellagrands/sentinel/internal/score"
	"github.com/bellagrands/sentinel/internal/summary"
	"github.com/bellagrands/sentinel/internal/taxonomy"
)

// Pipeline analyzes one document at a time. All shared state (taxonomy,
// pattern library, prototypes) is read-only after construction, so one
// Pipeline is safe for concurrent use.
type Pipeline struct {
	cfg *model.Config

	tax *taxonomy.Taxonomy
	lib *taxonomy.PatternLibrary

	engine        nlp.Engine
	extractor     *nlp.Extractor
	categories    *score.CategoryScorer
	patterns      *score.PatternDetector
	relationships *score.RelationshipDetector
	aggregator    score.Aggregator
	summarizer    *summary.Summarizer
	classifier    classify.Classifier // nil when augmentation is disabled

	logger *slog.Logger
}

// New builds a pipeline from configuration. Classifier construction
// failure is degraded to "no augmentation", not an error; everything else
// is fatal because the pipeline cannot score without it.
func New(ctx context.Context, cfg *model.Config, logger *slog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	tax, err := taxonomy.Load(cfg.Taxonomy)
	if err != nil {
		return nil, err
	}
	lib, err := taxonomy.LoadPatterns(cfg.Taxonomy.PatternsPath)
	if err != nil {
		return nil, err
	}

	var c cache.Cache
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			diskTTL := cfg.Cache.DiskTTL
			if diskTTL <= 0 {
				diskTTL = cfg.Cache.TTL
			}
			c = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, diskTTL)
		} else {
			c = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
		}
	}

	engine, err := nlp.NewEngine(cfg.Classifier, c, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("nlp engine ready", "engine", engine.Name())

	categories, err := score.NewCategoryScorer(ctx, engine, tax, logger)
	if err != nil {
		return nil, err
	}

	classifier, err := classify.New(ctx, cfg.Classifier, engine, tax, logger)
	if err != nil {
		logger.Error("classifier unavailable, continuing without augmentation", "error", err)
		classifier = nil
	}

	return &Pipeline{
		cfg:           cfg,
		tax:           tax,
		lib:           lib,
		engine:        engine,
		extractor:     nlp.NewExtractor(engine, tax, logger),
		categories:    categories,
		patterns:      score.NewPatternDetector(lib),
		relationships: score.NewRelationshipDetector(tax),
		aggregator:    score.NewAggregator(cfg.Pipeline.Weights),
		summarizer:    summary.New(tax, lib, cfg.Pipeline.SummaryMaxLength),
		classifier:    classifier,
		logger:        logger,
	}, nil
}

// HasClassifier reports whether the augmentation layer is available.
func (p *Pipeline) HasClassifier() bool {
	return p.classifier != nil
}

// prepare resolves and cleans the document text. The cased form feeds
// entity, relationship, and summary stages; the lowered form feeds keyword
// and pattern matching.
func (p *Pipeline) prepare(doc model.Document) (cased, normalized string) {
	raw := nlp.ExtractText(doc)
	cased = nlp.Truncate(nlp.Clean(raw), p.cfg.Pipeline.MaxTextLength)
	return cased, strings.ToLower(cased)
}

// InitialScore runs the cheap path only: keyword category scores plus the
// pattern library, no embeddings, no classifier, no relationship pass. The
// orchestrator uses it to decide whether augmentation is worth the cost.
func (p *Pipeline) InitialScore(ctx context.Context, doc model.Document) float64 {
	_, normalized := p.prepare(doc)
	if normalized == "" {
		return 0
	}

	categoryThreat := p.aggregator.CategoryThreat(p.categories.KeywordScores(normalized))
	patternScore := score.AntiDemocraticScore(p.patterns.Detect(normalized))
	return p.aggregator.Overall(categoryThreat, patternScore, 0)
}

// Analyze runs the full pipeline over one document. A document with no
// resolvable text is passed through unanalyzed with a warning. The
// returned Analysis is owned by the caller.
func (p *Pipeline) Analyze(ctx context.Context, doc model.Document, augment bool) (*model.Analysis, error) {
	doc.EnsureID()
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	cased, normalized := p.prepare(doc)
	if normalized == "" {
		p.logger.Warn("no text found in document", "document_id", doc.ID, "source", doc.SourceFile)
		return &model.Analysis{Document: doc}, nil
	}

	extracted := p.extractor.Extract(cased)
	if extracted.Degraded() {
		p.logger.Warn("entity extraction degraded", "document_id", doc.ID)
	}

	categoryScores := p.categories.Score(ctx, normalized)

	var classified model.CategoryScores
	if augment && p.classifier != nil {
		results, err := classify.ClassifyChunks(ctx, p.classifier, normalized, p.cfg.Classifier)
		if err != nil {
			// augmentation failure is degraded mode, never fatal
			p.logger.Error("classifier augmentation failed", "document_id", doc.ID, "error", err)
		} else if len(results) > 0 {
			classified = make(model.CategoryScores, len(results))
			for label, confidence := range results {
				classified[classify.NormalizeLabel(label)] = confidence
			}
			classify.MergeScores(categoryScores, results)
		}
	}

	patternMatches := p.patterns.Detect(normalized)
	antiDemocratic := score.AntiDemocraticScore(patternMatches)

	relationships := p.relationships.Detect(cased, extracted.Entities)
	relationshipScore := score.RelationshipScore(relationships)

	categoryThreat := p.aggregator.CategoryThreat(categoryScores)
	overall := p.aggregator.Overall(categoryThreat, antiDemocratic, relationshipScore)

	level := model.LevelBasic
	if classified != nil {
		level = model.LevelFull
	}

	return &model.Analysis{
		Document:      doc,
		Analyzed:      true,
		ProcessedText: normalized,

		Entities: extracted.Entities,
		Matchers: extracted.Reports,

		ThreatCategories:          categoryScores,
		TransformerClassification: classified,

		AntiDemocraticMatches: patternMatches,
		AntiDemocraticScore:   antiDemocratic,

		EntityRelationships:     relationships,
		RelationshipThreatScore: relationshipScore,

		ThreatScore: overall,

		AnalysisSummary: p.summarizer.Summarize(cased, extracted.Entities),
		AnalysisLevel:   level,
		AnalyzedAt:      time.Now().UTC(),
	}, nil
}
