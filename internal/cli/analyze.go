package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bellagrands/sentinel/internal/model"
	"github.com/bellagrands/sentinel/internal/pipeline"
	"github.com/bellagrands/sentinel/internal/worker"
	"github.com/spf13/cobra"
)

var (
	inputDirs      []string
	outputDir      string
	analyzeTimeout time.Duration
	batchSize      int
	classifierName string
	embeddingModel string
	noCache        bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze document feeds and score threats",
	Long: `Analyze loads JSON documents from the input directories, runs each one
through the threat pipeline, and writes one analyzed record per document:
- Entity extraction (agencies, legal terms, citations, named entities)
- Threat category scoring against the built-in taxonomy
- Anti-democratic pattern detection
- Entity relationship inference
- Weighted threat score and extractive summary

Example:
  sentinel analyze --input data/federal_register --input data/congress
  sentinel analyze --input data/federal_register --classifier openai
  sentinel analyze --input data/congress --output-dir ./analyzed --batch-size 25`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringArrayVar(&inputDirs, "input", nil, "input directory with *.json documents (repeatable)")
	analyzeCmd.Flags().StringVar(&outputDir, "output-dir", "./analyzed", "output directory for analyzed records")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 30*time.Minute, "total timeout for the run")
	analyzeCmd.Flags().IntVar(&batchSize, "batch-size", 0, "documents per batch (0 = config default)")
	analyzeCmd.Flags().StringVar(&classifierName, "classifier", "", "classifier provider (keyword, openai; empty = disabled)")
	analyzeCmd.Flags().StringVar(&embeddingModel, "model", "", "embedding model name (overrides config)")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the embedding cache")

	_ = analyzeCmd.MarkFlagRequired("input")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if batchSize > 0 {
		cfg.Pipeline.BatchSize = batchSize
	}
	if classifierName != "" {
		cfg.Classifier.Provider = classifierName
	}
	if embeddingModel != "" {
		cfg.Classifier.Model = embeddingModel
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if cfg.Classifier.Provider == "openai" && cfg.Classifier.APIKey == "" {
		cfg.Classifier.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Classifier.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	docs, err := model.LoadDocuments(inputDirs, logger)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	if len(docs) == 0 {
		fmt.Fprintln(os.Stderr, "No documents found in input directories")
		return nil
	}

	p, err := pipeline.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	collector := worker.NewErrorCollector()
	orchestrator := worker.NewOrchestrator(p, cfg.Pipeline, collector, logger)

	results, err := orchestrator.Process(ctx, docs)
	if err != nil {
		return fmt.Errorf("process documents: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	written := 0
	var highThreat []*model.Analysis
	for _, analysis := range results {
		path := filepath.Join(outputDir, analysis.ID+".json")
		data, err := json.MarshalIndent(analysis, "", "  ")
		if err != nil {
			logger.Error("failed to marshal analysis", "document_id", analysis.ID, "error", err)
			continue
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			logger.Error("failed to write analysis", "path", path, "error", err)
			continue
		}
		written++

		if analysis.Analyzed && analysis.ThreatScore >= cfg.Pipeline.AlertThreshold {
			highThreat = append(highThreat, analysis)
		}
	}

	if errors := collector.Errors(); len(errors) > 0 {
		errPath := filepath.Join(outputDir, "errors.json")
		if data, err := json.MarshalIndent(errors, "", "  "); err == nil {
			if err := os.WriteFile(errPath, data, 0o644); err != nil {
				logger.Error("failed to write error report", "path", errPath, "error", err)
			}
		}
		fmt.Fprintf(os.Stderr, "✗ %d documents failed (see %s)\n", len(errors), filepath.Join(outputDir, "errors.json"))
	}

	fmt.Fprintf(os.Stderr, "✓ Analyzed %d documents, wrote %d records to %s\n", len(results), written, outputDir)

	if len(highThreat) > 0 {
		fmt.Fprintf(os.Stderr, "\nHigh-threat documents (score >= %.2f):\n", cfg.Pipeline.AlertThreshold)
		for _, analysis := range highThreat {
			title := analysis.Title
			if title == "" {
				title = analysis.ID
			}
			fmt.Fprintf(os.Stderr, "  %.3f  %s\n", analysis.ThreatScore, title)
		}
	}

	return nil
}
