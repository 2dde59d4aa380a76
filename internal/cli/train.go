package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bellagrands/sentinel/internal/classify"
	"github.com/bellagrands/sentinel/internal/nlp"
	"github.com/spf13/cobra"
)

var (
	alertDir     string
	artifactPath string
	trainTimeout time.Duration
)

// trainCmd represents the train command
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the classifier from historical alerts",
	Long: `Train harvests labeled examples from alert records produced by earlier
runs and builds a centroid artifact for the embedding classifier. Only
categories the rules engine scored above 0.6 become training labels.

The resulting artifact is loaded by 'sentinel analyze --classifier openai'
via classifier.artifact_path.

Example:
  sentinel train --alerts ./alerts --artifact ~/.sentinel/classifier.json`,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().StringVar(&alertDir, "alerts", "./alerts", "directory with alert JSON records")
	trainCmd.Flags().StringVar(&artifactPath, "artifact", "", "output path for the trained artifact")
	trainCmd.Flags().DurationVar(&trainTimeout, "timeout", 15*time.Minute, "total timeout for training")

	_ = trainCmd.MarkFlagRequired("artifact")
}

func runTrain(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), trainTimeout)
	defer cancel()

	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Training needs real embeddings, so the remote engine is mandatory
	cfg.Classifier.Provider = "openai"
	if cfg.Classifier.APIKey == "" {
		cfg.Classifier.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Classifier.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	examples, err := classify.PrepareTrainingData(alertDir, logger)
	if err != nil {
		return fmt.Errorf("prepare training data: %w", err)
	}
	if len(examples) == 0 {
		return fmt.Errorf("no usable training examples under %s", alertDir)
	}

	engine, err := nlp.NewEngine(cfg.Classifier, nil, logger)
	if err != nil {
		return fmt.Errorf("build embedding engine: %w", err)
	}

	artifact, err := classify.Train(ctx, engine, examples, logger)
	if err != nil {
		return fmt.Errorf("train classifier: %w", err)
	}

	if err := artifact.Save(artifactPath); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Trained %d centroids from %d examples\n", len(artifact.Centroids), artifact.Examples)
	fmt.Fprintf(os.Stderr, "✓ Saved artifact: %s\n", artifactPath)
	return nil
}
