package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bellagrands/sentinel/internal/nlp"
)

// Example is one labeled training record harvested from historical alerts.
type Example struct {
	Text   string   `json:"text"`
	Labels []string `json:"labels"`
}

// Artifact is the trained model: one centroid vector per label. It is the
// unit of persistence for the offline training path.
type Artifact struct {
	Model     string               `json:"model"`
	TrainedAt time.Time            `json:"trained_at"`
	Examples  int                  `json:"examples"`
	Centroids map[string][]float64 `json:"centroids"`
}

// Save writes the artifact as JSON.
func (a *Artifact) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// LoadArtifact reads a trained artifact from disk.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", path, err)
	}
	return &artifact, nil
}

// alertRecord is the subset of an alert JSON file training cares about.
type alertRecord struct {
	Summary          string `json:"summary"`
	ThreatCategories []struct {
		Category string  `json:"category"`
		Score    float64 `json:"score"`
	} `json:"threat_categories"`
}

// minAlertCategoryScore filters out low-confidence labels when harvesting
// training data from alert records.
const minAlertCategoryScore = 0.6

// PrepareTrainingData harvests labeled examples from the alert JSON files
// under alertDir. Only categories the rules engine scored above 0.6 become
// labels. Unreadable files are logged and skipped.
func PrepareTrainingData(alertDir string, logger *slog.Logger) ([]Example, error) {
	if logger == nil {
		logger = slog.Default()
	}

	paths, err := filepath.Glob(filepath.Join(alertDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", alertDir, err)
	}

	var examples []Example
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("failed to read alert file", "path", path, "error", err)
			continue
		}

		var alert alertRecord
		if err := json.Unmarshal(data, &alert); err != nil {
			logger.Error("failed to parse alert file", "path", path, "error", err)
			continue
		}
		if alert.Summary == "" {
			continue
		}

		var labels []string
		for _, cat := range alert.ThreatCategories {
			if cat.Score > minAlertCategoryScore {
				labels = append(labels, NormalizeLabel(cat.Category))
			}
		}
		if len(labels) == 0 {
			continue
		}

		examples = append(examples, Example{Text: alert.Summary, Labels: labels})
	}

	logger.Info("prepared training examples", "count", len(examples), "dir", alertDir)
	return examples, nil
}

// Train embeds every example and averages the vectors per label into
// centroids. This is a batch, offline operation: it is never on the
// per-document request path.
func Train(ctx context.Context, engine nlp.Engine, examples []Example, logger *slog.Logger) (*Artifact, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("train: no examples")
	}

	sums := make(map[string][]float64)
	counts := make(map[string]int)

	embedded := 0
	for _, example := range examples {
		vec, err := engine.Embed(ctx, example.Text)
		if err != nil {
			logger.Error("failed to embed training example", "error", err)
			continue
		}
		embedded++

		for _, label := range example.Labels {
			if sums[label] == nil {
				sums[label] = make([]float64, len(vec))
			}
			if len(sums[label]) != len(vec) {
				continue // vector size mismatch, different model mid-run
			}
			for i, v := range vec {
				sums[label][i] += v
			}
			counts[label]++
		}
	}

	if embedded == 0 {
		return nil, fmt.Errorf("train: all %d examples failed to embed", len(examples))
	}

	centroids := make(map[string][]float64, len(sums))
	for label, sum := range sums {
		centroid := make([]float64, len(sum))
		for i, v := range sum {
			centroid[i] = v / float64(counts[label])
		}
		centroids[label] = centroid
	}

	artifact := &Artifact{
		Model:     engine.Name(),
		TrainedAt: time.Now().UTC(),
		Examples:  embedded,
		Centroids: centroids,
	}
	logger.Info("trained classifier centroids", "labels", len(centroids), "examples", embedded)
	return artifact, nil
}
