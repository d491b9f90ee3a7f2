package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"qr-phishing-detector/backend/internal/features"
)

// artifactSchemaVersion is the layout the engine understands. Bump together
// with the training pipeline.
const artifactSchemaVersion = 1

// ErrSchemaMismatch marks an artifact whose feature layout differs from the
// extractor's. Feature order is the binding contract with the training
// pipeline; accepting a mismatched artifact would corrupt every prediction
// silently, so the load fails instead.
var ErrSchemaMismatch = errors.New("model artifact feature schema mismatch")

// artifact is the serialized logistic-regression classifier.
type artifact struct {
	SchemaVersion int       `json:"schema_version"`
	FeatureNames  []string  `json:"feature_names"`
	Coefficients  []float64 `json:"coefficients"`
	Intercept     float64   `json:"intercept"`
}

// Trained is the trained-model provider. Immutable after load.
type Trained struct {
	coefficients []float64
	intercept    float64
}

// LoadTrained deserializes and validates a model artifact.
func LoadTrained(path string) (*Trained, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("unmarshal model artifact: %w", err)
	}
	if a.SchemaVersion != artifactSchemaVersion {
		return nil, fmt.Errorf("%w: schema version %d, want %d", ErrSchemaMismatch, a.SchemaVersion, artifactSchemaVersion)
	}
	if len(a.FeatureNames) != len(features.FeatureNames) {
		return nil, fmt.Errorf("%w: %d features, want %d", ErrSchemaMismatch, len(a.FeatureNames), len(features.FeatureNames))
	}
	for i, name := range a.FeatureNames {
		if name != features.FeatureNames[i] {
			return nil, fmt.Errorf("%w: feature %d is %q, want %q", ErrSchemaMismatch, i, name, features.FeatureNames[i])
		}
	}
	if len(a.Coefficients) != len(a.FeatureNames) {
		return nil, fmt.Errorf("%w: %d coefficients for %d features", ErrSchemaMismatch, len(a.Coefficients), len(a.FeatureNames))
	}

	return &Trained{
		coefficients: a.Coefficients,
		intercept:    a.Intercept,
	}, nil
}

// Probability evaluates the classifier on the feature vector.
func (t *Trained) Probability(fs features.FeatureSet) float64 {
	score := t.intercept
	for i, value := range fs.Vector() {
		score += t.coefficients[i] * value
	}
	return clampProbability(sigmoid(score))
}

// Source identifies the provider variant.
func (t *Trained) Source() string {
	return "trained"
}
