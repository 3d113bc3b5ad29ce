package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

const LogisticRegressionType = "logistic_regression"

type LogisticRegression struct {
	FeatureNames []string  `json:"features"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

func (lr *LogisticRegression) Type() string {
	return LogisticRegressionType
}

func (lr *LogisticRegression) Features() []string {
	return append([]string(nil), lr.FeatureNames...)
}

// Predict returns label 1 when the decision value is positive, matching
// scikit-learn's predict, together with the sigmoid probability of label 1.
func (lr *LogisticRegression) Predict(features []float64) (int, float64, error) {
	if len(lr.Coefficients) == 0 {
		return 0, 0, ErrModelNotLoaded
	}
	if len(features) != len(lr.Coefficients) {
		return 0, 0, fmt.Errorf("expected %d features, got %d", len(lr.Coefficients), len(features))
	}
	z := lr.Intercept
	for i, w := range lr.Coefficients {
		z += w * features[i]
	}
	probability := 1 / (1 + math.Exp(-z))
	if z > 0 {
		return 1, probability, nil
	}
	return 0, probability, nil
}

func (lr *LogisticRegression) validate() error {
	if len(lr.FeatureNames) == 0 {
		return fmt.Errorf("%w: logistic regression has no features", ErrCorruptArtifact)
	}
	if len(lr.Coefficients) != len(lr.FeatureNames) {
		return fmt.Errorf("%w: %d coefficients for %d features", ErrCorruptArtifact, len(lr.Coefficients), len(lr.FeatureNames))
	}
	for i, w := range lr.Coefficients {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: coefficient %d is not finite", ErrCorruptArtifact, i)
		}
	}
	return nil
}

func (lr *LogisticRegression) Save(path string) error {
	if err := lr.validate(); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(struct {
		Type string `json:"type"`
		*LogisticRegression
	}{Type: LogisticRegressionType, LogisticRegression: lr}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (lr *LogisticRegression) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded LogisticRegression
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptArtifact, path, err)
	}
	if err := loaded.validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	*lr = loaded
	return nil
}
