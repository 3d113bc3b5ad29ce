package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const DecisionTreeType = "decision_tree"

type DecisionTree struct {
	FeatureNames []string   `json:"features"`
	Nodes        []TreeNode `json:"nodes"`
}

type TreeNode struct {
	FeatureIdx  int     `json:"feature_idx"`
	Threshold   float64 `json:"threshold"`
	LeftChild   int     `json:"left_child"`
	RightChild  int     `json:"right_child"`
	ClassLabel  int     `json:"class_label"`
	Probability float64 `json:"probability"`
	IsLeaf      bool    `json:"is_leaf"`
}

func (dt *DecisionTree) Type() string {
	return DecisionTreeType
}

func (dt *DecisionTree) Features() []string {
	return append([]string(nil), dt.FeatureNames...)
}

// Predict walks from the root, going left when the feature is <= threshold.
// The returned probability is the leaf's share of churned training samples.
func (dt *DecisionTree) Predict(features []float64) (int, float64, error) {
	if len(dt.Nodes) == 0 {
		return 0, 0, ErrModelNotLoaded
	}
	idx := 0
	for steps := 0; steps <= len(dt.Nodes); steps++ {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, node.Probability, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.Nodes) {
			return 0, 0, errors.New("invalid tree state")
		}
	}
	return 0, 0, errors.New("tree has a cycle")
}

func (dt *DecisionTree) validate() error {
	if len(dt.Nodes) == 0 {
		return fmt.Errorf("%w: decision tree has no nodes", ErrCorruptArtifact)
	}
	for i, node := range dt.Nodes {
		if node.IsLeaf {
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(dt.FeatureNames) {
			return fmt.Errorf("%w: node %d splits on unknown feature %d", ErrCorruptArtifact, i, node.FeatureIdx)
		}
		if node.LeftChild <= i || node.LeftChild >= len(dt.Nodes) || node.RightChild <= i || node.RightChild >= len(dt.Nodes) {
			return fmt.Errorf("%w: node %d has invalid children", ErrCorruptArtifact, i)
		}
	}
	return nil
}

func (dt *DecisionTree) Save(path string) error {
	if err := dt.validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(struct {
		Type string `json:"type"`
		*DecisionTree
	}{Type: DecisionTreeType, DecisionTree: dt})
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (dt *DecisionTree) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded DecisionTree
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptArtifact, path, err)
	}
	if err := loaded.validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	*dt = loaded
	return nil
}
