package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Artifacts is the immutable pair loaded at startup: the classifier and the
// per-column label encoders it was trained with.
type Artifacts struct {
	Model    Model
	Encoders EncoderMap
}

func LoadArtifacts(modelType, modelPath, encoderPath string) (*Artifacts, error) {
	model, err := LoadModel(modelType, modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	encoders, err := LoadEncoders(encoderPath)
	if err != nil {
		return nil, fmt.Errorf("load label encoders: %w", err)
	}
	return &Artifacts{Model: model, Encoders: encoders}, nil
}

// LoadModel reads a model file. An empty modelType takes the type recorded in
// the file; a non-empty one must agree with it.
func LoadModel(modelType, path string) (Model, error) {
	stored, err := peekModelType(path)
	if err != nil {
		return nil, err
	}
	if modelType == "" {
		modelType = stored
	}
	if stored != "" && stored != modelType {
		return nil, fmt.Errorf("%w: %s holds a %s model, configured %s", ErrCorruptArtifact, path, stored, modelType)
	}

	switch modelType {
	case LogisticRegressionType:
		model := &LogisticRegression{}
		if err := model.Load(path); err != nil {
			return nil, err
		}
		return model, nil
	case DecisionTreeType:
		model := &DecisionTree{}
		if err := model.Load(path); err != nil {
			return nil, err
		}
		return model, nil
	default:
		return nil, errors.New("unsupported model type")
	}
}

func peekModelType(path string) (string, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &header); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrCorruptArtifact, path, err)
	}
	return header.Type, nil
}
