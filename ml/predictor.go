package ml

import "fmt"

const (
	ChurnText   = "will churn"
	NoChurnText = "won't churn"
)

type Prediction struct {
	Label       int     `json:"label"`
	Probability float64 `json:"probability"`
}

func Label(label int) string {
	if label == 1 {
		return ChurnText
	}
	return NoChurnText
}

// FeatureVectors lays out each row of a preprocessed frame in the model's
// training column order. Extra columns are ignored.
func FeatureVectors(model Model, frame *Frame) ([][]float64, error) {
	names := model.Features()
	cols := make([]int, len(names))
	for i, name := range names {
		col, ok := frame.index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		cols[i] = col
	}

	vectors := make([][]float64, len(frame.rows))
	for r, row := range frame.rows {
		vector := make([]float64, len(cols))
		for i, col := range cols {
			value, ok := row[col].Float()
			if !ok {
				return nil, &NonNumericError{Column: names[i], Row: r, Value: row[col].String()}
			}
			vector[i] = value
		}
		vectors[r] = vector
	}
	return vectors, nil
}

func Predict(model Model, frame *Frame) ([]Prediction, error) {
	if model == nil {
		return nil, ErrModelNotLoaded
	}
	vectors, err := FeatureVectors(model, frame)
	if err != nil {
		return nil, err
	}
	predictions := make([]Prediction, len(vectors))
	for i, vector := range vectors {
		label, probability, err := model.Predict(vector)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		predictions[i] = Prediction{Label: label, Probability: probability}
	}
	return predictions, nil
}
