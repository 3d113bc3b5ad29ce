// Command evaluate_model scores exported churn artifacts against a labeled
// customer CSV in the training dataset layout.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"churnpredict/customer"
	"churnpredict/ml"
)

const churnColumn = "Churn"

type report struct {
	Rows      int
	Accuracy  float64
	Precision float64
	Recall    float64
}

func main() {
	dataPath := flag.String("data", "", "labeled customer csv")
	modelType := flag.String("model_type", "", "expected model type, empty accepts any")
	modelPath := flag.String("model_path", "./models/churn_prediction_model.json", "model artifact path")
	encoderPath := flag.String("encoder_path", "./models/churn_prediction_label_encoder.json", "label encoder artifact path")
	flag.Parse()

	if *dataPath == "" {
		log.Fatal("data is required")
	}

	artifacts, err := ml.LoadArtifacts(*modelType, *modelPath, *encoderPath)
	if err != nil {
		log.Fatalf("failed to load artifacts: %v", err)
	}

	file, err := os.Open(*dataPath)
	if err != nil {
		log.Fatalf("failed to open data: %v", err)
	}
	defer file.Close()

	records, labels, err := customer.ReadLabeledCSV(file, churnColumn)
	if err != nil {
		log.Fatalf("failed to read data: %v", err)
	}

	r, err := evaluate(artifacts, records, labels)
	if err != nil {
		log.Fatalf("failed to evaluate model: %v", err)
	}
	fmt.Printf("model=%s rows=%d accuracy=%.4f precision=%.4f recall=%.4f\n",
		artifacts.Model.Type(), r.Rows, r.Accuracy, r.Precision, r.Recall)
}

// evaluate treats label 1 (churn) as the positive class. Expected labels are
// encoded with the Churn encoder when the artifact carries one, otherwise
// "Yes"/"1" count as churn.
func evaluate(artifacts *ml.Artifacts, records []customer.Record, labels []string) (report, error) {
	if len(records) != len(labels) {
		return report{}, fmt.Errorf("%d records but %d labels", len(records), len(labels))
	}
	if len(records) == 0 {
		return report{}, fmt.Errorf("no rows to evaluate")
	}

	expected := make([]int, len(labels))
	for i, label := range labels {
		code, err := expectedLabel(artifacts.Encoders, label)
		if err != nil {
			return report{}, fmt.Errorf("row %d: %w", i, err)
		}
		expected[i] = code
	}

	processed, err := ml.Preprocess(customer.Frame(records), artifacts.Encoders)
	if err != nil {
		return report{}, err
	}
	predictions, err := ml.Predict(artifacts.Model, processed)
	if err != nil {
		return report{}, err
	}

	var correct, truePositive, predictedPositive, actualPositive int
	for i, p := range predictions {
		if p.Label == expected[i] {
			correct++
		}
		if p.Label == 1 {
			predictedPositive++
		}
		if expected[i] == 1 {
			actualPositive++
			if p.Label == 1 {
				truePositive++
			}
		}
	}

	r := report{Rows: len(predictions)}
	r.Accuracy = float64(correct) / float64(len(predictions))
	if predictedPositive > 0 {
		r.Precision = float64(truePositive) / float64(predictedPositive)
	}
	if actualPositive > 0 {
		r.Recall = float64(truePositive) / float64(actualPositive)
	}
	return r, nil
}

func expectedLabel(encoders ml.EncoderMap, value string) (int, error) {
	if _, ok := encoders[churnColumn]; ok {
		return encoders.Encode(churnColumn, value)
	}
	switch value {
	case "Yes", "1":
		return 1, nil
	case "No", "0":
		return 0, nil
	}
	return 0, fmt.Errorf("unknown churn label %q", value)
}
