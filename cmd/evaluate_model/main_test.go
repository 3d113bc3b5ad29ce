package main

import (
	"path/filepath"
	"strings"
	"testing"

	"churnpredict/customer"
	"churnpredict/ml"
)

const labeledSample = "customerID,gender,SeniorCitizen,Partner,Dependents,tenure,PhoneService,MultipleLines,InternetService,OnlineSecurity,OnlineBackup,DeviceProtection,TechSupport,StreamingTV,StreamingMovies,Contract,PaperlessBilling,PaymentMethod,MonthlyCharges,TotalCharges,Churn\n" +
	"7590-VHVEG,Female,0,Yes,No,1,No,No phone service,DSL,No,Yes,No,No,No,No,Month-to-month,Yes,Electronic check,29.85,29.85,Yes\n" +
	"5575-GNVDE,Female,0,Yes,No,60,No,No phone service,DSL,No,Yes,No,No,No,No,Two year,Yes,Credit card (automatic),50,3000,No\n" +
	"0000-WRONG,Female,0,Yes,No,60,No,No phone service,DSL,No,Yes,No,No,No,No,Two year,Yes,Credit card (automatic),50,3000,Yes\n"

func loadArtifacts(t *testing.T) *ml.Artifacts {
	t.Helper()
	artifacts, err := ml.LoadArtifacts("",
		filepath.Join("..", "..", "models", "churn_prediction_model.json"),
		filepath.Join("..", "..", "models", "churn_prediction_label_encoder.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return artifacts
}

func TestEvaluate(t *testing.T) {
	records, labels, err := customer.ReadLabeledCSV(strings.NewReader(labeledSample), churnColumn)
	if err != nil {
		t.Fatal(err)
	}

	r, err := evaluate(loadArtifacts(t), records, labels)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Rows != 3 {
		t.Errorf("expected 3 rows, got %d", r.Rows)
	}
	// the last row is labeled churn but looks like the loyal customer
	if r.Accuracy < 0.66 || r.Accuracy > 0.67 {
		t.Errorf("expected accuracy 2/3, got %f", r.Accuracy)
	}
	if r.Precision != 1 {
		t.Errorf("expected precision 1, got %f", r.Precision)
	}
	if r.Recall != 0.5 {
		t.Errorf("expected recall 0.5, got %f", r.Recall)
	}
}

func TestEvaluateErrors(t *testing.T) {
	artifacts := loadArtifacts(t)
	records, labels, err := customer.ReadLabeledCSV(strings.NewReader(labeledSample), churnColumn)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := evaluate(artifacts, records, labels[:1]); err == nil {
		t.Error("expected error for mismatched labels")
	}
	if _, err := evaluate(artifacts, nil, nil); err == nil {
		t.Error("expected error for empty input")
	}

	labels[0] = "Maybe"
	if _, err := evaluate(artifacts, records, labels); err == nil {
		t.Error("expected error for unknown churn label")
	}
}

func TestExpectedLabelWithoutChurnEncoder(t *testing.T) {
	encoders := ml.EncoderMap{}
	for value, want := range map[string]int{"Yes": 1, "1": 1, "No": 0, "0": 0} {
		got, err := expectedLabel(encoders, value)
		if err != nil || got != want {
			t.Errorf("expectedLabel(%q) = %d, %v; want %d", value, got, err, want)
		}
	}
	if _, err := expectedLabel(encoders, "maybe"); err == nil {
		t.Error("expected error")
	}
}
