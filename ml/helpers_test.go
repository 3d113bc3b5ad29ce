package ml

import (
	"path/filepath"
	"testing"
)

var trainingColumns = []string{
	"customerID",
	"gender",
	"SeniorCitizen",
	"Partner",
	"Dependents",
	"tenure",
	"PhoneService",
	"MultipleLines",
	"InternetService",
	"OnlineSecurity",
	"OnlineBackup",
	"DeviceProtection",
	"TechSupport",
	"StreamingTV",
	"StreamingMovies",
	"Contract",
	"PaperlessBilling",
	"PaymentMethod",
	"MonthlyCharges",
	"TotalCharges",
}

// referenceCustomer is a new month-to-month customer with no add-on services.
func referenceCustomer() map[string]Cell {
	return map[string]Cell{
		"customerID":       String("7590-VHVEG"),
		"gender":           String("Female"),
		"SeniorCitizen":    Number(0),
		"Partner":          String("No"),
		"Dependents":       String("No"),
		"tenure":           Number(1),
		"PhoneService":     String("No"),
		"MultipleLines":    String("No"),
		"InternetService":  String("No"),
		"OnlineSecurity":   String("No"),
		"OnlineBackup":     String("No"),
		"DeviceProtection": String("No"),
		"TechSupport":      String("No"),
		"StreamingTV":      String("No"),
		"StreamingMovies":  String("No"),
		"Contract":         String("Month-to-month"),
		"PaperlessBilling": String("No"),
		"PaymentMethod":    String("Electronic check"),
		"MonthlyCharges":   Number(29.85),
		"TotalCharges":     String("29.85"),
	}
}

func loyalCustomer() map[string]Cell {
	row := referenceCustomer()
	row["customerID"] = String("5575-GNVDE")
	row["tenure"] = Number(60)
	row["InternetService"] = String("DSL")
	row["Contract"] = String("Two year")
	row["PaymentMethod"] = String("Credit card (automatic)")
	row["MonthlyCharges"] = Number(50)
	row["TotalCharges"] = String("3000")
	return row
}

func buildFrame(t *testing.T, rows ...map[string]Cell) *Frame {
	t.Helper()
	frame := NewFrame(trainingColumns...)
	for _, row := range rows {
		cells := make([]Cell, len(trainingColumns))
		for i, name := range trainingColumns {
			cells[i] = row[name]
		}
		if err := frame.AppendRow(cells...); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	return frame
}

func loadShippedArtifacts(t *testing.T) *Artifacts {
	t.Helper()
	artifacts, err := LoadArtifacts("",
		filepath.Join("..", "models", "churn_prediction_model.json"),
		filepath.Join("..", "models", "churn_prediction_label_encoder.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return artifacts
}
