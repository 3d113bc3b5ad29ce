package customer

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"churnpredict/ml"
)

func TestFieldsMatchForm(t *testing.T) {
	all := Fields()
	if len(all) != 19 {
		t.Fatalf("expected 19 fields, got %d", len(all))
	}
	sliders := map[string][3]int{
		"tenure":         {0, 72, 24},
		"MonthlyCharges": {0, 118, 50},
		"TotalCharges":   {0, 8600, 2000},
	}
	for _, f := range all {
		want, ok := sliders[f.Name]
		if !ok {
			if f.Kind != KindSelect || len(f.Options) < 2 {
				t.Fatalf("%s: expected a select with options, got %+v", f.Name, f)
			}
			continue
		}
		if f.Kind != KindSlider || f.Min != want[0] || f.Max != want[1] || f.Default != want[2] {
			t.Fatalf("%s: unexpected slider %+v", f.Name, f)
		}
	}
	payment, _ := FieldByName("PaymentMethod")
	if payment.Options[0] != "Mailed check" || len(payment.Options) != 4 {
		t.Fatalf("unexpected payment options %v", payment.Options)
	}
}

func TestDefaultRecord(t *testing.T) {
	r := DefaultRecord()
	if r.Gender != "Female" || r.SeniorCitizen != 0 || r.Dependents != "Yes" {
		t.Fatalf("unexpected defaults %+v", r)
	}
	if r.Tenure != 24 || r.MonthlyCharges != 50 || r.TotalCharges != "2000" {
		t.Fatalf("unexpected slider defaults %+v", r)
	}
	if r.Contract != "Month-to-month" || r.PaymentMethod != "Mailed check" {
		t.Fatalf("unexpected select defaults %+v", r)
	}
}

func TestRecordFrame(t *testing.T) {
	r := DefaultRecord()
	r.CustomerID = "7590-VHVEG"
	frame := r.Frame()
	if frame.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", frame.Len())
	}
	columns := frame.Columns()
	if columns[0] != ml.CustomerIDColumn || len(columns) != 20 {
		t.Fatalf("unexpected columns %v", columns)
	}
	total, _ := frame.Cell(0, ml.TotalChargesColumn)
	if s, ok := total.Str(); !ok || s != "2000" {
		t.Fatalf("expected TotalCharges to stay text, got %v", total)
	}
	tenure, _ := frame.Cell(0, "tenure")
	if v, ok := tenure.Float(); !ok || v != 24 {
		t.Fatalf("expected numeric tenure, got %v", tenure)
	}
}

func TestParseFormRoundTrip(t *testing.T) {
	r := DefaultRecord()
	r.SeniorCitizen = 1
	r.Contract = "Two year"
	parsed, err := ParseForm(r.Values())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != r {
		t.Fatalf("expected %+v, got %+v", r, parsed)
	}
}

func TestParseFormErrors(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
		drop  bool
	}{
		{name: "missing field", field: "Contract", drop: true},
		{name: "tenure above range", field: "tenure", value: "73"},
		{name: "negative monthly charges", field: "MonthlyCharges", value: "-1"},
		{name: "non numeric total charges", field: "TotalCharges", value: "abc"},
		{name: "senior citizen", field: "SeniorCitizen", value: "Maybe"},
		{name: "blank slider", field: "tenure", value: " "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := DefaultRecord().Values()
			if tt.drop {
				form.Del(tt.field)
			} else {
				form.Set(tt.field, tt.value)
			}
			_, err := ParseForm(form)
			var fieldErr *FieldError
			if !errors.As(err, &fieldErr) || fieldErr.Field != tt.field {
				t.Fatalf("expected FieldError on %s, got %v", tt.field, err)
			}
		})
	}
}

func TestParseFormPassesUnknownOption(t *testing.T) {
	form := DefaultRecord().Values()
	form.Set("Contract", "Three year")
	r, err := ParseForm(form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Contract != "Three year" {
		t.Fatalf("unexpected contract %q", r.Contract)
	}
}

func TestChargesUnmarshal(t *testing.T) {
	var c Charges
	if err := json.Unmarshal([]byte(`29.85`), &c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != "29.85" {
		t.Fatalf("expected 29.85, got %q", c)
	}
	if err := json.Unmarshal([]byte(`" "`), &c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != " " {
		t.Fatalf("expected blank, got %q", c)
	}
	if err := json.Unmarshal([]byte(`true`), &c); err == nil {
		t.Fatal("expected error for boolean TotalCharges")
	}
}

func TestRecordUnmarshalRequiresEveryAttribute(t *testing.T) {
	full, err := json.Marshal(DefaultRecord())
	if err != nil {
		t.Fatal(err)
	}
	var r Record
	if err := json.Unmarshal(full, &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != DefaultRecord() {
		t.Fatalf("round trip changed the record: %+v", r)
	}

	var withBlank map[string]interface{}
	if err := json.Unmarshal(full, &withBlank); err != nil {
		t.Fatal(err)
	}
	withBlank["TotalCharges"] = " "
	data, _ := json.Marshal(withBlank)
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatalf("blank value must still decode: %v", err)
	}

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"empty object", `{}`, "gender"},
		{"one field", `{"gender":"Female"}`, "SeniorCitizen"},
		{"null", `null`, "gender"},
		{"null attribute", strings.Replace(string(full), `"tenure":24`, `"tenure":null`, 1), "tenure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Record
			err := json.Unmarshal([]byte(tt.body), &r)
			var fieldErr *FieldError
			if !errors.As(err, &fieldErr) || fieldErr.Field != tt.field {
				t.Fatalf("expected missing %s, got %v", tt.field, err)
			}
		})
	}
}

const datasetSample = "customerID,gender,SeniorCitizen,Partner,Dependents,tenure,PhoneService,MultipleLines,InternetService,OnlineSecurity,OnlineBackup,DeviceProtection,TechSupport,StreamingTV,StreamingMovies,Contract,PaperlessBilling,PaymentMethod,MonthlyCharges,TotalCharges,Churn\n" +
	"7590-VHVEG,Female,0,Yes,No,1,No,No phone service,DSL,No,Yes,No,No,No,No,Month-to-month,Yes,Electronic check,29.85,29.85,No\n" +
	"4472-LVYGI,Female,0,Yes,Yes,0,No,No phone service,DSL,Yes,No,Yes,Yes,Yes,No,Two year,Yes,Bank transfer (automatic),52.55, ,No\n"

func TestReadCSV(t *testing.T) {
	records, err := ReadCSV(strings.NewReader("\ufeff" + datasetSample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].CustomerID != "7590-VHVEG" || records[0].MultipleLines != "No phone service" {
		t.Fatalf("unexpected first record %+v", records[0])
	}
	if records[1].TotalCharges != " " || records[1].MonthlyCharges != 52.55 {
		t.Fatalf("unexpected second record %+v", records[1])
	}
}

func TestReadCSVBlankNumericCells(t *testing.T) {
	lines := strings.Split(datasetSample, "\n")
	cells := strings.Split(lines[1], ",")
	cells[2] = " "  // SeniorCitizen
	cells[5] = ""   // tenure
	cells[18] = " " // MonthlyCharges
	data := lines[0] + "\n" + strings.Join(cells, ",") + "\n"

	records, err := ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := records[0]
	if r.SeniorCitizen != 0 || r.Tenure != 0 || r.MonthlyCharges != 0 {
		t.Fatalf("expected blanks to become 0, got %+v", r)
	}

	cells[5] = "ten"
	data = lines[0] + "\n" + strings.Join(cells, ",") + "\n"
	if _, err := ReadCSV(strings.NewReader(data)); err == nil {
		t.Fatal("expected error for non numeric tenure")
	}
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("customerID,gender\nx,Male\n"))
	if err == nil || !strings.Contains(err.Error(), "missing column") {
		t.Fatalf("expected missing column error, got %v", err)
	}
	if _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty csv")
	}
}

func TestReadLabeledCSV(t *testing.T) {
	records, labels, err := ReadLabeledCSV(strings.NewReader(datasetSample), "Churn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 || len(labels) != 2 {
		t.Fatalf("expected 2 rows, got %d records and %d labels", len(records), len(labels))
	}
	if labels[0] != "No" || labels[1] != "No" {
		t.Fatalf("unexpected labels %v", labels)
	}

	if _, _, err := ReadLabeledCSV(strings.NewReader(datasetSample), "Exited"); err == nil {
		t.Fatal("expected error for missing label column")
	}
	if _, _, err := ReadLabeledCSV(strings.NewReader(datasetSample), ""); err == nil {
		t.Fatal("expected error for empty label column")
	}
}
