package customer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"churnpredict/ml"
)

// Charges is the raw TotalCharges value. The source dataset stores it as text
// (with " " for new customers), so it stays a string until preprocessing.
// JSON numbers are accepted as well.
type Charges string

func (c *Charges) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Charges(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("TotalCharges must be a number or string: %w", err)
	}
	*c = Charges(n.String())
	return nil
}

// Record is one customer row as collected by the form.
type Record struct {
	CustomerID       string  `json:"customerID,omitempty"`
	Gender           string  `json:"gender"`
	SeniorCitizen    int     `json:"SeniorCitizen"`
	Partner          string  `json:"Partner"`
	Dependents       string  `json:"Dependents"`
	Tenure           int     `json:"tenure"`
	PhoneService     string  `json:"PhoneService"`
	MultipleLines    string  `json:"MultipleLines"`
	InternetService  string  `json:"InternetService"`
	OnlineSecurity   string  `json:"OnlineSecurity"`
	OnlineBackup     string  `json:"OnlineBackup"`
	DeviceProtection string  `json:"DeviceProtection"`
	TechSupport      string  `json:"TechSupport"`
	StreamingTV      string  `json:"StreamingTV"`
	StreamingMovies  string  `json:"StreamingMovies"`
	Contract         string  `json:"Contract"`
	PaperlessBilling string  `json:"PaperlessBilling"`
	PaymentMethod    string  `json:"PaymentMethod"`
	MonthlyCharges   float64 `json:"MonthlyCharges"`
	TotalCharges     Charges `json:"TotalCharges"`
}

// UnmarshalJSON requires every attribute column to be present and non-null.
// customerID stays optional.
func (r *Record) UnmarshalJSON(data []byte) error {
	var present map[string]json.RawMessage
	if err := json.Unmarshal(data, &present); err != nil {
		return err
	}
	for _, name := range Columns() {
		raw, ok := present[name]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return &FieldError{Field: name, Reason: "is required"}
		}
	}
	type plain Record
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Record(p)
	return nil
}

// DefaultRecord is the form's initial state: first option of every select and
// the default of every slider.
func DefaultRecord() Record {
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		if f.Kind == KindSelect {
			values[f.Name] = f.Options[0]
		} else {
			values[f.Name] = strconv.Itoa(f.Default)
		}
	}
	record, _ := fromValues(values)
	return record
}

// cells lays the record out as customerID followed by Columns().
func (r Record) cells() []ml.Cell {
	return []ml.Cell{
		ml.String(r.CustomerID),
		ml.String(r.Gender),
		ml.Number(float64(r.SeniorCitizen)),
		ml.String(r.Partner),
		ml.String(r.Dependents),
		ml.Number(float64(r.Tenure)),
		ml.String(r.PhoneService),
		ml.String(r.MultipleLines),
		ml.String(r.InternetService),
		ml.String(r.OnlineSecurity),
		ml.String(r.OnlineBackup),
		ml.String(r.DeviceProtection),
		ml.String(r.TechSupport),
		ml.String(r.StreamingTV),
		ml.String(r.StreamingMovies),
		ml.String(r.Contract),
		ml.String(r.PaperlessBilling),
		ml.String(r.PaymentMethod),
		ml.Number(r.MonthlyCharges),
		ml.String(string(r.TotalCharges)),
	}
}

func (r Record) Frame() *ml.Frame {
	return Frame([]Record{r})
}

// Frame builds an n-row frame with a customerID column followed by the 19
// attribute columns.
func Frame(records []Record) *ml.Frame {
	frame := ml.NewFrame(append([]string{ml.CustomerIDColumn}, Columns()...)...)
	for _, r := range records {
		// cells() always matches the frame width
		_ = frame.AppendRow(r.cells()...)
	}
	return frame
}

func fromValues(values map[string]string) (Record, error) {
	var r Record
	var err error
	get := func(name string) string { return values[name] }

	r.CustomerID = get(ml.CustomerIDColumn)
	r.Gender = get("gender")
	if r.SeniorCitizen, err = parseSenior(get("SeniorCitizen")); err != nil {
		return Record{}, err
	}
	r.Partner = get("Partner")
	r.Dependents = get("Dependents")
	if r.Tenure, err = parseInt("tenure", get("tenure")); err != nil {
		return Record{}, err
	}
	r.PhoneService = get("PhoneService")
	r.MultipleLines = get("MultipleLines")
	r.InternetService = get("InternetService")
	r.OnlineSecurity = get("OnlineSecurity")
	r.OnlineBackup = get("OnlineBackup")
	r.DeviceProtection = get("DeviceProtection")
	r.TechSupport = get("TechSupport")
	r.StreamingTV = get("StreamingTV")
	r.StreamingMovies = get("StreamingMovies")
	r.Contract = get("Contract")
	r.PaperlessBilling = get("PaperlessBilling")
	r.PaymentMethod = get("PaymentMethod")
	if r.MonthlyCharges, err = parseFloat("MonthlyCharges", get("MonthlyCharges")); err != nil {
		return Record{}, err
	}
	r.TotalCharges = Charges(get("TotalCharges"))
	return r, nil
}

// parseSenior, parseInt and parseFloat read blank values as 0, the same
// substitution the preprocessor applies to every other column.
func parseSenior(value string) (int, error) {
	switch value {
	case "Yes", "1":
		return 1, nil
	case "No", "0", "":
		return 0, nil
	}
	return 0, &FieldError{Field: "SeniorCitizen", Value: value, Reason: "must be Yes or No"}
}

func parseInt(field, value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &FieldError{Field: field, Value: value, Reason: "must be an integer"}
	}
	return n, nil
}

func parseFloat(field, value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, &FieldError{Field: field, Value: value, Reason: "must be a number"}
	}
	return f, nil
}

// FieldError reports a form or CSV value that cannot be turned into a record.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Reason)
}
