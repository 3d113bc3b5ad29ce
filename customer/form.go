package customer

import (
	"net/url"
	"strconv"
	"strings"
)

// ParseForm builds a record from a submitted prediction form. Slider values
// must be numbers within the slider's range; select values are passed through
// and checked against the training classes by the preprocessor.
func ParseForm(form url.Values) (Record, error) {
	values := make(map[string]string, len(fields)+1)
	values["customerID"] = strings.TrimSpace(form.Get("customerID"))
	for _, f := range fields {
		raw, ok := form[f.Name]
		if !ok || len(raw) == 0 {
			return Record{}, &FieldError{Field: f.Name, Reason: "is required"}
		}
		value := strings.TrimSpace(raw[0])
		if f.Kind == KindSlider {
			if err := checkRange(f, value); err != nil {
				return Record{}, err
			}
		}
		values[f.Name] = value
	}
	return fromValues(values)
}

func checkRange(f Field, value string) error {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return &FieldError{Field: f.Name, Value: value, Reason: "must be a number"}
	}
	if n < float64(f.Min) || n > float64(f.Max) {
		return &FieldError{Field: f.Name, Value: value, Reason: "out of range " + strconv.Itoa(f.Min) + "-" + strconv.Itoa(f.Max)}
	}
	return nil
}

// Values is the inverse of ParseForm, used to re-render a submitted form.
func (r Record) Values() url.Values {
	v := url.Values{}
	if r.CustomerID != "" {
		v.Set("customerID", r.CustomerID)
	}
	senior := "No"
	if r.SeniorCitizen == 1 {
		senior = "Yes"
	}
	v.Set("gender", r.Gender)
	v.Set("SeniorCitizen", senior)
	v.Set("Partner", r.Partner)
	v.Set("Dependents", r.Dependents)
	v.Set("tenure", strconv.Itoa(r.Tenure))
	v.Set("PhoneService", r.PhoneService)
	v.Set("MultipleLines", r.MultipleLines)
	v.Set("InternetService", r.InternetService)
	v.Set("OnlineSecurity", r.OnlineSecurity)
	v.Set("OnlineBackup", r.OnlineBackup)
	v.Set("DeviceProtection", r.DeviceProtection)
	v.Set("TechSupport", r.TechSupport)
	v.Set("StreamingTV", r.StreamingTV)
	v.Set("StreamingMovies", r.StreamingMovies)
	v.Set("Contract", r.Contract)
	v.Set("PaperlessBilling", r.PaperlessBilling)
	v.Set("PaymentMethod", r.PaymentMethod)
	v.Set("MonthlyCharges", strconv.FormatFloat(r.MonthlyCharges, 'f', -1, 64))
	v.Set("TotalCharges", string(r.TotalCharges))
	return v
}
