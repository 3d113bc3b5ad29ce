// Package customer describes the telecom customer attributes collected by the
// prediction form and converts them into frames for the preprocessor.
package customer

// FieldKind 控件类型
type FieldKind string

const (
	KindSelect FieldKind = "select"
	KindSlider FieldKind = "slider"
)

// Field is one form control. Options keep the display order of the form,
// which is not the encoder's class order.
type Field struct {
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Kind    FieldKind `json:"kind"`
	Options []string  `json:"options,omitempty"`
	Min     int       `json:"min,omitempty"`
	Max     int       `json:"max,omitempty"`
	Default int       `json:"default,omitempty"`
}

var (
	yesNo           = []string{"No", "Yes"}
	internetAddOn   = []string{"No", "Yes", "No internet service"}
	paymentMethods  = []string{"Mailed check", "Credit card (automatic)", "Bank transfer (automatic)", "Electronic check"}
	contractOptions = []string{"Month-to-month", "Two year", "One year"}
)

var fields = []Field{
	{Name: "gender", Label: "Select customer's gender :", Kind: KindSelect, Options: []string{"Female", "Male"}},
	{Name: "SeniorCitizen", Label: "Is customer a senior citizen? :", Kind: KindSelect, Options: yesNo},
	{Name: "Partner", Label: "Does the customer have a partner? :", Kind: KindSelect, Options: yesNo},
	{Name: "Dependents", Label: "Does the customer have dependents? :", Kind: KindSelect, Options: []string{"Yes", "No"}},
	{Name: "tenure", Label: "How many months has the customer been with the company? :", Kind: KindSlider, Min: 0, Max: 72, Default: 24},
	{Name: "PhoneService", Label: "Does the customer have phone service? :", Kind: KindSelect, Options: yesNo},
	{Name: "MultipleLines", Label: "Does the customer have multiple lines? :", Kind: KindSelect, Options: []string{"No", "Yes", "No phone service"}},
	{Name: "InternetService", Label: "What type of internet service does the customer have? :", Kind: KindSelect, Options: []string{"No", "DSL", "Fiber optic"}},
	{Name: "OnlineSecurity", Label: "Does the customer have online security? :", Kind: KindSelect, Options: internetAddOn},
	{Name: "OnlineBackup", Label: "Does the customer have online backup? :", Kind: KindSelect, Options: internetAddOn},
	{Name: "DeviceProtection", Label: "Does the customer have device protection? :", Kind: KindSelect, Options: internetAddOn},
	{Name: "TechSupport", Label: "Does the customer have tech support? :", Kind: KindSelect, Options: internetAddOn},
	{Name: "StreamingTV", Label: "Does the customer have streaming TV? :", Kind: KindSelect, Options: internetAddOn},
	{Name: "StreamingMovies", Label: "Does the customer have streaming movies? :", Kind: KindSelect, Options: internetAddOn},
	{Name: "Contract", Label: "What kind of contract does the customer have? :", Kind: KindSelect, Options: contractOptions},
	{Name: "PaperlessBilling", Label: "Does the customer have paperless billing? :", Kind: KindSelect, Options: yesNo},
	{Name: "PaymentMethod", Label: "What is the customer's payment method? :", Kind: KindSelect, Options: paymentMethods},
	{Name: "MonthlyCharges", Label: "What is the customer's monthly charge? :", Kind: KindSlider, Min: 0, Max: 118, Default: 50},
	{Name: "TotalCharges", Label: "What is the total charge of the customer? :", Kind: KindSlider, Min: 0, Max: 8600, Default: 2000},
}

// Fields returns the form fields in training column order.
func Fields() []Field {
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = f
		out[i].Options = append([]string(nil), f.Options...)
	}
	return out
}

// FieldByName 按名称查找字段
func FieldByName(name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Columns returns the attribute column names in training order, without customerID.
func Columns() []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}
