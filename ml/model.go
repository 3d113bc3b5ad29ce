package ml

// Model is a trained binary classifier. Features lists the column order the
// feature vector passed to Predict must follow.
type Model interface {
	Type() string
	Features() []string
	Predict(features []float64) (label int, probability float64, err error)
}
