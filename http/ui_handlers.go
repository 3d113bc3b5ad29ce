package http

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"churnpredict/customer"
	"churnpredict/ml"
)

// PredictionFailedText 表单页面唯一的错误提示
const PredictionFailedText = "prediction failed"

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type formField struct {
	customer.Field
	Value string
}

type pageData struct {
	Fields      []formField
	CustomerID  string
	Result      string
	Probability float64
	Churn       bool
	Failed      bool
}

func RegisterUIHandlers(mux *http.ServeMux, h *handlers) {
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("POST /predict", h.handleFormPredict)
}

func (h *handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, newPageData(customer.DefaultRecord().Values()))
}

// handleFormPredict 表单提交：任何错误都显示为 "prediction failed"
func (h *handlers) handleFormPredict(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.deps.Logger.Info("form parse failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		data := newPageData(customer.DefaultRecord().Values())
		data.Failed = true
		h.render(w, http.StatusBadRequest, data)
		return
	}

	data := newPageData(r.PostForm)
	record, err := customer.ParseForm(r.PostForm)
	if err != nil {
		h.formFailed(w, r, data, err)
		return
	}
	if h.deps.Service == nil {
		h.formFailed(w, r, data, ml.ErrModelNotLoaded)
		return
	}
	results, err := h.deps.Service.Predict(r.Context(), []customer.Record{record})
	if err != nil {
		h.formFailed(w, r, data, err)
		return
	}

	data.Result = results[0].Text
	data.Probability = results[0].Probability
	data.Churn = results[0].Label == 1
	h.render(w, http.StatusOK, data)
}

func (h *handlers) formFailed(w http.ResponseWriter, r *http.Request, data pageData, err error) {
	h.deps.Logger.Info("form prediction failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
	data.Failed = true
	h.render(w, statusFor(err), data)
}

func newPageData(values url.Values) pageData {
	fields := customer.Fields()
	data := pageData{
		Fields:     make([]formField, len(fields)),
		CustomerID: values.Get("customerID"),
	}
	for i, f := range fields {
		data.Fields[i] = formField{Field: f, Value: values.Get(f.Name)}
	}
	return data
}

func (h *handlers) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTemplate.Execute(w, data); err != nil {
		h.deps.Logger.Error("render template failed", zap.Error(err))
	}
}
