package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"churnpredict/customer"
	"churnpredict/ml"
	"churnpredict/predict"
)

const maxHistoryLimit = 500

func RegisterPredictHandlers(mux *http.ServeMux, h *handlers) {
	mux.HandleFunc("POST /api/predict", h.handlePredict)
	mux.HandleFunc("POST /api/predict/batch", h.handlePredictBatch)
	mux.HandleFunc("GET /api/predictions", h.handlePredictions)
	mux.HandleFunc("GET /api/predictions/stats", h.handlePredictionStats)
}

// handlePredict accepts a customer object, an array of them or {"customers": [...]}.
func (h *handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, statusFor(err), "read body failed")
		return
	}
	records, err := decodeCustomers(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.predictAndRespond(w, r, records)
}

func decodeCustomers(body []byte) ([]customer.Record, error) {
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		var list []customer.Record
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, decodeError(err)
		}
		if len(list) == 0 {
			return nil, errors.New("customers is empty")
		}
		return list, nil
	}
	var envelope struct {
		Customers []customer.Record `json:"customers"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, decodeError(err)
	}
	if envelope.Customers != nil {
		if len(envelope.Customers) == 0 {
			return nil, errors.New("customers is empty")
		}
		return envelope.Customers, nil
	}
	var single customer.Record
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, decodeError(err)
	}
	return []customer.Record{single}, nil
}

// decodeError keeps missing-attribute errors as they are.
func decodeError(err error) error {
	var fieldErr *customer.FieldError
	if errors.As(err, &fieldErr) {
		return fieldErr
	}
	return errors.New("invalid json: " + err.Error())
}

// handlePredictBatch takes a CSV in the dataset layout, either as the raw body
// or as the "file" part of a multipart form.
func (h *handlers) handlePredictBatch(w http.ResponseWriter, r *http.Request) {
	var source io.Reader = r.Body
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
			return
		}
		defer file.Close()
		source = file
	}

	data, err := io.ReadAll(source)
	if err != nil {
		writeError(w, statusFor(err), "read body failed")
		return
	}
	records, err := customer.ReadCSV(bytes.NewReader(data))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(records) == 0 {
		writeError(w, http.StatusBadRequest, "csv has no customers")
		return
	}
	h.predictAndRespond(w, r, records)
}

func (h *handlers) predictAndRespond(w http.ResponseWriter, r *http.Request, records []customer.Record) {
	if h.deps.Service == nil {
		writeError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}
	results, err := h.deps.Service.Predict(r.Context(), records)
	if err != nil {
		h.deps.Logger.Info("prediction rejected",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("reason", predict.FailureReason(err)),
			zap.Error(err))
		writeJSON(w, statusFor(err), map[string]string{
			"error":  err.Error(),
			"reason": predict.FailureReason(err),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (h *handlers) handlePredictions(w http.ResponseWriter, r *http.Request) {
	if h.deps.History == nil {
		writeError(w, http.StatusServiceUnavailable, "history not available")
		return
	}
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		l, err := strconv.Atoi(s)
		if err != nil || l <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = l
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	results, err := h.deps.History.RecentPredictions(r.Context(), limit)
	if err != nil {
		h.deps.Logger.Error("query predictions failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query predictions failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"limit":       limit,
		"predictions": results,
	})
}

// handlePredictionStats 历史预测结果分布
func (h *handlers) handlePredictionStats(w http.ResponseWriter, r *http.Request) {
	if h.deps.History == nil {
		writeError(w, http.StatusServiceUnavailable, "history not available")
		return
	}
	counts, err := h.deps.History.CountByLabel(r.Context())
	if err != nil {
		h.deps.Logger.Error("count predictions failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "count predictions failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{
		ml.ChurnText:   counts[1],
		ml.NoChurnText: counts[0],
		"total":        counts[0] + counts[1],
	})
}
