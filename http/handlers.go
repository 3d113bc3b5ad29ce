package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"churnpredict/customer"
	"churnpredict/predict"
)

// HistoryStore 预测历史查询
type HistoryStore interface {
	RecentPredictions(ctx context.Context, limit int) ([]predict.Result, error)
	CountByLabel(ctx context.Context) (map[int]int64, error)
}

type handlers struct {
	deps Dependencies
}

func RegisterHandlers(mux *http.ServeMux, h *handlers) {
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api/schema", h.handleSchema)
	mux.HandleFunc("GET /api/model", h.handleModel)
	mux.HandleFunc("POST /api/model/reload", h.handleReload)
	if h.deps.Metrics != nil {
		mux.Handle("GET /metrics", h.deps.Metrics.Handler())
	}
	if h.deps.Hub != nil {
		mux.HandleFunc("GET /api/ws/predictions", h.deps.Hub.HandleWebSocket)
	}
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if h.deps.Service == nil {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (h *handlers) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"fields":   customer.Fields(),
		"defaults": customer.DefaultRecord(),
	})
}

func (h *handlers) handleModel(w http.ResponseWriter, r *http.Request) {
	if h.deps.Service == nil {
		writeError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}
	artifacts := h.deps.Service.Artifacts()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"model_type": artifacts.Model.Type(),
		"features":   artifacts.Model.Features(),
		"encoders":   artifacts.Encoders,
	})
}

func (h *handlers) handleReload(w http.ResponseWriter, r *http.Request) {
	if h.deps.Service == nil {
		writeError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}
	if err := h.deps.Service.Reload(r.Context()); err != nil {
		h.deps.Logger.Error("manual reload failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "reloaded",
		"model_type": h.deps.Service.Artifacts().Model.Type(),
	})
}
