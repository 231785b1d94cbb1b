package worker

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/arenalabs/payout-pipeline/pkg/worker"
)

// WorkerHandler exposes the batch payment worker over HTTP so deployments
// without an EventBridge schedule can drive it from an external cron.
type WorkerHandler struct {
	Worker *worker.PaymentWorker
	Logger *slog.Logger
}

// NewWorkerHandler creates a new WorkerHandler.
func NewWorkerHandler(w *worker.PaymentWorker, logger *slog.Logger) *WorkerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerHandler{Worker: w, Logger: logger}
}

const defaultBatchLimit = 50

// RunBatch handles the logic for running one worker batch.
func (h *WorkerHandler) RunBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Limit int `json:"limit"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
			return
		}
	}
	if req.Limit <= 0 {
		req.Limit = defaultBatchLimit
	}

	result, err := h.Worker.ProcessBatch(r.Context(), req.Limit)
	if err != nil {
		h.Logger.Error("worker batch failed", "error", err)
		http.Error(w, fmt.Sprintf("Failed to run worker batch: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}
