package payouts

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/arenalabs/payout-pipeline/pkg/payments"
	"github.com/arenalabs/payout-pipeline/pkg/storage"
	"github.com/go-chi/chi/v5"
)

// PayoutsHandler holds the dependencies for payout-related handlers.
type PayoutsHandler struct {
	Service *payments.Service
	Logger  *slog.Logger
}

// NewPayoutsHandler creates a new PayoutsHandler.
func NewPayoutsHandler(svc *payments.Service, logger *slog.Logger) *PayoutsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayoutsHandler{Service: svc, Logger: logger}
}

// CreatePayout handles the logic for creating a new payout transaction.
// Replays of a previously seen idempotency key return the original record
// with a 200 instead of a 201.
func (h *PayoutsHandler) CreatePayout(w http.ResponseWriter, r *http.Request) {
	var input payments.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	result, err := h.Service.CreatePayoutTransaction(r.Context(), input)
	if err != nil {
		var verr *payments.ValidationError
		if errors.As(err, &verr) {
			http.Error(w, verr.Error(), http.StatusBadRequest)
			return
		}
		h.Logger.Error("failed to create payout transaction", "error", err)
		http.Error(w, fmt.Sprintf("Failed to create payout: %v", err), http.StatusInternalServerError)
		return
	}

	status := http.StatusCreated
	if result.Mode == payments.ModeIdempotentReplay {
		status = http.StatusOK
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// GetPayoutTransaction handles the logic for retrieving a transaction by its ID.
func (h *PayoutsHandler) GetPayoutTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "transactionId")

	tx, err := h.Service.GetTransaction(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Transaction not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to retrieve transaction: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(tx); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}
