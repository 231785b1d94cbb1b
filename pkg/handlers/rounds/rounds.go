package rounds

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/arenalabs/payout-pipeline/pkg/rounds"
	"github.com/arenalabs/payout-pipeline/pkg/storage"
)

// RoundsHandler holds the dependencies for round-resolution handlers.
type RoundsHandler struct {
	Service *rounds.Service
	Logger  *slog.Logger
}

// NewRoundsHandler creates a new RoundsHandler.
func NewRoundsHandler(svc *rounds.Service, logger *slog.Logger) *RoundsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoundsHandler{Service: svc, Logger: logger}
}

// ResolveRound handles the logic for resolving a round.
func (h *RoundsHandler) ResolveRound(w http.ResponseWriter, r *http.Request) {
	var input rounds.RoundInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	resolution, err := h.Service.ResolveRound(r.Context(), input)
	if err != nil {
		var verr *rounds.ValidationError
		if errors.As(err, &verr) {
			http.Error(w, verr.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Round not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("failed to resolve round", "round_id", input.RoundID, "error", err)
		http.Error(w, fmt.Sprintf("Failed to resolve round: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resolution); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}
