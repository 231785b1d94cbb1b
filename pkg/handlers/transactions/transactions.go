package transactions

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/arenalabs/payout-pipeline/pkg/storage"
	"github.com/go-chi/chi/v5"
)

// TransactionsHandler holds the dependencies for transaction-related handlers.
type TransactionsHandler struct {
	Repo storage.TransactionRepository
}

// NewTransactionsHandler creates a new TransactionsHandler.
func NewTransactionsHandler(repo storage.TransactionRepository) *TransactionsHandler {
	return &TransactionsHandler{Repo: repo}
}

// GetTransactionById handles the logic for retrieving a transaction by its ID.
func (h *TransactionsHandler) GetTransactionById(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "transactionId")

	tx, err := h.Repo.FindByID(r.Context(), id)
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
