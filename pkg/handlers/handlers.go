// Package handlers wires the HTTP surface: payout creation and lookup,
// the manual worker trigger, round resolution, health and metrics.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/arenalabs/payout-pipeline/pkg/handlers/payouts"
	"github.com/arenalabs/payout-pipeline/pkg/handlers/rounds"
	"github.com/arenalabs/payout-pipeline/pkg/handlers/transactions"
	workerhandler "github.com/arenalabs/payout-pipeline/pkg/handlers/worker"
	"github.com/arenalabs/payout-pipeline/pkg/metrics"
	appmiddleware "github.com/arenalabs/payout-pipeline/pkg/middleware"
	"github.com/arenalabs/payout-pipeline/pkg/payments"
	roundsvc "github.com/arenalabs/payout-pipeline/pkg/rounds"
	"github.com/arenalabs/payout-pipeline/pkg/storage"
	"github.com/arenalabs/payout-pipeline/pkg/worker"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ApiHandler holds the application's handler dependencies.
type ApiHandler struct {
	Payments *payments.Service
	Repo     storage.TransactionRepository
	Worker   *worker.PaymentWorker
	Rounds   *roundsvc.Service
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// NewApiHandler creates a new ApiHandler.
func NewApiHandler(svc *payments.Service, repo storage.TransactionRepository, w *worker.PaymentWorker, r *roundsvc.Service, m *metrics.Metrics, logger *slog.Logger) *ApiHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApiHandler{Payments: svc, Repo: repo, Worker: w, Rounds: r, Metrics: m, Logger: logger}
}

// Router builds the chi router with all routes mounted.
func (h *ApiHandler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(appmiddleware.NewStructuredLogger(h.Logger))

	payoutsHandler := payouts.NewPayoutsHandler(h.Payments, h.Logger)
	txHandler := transactions.NewTransactionsHandler(h.Repo)
	workerHandler := workerhandler.NewWorkerHandler(h.Worker, h.Logger)
	roundsHandler := rounds.NewRoundsHandler(h.Rounds, h.Logger)

	r.Post("/payouts", payoutsHandler.CreatePayout)
	r.Get("/payouts/{transactionId}", payoutsHandler.GetPayoutTransaction)
	r.Get("/transactions/{transactionId}", txHandler.GetTransactionById)
	r.Post("/worker/run", workerHandler.RunBatch)
	r.Post("/rounds/resolve", roundsHandler.ResolveRound)

	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.Metrics.Registry, promhttp.HandlerOpts{}))
	}
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
