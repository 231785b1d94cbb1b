// Package worker drives persisted payout transactions through submission
// and confirmation: a batch worker feeding the confirmation queue, and a
// reconciler consuming it.
package worker

import (
	"context"
	"log/slog"

	"github.com/arenalabs/payout-pipeline/pkg/metrics"
	"github.com/arenalabs/payout-pipeline/pkg/models"
	"github.com/arenalabs/payout-pipeline/pkg/payments"
	"github.com/arenalabs/payout-pipeline/pkg/queue"
	"github.com/arenalabs/payout-pipeline/pkg/storage"
)

//go:generate go tool mockery --name PaymentProcessor --output mocks --outpkg mocks

// PaymentProcessor is the slice of the payment service the workers need.
type PaymentProcessor interface {
	SubmitQueuedTransaction(ctx context.Context, id string) (*payments.SubmitResult, error)
	ConfirmSubmittedTransaction(ctx context.Context, id string) (*models.Transaction, error)
}

// BatchResult aggregates one ProcessBatch run.
type BatchResult struct {
	Processed int `json:"processed"`
	Submitted int `json:"submitted"`
	Confirmed int `json:"confirmed"`
	Failed    int `json:"failed"`
}

// PaymentWorker batch-polls pending transactions and drives them forward.
type PaymentWorker struct {
	repo     storage.TransactionRepository
	payments PaymentProcessor
	queue    queue.Queue // nil when no durable queue is configured
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewPaymentWorker creates a batch worker. Pass a nil queue to run the
// inline-confirmation fallback for environments without queue
// infrastructure.
func NewPaymentWorker(repo storage.TransactionRepository, svc PaymentProcessor, q queue.Queue, m *metrics.Metrics, logger *slog.Logger) *PaymentWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentWorker{repo: repo, payments: svc, queue: q, metrics: m, logger: logger}
}

// ProcessBatch fetches up to limit queued/submitted transactions and
// processes each independently: one transaction's error never aborts the
// rest of the batch.
func (w *PaymentWorker) ProcessBatch(ctx context.Context, limit int) (*BatchResult, error) {
	pending, err := w.repo.ListByStatus(ctx, []models.TransactionStatus{models.StatusQueued, models.StatusSubmitted}, limit)
	if err != nil {
		return nil, err
	}

	if w.metrics != nil {
		w.metrics.WorkerJobsPending.WithLabelValues("payment").Set(float64(len(pending)))
	}

	result := &BatchResult{Processed: len(pending)}

	for _, tx := range pending {
		switch tx.Status {
		case models.StatusQueued:
			w.processQueued(ctx, tx.Id, result)
		case models.StatusSubmitted:
			w.processSubmitted(ctx, tx.Id, result)
		}
	}

	return result, nil
}

func (w *PaymentWorker) processQueued(ctx context.Context, id string, result *BatchResult) {
	submitRes, err := w.payments.SubmitQueuedTransaction(ctx, id)
	if err != nil {
		w.logger.Error("failed to submit transaction", "transaction_id", id, "error", err)
		return
	}

	if submitRes.Submitted {
		result.Submitted++
		if w.metrics != nil {
			w.metrics.TxsSubmittedTotal.Inc()
		}
		// Hand confirmation polling off to the durable queue; inline
		// confirmation only exists as the no-queue fallback below.
		if w.queue != nil {
			job := queue.ConfirmJob{TransactionID: id}
			if err := w.queue.Enqueue(ctx, job); err != nil {
				w.logger.Error("transaction submitted but confirm job not enqueued",
					"transaction_id", id, "error", err)
			}
		}
	}
	if submitRes.Transaction.Status == models.StatusFailed {
		result.Failed++
		if w.metrics != nil {
			w.metrics.TxsConfirmedTotal.WithLabelValues(string(models.StatusFailed)).Inc()
		}
	}
}

func (w *PaymentWorker) processSubmitted(ctx context.Context, id string, result *BatchResult) {
	// Queue present means the reconciler owns confirmation; exactly one
	// confirmation path may poll a given transaction.
	if w.queue != nil {
		return
	}

	refreshed, err := w.payments.ConfirmSubmittedTransaction(ctx, id)
	if err != nil {
		w.logger.Error("failed to confirm transaction", "transaction_id", id, "error", err)
		return
	}

	switch refreshed.Status {
	case models.StatusConfirmed:
		result.Confirmed++
		if w.metrics != nil {
			w.metrics.TxsConfirmedTotal.WithLabelValues(string(models.StatusConfirmed)).Inc()
		}
	case models.StatusFailed:
		result.Failed++
		if w.metrics != nil {
			w.metrics.TxsConfirmedTotal.WithLabelValues(string(models.StatusFailed)).Inc()
		}
	}
}
