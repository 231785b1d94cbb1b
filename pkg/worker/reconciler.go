package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arenalabs/payout-pipeline/pkg/metrics"
	"github.com/arenalabs/payout-pipeline/pkg/models"
	"github.com/arenalabs/payout-pipeline/pkg/queue"
	"github.com/arenalabs/payout-pipeline/pkg/storage"
)

// Outcome is the tagged result of one confirmation delivery: either the
// transaction reached a terminal status, or the delivery must be retried.
// "Still pending on-chain" is the designed retry signal, not an error.
type Outcome struct {
	Retry  bool
	Reason string
	Status models.TransactionStatus
}

// Terminal builds a terminal outcome.
func Terminal(status models.TransactionStatus) Outcome {
	return Outcome{Status: status}
}

// Retry builds a retry outcome.
func Retry(reason string) Outcome {
	return Outcome{Retry: true, Reason: reason}
}

// Reconciler consumes confirmation jobs, polling the chain through the
// payment service until the transaction is terminal or attempts run out.
type Reconciler struct {
	payments    PaymentProcessor
	repo        storage.TransactionRepository
	queue       queue.Queue
	backoffBase time.Duration
	maxAttempts int
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewReconciler creates a reconciler. The queue is used to reschedule
// still-pending jobs with backoff.
func NewReconciler(svc PaymentProcessor, repo storage.TransactionRepository, q queue.Queue, backoffBase time.Duration, maxAttempts int, m *metrics.Metrics, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	if backoffBase <= 0 {
		backoffBase = 2 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &Reconciler{
		payments:    svc,
		repo:        repo,
		queue:       q,
		backoffBase: backoffBase,
		maxAttempts: maxAttempts,
		metrics:     m,
		logger:      logger,
	}
}

// Process performs one confirmation attempt. attemptsMade includes the
// current delivery; maxAttempts is the configured ceiling. When the
// attempt ceiling is reached on a retry outcome, the transaction is
// dead-lettered before returning.
func (r *Reconciler) Process(ctx context.Context, job queue.ConfirmJob, attemptsMade, maxAttempts int) (Outcome, error) {
	if err := job.Validate(); err != nil {
		return Outcome{}, err
	}

	tx, err := r.payments.ConfirmSubmittedTransaction(ctx, job.TransactionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Outcome{}, err
		}
		// Chain query failures burn an attempt like a pending poll does.
		outcome := Retry(fmt.Sprintf("confirmation attempt errored: %v", err))
		return r.finishRetry(ctx, job, attemptsMade, maxAttempts, outcome)
	}

	if tx.Status.Terminal() {
		r.logger.Info("confirmation job terminal",
			"transaction_id", tx.Id, "status", tx.Status, "attempts", attemptsMade)
		if r.metrics != nil {
			r.metrics.TxsConfirmedTotal.WithLabelValues(string(tx.Status)).Inc()
		}
		return Terminal(tx.Status), nil
	}

	outcome := Retry(fmt.Sprintf("transaction %s still pending on-chain", tx.Id))
	return r.finishRetry(ctx, job, attemptsMade, maxAttempts, outcome)
}

func (r *Reconciler) finishRetry(ctx context.Context, job queue.ConfirmJob, attemptsMade, maxAttempts int, outcome Outcome) (Outcome, error) {
	if r.metrics != nil {
		r.metrics.ReconcilerRetries.Inc()
	}

	if attemptsMade >= maxAttempts {
		if err := r.deadLetter(ctx, job.TransactionID, maxAttempts, outcome.Reason); err != nil {
			return outcome, err
		}
		return Terminal(models.StatusDead), nil
	}

	r.logger.Info("confirmation rescheduled",
		"transaction_id", job.TransactionID, "attempt", attemptsMade, "reason", outcome.Reason)
	return outcome, nil
}

// deadLetter marks the transaction dead. Writing dead twice is harmless, so
// redundant deliveries after exhaustion are safe.
func (r *Reconciler) deadLetter(ctx context.Context, id string, maxAttempts int, reason string) error {
	dead := models.StatusDead
	msg := fmt.Sprintf("Confirmation failed after %d attempts: %s", maxAttempts, reason)
	if _, err := r.repo.Update(ctx, id, storage.TransactionUpdate{Status: &dead, ErrorMessage: &msg}); err != nil {
		if errors.Is(err, storage.ErrTerminalState) || errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to dead-letter transaction %s: %w", id, err)
	}

	r.logger.Error("transaction dead-lettered", "transaction_id", id, "max_attempts", maxAttempts)
	if r.metrics != nil {
		r.metrics.DeadLetteredTotal.Inc()
	}
	return nil
}

// HandleDelivery adapts one queue delivery to Process and owns the
// rescheduling: a Retry outcome below the attempt ceiling re-enqueues the
// job with exponential backoff and completes the delivery.
func (r *Reconciler) HandleDelivery(ctx context.Context, job queue.ConfirmJob) error {
	attemptsMade := job.Attempt + 1

	outcome, err := r.Process(ctx, job, attemptsMade, r.maxAttempts)
	if err != nil {
		return err
	}
	if !outcome.Retry {
		return nil
	}

	if r.queue == nil {
		return fmt.Errorf("retry requested for transaction %s but no queue configured", job.TransactionID)
	}

	next := queue.ConfirmJob{TransactionID: job.TransactionID, Attempt: job.Attempt + 1}
	delay := queue.Backoff(r.backoffBase, job.Attempt)
	if err := r.queue.EnqueueWithDelay(ctx, next, delay); err != nil {
		return fmt.Errorf("failed to reschedule confirmation of %s: %w", job.TransactionID, err)
	}
	return nil
}
