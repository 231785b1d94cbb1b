// Package payments owns the payout transaction state machine:
// built → signed → queued → submitted → {confirmed | failed}, with the dead
// status reachable only through the reconciler's retry-exhaustion path.
package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/arenalabs/payout-pipeline/pkg/config"
	"github.com/arenalabs/payout-pipeline/pkg/models"
	"github.com/arenalabs/payout-pipeline/pkg/nonce"
	"github.com/arenalabs/payout-pipeline/pkg/stellar"
	"github.com/arenalabs/payout-pipeline/pkg/storage"
	"github.com/google/uuid"
)

// CreateMode reports which path a create call took.
type CreateMode string

const (
	// ModeBuildOnly: the pipeline stopped after building the unsigned envelope.
	ModeBuildOnly CreateMode = "build_only"
	// ModeIdempotentReplay: an existing transaction was returned unchanged.
	ModeIdempotentReplay CreateMode = "idempotent_replay"
	// ModeSigned: the envelope was signed and the transaction queued.
	ModeSigned CreateMode = "signed"
	// ModeQueued: queued for submission without a local signing step.
	ModeQueued CreateMode = "queued"
)

// CreateInput is a payout creation request.
type CreateInput struct {
	PayoutId           string `json:"payout_id"`
	DestinationAccount string `json:"destination_account"`
	Amount             string `json:"amount"`
	Asset              string `json:"asset"`
	IdempotencyKey     string `json:"idempotency_key"`
}

// CreateResult is the outcome of CreatePayoutTransaction.
type CreateResult struct {
	Mode             CreateMode          `json:"mode"`
	Transaction      *models.Transaction `json:"transaction"`
	UnsignedEnvelope string              `json:"unsigned_envelope"`
}

// SubmitResult is the outcome of SubmitQueuedTransaction.
type SubmitResult struct {
	Submitted   bool                `json:"submitted"`
	Transaction *models.Transaction `json:"transaction"`
}

// Service builds, optionally signs, submits and confirms payout
// transactions. All dependencies are injected; there is no ambient state.
type Service struct {
	repo      storage.TransactionRepository
	nonces    nonce.Sequencer
	signer    stellar.Signer
	submitter stellar.Submitter
	status    stellar.StatusChecker
	cfg       *config.PaymentConfig
	logger    *slog.Logger
}

// Deps carries the optional chain-facing capabilities. Submitter and
// StatusChecker may be nil in build-only deployments; Signer may be nil
// whenever hot-key signing is disabled.
type Deps struct {
	Signer    stellar.Signer
	Submitter stellar.Submitter
	Status    stellar.StatusChecker
	Logger    *slog.Logger
}

// NewService creates a payment service.
func NewService(repo storage.TransactionRepository, nonces nonce.Sequencer, cfg *config.PaymentConfig, deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		nonces:    nonces,
		signer:    deps.Signer,
		submitter: deps.Submitter,
		status:    deps.Status,
		cfg:       cfg,
		logger:    logger,
	}
}

// Idempotency keys: alphanumeric plus ':' and '-'.
var idempotencyKeyPattern = regexp.MustCompile(`^[A-Za-z0-9:-]+$`)

func validateCreateInput(input CreateInput) *ValidationError {
	if input.PayoutId == "" {
		return &ValidationError{Field: "payout_id", Reason: "must not be empty"}
	}
	if !stellar.ValidAccountID(input.DestinationAccount) {
		return &ValidationError{Field: "destination_account", Reason: "must be a valid account address"}
	}
	if input.IdempotencyKey == "" || !idempotencyKeyPattern.MatchString(input.IdempotencyKey) {
		return &ValidationError{Field: "idempotency_key", Reason: "must contain only alphanumerics, ':' and '-'"}
	}
	if input.Asset == "" {
		return &ValidationError{Field: "asset", Reason: "must not be empty"}
	}
	return nil
}

// CreatePayoutTransaction validates the input and either replays the
// existing transaction for the idempotency key or builds a new one. A replay
// returns the original record unchanged and consumes no nonce.
func (s *Service) CreatePayoutTransaction(ctx context.Context, input CreateInput) (*CreateResult, error) {
	if verr := validateCreateInput(input); verr != nil {
		return nil, verr
	}
	stroops, verr := amountToStroops(input.Amount)
	if verr != nil {
		return nil, verr
	}

	existing, err := s.repo.FindByIdempotencyKey(ctx, input.IdempotencyKey)
	if err == nil {
		return &CreateResult{
			Mode:             ModeIdempotentReplay,
			Transaction:      existing,
			UnsignedEnvelope: existing.UnsignedEnvelope,
		}, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
	}

	seq, err := s.nonces.Next(ctx, s.cfg.SourceAccount)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate nonce: %w", err)
	}

	envelope, err := stellar.PayoutEnvelope{
		SourceAccount:      s.cfg.SourceAccount,
		DestinationAccount: input.DestinationAccount,
		AmountStroops:      stroops,
		Asset:              input.Asset,
		Nonce:              seq,
		ContractID:         s.cfg.PayoutContractId,
		Method:             s.cfg.PayoutMethodName,
		MaxGasStroops:      s.cfg.MaxGasStroops,
		NetworkPassphrase:  s.cfg.NetworkPassphrase,
		Memo:               input.PayoutId,
	}.Encode()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tx := &models.Transaction{
		Id:                 uuid.New().String(),
		PayoutId:           input.PayoutId,
		IdempotencyKey:     input.IdempotencyKey,
		DestinationAccount: input.DestinationAccount,
		AmountStroops:      stroops,
		Asset:              input.Asset,
		Nonce:              seq,
		Status:             models.StatusBuilt,
		UnsignedEnvelope:   envelope,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, tx); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			// Lost a create race for the same key; the stored record wins.
			winner, ferr := s.repo.FindByIdempotencyKey(ctx, input.IdempotencyKey)
			if ferr != nil {
				return nil, fmt.Errorf("failed to fetch conflicting transaction: %w", ferr)
			}
			return &CreateResult{
				Mode:             ModeIdempotentReplay,
				Transaction:      winner,
				UnsignedEnvelope: winner.UnsignedEnvelope,
			}, nil
		}
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.logger.Info("payout transaction built",
		"transaction_id", tx.Id, "payout_id", tx.PayoutId, "nonce", tx.Nonce)

	if !s.cfg.LiveExecution {
		return &CreateResult{Mode: ModeBuildOnly, Transaction: tx, UnsignedEnvelope: envelope}, nil
	}

	return s.enterSubmissionPipeline(ctx, tx, envelope)
}

// enterSubmissionPipeline signs (when configured) and queues a freshly built
// transaction.
func (s *Service) enterSubmissionPipeline(ctx context.Context, tx *models.Transaction, envelope string) (*CreateResult, error) {
	mode := ModeQueued
	queued := models.StatusQueued
	update := storage.TransactionUpdate{Status: &queued}

	if s.cfg.SignWithHotKey && s.signer != nil {
		signed, err := s.signer.Sign(ctx, envelope)
		if err != nil {
			return nil, fmt.Errorf("failed to sign transaction %s: %w", tx.Id, err)
		}
		update.SignedEnvelope = &signed
		mode = ModeSigned
	}

	updated, err := s.repo.Update(ctx, tx.Id, update)
	if err != nil {
		return nil, fmt.Errorf("failed to queue transaction %s: %w", tx.Id, err)
	}
	return &CreateResult{Mode: mode, Transaction: updated, UnsignedEnvelope: envelope}, nil
}

// SubmitQueuedTransaction dispatches a queued transaction to the chain.
// A rejected submit moves the transaction to failed and reports
// Submitted=false; the error stays on the record.
func (s *Service) SubmitQueuedTransaction(ctx context.Context, id string) (*SubmitResult, error) {
	tx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.Status != models.StatusQueued {
		// Already past (or never entered) the queue; nothing to do.
		return &SubmitResult{Submitted: tx.Status == models.StatusSubmitted || tx.Status == models.StatusConfirmed, Transaction: tx}, nil
	}
	if s.submitter == nil {
		return nil, fmt.Errorf("no chain submitter configured")
	}

	payload := tx.UnsignedEnvelope
	if tx.SignedEnvelope != nil {
		payload = *tx.SignedEnvelope
	}

	hash, err := s.submitter.Submit(ctx, payload)
	if err != nil {
		subErr := &SubmissionError{TransactionID: tx.Id, Err: err}
		failed := models.StatusFailed
		msg := subErr.Error()
		updated, uerr := s.repo.Update(ctx, tx.Id, storage.TransactionUpdate{Status: &failed, ErrorMessage: &msg})
		if uerr != nil {
			return nil, fmt.Errorf("failed to record submission failure for %s: %w", tx.Id, uerr)
		}
		s.logger.Warn("chain rejected submission", "transaction_id", tx.Id, "error", err)
		return &SubmitResult{Submitted: false, Transaction: updated}, nil
	}

	submitted := models.StatusSubmitted
	updated, err := s.repo.Update(ctx, tx.Id, storage.TransactionUpdate{Status: &submitted, TxHash: &hash})
	if err != nil {
		return nil, fmt.Errorf("failed to record submission of %s: %w", tx.Id, err)
	}

	s.logger.Info("transaction submitted", "transaction_id", tx.Id, "tx_hash", hash)
	return &SubmitResult{Submitted: true, Transaction: updated}, nil
}

// GetTransaction returns a transaction by its ID.
func (s *Service) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	return s.repo.FindByID(ctx, id)
}

// ConfirmSubmittedTransaction polls the chain for a submitted transaction's
// status. Safe to call repeatedly: a pending answer leaves the record
// untouched and a terminal record is never regressed.
func (s *Service) ConfirmSubmittedTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	tx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.Status.Terminal() {
		return tx, nil
	}
	if tx.Status != models.StatusSubmitted {
		return tx, nil
	}
	if s.status == nil {
		return nil, fmt.Errorf("no chain status checker configured")
	}
	if tx.TxHash == nil {
		return nil, fmt.Errorf("transaction %s is submitted but has no tx hash", tx.Id)
	}

	chainStatus, err := s.status.GetStatus(ctx, *tx.TxHash)
	if err != nil {
		return nil, fmt.Errorf("failed to query chain status for %s: %w", tx.Id, err)
	}

	switch chainStatus {
	case stellar.StatusPending:
		return tx, nil
	case stellar.StatusSuccess:
		confirmed := models.StatusConfirmed
		updated, err := s.repo.Update(ctx, tx.Id, storage.TransactionUpdate{Status: &confirmed})
		if err != nil {
			if errors.Is(err, storage.ErrTerminalState) {
				return s.repo.FindByID(ctx, tx.Id)
			}
			return nil, fmt.Errorf("failed to record confirmation of %s: %w", tx.Id, err)
		}
		s.logger.Info("transaction confirmed", "transaction_id", tx.Id)
		return updated, nil
	default:
		failed := models.StatusFailed
		msg := "chain reported transaction failure"
		updated, err := s.repo.Update(ctx, tx.Id, storage.TransactionUpdate{Status: &failed, ErrorMessage: &msg})
		if err != nil {
			if errors.Is(err, storage.ErrTerminalState) {
				return s.repo.FindByID(ctx, tx.Id)
			}
			return nil, fmt.Errorf("failed to record failure of %s: %w", tx.Id, err)
		}
		s.logger.Warn("transaction failed on-chain", "transaction_id", tx.Id)
		return updated, nil
	}
}
