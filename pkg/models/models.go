package models

import (
	"time"
)

// TransactionStatus defines the lifecycle states of a payout transaction.
type TransactionStatus string

const (
	StatusBuilt     TransactionStatus = "built"
	StatusSigned    TransactionStatus = "signed"
	StatusQueued    TransactionStatus = "queued"
	StatusSubmitted TransactionStatus = "submitted"
	StatusConfirmed TransactionStatus = "confirmed"
	StatusFailed    TransactionStatus = "failed"
	StatusDead      TransactionStatus = "dead"
)

// Terminal reports whether a status permits no further transitions.
func (s TransactionStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusFailed || s == StatusDead
}

// Transaction represents one payout attempt against the chain.
// Amounts are always exact integer strings in stroops; no float ever
// reaches persisted state. It includes dynamodbav tags for marshalling.
type Transaction struct {
	Id                 string            `json:"id" dynamodbav:"id"`
	PayoutId           string            `json:"payout_id" dynamodbav:"payout_id"`
	IdempotencyKey     string            `json:"idempotency_key" dynamodbav:"idempotency_key"`
	DestinationAccount string            `json:"destination_account" dynamodbav:"destination_account"`
	AmountStroops      string            `json:"amount_stroops" dynamodbav:"amount_stroops"`
	Asset              string            `json:"asset" dynamodbav:"asset"`
	Nonce              int64             `json:"nonce" dynamodbav:"nonce"`
	Status             TransactionStatus `json:"status" dynamodbav:"status"`
	UnsignedEnvelope   string            `json:"unsigned_envelope" dynamodbav:"unsigned_envelope"`
	SignedEnvelope     *string           `json:"signed_envelope" dynamodbav:"signed_envelope,omitempty"`
	TxHash             *string           `json:"tx_hash" dynamodbav:"tx_hash,omitempty"`
	ErrorMessage       *string           `json:"error_message" dynamodbav:"error_message,omitempty"`
	CreatedAt          time.Time         `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at" dynamodbav:"updated_at"`
}

// RoundState defines the lifecycle states of a game round.
type RoundState string

const (
	RoundOpen     RoundState = "OPEN"
	RoundClosed   RoundState = "CLOSED"
	RoundResolved RoundState = "RESOLVED"
	RoundSettled  RoundState = "SETTLED"
)

// PlayerChoice is one player's stake on a choice within a round.
type PlayerChoice struct {
	UserID string  `json:"userId" dynamodbav:"user_id"`
	Choice string  `json:"choice" dynamodbav:"choice"`
	Stake  float64 `json:"stake" dynamodbav:"stake"`
}

// Payout is one player's share of a resolved round.
type Payout struct {
	UserID string  `json:"userId" dynamodbav:"user_id"`
	Amount float64 `json:"amount" dynamodbav:"amount"`
}

// RoundResolution is the outcome of resolving a round. It is produced
// exactly once per resolution call and persisted atomically with the
// elimination log entries.
type RoundResolution struct {
	EliminatedPlayers []string           `json:"eliminatedPlayers" dynamodbav:"eliminated_players"`
	Payouts           []Payout           `json:"payouts" dynamodbav:"payouts"`
	PoolBalances      map[string]float64 `json:"poolBalances" dynamodbav:"pool_balances"`
}

// Round represents one majority-elimination game round.
type Round struct {
	Id            string           `json:"id" dynamodbav:"id"`
	ArenaId       string           `json:"arena_id" dynamodbav:"arena_id"`
	RoundNumber   int              `json:"round_number" dynamodbav:"round_number"`
	State         RoundState       `json:"state" dynamodbav:"state"`
	PlayerChoices []PlayerChoice   `json:"player_choices" dynamodbav:"player_choices"`
	Resolution    *RoundResolution `json:"resolution,omitempty" dynamodbav:"resolution,omitempty"`
	CreatedAt     time.Time        `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" dynamodbav:"updated_at"`
}

// EliminationLogEntry records one player's elimination from a round.
type EliminationLogEntry struct {
	EntryID   string    `json:"entry_id" dynamodbav:"entry_id"`
	RoundID   string    `json:"round_id" dynamodbav:"round_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Reason    string    `json:"reason" dynamodbav:"reason"`
	Timestamp time.Time `json:"timestamp" dynamodbav:"timestamp"`
}
