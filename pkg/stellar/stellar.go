// Package stellar holds the chain-facing capabilities of the payout
// pipeline: building unsigned payout envelopes, submitting signed envelopes,
// polling on-chain status, and the signer port. Cryptographic signing itself
// is delegated to an external signer capability and never implemented here.
package stellar

import (
	"context"
	"regexp"
)

//go:generate go tool mockery --name Submitter --output mocks --outpkg mocks
//go:generate go tool mockery --name StatusChecker --output mocks --outpkg mocks
//go:generate go tool mockery --name Signer --output mocks --outpkg mocks

// TxStatus is the on-chain state of a submitted transaction.
type TxStatus string

const (
	StatusPending TxStatus = "pending"
	StatusSuccess TxStatus = "success"
	StatusFailure TxStatus = "failure"
)

// Submitter submits a signed envelope to the chain and returns its hash.
type Submitter interface {
	Submit(ctx context.Context, signedEnvelope string) (string, error)
}

// StatusChecker queries the chain for a submitted transaction's status.
type StatusChecker interface {
	GetStatus(ctx context.Context, txHash string) (TxStatus, error)
}

// Signer signs an unsigned envelope. Implementations call out to an
// external signing capability; build-only deployments run without one.
type Signer interface {
	Sign(ctx context.Context, unsignedEnvelope string) (string, error)
}

// Stellar ed25519 account IDs: 'G' followed by 55 base32 characters.
var accountIDPattern = regexp.MustCompile(`^G[A-Z2-7]{55}$`)

// ValidAccountID reports whether addr matches the chain's address grammar.
func ValidAccountID(addr string) bool {
	return accountIDPattern.MatchString(addr)
}

// Contract IDs: 'C' followed by 55 base32 characters.
var contractIDPattern = regexp.MustCompile(`^C[A-Z2-7]{55}$`)

// ValidContractID reports whether id matches the contract address grammar.
func ValidContractID(id string) bool {
	return contractIDPattern.MatchString(id)
}
