package storage

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when creating a transaction whose idempotency key
// already exists. The caller should fetch the existing record instead of
// retrying creation.
var ErrConflict = errors.New("idempotency key already exists")

// ErrTerminalState is returned when an update would move a transaction out of
// a terminal status (confirmed, failed, dead).
var ErrTerminalState = errors.New("transaction is in a terminal state")
