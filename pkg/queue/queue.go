// Package queue carries "confirm this transaction" work items. The queue
// holds scheduling metadata only; transaction status always lives in the
// repository.
package queue

import (
	"context"
	"fmt"
	"time"
)

//go:generate go tool mockery --name Queue --output mocks --outpkg mocks

// ConfirmJob is the fixed job schema. Attempt counts deliveries already
// made for this transaction, independent of the transaction record itself.
type ConfirmJob struct {
	TransactionID string `json:"transaction_id"`
	Attempt       int    `json:"attempt"`
}

// Validate rejects malformed job payloads at dequeue time.
func (j ConfirmJob) Validate() error {
	if j.TransactionID == "" {
		return fmt.Errorf("confirm job missing transaction_id")
	}
	if j.Attempt < 0 {
		return fmt.Errorf("confirm job has negative attempt %d", j.Attempt)
	}
	return nil
}

// Queue enqueues confirmation jobs.
type Queue interface {
	// Enqueue schedules a job for immediate delivery.
	Enqueue(ctx context.Context, job ConfirmJob) error

	// EnqueueWithDelay schedules a job for delivery after the given delay.
	EnqueueWithDelay(ctx context.Context, job ConfirmJob, delay time.Duration) error
}

// MaxDelay is the longest schedulable delay (the SQS DelaySeconds ceiling).
const MaxDelay = 900 * time.Second

// Backoff returns the retry delay for a given attempt number: exponential
// from base, capped at MaxDelay. Attempt 0 is the first retry.
func Backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	delay := base
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= MaxDelay {
			return MaxDelay
		}
	}
	if delay > MaxDelay {
		return MaxDelay
	}
	return delay
}
