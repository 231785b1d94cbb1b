package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

//go:generate go tool mockery --name SQSAPI --output mocks --outpkg mocks

// SQSAPI is the subset of the SQS client the queue uses.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSQueue implements the Queue interface using AWS SQS. Retry backoff is
// expressed through the message DelaySeconds.
type SQSQueue struct {
	Client   SQSAPI
	QueueURL string
}

// NewSQSQueue creates a new SQSQueue.
func NewSQSQueue(client SQSAPI, queueURL string) *SQSQueue {
	return &SQSQueue{
		Client:   client,
		QueueURL: queueURL,
	}
}

// Make sure we conform to the interface
var _ Queue = (*SQSQueue)(nil)

// Enqueue sends the job for immediate delivery.
func (q *SQSQueue) Enqueue(ctx context.Context, job ConfirmJob) error {
	return q.EnqueueWithDelay(ctx, job, 0)
}

// EnqueueWithDelay sends the job with a delivery delay.
func (q *SQSQueue) EnqueueWithDelay(ctx context.Context, job ConfirmJob, delay time.Duration) error {
	if err := job.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal confirm job for SQS: %w", err)
	}

	if delay < 0 {
		delay = 0
	}
	if delay > MaxDelay {
		delay = MaxDelay
	}

	_, err = q.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:     aws.String(q.QueueURL),
		MessageBody:  aws.String(string(body)),
		DelaySeconds: int32(delay / time.Second),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	return nil
}
