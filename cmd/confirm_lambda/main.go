package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"

	"github.com/arenalabs/payout-pipeline/pkg/config"
	"github.com/arenalabs/payout-pipeline/pkg/metrics"
	"github.com/arenalabs/payout-pipeline/pkg/nonce"
	"github.com/arenalabs/payout-pipeline/pkg/payments"
	"github.com/arenalabs/payout-pipeline/pkg/queue"
	"github.com/arenalabs/payout-pipeline/pkg/stellar"
	dydbstore "github.com/arenalabs/payout-pipeline/pkg/storage/dynamodb"
	"github.com/arenalabs/payout-pipeline/pkg/worker"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
)

var reconciler *worker.Reconciler

func init() {
	// Load environment variables for local testing.
	godotenv.Load()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	transactionsTable := os.Getenv("DYNAMODB_TRANSACTIONS_TABLE_NAME")
	if transactionsTable == "" {
		log.Fatal("DYNAMODB_TRANSACTIONS_TABLE_NAME environment variable not set")
	}
	repo := dydbstore.New(dynamodb.NewFromConfig(awsCfg), transactionsTable)

	queueURL := os.Getenv("SQS_QUEUE_URL")
	if queueURL == "" {
		log.Fatal("SQS_QUEUE_URL environment variable not set")
	}
	confirmQueue := queue.NewSQSQueue(sqs.NewFromConfig(awsCfg), queueURL)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	rpc := stellar.NewRPCClient(cfg.SorobanRPCURL)
	svc := payments.NewService(repo, nonce.NewMemorySequencer(), cfg, payments.Deps{
		Submitter: rpc,
		Status:    rpc,
		Logger:    logger,
	})

	reconciler = worker.NewReconciler(svc, repo, confirmQueue, cfg.BackoffBase, cfg.MaxAttempts, metrics.New(), logger)
}

// HandleRequest processes SQS confirmation jobs. A malformed message is
// dropped rather than retried; nothing a redelivery could fix.
func HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) error {
	for _, message := range sqsEvent.Records {
		var job queue.ConfirmJob
		if err := json.Unmarshal([]byte(message.Body), &job); err != nil {
			log.Printf("ERROR: failed to unmarshal confirm job from SQS message %s: %v", message.MessageId, err)
			continue
		}
		if err := job.Validate(); err != nil {
			log.Printf("ERROR: invalid confirm job in SQS message %s: %v", message.MessageId, err)
			continue
		}

		if err := reconciler.HandleDelivery(ctx, job); err != nil {
			log.Printf("ERROR: failed to process confirm job for transaction %s: %v", job.TransactionID, err)
			return err
		}
	}

	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
