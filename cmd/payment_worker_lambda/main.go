package main

import (
	"context"
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
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
)

var paymentWorker *worker.PaymentWorker

const batchLimit = 50

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

	paymentWorker = worker.NewPaymentWorker(repo, svc, confirmQueue, metrics.New(), logger)
}

// HandleRequest is triggered by an EventBridge Schedule.
func HandleRequest(ctx context.Context) error {
	result, err := paymentWorker.ProcessBatch(ctx, batchLimit)
	if err != nil {
		log.Printf("ERROR: worker batch failed: %v", err)
		return err
	}

	log.Printf("Worker batch finished: processed=%d submitted=%d confirmed=%d failed=%d",
		result.Processed, result.Submitted, result.Confirmed, result.Failed)
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
