package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/arenalabs/payout-pipeline/pkg/config"
	"github.com/arenalabs/payout-pipeline/pkg/handlers"
	"github.com/arenalabs/payout-pipeline/pkg/metrics"
	"github.com/arenalabs/payout-pipeline/pkg/nonce"
	"github.com/arenalabs/payout-pipeline/pkg/payments"
	"github.com/arenalabs/payout-pipeline/pkg/queue"
	"github.com/arenalabs/payout-pipeline/pkg/rounds"
	"github.com/arenalabs/payout-pipeline/pkg/stellar"
	"github.com/arenalabs/payout-pipeline/pkg/storage"
	dydbstore "github.com/arenalabs/payout-pipeline/pkg/storage/dynamodb"
	"github.com/arenalabs/payout-pipeline/pkg/storage/memory"
	"github.com/arenalabs/payout-pipeline/pkg/storage/postgres"
	"github.com/arenalabs/payout-pipeline/pkg/worker"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	repo, roundStore := buildStores(logger)

	// Nonce sequencing: redis when configured, in-process otherwise.
	var nonces nonce.Sequencer
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		rs, err := nonce.NewRedisSequencer(redisURL)
		if err != nil {
			log.Fatalf("unable to connect to redis: %v", err)
		}
		defer rs.Close()
		nonces = rs
	} else {
		nonces = nonce.NewMemorySequencer()
	}

	// Chain-facing capabilities are only wired for live execution.
	deps := payments.Deps{Logger: logger}
	if cfg.LiveExecution {
		rpc := stellar.NewRPCClient(cfg.SorobanRPCURL)
		deps.Submitter = rpc
		deps.Status = rpc
	}
	if cfg.SignWithHotKey {
		signerURL := os.Getenv("SIGNER_URL")
		if signerURL == "" {
			log.Fatal("SIGNER_URL environment variable not set")
		}
		deps.Signer = stellar.NewHTTPSigner(signerURL)
	}

	svc := payments.NewService(repo, nonces, cfg, deps)

	// Durable confirmation queue. Without SQS_QUEUE_URL the worker confirms
	// inline and retry exhaustion never dead-letters.
	var confirmQueue queue.Queue
	if queueURL := os.Getenv("SQS_QUEUE_URL"); queueURL != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO())
		if err != nil {
			log.Fatalf("unable to load SDK config, %v", err)
		}
		confirmQueue = queue.NewSQSQueue(sqs.NewFromConfig(awsCfg), queueURL)
	}

	m := metrics.New()
	paymentWorker := worker.NewPaymentWorker(repo, svc, confirmQueue, m, logger)
	roundService := rounds.NewService(roundStore, nil, m, logger)

	handler := handlers.NewApiHandler(svc, repo, paymentWorker, roundService, m, logger)

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("starting server", "port", port, "live_execution", cfg.LiveExecution)
	if err := http.ListenAndServe(":"+port, handler.Router()); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// buildStores selects the storage backend from STORAGE_BACKEND:
// dynamodb, postgres, or memory (the default, for local development).
func buildStores(logger *slog.Logger) (storage.TransactionRepository, storage.RoundStore) {
	switch backend := os.Getenv("STORAGE_BACKEND"); backend {
	case "dynamodb":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO())
		if err != nil {
			log.Fatalf("unable to load SDK config, %v", err)
		}
		dbClient := dynamodb.NewFromConfig(awsCfg)

		transactionsTable := os.Getenv("DYNAMODB_TRANSACTIONS_TABLE_NAME")
		roundsTable := os.Getenv("DYNAMODB_ROUNDS_TABLE_NAME")
		eliminationsTable := os.Getenv("DYNAMODB_ELIMINATIONS_TABLE_NAME")
		if transactionsTable == "" || roundsTable == "" || eliminationsTable == "" {
			log.Fatal("One or more DynamoDB table name environment variables are not set")
		}

		return dydbstore.New(dbClient, transactionsTable),
			dydbstore.NewRoundStore(dbClient, roundsTable, eliminationsTable)

	case "postgres":
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			log.Fatal("DATABASE_URL environment variable not set")
		}
		db, err := postgres.New(postgres.Config{URL: dbURL})
		if err != nil {
			log.Fatalf("unable to connect to postgres: %v", err)
		}
		return postgres.NewTransactionRepo(db), postgres.NewRoundRepo(db)

	default:
		logger.Warn("using in-memory storage, data will not survive a restart")
		return memory.New(), memory.NewRoundStore()
	}
}
