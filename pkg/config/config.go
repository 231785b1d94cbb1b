// Package config holds the payment pipeline's recognized knobs. Values are
// read from the environment in the cmd entrypoints (godotenv loads a .env
// file for local runs) and passed in explicitly; nothing here reads ambient
// state at call time.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// PaymentConfig configures the payment service, worker and reconciler.
type PaymentConfig struct {
	// LiveExecution selects the full pipeline. When false the service runs
	// build-only: it stops after constructing the unsigned envelope.
	LiveExecution bool
	// SignWithHotKey enables signing through the external signer capability.
	SignWithHotKey bool

	MaxGasStroops  int64
	MaxAttempts    int
	ConfirmPoll    time.Duration
	ConfirmMaxPolls int

	PayoutMethodName  string
	PayoutContractId  string
	SourceAccount     string
	NetworkPassphrase string
	SorobanRPCURL     string

	// BackoffBase is the first reconciler retry delay; each attempt doubles it.
	BackoffBase time.Duration
}

// Defaults mirror the production queue policy: 10 attempts at exponential
// backoff from 2s covers roughly half an hour of chain congestion.
const (
	DefaultMaxAttempts   = 10
	DefaultBackoffBase   = 2 * time.Second
	DefaultMaxGasStroops = 2_000_000
)

// FromEnv builds a PaymentConfig from environment variables.
func FromEnv() (*PaymentConfig, error) {
	cfg := &PaymentConfig{
		LiveExecution:     envBool("LIVE_EXECUTION", false),
		SignWithHotKey:    envBool("SIGN_WITH_HOT_KEY", false),
		MaxGasStroops:     envInt64("MAX_GAS_STROOPS", DefaultMaxGasStroops),
		MaxAttempts:       envInt("MAX_ATTEMPTS", DefaultMaxAttempts),
		ConfirmPoll:       time.Duration(envInt("CONFIRM_POLL_MS", 2000)) * time.Millisecond,
		ConfirmMaxPolls:   envInt("CONFIRM_MAX_POLLS", 10),
		PayoutMethodName:  envString("PAYOUT_METHOD_NAME", "distribute_winnings"),
		PayoutContractId:  os.Getenv("PAYOUT_CONTRACT_ID"),
		SourceAccount:     os.Getenv("SOURCE_ACCOUNT"),
		NetworkPassphrase: envString("NETWORK_PASSPHRASE", "Test SDF Network ; September 2015"),
		SorobanRPCURL:     envString("SOROBAN_RPC_URL", "https://soroban-testnet.stellar.org"),
		BackoffBase:       time.Duration(envInt("BACKOFF_BASE_MS", int(DefaultBackoffBase/time.Millisecond))) * time.Millisecond,
	}

	if cfg.SourceAccount == "" {
		return nil, fmt.Errorf("SOURCE_ACCOUNT environment variable not set")
	}
	if cfg.LiveExecution && cfg.PayoutContractId == "" {
		return nil, fmt.Errorf("PAYOUT_CONTRACT_ID required for live execution")
	}
	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
