package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arenalabs/payout-pipeline/pkg/config"
	"github.com/arenalabs/payout-pipeline/pkg/metrics"
	"github.com/arenalabs/payout-pipeline/pkg/models"
	"github.com/arenalabs/payout-pipeline/pkg/nonce"
	"github.com/arenalabs/payout-pipeline/pkg/payments"
	"github.com/arenalabs/payout-pipeline/pkg/rounds"
	"github.com/arenalabs/payout-pipeline/pkg/storage/memory"
	"github.com/arenalabs/payout-pipeline/pkg/worker"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter(t *testing.T) (chi.Router, *memory.RoundStore) {
	t.Helper()

	cfg := &config.PaymentConfig{
		SourceAccount:     "G" + strings.Repeat("A", 55),
		PayoutMethodName:  "distribute_winnings",
		NetworkPassphrase: "Test SDF Network ; September 2015",
		MaxGasStroops:     config.DefaultMaxGasStroops,
		MaxAttempts:       config.DefaultMaxAttempts,
		BackoffBase:       config.DefaultBackoffBase,
	}

	repo := memory.New()
	roundStore := memory.NewRoundStore()
	m := metrics.New()

	svc := payments.NewService(repo, nonce.NewMemorySequencer(), cfg, payments.Deps{})
	paymentWorker := worker.NewPaymentWorker(repo, svc, nil, m, nil)
	roundService := rounds.NewService(roundStore, nil, m, nil)

	handler := NewApiHandler(svc, repo, paymentWorker, roundService, m, nil)
	return handler.Router(), roundStore
}

func postJSON(t *testing.T, router http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestCreatePayoutEndpoint(t *testing.T) {
	input := payments.CreateInput{
		PayoutId:           "payout-1",
		DestinationAccount: "G" + strings.Repeat("B", 55),
		Amount:             "1.5",
		Asset:              "USDC",
		IdempotencyKey:     "payout-1:round-9",
	}

	t.Run("Created", func(t *testing.T) {
		router, _ := testRouter(t)

		rr := postJSON(t, router, "/payouts", input)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var result payments.CreateResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, payments.ModeBuildOnly, result.Mode)
		assert.Equal(t, "15000000", result.Transaction.AmountStroops)
	})

	t.Run("Replay Returns OK", func(t *testing.T) {
		router, _ := testRouter(t)

		first := postJSON(t, router, "/payouts", input)
		require.Equal(t, http.StatusCreated, first.Code)

		replay := postJSON(t, router, "/payouts", input)
		assert.Equal(t, http.StatusOK, replay.Code)

		var result payments.CreateResult
		require.NoError(t, json.Unmarshal(replay.Body.Bytes(), &result))
		assert.Equal(t, payments.ModeIdempotentReplay, result.Mode)
	})

	t.Run("Validation Error", func(t *testing.T) {
		router, _ := testRouter(t)

		bad := input
		bad.DestinationAccount = "nope"
		rr := postJSON(t, router, "/payouts", bad)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Malformed Body", func(t *testing.T) {
		router, _ := testRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/payouts", strings.NewReader("{not json"))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGetTransactionEndpoint(t *testing.T) {
	router, _ := testRouter(t)

	created := postJSON(t, router, "/payouts", payments.CreateInput{
		PayoutId:           "payout-1",
		DestinationAccount: "G" + strings.Repeat("B", 55),
		Amount:             "1",
		Asset:              "USDC",
		IdempotencyKey:     "payout-1:round-9",
	})
	require.Equal(t, http.StatusCreated, created.Code)

	var result payments.CreateResult
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &result))

	t.Run("Found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/transactions/"+result.Transaction.Id, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var tx models.Transaction
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tx))
		assert.Equal(t, result.Transaction.Id, tx.Id)
	})

	t.Run("Missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/transactions/unknown-id", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Payout Alias", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/payouts/"+result.Transaction.Id, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestWorkerRunEndpoint(t *testing.T) {
	router, _ := testRouter(t)

	rr := postJSON(t, router, "/worker/run", map[string]int{"limit": 10})

	assert.Equal(t, http.StatusOK, rr.Code)

	var result worker.BatchResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, 0, result.Processed)
}

func TestResolveRoundEndpoint(t *testing.T) {
	yield := 10.0
	input := rounds.RoundInput{
		RoundID: "round-1",
		PlayerChoices: []models.PlayerChoice{
			{UserID: "user-1", Choice: "rock", Stake: 100},
			{UserID: "user-2", Choice: "rock", Stake: 100},
			{UserID: "user-3", Choice: "paper", Stake: 100},
		},
		OracleYield: &yield,
		RandomSeed:  "seed",
	}

	t.Run("Resolved", func(t *testing.T) {
		router, roundStore := testRouter(t)
		roundStore.PutRound(models.Round{Id: "round-1", State: models.RoundClosed})

		rr := postJSON(t, router, "/rounds/resolve", input)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resolution models.RoundResolution
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resolution))
		assert.Equal(t, []string{"user-1", "user-2"}, resolution.EliminatedPlayers)
	})

	t.Run("Unknown Round", func(t *testing.T) {
		router, _ := testRouter(t)

		rr := postJSON(t, router, "/rounds/resolve", input)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Missing Yield", func(t *testing.T) {
		router, roundStore := testRouter(t)
		roundStore.PutRound(models.Round{Id: "round-1", State: models.RoundClosed})

		bad := input
		bad.OracleYield = nil
		rr := postJSON(t, router, "/rounds/resolve", bad)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := testRouter(t)

	health := httptest.NewRecorder()
	router.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, health.Code)

	metricsRes := httptest.NewRecorder()
	router.ServeHTTP(metricsRes, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, metricsRes.Code)
}
