package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	source := "G" + strings.Repeat("A", 55)

	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("SOURCE_ACCOUNT", source)

		cfg, err := FromEnv()

		require.NoError(t, err)
		assert.False(t, cfg.LiveExecution)
		assert.Equal(t, DefaultMaxAttempts, cfg.MaxAttempts)
		assert.Equal(t, DefaultBackoffBase, cfg.BackoffBase)
		assert.Equal(t, int64(DefaultMaxGasStroops), cfg.MaxGasStroops)
		assert.Equal(t, "distribute_winnings", cfg.PayoutMethodName)
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("SOURCE_ACCOUNT", source)
		t.Setenv("LIVE_EXECUTION", "true")
		t.Setenv("PAYOUT_CONTRACT_ID", "C"+strings.Repeat("D", 55))
		t.Setenv("MAX_ATTEMPTS", "3")
		t.Setenv("BACKOFF_BASE_MS", "500")

		cfg, err := FromEnv()

		require.NoError(t, err)
		assert.True(t, cfg.LiveExecution)
		assert.Equal(t, 3, cfg.MaxAttempts)
		assert.Equal(t, 500*time.Millisecond, cfg.BackoffBase)
	})

	t.Run("Missing Source Account", func(t *testing.T) {
		t.Setenv("SOURCE_ACCOUNT", "")

		_, err := FromEnv()

		assert.Error(t, err)
	})

	t.Run("Live Requires Contract", func(t *testing.T) {
		t.Setenv("SOURCE_ACCOUNT", source)
		t.Setenv("LIVE_EXECUTION", "true")
		t.Setenv("PAYOUT_CONTRACT_ID", "")

		_, err := FromEnv()

		assert.Error(t, err)
	})
}
