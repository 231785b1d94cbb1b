// Package postgres is the relational variant of the payout stores, built on
// database/sql with lib/pq. Schema expectations:
//
//	transactions(id text pk, payout_id, idempotency_key text unique,
//	  destination_account, amount_stroops text, asset, nonce bigint,
//	  status text, unsigned_envelope text, signed_envelope text,
//	  tx_hash text, error_message text, created_at, updated_at timestamptz)
//	rounds(id text pk, arena_id, round_number int, state text,
//	  resolution jsonb, created_at, updated_at timestamptz)
//	elimination_logs(entry_id text pk, round_id text, user_id text,
//	  reason text, created_at timestamptz)
package postgres

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps the sql pool.
type DB struct {
	*sql.DB
}

// Config holds connection pool settings.
type Config struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// New opens and pings a connection pool.
func New(cfg Config) (*DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &DB{db}, nil
}
