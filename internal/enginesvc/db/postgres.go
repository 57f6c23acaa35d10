package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var DB *pgxpool.Pool

// Connect initializes the connection pool
func Connect(dsn string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	// Try pinging to make sure it's valid
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	DB = pool

	return pool, nil
}

// ClosePool is for graceful shutdown
func ClosePool() {
	if DB != nil {
		DB.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id           BIGSERIAL PRIMARY KEY,
	status       TEXT NOT NULL CHECK (status IN ('PENDING', 'RUNNING', 'FINISHED')),
	players      INT NOT NULL CHECK (players >= 2),
	width        INT NOT NULL CHECK (width >= 1),
	height       INT NOT NULL CHECK (height >= 1),
	current_turn INT,
	winner_seat  INT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	started_at   TIMESTAMPTZ,
	finished_at  TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS matches_status_idx ON matches (status);

CREATE TABLE IF NOT EXISTS match_players (
	match_id  BIGINT NOT NULL REFERENCES matches (id) ON DELETE CASCADE,
	seat      INT NOT NULL CHECK (seat >= 1),
	is_bot    BOOLEAN NOT NULL DEFAULT FALSE,
	alive     BOOLEAN NOT NULL DEFAULT TRUE,
	lightning INT NOT NULL CHECK (lightning >= 0),
	wood      INT NOT NULL CHECK (wood >= 0),
	stone     INT NOT NULL CHECK (stone >= 0),
	glass     INT NOT NULL CHECK (glass >= 0),
	force     INT NOT NULL CHECK (force >= 0),
	PRIMARY KEY (match_id, seat)
);

CREATE TABLE IF NOT EXISTS board_cells (
	match_id BIGINT NOT NULL REFERENCES matches (id) ON DELETE CASCADE,
	x        INT NOT NULL,
	y        INT NOT NULL,
	region   TEXT NOT NULL,
	owner    INT NOT NULL DEFAULT -1,
	hits     INT NOT NULL DEFAULT 0 CHECK (hits >= 0),
	PRIMARY KEY (match_id, x, y),
	CONSTRAINT unowned_has_no_hits CHECK (owner <> -1 OR hits = 0)
);

CREATE TABLE IF NOT EXISTS trade_offers (
	id               BIGSERIAL PRIMARY KEY,
	match_id         BIGINT NOT NULL REFERENCES matches (id) ON DELETE CASCADE,
	from_seat        INT NOT NULL,
	to_seat          INT NOT NULL,
	give             TEXT NOT NULL,
	get              TEXT NOT NULL,
	status           TEXT NOT NULL CHECK (status IN ('OPEN', 'ACCEPTED', 'CANCELLED', 'EXPIRED')),
	created_at       TIMESTAMPTZ NOT NULL,
	expires_at       TIMESTAMPTZ NOT NULL,
	accepted_by_seat INT,
	closed_at        TIMESTAMPTZ,
	CONSTRAINT closed_iff_not_open CHECK ((status = 'OPEN') = (closed_at IS NULL))
);

CREATE INDEX IF NOT EXISTS trade_offers_match_idx ON trade_offers (match_id, status);

CREATE TABLE IF NOT EXISTS action_events (
	id       BIGSERIAL PRIMARY KEY,
	match_id BIGINT NOT NULL REFERENCES matches (id) ON DELETE CASCADE,
	seat     INT NOT NULL,
	type     TEXT NOT NULL,
	message  TEXT NOT NULL,
	ts       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS action_events_match_idx ON action_events (match_id, id);
`

// Migrate creates the engine tables when they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
