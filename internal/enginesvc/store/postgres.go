package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/avvvet/realm-services/internal/enginesvc/engine"
	"github.com/avvvet/realm-services/internal/enginesvc/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// PgStore keeps matches in PostgreSQL. Inside InTx the match row is read
// with FOR UPDATE so engines sharing the database serialize per match.
type PgStore struct {
	db *pgxpool.Pool
}

func NewPgStore(db *pgxpool.Pool) *PgStore {
	return &PgStore{db: db}
}

func (s *PgStore) InTx(ctx context.Context, fn func(tx engine.Tx) error) error {
	return s.run(ctx, pgx.TxOptions{}, true, fn)
}

func (s *PgStore) View(ctx context.Context, fn func(tx engine.Tx) error) error {
	return s.run(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}, false, fn)
}

func (s *PgStore) run(ctx context.Context, opts pgx.TxOptions, lock bool, fn func(tx engine.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				log.Warnf("rollback failed: %v", rbErr)
			}
		}
	}()

	if err = fn(&pgTx{tx: tx, lock: lock}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *PgStore) ListMatchIDs(ctx context.Context, statuses ...models.MatchStatus) ([]int64, error) {
	query := `SELECT id FROM matches ORDER BY id`
	var args []any
	if len(statuses) > 0 {
		names := make([]string, len(statuses))
		for i, st := range statuses {
			names[i] = string(st)
		}
		query = `SELECT id FROM matches WHERE status = ANY($1) ORDER BY id`
		args = append(args, names)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list match ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to list match ids: %w", err)
	}
	return ids, nil
}

// pgTx implements engine.Tx over one database transaction.
type pgTx struct {
	tx   pgx.Tx
	lock bool
}
