package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/avvvet/realm-services/internal/enginesvc/models"
	"github.com/jackc/pgx/v5"
)

const tradeColumns = `id, match_id, from_seat, to_seat, give, get, status, created_at, expires_at, accepted_by_seat, closed_at`

func scanTrade(row pgx.Row) (*models.TradeOffer, error) {
	tr := &models.TradeOffer{}
	err := row.Scan(
		&tr.ID,
		&tr.MatchID,
		&tr.FromSeat,
		&tr.ToSeat,
		&tr.Give,
		&tr.Get,
		&tr.Status,
		&tr.CreatedAt,
		&tr.ExpiresAt,
		&tr.AcceptedBySeat,
		&tr.ClosedAt,
	)
	return tr, err
}

func (t *pgTx) CreateTrade(ctx context.Context, tr *models.TradeOffer) error {
	query := `
		INSERT INTO trade_offers (match_id, from_seat, to_seat, give, get, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := t.tx.QueryRow(ctx, query,
		tr.MatchID, tr.FromSeat, tr.ToSeat, string(tr.Give), string(tr.Get), string(tr.Status), tr.CreatedAt, tr.ExpiresAt,
	).Scan(&tr.ID)
	if err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}
	return nil
}

func (t *pgTx) GetTrade(ctx context.Context, matchID, offerID int64) (*models.TradeOffer, error) {
	query := `SELECT ` + tradeColumns + ` FROM trade_offers WHERE id = $1 AND match_id = $2`
	if t.lock {
		query += ` FOR UPDATE`
	}

	tr, err := scanTrade(t.tx.QueryRow(ctx, query, offerID, matchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return tr, nil
}

func (t *pgTx) ListTrades(ctx context.Context, matchID int64, status models.TradeStatus) ([]*models.TradeOffer, error) {
	query := `SELECT ` + tradeColumns + ` FROM trade_offers WHERE match_id = $1 AND ($2 = '' OR status = $2) ORDER BY id`

	rows, err := t.tx.Query(ctx, query, matchID, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	defer rows.Close()

	var trades []*models.TradeOffer
	for rows.Next() {
		tr, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, tr)
	}
	return trades, rows.Err()
}

func (t *pgTx) SaveTrade(ctx context.Context, tr *models.TradeOffer) error {
	query := `
		UPDATE trade_offers
		SET status = $3, accepted_by_seat = $4, closed_at = $5
		WHERE id = $1 AND match_id = $2
	`
	tag, err := t.tx.Exec(ctx, query, tr.ID, tr.MatchID, string(tr.Status), tr.AcceptedBySeat, tr.ClosedAt)
	if err != nil {
		return fmt.Errorf("failed to save trade: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to save trade: %d not found", tr.ID)
	}
	return nil
}
