package store

import (
	"context"
	"fmt"

	"github.com/avvvet/realm-services/internal/enginesvc/models"
)

func (t *pgTx) AppendAction(ctx context.Context, a *models.ActionLogEntry) error {
	query := `
		INSERT INTO action_events (match_id, seat, type, message, ts)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := t.tx.QueryRow(ctx, query, a.MatchID, a.Seat, string(a.Type), a.Message, a.Ts).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to append action: %w", err)
	}
	return nil
}

func (t *pgTx) ListActions(ctx context.Context, matchID int64) ([]*models.ActionLogEntry, error) {
	query := `
		SELECT id, match_id, seat, type, message, ts
		FROM action_events
		WHERE match_id = $1
		ORDER BY id
	`
	rows, err := t.tx.Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	defer rows.Close()

	var entries []*models.ActionLogEntry
	for rows.Next() {
		a := &models.ActionLogEntry{}
		if err := rows.Scan(&a.ID, &a.MatchID, &a.Seat, &a.Type, &a.Message, &a.Ts); err != nil {
			return nil, err
		}
		entries = append(entries, a)
	}
	return entries, rows.Err()
}
