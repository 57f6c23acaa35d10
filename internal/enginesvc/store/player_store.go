package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/avvvet/realm-services/internal/enginesvc/models"
	"github.com/jackc/pgx/v5"
)

const playerColumns = `match_id, seat, is_bot, alive, lightning, wood, stone, glass, force`

func scanPlayer(row pgx.Row) (*models.Player, error) {
	p := &models.Player{}
	err := row.Scan(
		&p.MatchID,
		&p.Seat,
		&p.Bot,
		&p.Alive,
		&p.Lightning,
		&p.Wood,
		&p.Stone,
		&p.Glass,
		&p.Force,
	)
	return p, err
}

func (t *pgTx) InsertPlayers(ctx context.Context, players []*models.Player) error {
	_, err := t.tx.CopyFrom(ctx,
		pgx.Identifier{"match_players"},
		[]string{"match_id", "seat", "is_bot", "alive", "lightning", "wood", "stone", "glass", "force"},
		pgx.CopyFromSlice(len(players), func(i int) ([]any, error) {
			p := players[i]
			return []any{p.MatchID, p.Seat, p.Bot, p.Alive, p.Lightning, p.Wood, p.Stone, p.Glass, p.Force}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to insert players: %w", err)
	}
	return nil
}

func (t *pgTx) GetPlayer(ctx context.Context, matchID int64, seat int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM match_players WHERE match_id = $1 AND seat = $2`

	p, err := scanPlayer(t.tx.QueryRow(ctx, query, matchID, seat))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

func (t *pgTx) ListPlayers(ctx context.Context, matchID int64) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM match_players WHERE match_id = $1 ORDER BY seat`

	rows, err := t.tx.Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (t *pgTx) SavePlayer(ctx context.Context, p *models.Player) error {
	query := `
		UPDATE match_players
		SET alive = $3, lightning = $4, wood = $5, stone = $6, glass = $7, force = $8
		WHERE match_id = $1 AND seat = $2
	`
	tag, err := t.tx.Exec(ctx, query, p.MatchID, p.Seat, p.Alive, p.Lightning, p.Wood, p.Stone, p.Glass, p.Force)
	if err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to save player: seat %d not found", p.Seat)
	}
	return nil
}
