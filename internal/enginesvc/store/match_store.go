package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/avvvet/realm-services/internal/enginesvc/models"
	"github.com/jackc/pgx/v5"
)

const matchColumns = `id, status, players, width, height, current_turn, winner_seat, created_at, started_at, finished_at`

func scanMatch(row pgx.Row) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(
		&m.ID,
		&m.Status,
		&m.Players,
		&m.Width,
		&m.Height,
		&m.CurrentTurn,
		&m.WinnerSeat,
		&m.CreatedAt,
		&m.StartedAt,
		&m.FinishedAt,
	)
	return m, err
}

func (t *pgTx) CreateMatch(ctx context.Context, m *models.Match) error {
	query := `
		INSERT INTO matches (status, players, width, height, current_turn, winner_seat, created_at, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := t.tx.QueryRow(ctx, query,
		m.Status, m.Players, m.Width, m.Height, m.CurrentTurn, m.WinnerSeat, m.CreatedAt, m.StartedAt, m.FinishedAt,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (t *pgTx) GetMatch(ctx context.Context, id int64) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	if t.lock {
		query += ` FOR UPDATE`
	}

	m, err := scanMatch(t.tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get match by ID: %w", err)
	}
	return m, nil
}

func (t *pgTx) SaveMatch(ctx context.Context, m *models.Match) error {
	query := `
		UPDATE matches
		SET status = $2, current_turn = $3, winner_seat = $4, started_at = $5, finished_at = $6
		WHERE id = $1
	`
	tag, err := t.tx.Exec(ctx, query, m.ID, m.Status, m.CurrentTurn, m.WinnerSeat, m.StartedAt, m.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to save match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to save match: %d not found", m.ID)
	}
	return nil
}

func (t *pgTx) ListMatches(ctx context.Context, status models.MatchStatus) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE ($1 = '' OR status = $1) ORDER BY id`

	rows, err := t.tx.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
