package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/avvvet/realm-services/internal/enginesvc/models"
	"github.com/jackc/pgx/v5"
)

const cellColumns = `match_id, x, y, region, owner, hits`

func scanCell(row pgx.Row) (*models.BoardCell, error) {
	c := &models.BoardCell{}
	err := row.Scan(&c.MatchID, &c.X, &c.Y, &c.Region, &c.Owner, &c.Hits)
	return c, err
}

func (t *pgTx) InsertCells(ctx context.Context, cells []*models.BoardCell) error {
	_, err := t.tx.CopyFrom(ctx,
		pgx.Identifier{"board_cells"},
		[]string{"match_id", "x", "y", "region", "owner", "hits"},
		pgx.CopyFromSlice(len(cells), func(i int) ([]any, error) {
			c := cells[i]
			return []any{c.MatchID, c.X, c.Y, string(c.Region), c.Owner, c.Hits}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to insert cells: %w", err)
	}
	return nil
}

func (t *pgTx) GetCell(ctx context.Context, matchID int64, x, y int) (*models.BoardCell, error) {
	query := `SELECT ` + cellColumns + ` FROM board_cells WHERE match_id = $1 AND x = $2 AND y = $3`

	c, err := scanCell(t.tx.QueryRow(ctx, query, matchID, x, y))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cell: %w", err)
	}
	return c, nil
}

func (t *pgTx) ListCells(ctx context.Context, matchID int64) ([]*models.BoardCell, error) {
	query := `SELECT ` + cellColumns + ` FROM board_cells WHERE match_id = $1 ORDER BY y, x`

	rows, err := t.tx.Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cells: %w", err)
	}
	defer rows.Close()

	var cells []*models.BoardCell
	for rows.Next() {
		c, err := scanCell(rows)
		if err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, rows.Err()
}

func (t *pgTx) SaveCell(ctx context.Context, c *models.BoardCell) error {
	query := `UPDATE board_cells SET owner = $4, hits = $5 WHERE match_id = $1 AND x = $2 AND y = $3`

	tag, err := t.tx.Exec(ctx, query, c.MatchID, c.X, c.Y, c.Owner, c.Hits)
	if err != nil {
		return fmt.Errorf("failed to save cell: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to save cell: (%d,%d) not found", c.X, c.Y)
	}
	return nil
}
