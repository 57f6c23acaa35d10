package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/avvvet/realm-services/internal/enginesvc/models"
)

// Board is the grid of a match with its cells in row-major order.
type Board struct {
	Width  int                 `json:"width"`
	Height int                 `json:"height"`
	Cells  []*models.BoardCell `json:"cells"`
}

// Snapshot is everything a client or bot needs to render or plan a move.
type Snapshot struct {
	Match   *models.Match        `json:"match"`
	Players []*models.Player     `json:"players"`
	Board   Board                `json:"board"`
	Trades  []*models.TradeOffer `json:"trades"` // open offers only
}

func (e *Engine) Get(ctx context.Context, matchID int64) (*models.Match, error) {
	var m *models.Match
	err := e.view(ctx, func(tx Tx) error {
		var err error
		m, err = mustMatch(ctx, tx, matchID)
		return err
	})
	return m, err
}

// List returns matches by id, optionally filtered by status.
func (e *Engine) List(ctx context.Context, status string) ([]*models.Match, error) {
	st := models.MatchStatus(strings.ToUpper(status))
	if status != "" && !st.Valid() {
		return nil, failure(CodeValidation, fmt.Sprintf("unknown status %q", status))
	}

	var matches []*models.Match
	err := e.view(ctx, func(tx Tx) error {
		var err error
		matches, err = tx.ListMatches(ctx, st)
		return err
	})
	return matches, err
}

func (e *Engine) Board(ctx context.Context, matchID int64) (*Board, error) {
	var b *Board
	err := e.view(ctx, func(tx Tx) error {
		m, err := mustMatch(ctx, tx, matchID)
		if err != nil {
			return err
		}
		cells, err := tx.ListCells(ctx, matchID)
		if err != nil {
			return err
		}
		b = &Board{Width: m.Width, Height: m.Height, Cells: cells}
		return nil
	})
	return b, err
}

func (e *Engine) Cell(ctx context.Context, matchID int64, x, y int) (*models.BoardCell, error) {
	var c *models.BoardCell
	err := e.view(ctx, func(tx Tx) error {
		if _, err := mustMatch(ctx, tx, matchID); err != nil {
			return err
		}
		var err error
		if c, err = tx.GetCell(ctx, matchID, x, y); err != nil {
			return err
		}
		if c == nil {
			return failure(CodeCellNotFound, fmt.Sprintf("(%d,%d)", x, y))
		}
		return nil
	})
	return c, err
}

func (e *Engine) Players(ctx context.Context, matchID int64) ([]*models.Player, error) {
	var players []*models.Player
	err := e.view(ctx, func(tx Tx) error {
		if _, err := mustMatch(ctx, tx, matchID); err != nil {
			return err
		}
		var err error
		players, err = tx.ListPlayers(ctx, matchID)
		return err
	})
	return players, err
}

func (e *Engine) Player(ctx context.Context, matchID int64, seat int) (*models.Player, error) {
	var p *models.Player
	err := e.view(ctx, func(tx Tx) error {
		if _, err := mustMatch(ctx, tx, matchID); err != nil {
			return err
		}
		var err error
		if p, err = tx.GetPlayer(ctx, matchID, seat); err != nil {
			return err
		}
		if p == nil {
			return failure(CodePlayerNotFound, fmt.Sprintf("seat %d", seat))
		}
		return nil
	})
	return p, err
}

// Snapshot reads the match, its players, board and open offers in one view.
func (e *Engine) Snapshot(ctx context.Context, matchID int64) (*Snapshot, error) {
	var s *Snapshot
	err := e.view(ctx, func(tx Tx) error {
		m, err := mustMatch(ctx, tx, matchID)
		if err != nil {
			return err
		}
		players, err := tx.ListPlayers(ctx, matchID)
		if err != nil {
			return err
		}
		cells, err := tx.ListCells(ctx, matchID)
		if err != nil {
			return err
		}
		trades, err := tx.ListTrades(ctx, matchID, models.TradeOpen)
		if err != nil {
			return err
		}
		s = &Snapshot{
			Match:   m,
			Players: players,
			Board:   Board{Width: m.Width, Height: m.Height, Cells: cells},
			Trades:  trades,
		}
		return nil
	})
	return s, err
}

// ListActions returns the audit log of a match, oldest first.
func (e *Engine) ListActions(ctx context.Context, matchID int64) ([]*models.ActionLogEntry, error) {
	var entries []*models.ActionLogEntry
	err := e.view(ctx, func(tx Tx) error {
		if _, err := mustMatch(ctx, tx, matchID); err != nil {
			return err
		}
		var err error
		entries, err = tx.ListActions(ctx, matchID)
		return err
	})
	return entries, err
}

// ActiveMatchIDs lists the matches the economy ticks should visit.
func (e *Engine) ActiveMatchIDs(ctx context.Context) ([]int64, error) {
	return e.store.ListMatchIDs(ctx, models.MatchPending, models.MatchRunning)
}
