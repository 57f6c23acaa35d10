package engine

import (
	"context"

	"github.com/avvvet/realm-services/internal/enginesvc/models"
)

// Store is the persistence the engine runs against. Every command or tick is
// executed as one InTx call; reads use View. Getters return (nil, nil) when
// the row does not exist.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx Tx) error) error
	ListMatchIDs(ctx context.Context, statuses ...models.MatchStatus) ([]int64, error)
}

type Tx interface {
	CreateMatch(ctx context.Context, m *models.Match) error
	GetMatch(ctx context.Context, id int64) (*models.Match, error)
	SaveMatch(ctx context.Context, m *models.Match) error
	ListMatches(ctx context.Context, status models.MatchStatus) ([]*models.Match, error)

	InsertPlayers(ctx context.Context, players []*models.Player) error
	GetPlayer(ctx context.Context, matchID int64, seat int) (*models.Player, error)
	ListPlayers(ctx context.Context, matchID int64) ([]*models.Player, error) // by seat
	SavePlayer(ctx context.Context, p *models.Player) error

	InsertCells(ctx context.Context, cells []*models.BoardCell) error
	GetCell(ctx context.Context, matchID int64, x, y int) (*models.BoardCell, error)
	ListCells(ctx context.Context, matchID int64) ([]*models.BoardCell, error) // by y, then x
	SaveCell(ctx context.Context, c *models.BoardCell) error

	CreateTrade(ctx context.Context, t *models.TradeOffer) error
	GetTrade(ctx context.Context, matchID, offerID int64) (*models.TradeOffer, error)
	ListTrades(ctx context.Context, matchID int64, status models.TradeStatus) ([]*models.TradeOffer, error)
	SaveTrade(ctx context.Context, t *models.TradeOffer) error

	AppendAction(ctx context.Context, a *models.ActionLogEntry) error
	ListActions(ctx context.Context, matchID int64) ([]*models.ActionLogEntry, error)
}
