package engine

import (
	"context"
	"fmt"

	"github.com/avvvet/realm-services/internal/enginesvc/models"
	log "github.com/sirupsen/logrus"
)

type CreateMatchRequest struct {
	Players int    `json:"players"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Bots    []bool `json:"bots"` // one flag per seat
}

func (r CreateMatchRequest) Validate() error {
	if r.Players < 2 {
		return failure(CodeValidation, "players must be >= 2")
	}
	if r.Width < 1 || r.Height < 1 {
		return failure(CodeValidation, "width/height must be >= 1")
	}
	if len(r.Bots) != r.Players {
		return failure(CodeValidation, "bots list size must equal players")
	}
	return nil
}

// Create stores a pending match with its seats and a fresh board in one unit of work.
func (e *Engine) Create(ctx context.Context, req CreateMatchRequest) (*models.Match, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	m := &models.Match{
		Status:    models.MatchPending,
		Players:   req.Players,
		Width:     req.Width,
		Height:    req.Height,
		CreatedAt: e.now(),
	}
	regions := GenerateBoard(req.Width, req.Height)

	err := e.inTx(ctx, func(u *unit) error {
		if err := u.CreateMatch(ctx, m); err != nil {
			return err
		}

		players := make([]*models.Player, 0, req.Players)
		for seat := 1; seat <= req.Players; seat++ {
			players = append(players, &models.Player{
				MatchID:   m.ID,
				Seat:      seat,
				Bot:       req.Bots[seat-1],
				Alive:     true,
				Lightning: models.StartingLightning,
				Wood:      models.StartingStock,
				Stone:     models.StartingStock,
				Glass:     models.StartingStock,
				Force:     models.StartingStock,
			})
		}
		if err := u.InsertPlayers(ctx, players); err != nil {
			return err
		}

		cells := make([]*models.BoardCell, 0, req.Width*req.Height)
		for y := 0; y < req.Height; y++ {
			for x := 0; x < req.Width; x++ {
				cells = append(cells, &models.BoardCell{
					MatchID: m.ID,
					X:       x,
					Y:       y,
					Region:  regions[y][x],
					Owner:   models.Unowned,
				})
			}
		}
		if err := u.InsertCells(ctx, cells); err != nil {
			return err
		}

		u.emit(MatchEvent{Type: EventMatchCreated, MatchID: m.ID, Match: matchCopy(m)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Infof("match %d created: %d players on %dx%d", m.ID, m.Players, m.Width, m.Height)
	return m, nil
}

// Start moves a pending match to running with seat 1 to move. Any other
// status is returned unchanged.
func (e *Engine) Start(ctx context.Context, matchID int64) (*models.Match, error) {
	var m *models.Match
	err := e.withMatch(ctx, matchID, func(u *unit) error {
		var err error
		if m, err = mustMatch(ctx, u, matchID); err != nil {
			return err
		}
		if m.Status != models.MatchPending {
			return nil
		}

		now := e.now()
		first := 1
		m.Status = models.MatchRunning
		m.CurrentTurn = &first
		m.StartedAt = &now
		if err := u.SaveMatch(ctx, m); err != nil {
			return err
		}
		u.emit(MatchEvent{Type: EventMatchStarted, MatchID: m.ID, Match: matchCopy(m)})
		log.Infof("match %d started", m.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Stop finishes a pending or running match. Finished matches are returned unchanged.
func (e *Engine) Stop(ctx context.Context, matchID int64) (*models.Match, error) {
	var m *models.Match
	err := e.withMatch(ctx, matchID, func(u *unit) error {
		var err error
		if m, err = mustMatch(ctx, u, matchID); err != nil {
			return err
		}
		if m.Status == models.MatchFinished {
			return nil
		}

		e.finish(m)
		if err := u.SaveMatch(ctx, m); err != nil {
			return err
		}
		u.emit(MatchEvent{Type: EventMatchStopped, MatchID: m.ID, Match: matchCopy(m)})
		log.Infof("match %d stopped", m.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (e *Engine) finish(m *models.Match) {
	now := e.now()
	m.Status = models.MatchFinished
	m.CurrentTurn = nil
	m.FinishedAt = &now
}

func mustMatch(ctx context.Context, tx Tx, matchID int64) (*models.Match, error) {
	m, err := tx.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, failure(CodeMatchNotFound, fmt.Sprintf("match %d", matchID))
	}
	return m, nil
}

// advanceTurn hands the move to the next alive seat after the current one,
// wrapping from N back to 1. The turn stays put when nobody else is alive.
func advanceTurn(m *models.Match, players []*models.Player) {
	if m.CurrentTurn == nil || len(players) == 0 {
		return
	}

	alive := make(map[int]bool, len(players))
	for _, p := range players {
		alive[p.Seat] = p.Alive
	}

	n := len(players)
	cur := *m.CurrentTurn
	for i := 1; i < n; i++ {
		seat := (cur-1+i)%n + 1
		if alive[seat] {
			m.CurrentTurn = &seat
			return
		}
	}
}
