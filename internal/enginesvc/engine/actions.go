package engine

import (
	"context"
	"fmt"

	"github.com/avvvet/realm-services/internal/enginesvc/models"
	log "github.com/sirupsen/logrus"
)

type commandFunc func(u *unit, m *models.Match) (Outcome, error)

// command loads the match under its lock, runs fn and, when fn succeeds,
// appends exactly one audit entry in the same unit of work.
func (e *Engine) command(ctx context.Context, matchID int64, seat int, action models.ActionType, fn commandFunc) (Outcome, error) {
	var out Outcome
	err := e.withMatch(ctx, matchID, func(u *unit) error {
		m, err := u.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if m == nil {
			out = fail(CodeMatchNotFound)
			return nil
		}

		out, err = fn(u, m)
		if err != nil || !out.Success {
			return err
		}

		entry := &models.ActionLogEntry{
			MatchID: matchID,
			Seat:    seat,
			Type:    action,
			Message: out.auditMessage(),
			Ts:      e.now(),
		}
		if err := u.AppendAction(ctx, entry); err != nil {
			return err
		}
		u.emit(MatchEvent{
			Type:    EventActionApplied,
			MatchID: matchID,
			Seat:    seat,
			Code:    out.Message,
			Match:   matchCopy(m),
			Entry:   entry,
		})
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	log.Debugf("match %d seat %d %s: %s", matchID, seat, action, out.Message)
	return out, nil
}

// livePlayer loads seat and checks it is still in the game. A nil player
// comes back with the failure outcome to report.
func livePlayer(ctx context.Context, tx Tx, matchID int64, seat int) (*models.Player, Outcome, error) {
	p, err := tx.GetPlayer(ctx, matchID, seat)
	if err != nil {
		return nil, Outcome{}, err
	}
	if p == nil {
		return nil, fail(CodePlayerNotFound), nil
	}
	if !p.Alive {
		return nil, fail(CodePlayerDead), nil
	}
	return p, Outcome{}, nil
}

// Place puts a starting house on a free cell before the match starts.
func (e *Engine) Place(ctx context.Context, matchID int64, seat, x, y int) (Outcome, error) {
	return e.command(ctx, matchID, seat, models.ActionPlace, func(u *unit, m *models.Match) (Outcome, error) {
		if m.Status != models.MatchPending {
			return fail(CodePlaceNotPending), nil
		}

		p, out, err := livePlayer(ctx, u, matchID, seat)
		if p == nil {
			return out, err
		}

		cell, err := u.GetCell(ctx, matchID, x, y)
		if err != nil {
			return Outcome{}, err
		}
		if cell == nil {
			return fail(CodeCellNotFound), nil
		}
		if cell.Owned() {
			return fail(CodeCellOccupied), nil
		}

		cell.SetOwner(seat)
		if err := u.SaveCell(ctx, cell); err != nil {
			return Outcome{}, err
		}
		return ok(CodeHousePlaced).withNote(fmt.Sprintf("at (%d,%d) %s", x, y, cell.Region)), nil
	})
}

// Build buys a house on a free cell at the price of its region and passes the turn.
func (e *Engine) Build(ctx context.Context, matchID int64, seat, x, y int) (Outcome, error) {
	return e.command(ctx, matchID, seat, models.ActionBuild, func(u *unit, m *models.Match) (Outcome, error) {
		if m.Status != models.MatchRunning {
			return fail(CodeMatchNotRunning), nil
		}
		if !m.IsTurnOf(seat) {
			return fail(CodeNotYourTurn), nil
		}

		p, out, err := livePlayer(ctx, u, matchID, seat)
		if p == nil {
			return out, err
		}

		cell, err := u.GetCell(ctx, matchID, x, y)
		if err != nil {
			return Outcome{}, err
		}
		if cell == nil {
			return fail(CodeCellNotFound), nil
		}
		if cell.Owned() {
			return fail(CodeCellOccupied), nil
		}

		cost := models.BuildCost[cell.Region]
		if !p.CanAfford(cost) {
			return fail(CodeInsufficientResources), nil
		}

		p.Pay(cost)
		if err := u.SavePlayer(ctx, p); err != nil {
			return Outcome{}, err
		}
		cell.SetOwner(seat)
		if err := u.SaveCell(ctx, cell); err != nil {
			return Outcome{}, err
		}
		if err := e.passTurn(ctx, u, m); err != nil {
			return Outcome{}, err
		}
		return ok(CodeBuildSuccess).withNote(fmt.Sprintf("at (%d,%d) %s", x, y, cell.Region)), nil
	})
}

// EndTurn passes the move without any other change.
func (e *Engine) EndTurn(ctx context.Context, matchID int64, seat int) (Outcome, error) {
	return e.command(ctx, matchID, seat, models.ActionEndTurn, func(u *unit, m *models.Match) (Outcome, error) {
		if m.Status != models.MatchRunning {
			return fail(CodeMatchNotRunning), nil
		}
		if !m.IsTurnOf(seat) {
			return fail(CodeNotYourTurn), nil
		}

		if err := e.passTurn(ctx, u, m); err != nil {
			return Outcome{}, err
		}
		return ok(CodeTurnEnded), nil
	})
}

// Attack spends one lightning to hit a rival house. The third hit razes it;
// a seat left without houses is eliminated and the last seat alive wins.
func (e *Engine) Attack(ctx context.Context, matchID int64, seat, x, y int) (Outcome, error) {
	return e.command(ctx, matchID, seat, models.ActionAttack, func(u *unit, m *models.Match) (Outcome, error) {
		if m.Status != models.MatchRunning {
			return fail(CodeMatchNotRunning), nil
		}
		if !m.IsTurnOf(seat) {
			return fail(CodeNotYourTurn), nil
		}

		attacker, out, err := livePlayer(ctx, u, matchID, seat)
		if attacker == nil {
			return out, err
		}
		if attacker.Lightning <= 0 {
			return fail(CodeNoLightning), nil
		}

		cell, err := u.GetCell(ctx, matchID, x, y)
		if err != nil {
			return Outcome{}, err
		}
		if cell == nil {
			return fail(CodeCellNotFound), nil
		}
		if !cell.Owned() {
			return fail(CodeNoHouseHere), nil
		}
		victimSeat := cell.Owner
		if victimSeat == seat {
			return fail(CodeCannotAttackOwnHouse), nil
		}

		attacker.Lightning--
		if err := u.SavePlayer(ctx, attacker); err != nil {
			return Outcome{}, err
		}

		cell.Hits++
		hits := cell.Hits
		razed := hits >= models.RazeHits
		if razed {
			cell.SetOwner(models.Unowned)
		}
		if err := u.SaveCell(ctx, cell); err != nil {
			return Outcome{}, err
		}

		note := fmt.Sprintf("on seat %d at (%d,%d) hits=%d", victimSeat, x, y, hits)
		if razed {
			note = fmt.Sprintf("razed seat %d house at (%d,%d)", victimSeat, x, y)
			if err := e.settleRazing(ctx, u, m, victimSeat); err != nil {
				return Outcome{}, err
			}
		}

		if m.Status == models.MatchRunning {
			if err := e.passTurn(ctx, u, m); err != nil {
				return Outcome{}, err
			}
		}
		return ok(CodeAttackSuccess).withNote(note), nil
	})
}

// settleRazing eliminates the victim once they own no cell and finishes the
// match when a single seat remains alive.
func (e *Engine) settleRazing(ctx context.Context, u *unit, m *models.Match, victimSeat int) error {
	victim, err := u.GetPlayer(ctx, m.ID, victimSeat)
	if err != nil || victim == nil {
		return err
	}

	cells, err := u.ListCells(ctx, m.ID)
	if err != nil {
		return err
	}
	for _, c := range cells {
		if c.Owner == victimSeat {
			return nil
		}
	}

	victim.Alive = false
	if err := u.SavePlayer(ctx, victim); err != nil {
		return err
	}
	u.emit(MatchEvent{Type: EventPlayerEliminated, MatchID: m.ID, Seat: victimSeat})
	log.Infof("match %d: seat %d eliminated", m.ID, victimSeat)

	players, err := u.ListPlayers(ctx, m.ID)
	if err != nil {
		return err
	}
	var alive []*models.Player
	for _, p := range players {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	if len(alive) != 1 {
		return nil
	}

	winner := alive[0].Seat
	m.WinnerSeat = &winner
	e.finish(m)
	if err := u.SaveMatch(ctx, m); err != nil {
		return err
	}
	u.emit(MatchEvent{Type: EventMatchFinished, MatchID: m.ID, Seat: winner, Match: matchCopy(m)})
	log.Infof("match %d finished, winner seat %d", m.ID, winner)
	return nil
}

func (e *Engine) passTurn(ctx context.Context, u *unit, m *models.Match) error {
	players, err := u.ListPlayers(ctx, m.ID)
	if err != nil {
		return err
	}
	advanceTurn(m, players)
	return u.SaveMatch(ctx, m)
}
