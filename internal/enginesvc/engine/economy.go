package engine

import (
	"context"

	"github.com/avvvet/realm-services/internal/enginesvc/models"
	log "github.com/sirupsen/logrus"
)

type tickFunc func(u *unit, m *models.Match) (Outcome, error)

// tick runs fn under the match lock. Ticks write no audit entry.
func (e *Engine) tick(ctx context.Context, matchID int64, fn tickFunc) (Outcome, error) {
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
		return err
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// ResourceGain credits every alive seat with the yield of the cells it owns.
// A seat owning at least two cells of a region gets a double yield from each
// of them.
func (e *Engine) ResourceGain(ctx context.Context, matchID int64) (Outcome, error) {
	return e.tick(ctx, matchID, func(u *unit, m *models.Match) (Outcome, error) {
		cells, err := u.ListCells(ctx, matchID)
		if err != nil {
			return Outcome{}, err
		}
		if len(cells) == 0 {
			return ok(CodeNoCells), nil
		}

		players, err := u.ListPlayers(ctx, matchID)
		if err != nil {
			return Outcome{}, err
		}
		if len(players) == 0 {
			return fail(CodeNoPlayers), nil
		}

		owned := make(map[int]map[models.Region]int)
		for _, c := range cells {
			if !c.Owned() {
				continue
			}
			if owned[c.Owner] == nil {
				owned[c.Owner] = make(map[models.Region]int)
			}
			owned[c.Owner][c.Region]++
		}
		if len(owned) == 0 {
			return ok(CodeNoHouses), nil
		}

		gains := make(map[int]map[models.Resource]int)
		for _, c := range cells {
			if !c.Owned() {
				continue
			}
			choices := models.Yield[c.Region]
			if len(choices) == 0 {
				continue
			}
			res := choices[0]
			if len(choices) > 1 {
				res = choices[e.pick(len(choices))]
			}

			amount := 1
			if owned[c.Owner][c.Region] >= models.BonusThreshold {
				amount = 2
			}
			if gains[c.Owner] == nil {
				gains[c.Owner] = make(map[models.Resource]int)
			}
			gains[c.Owner][res] += amount
		}

		credited := false
		for _, p := range players {
			g, has := gains[p.Seat]
			if !has || !p.Alive {
				continue
			}
			for _, r := range models.Resources {
				p.Add(r, g[r])
			}
			if err := u.SavePlayer(ctx, p); err != nil {
				return Outcome{}, err
			}
			credited = true
		}
		if !credited {
			return ok(CodeNoGain), nil
		}

		u.emit(MatchEvent{Type: EventResourcesGained, MatchID: matchID, Code: CodeResourceGainApplied})
		log.Debugf("match %d: resources gained by %d seats", matchID, len(gains))
		return ok(CodeResourceGainApplied), nil
	})
}

// LightningRecharge gives every alive seat one lightning, but only once all of
// them have spent their last charge.
func (e *Engine) LightningRecharge(ctx context.Context, matchID int64) (Outcome, error) {
	return e.tick(ctx, matchID, func(u *unit, m *models.Match) (Outcome, error) {
		players, err := u.ListPlayers(ctx, matchID)
		if err != nil {
			return Outcome{}, err
		}
		if len(players) == 0 {
			return fail(CodeNoPlayers), nil
		}

		var alive []*models.Player
		for _, p := range players {
			if p.Alive {
				alive = append(alive, p)
			}
		}
		if len(alive) == 0 {
			return ok(CodeNoAlivePlayers), nil
		}
		for _, p := range alive {
			if p.Lightning > 0 {
				return ok(CodeSomeHaveLightning), nil
			}
		}

		for _, p := range alive {
			p.Lightning++
			if err := u.SavePlayer(ctx, p); err != nil {
				return Outcome{}, err
			}
		}

		u.emit(MatchEvent{Type: EventLightningRecharged, MatchID: matchID, Code: CodeLightningRecharged})
		log.Debugf("match %d: lightning recharged for %d seats", matchID, len(alive))
		return ok(CodeLightningRecharged), nil
	})
}
