// Package advisor scores the moves open to a seat and recommends one. It is
// used by the bot player and the advice endpoint and never mutates a match.
package advisor

import (
	"fmt"
	"math"
	"strings"

	"github.com/avvvet/realm-services/internal/enginesvc/engine"
	"github.com/avvvet/realm-services/internal/enginesvc/models"
)

type Action string

const (
	ActionPlace      Action = "PLACE_STARTING_HOUSE"
	ActionBuild      Action = "BUILD"
	ActionAttack     Action = "ATTACK"
	ActionTradeOffer Action = "TRADE_OFFER"
	ActionEndTurn    Action = "END_TURN"
)

// regionValue ranks regions by how much they are worth holding.
var regionValue = map[models.Region]int{
	models.Sky:       1,
	models.Forest:    3,
	models.Waters:    2,
	models.Villages:  4,
	models.Mountains: 2,
}

type Advice struct {
	Action     Action          `json:"action"`
	X          *int            `json:"x,omitempty"`
	Y          *int            `json:"y,omitempty"`
	Give       models.Resource `json:"give,omitempty"`
	Get        models.Resource `json:"get,omitempty"`
	Reason     string          `json:"reason"`
	Score      int             `json:"score"`
	Confidence int             `json:"confidence"` // 0..100
}

type candidate struct {
	advice Advice
	score  int
}

// Recommend picks the best move for seat in the snapshot.
func Recommend(s *engine.Snapshot, seat int) Advice {
	me := findPlayer(s, seat)
	if me == nil || !me.Alive {
		return Advice{Action: ActionEndTurn, Reason: "Seat is not in play."}
	}
	if s.Match.Status != models.MatchRunning {
		return Advice{Action: ActionEndTurn, Reason: "Match not running."}
	}
	if !s.Match.IsTurnOf(seat) {
		return Advice{Action: ActionEndTurn, Reason: "Wait for your turn."}
	}

	grid := newGrid(s.Board)
	var candidates []candidate

	if c, score, ok := bestBuild(grid, me); ok {
		reason := "Expanding territory to valuable regions and consolidating power."
		if grid.count(seat) == 0 {
			reason = "Building first house to establish territory."
		}
		candidates = append(candidates, candidate{at(ActionBuild, c, reason), 10 + score})
	}

	if c, score, ok := bestAttack(grid, s.Players, me); ok {
		reason := "Attacking to eliminate enemy presence and resources."
		if c.Hits >= models.RazeHits-1 {
			reason = "Finishing off a weakened enemy house."
		}
		candidates = append(candidates, candidate{at(ActionAttack, c, reason), 8 + score})
	}

	candidates = append(candidates, tradeCandidate(me))
	candidates = append(candidates, candidate{Advice{
		Action: ActionEndTurn,
		Reason: "No strong strategic move available; passing turn.",
	}, 1})

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.score > best.score {
			best = c
		}
	}
	second := 0
	for _, c := range candidates {
		if c.advice.Action != best.advice.Action && c.score > second {
			second = c.score
		}
	}

	advice := best.advice
	advice.Score = best.score
	advice.Confidence = confidence(best.score, second)
	return advice
}

// StartingCell suggests where seat should place its house before the match
// starts. ok is false when the board has no free cell.
func StartingCell(s *engine.Snapshot, seat int) (x, y int, ok bool) {
	grid := newGrid(s.Board)
	bestScore := math.MinInt
	for _, c := range grid.cells {
		if c.Owned() {
			continue
		}
		score := buildScore(grid, c, seat)
		// keep away from rival houses while we are alone
		score -= grid.adjacentRivals(c, seat)
		if score > bestScore {
			bestScore, x, y, ok = score, c.X, c.Y, true
		}
	}
	return x, y, ok
}

// Opening is the advice for a pending match: where to place the house.
func Opening(s *engine.Snapshot, seat int) Advice {
	x, y, ok := StartingCell(s, seat)
	if !ok {
		return Advice{Action: ActionEndTurn, Reason: "No free cell left."}
	}
	return Advice{
		Action:     ActionPlace,
		X:          &x,
		Y:          &y,
		Reason:     "Placing the starting house on a valuable free cell.",
		Confidence: 100,
	}
}

func confidence(best, second int) int {
	c := math.Round(float64(best-second) / float64(best+1) * 100)
	return int(math.Max(0, math.Min(100, c)))
}

func at(a Action, c *models.BoardCell, reason string) Advice {
	x, y := c.X, c.Y
	return Advice{Action: a, X: &x, Y: &y, Reason: reason}
}

func findPlayer(s *engine.Snapshot, seat int) *models.Player {
	for _, p := range s.Players {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}

func bestBuild(g *grid, me *models.Player) (*models.BoardCell, int, bool) {
	var best *models.BoardCell
	bestScore := math.MinInt
	for _, c := range g.cells {
		if c.Owned() || !me.CanAfford(models.BuildCost[c.Region]) {
			continue
		}
		if score := buildScore(g, c, me.Seat); score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore, best != nil
}

func buildScore(g *grid, c *models.BoardCell, seat int) int {
	adj := g.adjacentOwned(c, seat)
	score := regionValue[c.Region]*3 + adj*2
	if adj == 0 {
		score--
	}
	return score
}

func bestAttack(g *grid, players []*models.Player, me *models.Player) (*models.BoardCell, int, bool) {
	if me.Lightning < 1 {
		return nil, 0, false
	}

	alive := make(map[int]bool, len(players))
	for _, p := range players {
		alive[p.Seat] = p.Alive
	}

	var best *models.BoardCell
	bestScore := math.MinInt
	for _, c := range g.cells {
		if !c.Owned() || c.Owner == me.Seat || !alive[c.Owner] {
			continue
		}

		score := 5
		switch {
		case c.Hits >= 2:
			score = 15
		case c.Hits >= 1:
			score = 8
		}
		houses := g.count(c.Owner)
		if houses <= 2 {
			score += 10
		}
		if houses <= 1 {
			score += 20
		}
		score += regionValue[c.Region] * 2

		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore, best != nil
}

// tradeCandidate offers the most plentiful resource for the first missing one.
func tradeCandidate(me *models.Player) candidate {
	var deficits []models.Resource
	plenty := models.Resources[0]
	for _, r := range models.Resources {
		if me.Amount(r) < 1 {
			deficits = append(deficits, r)
		}
		if me.Amount(r) > me.Amount(plenty) {
			plenty = r
		}
	}

	a := Advice{Action: ActionTradeOffer, Reason: "Trading to optimize resource balance."}
	if len(deficits) > 0 {
		names := make([]string, len(deficits))
		for i, r := range deficits {
			names[i] = strings.ToLower(string(r))
		}
		a.Reason = fmt.Sprintf("Trading to acquire needed resources: %s.", strings.Join(names, ", "))
		if me.Amount(plenty) > 0 {
			a.Give, a.Get = plenty, deficits[0]
		}
	}

	score := 2
	if len(deficits) >= 2 {
		score = 6
	}
	return candidate{a, score}
}
