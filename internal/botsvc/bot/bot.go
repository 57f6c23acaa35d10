// Package bot plays the seats flagged as bots. It follows committed match
// events, asks the engine for a snapshot and answers with the advisor's move.
package bot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/avvvet/realm-services/internal/comm"
	"github.com/avvvet/realm-services/internal/enginesvc/advisor"
	"github.com/avvvet/realm-services/internal/enginesvc/engine"
	"github.com/avvvet/realm-services/internal/enginesvc/models"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// Requester is the part of a NATS connection the bot needs.
type Requester interface {
	Request(subj string, data []byte, timeout time.Duration) (*nats.Msg, error)
}

type Bot struct {
	conn    Requester
	timeout time.Duration
}

func New(conn Requester, timeout time.Duration) *Bot {
	return &Bot{conn: conn, timeout: timeout}
}

type reply struct {
	Message string          `json:"message"`
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// HandleEvent is the engine.events subscription callback.
func (b *Bot) HandleEvent(msg *nats.Msg) {
	var ws comm.WSMessage
	if err := json.Unmarshal(msg.Data, &ws); err != nil {
		log.Errorf("Failed to unmarshal WSMessage: %v", err)
		return
	}
	if ws.Type != comm.TypeMatchEvent {
		return
	}

	var ev engine.MatchEvent
	if err := json.Unmarshal(ws.Data, &ev); err != nil {
		log.Errorf("Failed to unmarshal match event: %v", err)
		return
	}

	switch ev.Type {
	case engine.EventMatchCreated:
		b.placeHouses(ev.MatchID)
	case engine.EventMatchStarted, engine.EventActionApplied, engine.EventPlayerEliminated:
		b.playTurn(ev.MatchID)
	}
}

// placeHouses puts a starting house down for every bot seat still without one.
func (b *Bot) placeHouses(matchID int64) {
	snap, err := b.snapshot(matchID)
	if err != nil {
		log.Errorf("[bot] match %d snapshot: %v", matchID, err)
		return
	}

	for _, p := range snap.Players {
		if !p.Bot || owns(snap, p.Seat) {
			continue
		}
		// re-read so two bots never pick the same cell
		if snap, err = b.snapshot(matchID); err != nil {
			log.Errorf("[bot] match %d snapshot: %v", matchID, err)
			return
		}
		if snap.Match.Status != models.MatchPending {
			return
		}

		x, y, ok := advisor.StartingCell(snap, p.Seat)
		if !ok {
			log.Warnf("[bot] match %d: no free cell for seat %d", matchID, p.Seat)
			return
		}
		b.command(comm.TypePlace, comm.MoveCommand{MatchID: matchID, Seat: p.Seat, X: x, Y: y})
	}
}

// playTurn moves for the seat to play when that seat is a bot.
func (b *Bot) playTurn(matchID int64) {
	snap, err := b.snapshot(matchID)
	if err != nil {
		log.Errorf("[bot] match %d snapshot: %v", matchID, err)
		return
	}
	if snap.Match.Status != models.MatchRunning || snap.Match.CurrentTurn == nil {
		return
	}

	seat := *snap.Match.CurrentTurn
	me := player(snap, seat)
	if me == nil || !me.Bot || !me.Alive {
		return
	}

	advice := advisor.Recommend(snap, seat)
	log.Debugf("[bot] match %d seat %d: %s (%s)", matchID, seat, advice.Action, advice.Reason)

	move := comm.MoveCommand{MatchID: matchID, Seat: seat}
	switch advice.Action {
	case advisor.ActionBuild, advisor.ActionAttack:
		move.X, move.Y = *advice.X, *advice.Y
		typ := comm.TypeBuild
		if advice.Action == advisor.ActionAttack {
			typ = comm.TypeAttack
		}
		if b.command(typ, move) {
			return
		}
	case advisor.ActionTradeOffer:
		if advice.Give != "" && advice.Get != "" {
			anyone := models.AnySeat
			b.command(comm.TypeCreateTrade, comm.CreateTradeCommand{
				MatchID: matchID,
				From:    &seat,
				To:      &anyone,
				Give:    string(advice.Give),
				Get:     string(advice.Get),
			})
		}
	}

	b.command(comm.TypeEndTurn, move)
}

func (b *Bot) snapshot(matchID int64) (*engine.Snapshot, error) {
	rsp, err := b.request(comm.TypeGetSnapshot, comm.SnapshotRequest{MatchID: matchID})
	if err != nil {
		return nil, err
	}
	if rsp.Code != 200 {
		return nil, fmt.Errorf("%s: %s", rsp.Message, rsp.Error)
	}

	var snap engine.Snapshot
	if err := json.Unmarshal(rsp.Data, &snap); err != nil {
		return nil, err
	}
	if snap.Match == nil {
		return nil, fmt.Errorf("snapshot without match")
	}
	return &snap, nil
}

// command sends one command and reports whether the engine applied it.
func (b *Bot) command(typ string, payload interface{}) bool {
	rsp, err := b.request(typ, payload)
	if err != nil {
		log.Errorf("[bot] %s: %v", typ, err)
		return false
	}
	if rsp.Code >= 300 {
		log.Infof("[bot] %s refused: %s", typ, rsp.Message)
		return false
	}
	log.Debugf("[bot] %s: %s", typ, rsp.Message)
	return true
}

func (b *Bot) request(typ string, payload interface{}) (*reply, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := json.Marshal(comm.WSMessage{Type: typ, Data: data})
	if err != nil {
		return nil, err
	}

	msg, err := b.conn.Request(comm.TopicCommand, req, b.timeout)
	if err != nil {
		return nil, err
	}

	var ws comm.WSMessage
	if err := json.Unmarshal(msg.Data, &ws); err != nil {
		return nil, err
	}
	var rsp reply
	if err := json.Unmarshal(ws.Data, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

func player(s *engine.Snapshot, seat int) *models.Player {
	for _, p := range s.Players {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}

func owns(s *engine.Snapshot, seat int) bool {
	for _, c := range s.Board.Cells {
		if c.Owner == seat {
			return true
		}
	}
	return false
}
