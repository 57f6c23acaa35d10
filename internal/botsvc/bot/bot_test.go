package bot

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/avvvet/realm-services/internal/comm"
	"github.com/avvvet/realm-services/internal/enginesvc/broker"
	"github.com/avvvet/realm-services/internal/enginesvc/engine"
	"github.com/avvvet/realm-services/internal/enginesvc/store"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loopback answers requests with the engine broker in-process.
type loopback struct {
	b     *broker.Broker
	calls []string
}

func (l *loopback) Request(subj string, data []byte, _ time.Duration) (*nats.Msg, error) {
	var ws comm.WSMessage
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, err
	}
	l.calls = append(l.calls, ws.Type)

	rsp := l.b.Dispatch(context.Background(), &ws)
	body, err := json.Marshal(rsp)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(comm.WSMessage{Type: comm.ResponseType(ws.Type), Data: body})
	if err != nil {
		return nil, err
	}
	return &nats.Msg{Subject: subj, Data: out}, nil
}

func setup(t *testing.T, bots ...bool) (*Bot, *loopback, *engine.Engine, int64) {
	t.Helper()
	eng := engine.New(store.NewMemoryStore())
	b := broker.NewBroker(nil)
	b.Engine = eng

	m, err := eng.Create(context.Background(), engine.CreateMatchRequest{
		Players: len(bots), Width: 4, Height: 4, Bots: bots,
	})
	require.NoError(t, err)

	lb := &loopback{b: b}
	return New(lb, time.Second), lb, eng, m.ID
}

func event(t *testing.T, typ engine.EventType, matchID int64) *nats.Msg {
	t.Helper()
	data, err := json.Marshal(engine.MatchEvent{Type: typ, MatchID: matchID})
	require.NoError(t, err)
	payload, err := json.Marshal(comm.WSMessage{Type: comm.TypeMatchEvent, Data: data})
	require.NoError(t, err)
	return &nats.Msg{Subject: comm.TopicEvents, Data: payload}
}

func ownedBy(t *testing.T, eng *engine.Engine, matchID int64, seat int) int {
	t.Helper()
	b, err := eng.Board(context.Background(), matchID)
	require.NoError(t, err)
	n := 0
	for _, c := range b.Cells {
		if c.Owner == seat {
			n++
		}
	}
	return n
}

func TestBotsPlaceStartingHouses(t *testing.T) {
	bot, _, eng, id := setup(t, false, true, true)

	bot.HandleEvent(event(t, engine.EventMatchCreated, id))

	assert.Equal(t, 0, ownedBy(t, eng, id, 1))
	assert.Equal(t, 1, ownedBy(t, eng, id, 2))
	assert.Equal(t, 1, ownedBy(t, eng, id, 3))

	// a second delivery does not place again
	bot.HandleEvent(event(t, engine.EventMatchCreated, id))
	assert.Equal(t, 1, ownedBy(t, eng, id, 2))
}

func TestBotPlaysItsTurn(t *testing.T) {
	ctx := context.Background()
	bot, _, eng, id := setup(t, false, true)

	_, err := eng.Place(ctx, id, 1, 0, 0)
	require.NoError(t, err)
	_, err = eng.Place(ctx, id, 2, 3, 3)
	require.NoError(t, err)
	_, err = eng.Start(ctx, id)
	require.NoError(t, err)

	out, err := eng.EndTurn(ctx, id, 1)
	require.NoError(t, err)
	require.True(t, out.Success)

	bot.HandleEvent(event(t, engine.EventActionApplied, id))

	m, err := eng.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, m.CurrentTurn)
	assert.Equal(t, 1, *m.CurrentTurn)

	entries, err := eng.ListActions(ctx, id)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, 2, last.Seat)
}

func TestBotWaitsOnHumanTurn(t *testing.T) {
	ctx := context.Background()
	bot, lb, eng, id := setup(t, false, true)

	_, err := eng.Start(ctx, id)
	require.NoError(t, err)

	bot.HandleEvent(event(t, engine.EventMatchStarted, id))

	assert.Equal(t, []string{comm.TypeGetSnapshot}, lb.calls)
	m, err := eng.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, *m.CurrentTurn)
}

func TestIgnoresOtherMessages(t *testing.T) {
	bot, lb, _, _ := setup(t, true, true)

	bot.HandleEvent(&nats.Msg{Data: []byte(`{"type":"build-response","data":{}}`)})
	bot.HandleEvent(&nats.Msg{Data: []byte(`garbage`)})
	bot.HandleEvent(event(t, engine.EventResourcesGained, 1))

	assert.Empty(t, lb.calls)
}
