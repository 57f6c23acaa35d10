package engine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/avvvet/realm-services/internal/enginesvc/engine"
	"github.com/avvvet/realm-services/internal/enginesvc/models"
	"github.com/avvvet/realm-services/internal/enginesvc/store"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recorder struct {
	mu     sync.Mutex
	events []engine.MatchEvent
}

func (r *recorder) Notify(_ context.Context, ev engine.MatchEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) types() []engine.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]engine.EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

type fixture struct {
	eng   *engine.Engine
	store *store.MemoryStore
	clock *clock
	rec   *recorder
}

func newFixture(t *testing.T, opts ...engine.Option) *fixture {
	t.Helper()
	f := &fixture{store: store.NewMemoryStore(), clock: newClock(), rec: &recorder{}}
	opts = append([]engine.Option{
		engine.WithClock(f.clock.Now),
		engine.WithPicker(func(int) int { return 0 }),
		engine.WithNotifier(f.rec),
	}, opts...)
	f.eng = engine.New(f.store, opts...)
	return f
}

func (f *fixture) create(t *testing.T, players, width, height int) *models.Match {
	t.Helper()
	m, err := f.eng.Create(context.Background(), engine.CreateMatchRequest{
		Players: players,
		Width:   width,
		Height:  height,
		Bots:    make([]bool, players),
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) start(t *testing.T, matchID int64) {
	t.Helper()
	m, err := f.eng.Start(context.Background(), matchID)
	require.NoError(t, err)
	require.Equal(t, models.MatchRunning, m.Status)
}

func (f *fixture) place(t *testing.T, matchID int64, seat, x, y int) {
	t.Helper()
	out, err := f.eng.Place(context.Background(), matchID, seat, x, y)
	require.NoError(t, err)
	require.True(t, out.Success, "place seat %d at (%d,%d): %s", seat, x, y, out.Message)
}

func (f *fixture) player(t *testing.T, matchID int64, seat int) *models.Player {
	t.Helper()
	p, err := f.eng.Player(context.Background(), matchID, seat)
	require.NoError(t, err)
	return p
}

func (f *fixture) cell(t *testing.T, matchID int64, x, y int) *models.BoardCell {
	t.Helper()
	c, err := f.eng.Cell(context.Background(), matchID, x, y)
	require.NoError(t, err)
	return c
}

func (f *fixture) match(t *testing.T, matchID int64) *models.Match {
	t.Helper()
	m, err := f.eng.Get(context.Background(), matchID)
	require.NoError(t, err)
	return m
}

// editPlayer changes a seat directly in the store, bypassing the rules.
func (f *fixture) editPlayer(t *testing.T, matchID int64, seat int, edit func(p *models.Player)) {
	t.Helper()
	err := f.store.InTx(context.Background(), func(tx engine.Tx) error {
		p, err := tx.GetPlayer(context.Background(), matchID, seat)
		if err != nil {
			return err
		}
		edit(p)
		return tx.SavePlayer(context.Background(), p)
	})
	require.NoError(t, err)
}

// editCell changes a cell directly in the store, bypassing the rules.
func (f *fixture) editCell(t *testing.T, matchID int64, x, y int, edit func(c *models.BoardCell)) {
	t.Helper()
	err := f.store.InTx(context.Background(), func(tx engine.Tx) error {
		c, err := tx.GetCell(context.Background(), matchID, x, y)
		if err != nil {
			return err
		}
		edit(c)
		return tx.SaveCell(context.Background(), c)
	})
	require.NoError(t, err)
}

// findRegion returns the first cell of the region in row-major order.
func (f *fixture) findRegion(t *testing.T, matchID int64, region models.Region) *models.BoardCell {
	t.Helper()
	b, err := f.eng.Board(context.Background(), matchID)
	require.NoError(t, err)
	for _, c := range b.Cells {
		if c.Region == region {
			return c
		}
	}
	t.Fatalf("no %s cell on the board", region)
	return nil
}

func intPtr(n int) *int { return &n }

func int64Ptr(n int64) *int64 { return &n }
