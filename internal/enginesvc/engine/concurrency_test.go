package engine_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/avvvet/realm-services/internal/enginesvc/engine"
	"github.com/avvvet/realm-services/internal/enginesvc/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestConcurrentTicksDoNotLoseUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const matches, ticks = 4, 25
	ids := make([]int64, matches)
	for i := range ids {
		m := f.create(t, 2, 5, 5)
		f.own(t, m.ID, 1, f.findRegion(t, m.ID, models.Forest))
		ids[i] = m.ID
	}

	var g errgroup.Group
	for _, id := range ids {
		for i := 0; i < ticks; i++ {
			id := id
			g.Go(func() error {
				_, err := f.eng.ResourceGain(ctx, id)
				return err
			})
		}
	}
	require.NoError(t, g.Wait())

	for _, id := range ids {
		assert.Equal(t, 2+ticks, f.player(t, id, 1).Wood)
	}
}

func TestConcurrentEndTurnsKeepTurnOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.create(t, 2, 2, 2)
	f.start(t, m.ID)

	var (
		wg        sync.WaitGroup
		successes int64
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		seat := i%2 + 1
		go func() {
			defer wg.Done()
			out, err := f.eng.EndTurn(ctx, m.ID, seat)
			if err == nil && out.Success {
				atomic.AddInt64(&successes, 1)
			}
		}()
	}
	wg.Wait()

	want := 1
	if successes%2 == 1 {
		want = 2
	}
	assert.Equal(t, want, *f.match(t, m.ID).CurrentTurn)

	entries, err := f.eng.ListActions(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, entries, int(successes))
	for i, e := range entries {
		assert.Equal(t, i%2+1, e.Seat, "entry %d", i)
		assert.Equal(t, models.ActionEndTurn, e.Type)
	}
}

func TestConcurrentAcceptsSwapOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.create(t, 4, 2, 2)
	tr := f.offer(t, m.ID, 1, models.AnySeat, "WOOD", "STONE")

	var accepted int64
	var g errgroup.Group
	for seat := 2; seat <= 4; seat++ {
		seat := seat
		g.Go(func() error {
			out, err := f.eng.AcceptTrade(ctx, m.ID, tr.ID, intPtr(seat))
			if out.Message == engine.CodeTradeAccepted {
				atomic.AddInt64(&accepted, 1)
			}
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(1), accepted)
	assert.Equal(t, 1, f.player(t, m.ID, 1).Wood)
	assert.Equal(t, 3, f.player(t, m.ID, 1).Stone)
}
