package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/avvvet/realm-services/internal/enginesvc/engine"
	"github.com/avvvet/realm-services/internal/enginesvc/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cellsOf returns the cells of a region in row-major order.
func cellsOf(t *testing.T, f *fixture, matchID int64, region models.Region) []*models.BoardCell {
	t.Helper()
	b, err := f.eng.Board(context.Background(), matchID)
	require.NoError(t, err)
	var out []*models.BoardCell
	for _, c := range b.Cells {
		if c.Region == region {
			out = append(out, c)
		}
	}
	return out
}

func (f *fixture) own(t *testing.T, matchID int64, seat int, c *models.BoardCell) {
	f.editCell(t, matchID, c.X, c.Y, func(c *models.BoardCell) { c.SetOwner(seat) })
}

func TestResourceGainWithBonus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.create(t, 2, 5, 5)

	forests := cellsOf(t, f, m.ID, models.Forest)
	f.own(t, m.ID, 1, forests[0])
	f.own(t, m.ID, 1, forests[1])
	f.own(t, m.ID, 1, f.findRegion(t, m.ID, models.Sky))
	f.own(t, m.ID, 2, f.findRegion(t, m.ID, models.Waters))

	out, err := f.eng.ResourceGain(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, engine.CodeResourceGainApplied, out.Message)

	p1 := f.player(t, m.ID, 1)
	assert.Equal(t, 2+4, p1.Wood) // two forests, two each
	assert.Equal(t, 2+1, p1.Force)
	assert.Equal(t, 2, p1.Stone)
	assert.Equal(t, 2, p1.Glass)

	p2 := f.player(t, m.ID, 2)
	assert.Equal(t, 2+1, p2.Glass)
	assert.Equal(t, 2, p2.Wood)

	assert.Equal(t, engine.EventResourcesGained, f.rec.types()[len(f.rec.types())-1])

	// ticks write no audit entries
	entries, err := f.eng.ListActions(ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResourceGainVillagesUsePicker(t *testing.T) {
	var asked []int
	f := newFixture(t, engine.WithPicker(func(n int) int {
		asked = append(asked, n)
		return 1
	}))
	m := f.create(t, 2, 5, 5)
	f.own(t, m.ID, 1, f.findRegion(t, m.ID, models.Villages))
	f.own(t, m.ID, 2, f.findRegion(t, m.ID, models.Mountains))

	out, err := f.eng.ResourceGain(context.Background(), m.ID)
	require.NoError(t, err)
	require.True(t, out.Success)

	// only the village cell needs a choice
	assert.Equal(t, []int{2}, asked)
	p1 := f.player(t, m.ID, 1)
	assert.Equal(t, 3, p1.Stone)
	assert.Equal(t, 2, p1.Wood)
	assert.Equal(t, 3, f.player(t, m.ID, 2).Stone)
}

func TestResourceGainSkipsDeadOwners(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.create(t, 2, 5, 5)
	f.own(t, m.ID, 2, f.findRegion(t, m.ID, models.Forest))
	f.editPlayer(t, m.ID, 2, func(p *models.Player) { p.Alive = false })

	out, err := f.eng.ResourceGain(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, engine.CodeNoGain, out.Message)
	assert.Equal(t, 2, f.player(t, m.ID, 2).Wood)

	f.own(t, m.ID, 1, f.findRegion(t, m.ID, models.Sky))
	out, err = f.eng.ResourceGain(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.CodeResourceGainApplied, out.Message)
	assert.Equal(t, 3, f.player(t, m.ID, 1).Force)
	assert.Equal(t, 2, f.player(t, m.ID, 2).Wood)
}

func TestResourceGainNoOps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.eng.ResourceGain(ctx, 42)
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, engine.CodeMatchNotFound, out.Message)

	m := f.create(t, 2, 3, 3)
	out, err = f.eng.ResourceGain(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, engine.CodeNoHouses, out.Message)

	// headers written straight to the store, without the usual seats and board
	var bare, boardOnly *models.Match
	err = f.store.InTx(ctx, func(tx engine.Tx) error {
		bare = &models.Match{Status: models.MatchRunning, Players: 2, Width: 1, Height: 1, CreatedAt: time.Now()}
		if err := tx.CreateMatch(ctx, bare); err != nil {
			return err
		}
		boardOnly = &models.Match{Status: models.MatchRunning, Players: 2, Width: 1, Height: 1, CreatedAt: time.Now()}
		if err := tx.CreateMatch(ctx, boardOnly); err != nil {
			return err
		}
		return tx.InsertCells(ctx, []*models.BoardCell{{MatchID: boardOnly.ID, Region: models.Sky, Owner: models.Unowned}})
	})
	require.NoError(t, err)

	out, err = f.eng.ResourceGain(ctx, bare.ID)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, engine.CodeNoCells, out.Message)

	out, err = f.eng.ResourceGain(ctx, boardOnly.ID)
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, engine.CodeNoPlayers, out.Message)

	out, err = f.eng.LightningRecharge(ctx, bare.ID)
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, engine.CodeNoPlayers, out.Message)
}

func TestLightningRecharge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.create(t, 2, 2, 2)

	f.editPlayer(t, m.ID, 1, func(p *models.Player) { p.Lightning = 0 })
	f.editPlayer(t, m.ID, 2, func(p *models.Player) { p.Lightning = 1 })

	out, err := f.eng.LightningRecharge(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, engine.CodeSomeHaveLightning, out.Message)
	assert.Equal(t, 0, f.player(t, m.ID, 1).Lightning)
	assert.Equal(t, 1, f.player(t, m.ID, 2).Lightning)

	f.editPlayer(t, m.ID, 2, func(p *models.Player) { p.Lightning = 0 })
	out, err = f.eng.LightningRecharge(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, engine.CodeLightningRecharged, out.Message)
	assert.Equal(t, 1, f.player(t, m.ID, 1).Lightning)
	assert.Equal(t, 1, f.player(t, m.ID, 2).Lightning)

	// a repeated tick has no further effect
	out, err = f.eng.LightningRecharge(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.CodeSomeHaveLightning, out.Message)
	assert.Equal(t, 1, f.player(t, m.ID, 1).Lightning)
}

func TestLightningRechargeIgnoresDeadSeats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.create(t, 2, 2, 2)
	f.editPlayer(t, m.ID, 1, func(p *models.Player) { p.Lightning = 0 })
	f.editPlayer(t, m.ID, 2, func(p *models.Player) { p.Alive = false })

	out, err := f.eng.LightningRecharge(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.CodeLightningRecharged, out.Message)
	assert.Equal(t, 1, f.player(t, m.ID, 1).Lightning)
	assert.Equal(t, 2, f.player(t, m.ID, 2).Lightning)

	f.editPlayer(t, m.ID, 1, func(p *models.Player) { p.Alive = false })
	out, err = f.eng.LightningRecharge(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, engine.CodeNoAlivePlayers, out.Message)

	out, err = f.eng.LightningRecharge(ctx, 404)
	require.NoError(t, err)
	assert.Equal(t, engine.CodeMatchNotFound, out.Message)
}
