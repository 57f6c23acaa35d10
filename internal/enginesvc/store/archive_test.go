package store

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	mongodb "github.com/avvvet/realm-services/internal/db"
	"github.com/avvvet/realm-services/internal/enginesvc/engine"
	"github.com/avvvet/realm-services/internal/enginesvc/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveQueuesActionEntriesOnly(t *testing.T) {
	a := &ActionArchive{queue: make(chan archiveDoc, 1)}
	entry := &models.ActionLogEntry{ID: 3, MatchID: 1, Seat: 2, Type: models.ActionBuild}

	a.Notify(context.Background(), engine.MatchEvent{Type: engine.EventMatchStarted, MatchID: 1})
	a.Notify(context.Background(), engine.MatchEvent{Type: engine.EventActionApplied, MatchID: 1})
	assert.Len(t, a.queue, 0)

	a.Notify(context.Background(), engine.MatchEvent{
		Type: engine.EventActionApplied, MatchID: 1, Code: engine.CodeBuildSuccess, Entry: entry,
	})
	require.Len(t, a.queue, 1)

	// full queue drops instead of blocking
	a.Notify(context.Background(), engine.MatchEvent{Type: engine.EventActionApplied, MatchID: 1, Entry: entry})
	require.Len(t, a.queue, 1)

	doc := <-a.queue
	assert.Equal(t, int64(3), doc.ID)
	assert.Equal(t, engine.CodeBuildSuccess, doc.Code)
}

func TestArchiveRunFlushesQueueOnCancel(t *testing.T) {
	var mu sync.Mutex
	var written []int64
	a := &ActionArchive{queue: make(chan archiveDoc, 8)}
	a.write = func(ctx context.Context, doc archiveDoc) error {
		// writes after shutdown must not run on the cancelled context
		if err := ctx.Err(); err != nil {
			return err
		}
		mu.Lock()
		written = append(written, doc.ID)
		mu.Unlock()
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for id := int64(1); id <= 3; id++ {
		a.Notify(ctx, engine.MatchEvent{
			Type:    engine.EventActionApplied,
			MatchID: 1,
			Entry:   &models.ActionLogEntry{ID: id, MatchID: 1},
		})
	}

	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(DrainTimeout):
		t.Fatal("Run did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, a.queue, 0)
	assert.Equal(t, []int64{1, 2, 3}, written)
}

func TestArchiveRoundTrip(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	mdb, closeDB, err := mongodb.ConnectToDB(uri)
	require.NoError(t, err)
	defer closeDB()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, mdb.Collection(ArchiveCollection).Drop(ctx))
	require.NoError(t, mongodb.CreateIndex(ctx, mdb, ArchiveCollection, "match_id", "entry_id"))

	a := NewActionArchive(mdb, 8)
	go a.Run(ctx)

	now := time.Now().UTC().Truncate(time.Millisecond)
	for _, id := range []int64{2, 1} {
		a.Notify(ctx, engine.MatchEvent{
			Type:    engine.EventActionApplied,
			MatchID: 5,
			Entry:   &models.ActionLogEntry{ID: id, MatchID: 5, Seat: 1, Type: models.ActionEndTurn, Ts: now},
		})
	}

	require.Eventually(t, func() bool {
		entries, err := a.ListByMatch(ctx, 5)
		return err == nil && len(entries) == 2
	}, 5*time.Second, 50*time.Millisecond)

	entries, err := a.ListByMatch(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), entries[0].ID)
	assert.Equal(t, int64(2), entries[1].ID)
	assert.Equal(t, models.ActionEndTurn, entries[1].Type)
}
