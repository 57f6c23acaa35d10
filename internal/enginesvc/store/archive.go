package store

import (
	"context"
	"fmt"
	"time"

	"github.com/avvvet/realm-services/internal/enginesvc/engine"
	"github.com/avvvet/realm-services/internal/enginesvc/models"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ArchiveCollection = "action_archive"

// archiveDoc is one audit entry as stored in Mongo.
type archiveDoc struct {
	models.ActionLogEntry `bson:",inline"`
	Code                  engine.Code `bson:"code"`
	ArchivedAt            time.Time   `bson:"archived_at"`
}

// ActionArchive mirrors committed audit entries into a Mongo collection.
// Notify only queues the entry; a single goroutine started by Run writes them.
type ActionArchive struct {
	coll  *mongo.Collection
	queue chan archiveDoc
	write func(ctx context.Context, doc archiveDoc) error
}

func NewActionArchive(db *mongo.Database, buffer int) *ActionArchive {
	a := &ActionArchive{
		coll:  db.Collection(ArchiveCollection),
		queue: make(chan archiveDoc, buffer),
	}
	a.write = a.replace
	return a
}

func (a *ActionArchive) Notify(ctx context.Context, ev engine.MatchEvent) {
	if ev.Type != engine.EventActionApplied || ev.Entry == nil {
		return
	}

	doc := archiveDoc{ActionLogEntry: *ev.Entry, Code: ev.Code, ArchivedAt: ev.At}
	select {
	case a.queue <- doc:
	default:
		log.Warnf("action archive full, dropping entry %d of match %d", ev.Entry.ID, ev.MatchID)
	}
}

// Run writes queued entries until ctx is done, then flushes what is still
// queued within DrainTimeout before returning.
func (a *ActionArchive) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			a.drain()
			return
		case doc := <-a.queue:
			if ctx.Err() != nil {
				a.drain(doc)
				return
			}
			a.store(ctx, doc)
		}
	}
}

const DrainTimeout = 5 * time.Second

// drain writes pending and then the rest of the queue on a fresh context.
func (a *ActionArchive) drain(pending ...archiveDoc) {
	ctx, cancel := context.WithTimeout(context.Background(), DrainTimeout)
	defer cancel()

	n := 0
	flush := func(doc archiveDoc) bool {
		if ctx.Err() != nil {
			log.Warnf("archive drain timed out, %d entries left", len(a.queue)+1)
			return false
		}
		a.store(ctx, doc)
		n++
		return true
	}

	for _, doc := range pending {
		if !flush(doc) {
			return
		}
	}
	for {
		select {
		case doc := <-a.queue:
			if !flush(doc) {
				return
			}
		default:
			if n > 0 {
				log.Infof("archive flushed %d queued entries", n)
			}
			return
		}
	}
}

func (a *ActionArchive) store(ctx context.Context, doc archiveDoc) {
	if err := a.write(ctx, doc); err != nil {
		log.Errorf("archive entry %d of match %d: %s", doc.ID, doc.MatchID, err)
	}
}

func (a *ActionArchive) replace(ctx context.Context, doc archiveDoc) error {
	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"entry_id": doc.ID, "match_id": doc.MatchID}
	_, err := a.coll.ReplaceOne(ctx, filter, doc, opts)
	return err
}

// ListByMatch returns the archived entries of a match in log order.
func (a *ActionArchive) ListByMatch(ctx context.Context, matchID int64) ([]*models.ActionLogEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "entry_id", Value: 1}})
	cur, err := a.coll.Find(ctx, bson.M{"match_id": matchID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}
	defer cur.Close(ctx)

	var entries []*models.ActionLogEntry
	for cur.Next(ctx) {
		var doc archiveDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode archive entry: %w", err)
		}
		e := doc.ActionLogEntry
		entries = append(entries, &e)
	}
	return entries, cur.Err()
}
