package scheduler

import (
	"context"
	"time"

	"github.com/avvvet/realm-services/internal/enginesvc/engine"
	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type tickFunc func(ctx context.Context, matchID int64) (engine.Outcome, error)

// Scheduler runs the economy ticks over every active match.
type Scheduler struct {
	engine  *engine.Engine
	workers int
	sched   gocron.Scheduler
}

func New(eng *engine.Engine, workers int) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}
	return &Scheduler{engine: eng, workers: workers, sched: sched}, nil
}

// Start registers the resource and lightning jobs. A job still running when
// its next run is due skips that run.
func (s *Scheduler) Start(resourceEvery, lightningEvery time.Duration) error {
	jobs := []struct {
		name  string
		every time.Duration
		fn    tickFunc
	}{
		{"resource-gain", resourceEvery, s.engine.ResourceGain},
		{"lightning-recharge", lightningEvery, s.engine.LightningRecharge},
	}

	for _, j := range jobs {
		j := j
		_, err := s.sched.NewJob(
			gocron.DurationJob(j.every),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), j.every)
				defer cancel()
				s.tickAll(ctx, j.name, j.fn)
			}),
			gocron.WithName(j.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return err
		}
		log.Infof("[Scheduler] %s every %s", j.name, j.every)
	}

	s.sched.Start()
	return nil
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}

// tickAll applies fn to every active match, at most workers at a time.
// Matches are serialized by the engine so one slow match never holds up another.
func (s *Scheduler) tickAll(ctx context.Context, name string, fn tickFunc) int {
	ids, err := s.engine.ActiveMatchIDs(ctx)
	if err != nil {
		log.Errorf("[Scheduler] %s: list matches: %v", name, err)
		return 0
	}

	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			out, err := fn(ctx, id)
			if err != nil {
				log.Errorf("[Scheduler] %s match %d: %v", name, id, err)
				return nil
			}
			log.Debugf("[Scheduler] %s match %d: %s", name, id, out.Message)
			return nil
		})
	}
	g.Wait()
	return len(ids)
}
