package engine

import (
	"context"
	"math/rand"
	"time"
)

type Engine struct {
	store  Store
	locks  *MatchLocks
	now    func() time.Time
	pick   func(n int) int
	notify Notifier
}

type Option func(*Engine)

// WithClock replaces time.Now, used for trade expiry and timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithPicker replaces the random choice used for multi-yield regions.
// pick(n) must return a value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(e *Engine) { e.pick = pick }
}

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notify = n }
}

func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		locks:  NewMatchLocks(),
		now:    time.Now,
		pick:   rand.Intn,
		notify: nopNotifier{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// unit is one unit of work plus the events it will publish on commit.
type unit struct {
	Tx
	events []MatchEvent
}

func (u *unit) emit(ev MatchEvent) {
	u.events = append(u.events, ev)
}

// withMatch serializes fn against every other mutation of the same match and
// runs it as a single store transaction. The match row is read first so a
// store that locks on read (Postgres FOR UPDATE) holds it for the whole unit,
// which serializes engines sharing one database. Events are published after
// commit, still under the match lock so subscribers see them in commit order.
func (e *Engine) withMatch(ctx context.Context, matchID int64, fn func(u *unit) error) error {
	unlock := e.locks.Lock(matchID)
	defer unlock()

	return e.inTx(ctx, func(u *unit) error {
		if _, err := u.GetMatch(ctx, matchID); err != nil {
			return err
		}
		return fn(u)
	})
}

func (e *Engine) inTx(ctx context.Context, fn func(u *unit) error) error {
	u := &unit{}
	err := e.store.InTx(ctx, func(tx Tx) error {
		u.Tx = tx
		u.events = u.events[:0]
		return fn(u)
	})
	if err != nil {
		return err
	}

	for _, ev := range u.events {
		if ev.At.IsZero() {
			ev.At = e.now()
		}
		e.notify.Notify(ctx, ev)
	}
	return nil
}

func (e *Engine) view(ctx context.Context, fn func(tx Tx) error) error {
	return e.store.View(ctx, fn)
}
