package engine

import "sync"

// MatchLocks hands out one mutex per match id. Entries are dropped once no
// caller holds or waits on them, so the map only grows with in-flight matches.
type MatchLocks struct {
	mu    sync.Mutex
	locks map[int64]*matchLock
}

type matchLock struct {
	sync.Mutex
	refs int
}

func NewMatchLocks() *MatchLocks {
	return &MatchLocks{locks: make(map[int64]*matchLock)}
}

// Lock blocks until the match is free and returns the matching unlock.
func (l *MatchLocks) Lock(matchID int64) (unlock func()) {
	l.mu.Lock()
	ml, ok := l.locks[matchID]
	if !ok {
		ml = &matchLock{}
		l.locks[matchID] = ml
	}
	ml.refs++
	l.mu.Unlock()

	ml.Lock()
	return func() {
		ml.Unlock()

		l.mu.Lock()
		ml.refs--
		if ml.refs == 0 {
			delete(l.locks, matchID)
		}
		l.mu.Unlock()
	}
}

// held is the number of matches with a holder or waiter.
func (l *MatchLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
