package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/avvvet/realm-services/internal/enginesvc/engine"
	"github.com/avvvet/realm-services/internal/enginesvc/models"
)

var errReadOnly = errors.New("store: write in read-only view")

// matchState is everything stored for one match.
type matchState struct {
	match   models.Match
	players []models.Player // index seat-1
	cells   []models.BoardCell
	trades  []models.TradeOffer
	actions []models.ActionLogEntry
}

func (s *matchState) clone() *matchState {
	c := &matchState{match: s.match}
	c.players = append([]models.Player(nil), s.players...)
	c.cells = append([]models.BoardCell(nil), s.cells...)
	c.trades = append([]models.TradeOffer(nil), s.trades...)
	// append-only, a capped view is enough
	c.actions = s.actions[:len(s.actions):len(s.actions)]
	return c
}

// MemoryStore keeps every match in process memory. A unit of work operates
// on private copies of the matches it touches and writes them back on commit.
type MemoryStore struct {
	mu      sync.RWMutex
	matches map[int64]*matchState

	lastMatchID  int64
	lastTradeID  int64
	lastActionID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{matches: make(map[int64]*matchState)}
}

func (s *MemoryStore) InTx(ctx context.Context, fn func(tx engine.Tx) error) error {
	tx := &memTx{store: s, working: make(map[int64]*matchState), dirty: make(map[int64]bool)}
	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range tx.dirty {
		s.matches[id] = tx.working[id]
	}
	return nil
}

func (s *MemoryStore) View(ctx context.Context, fn func(tx engine.Tx) error) error {
	tx := &memTx{store: s, working: make(map[int64]*matchState), readOnly: true}
	return fn(tx)
}

func (s *MemoryStore) ListMatchIDs(ctx context.Context, statuses ...models.MatchStatus) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.matches))
	for id, st := range s.matches {
		if len(statuses) == 0 || hasStatus(statuses, st.match.Status) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func hasStatus(statuses []models.MatchStatus, st models.MatchStatus) bool {
	for _, s := range statuses {
		if s == st {
			return true
		}
	}
	return false
}

func (s *MemoryStore) nextID(counter *int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	*counter++
	return *counter
}

type memTx struct {
	store    *MemoryStore
	working  map[int64]*matchState
	dirty    map[int64]bool
	readOnly bool
}

// state returns the private copy of a match, loading it on first use.
func (t *memTx) state(matchID int64) *matchState {
	if st, ok := t.working[matchID]; ok {
		return st
	}

	t.store.mu.RLock()
	committed, ok := t.store.matches[matchID]
	t.store.mu.RUnlock()
	if !ok {
		return nil
	}

	st := committed.clone()
	t.working[matchID] = st
	return st
}

// mutable returns the copy of a match for writing and marks it dirty.
func (t *memTx) mutable(matchID int64) (*matchState, error) {
	if t.readOnly {
		return nil, errReadOnly
	}
	st := t.state(matchID)
	if st == nil {
		return nil, fmt.Errorf("match %d not found", matchID)
	}
	t.dirty[matchID] = true
	return st, nil
}

func (t *memTx) CreateMatch(ctx context.Context, m *models.Match) error {
	if t.readOnly {
		return errReadOnly
	}
	m.ID = t.store.nextID(&t.store.lastMatchID)
	t.working[m.ID] = &matchState{match: *m}
	t.dirty[m.ID] = true
	return nil
}

func (t *memTx) GetMatch(ctx context.Context, id int64) (*models.Match, error) {
	st := t.state(id)
	if st == nil {
		return nil, nil
	}
	m := st.match
	return &m, nil
}

func (t *memTx) SaveMatch(ctx context.Context, m *models.Match) error {
	st, err := t.mutable(m.ID)
	if err != nil {
		return err
	}
	st.match = *m
	return nil
}

func (t *memTx) ListMatches(ctx context.Context, status models.MatchStatus) ([]*models.Match, error) {
	t.store.mu.RLock()
	matches := make([]*models.Match, 0, len(t.store.matches))
	for id, st := range t.store.matches {
		m := st.match
		if w, ok := t.working[id]; ok {
			m = w.match
		}
		if status != "" && m.Status != status {
			continue
		}
		matches = append(matches, &m)
	}
	t.store.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

func (t *memTx) InsertPlayers(ctx context.Context, players []*models.Player) error {
	for _, p := range players {
		st, err := t.mutable(p.MatchID)
		if err != nil {
			return err
		}
		if p.Seat != len(st.players)+1 {
			return fmt.Errorf("insert player: seat %d out of order", p.Seat)
		}
		st.players = append(st.players, *p)
	}
	return nil
}

func (t *memTx) GetPlayer(ctx context.Context, matchID int64, seat int) (*models.Player, error) {
	st := t.state(matchID)
	if st == nil || seat < 1 || seat > len(st.players) {
		return nil, nil
	}
	p := st.players[seat-1]
	return &p, nil
}

func (t *memTx) ListPlayers(ctx context.Context, matchID int64) ([]*models.Player, error) {
	st := t.state(matchID)
	if st == nil {
		return nil, nil
	}
	players := make([]*models.Player, len(st.players))
	for i := range st.players {
		p := st.players[i]
		players[i] = &p
	}
	return players, nil
}

func (t *memTx) SavePlayer(ctx context.Context, p *models.Player) error {
	st, err := t.mutable(p.MatchID)
	if err != nil {
		return err
	}
	if p.Seat < 1 || p.Seat > len(st.players) {
		return fmt.Errorf("save player: seat %d not found", p.Seat)
	}
	st.players[p.Seat-1] = *p
	return nil
}

func (t *memTx) InsertCells(ctx context.Context, cells []*models.BoardCell) error {
	touched := make(map[int64]*matchState)
	for _, c := range cells {
		st, err := t.mutable(c.MatchID)
		if err != nil {
			return err
		}
		st.cells = append(st.cells, *c)
		touched[c.MatchID] = st
	}
	for _, st := range touched {
		sort.SliceStable(st.cells, func(i, j int) bool {
			a, b := st.cells[i], st.cells[j]
			if a.Y != b.Y {
				return a.Y < b.Y
			}
			return a.X < b.X
		})
	}
	return nil
}

// cellIndex finds (x, y) assuming cells are kept in row-major order of a
// complete board.
func cellIndex(st *matchState, x, y int) int {
	w, h := st.match.Width, st.match.Height
	if x < 0 || y < 0 || x >= w || y >= h {
		return -1
	}
	i := y*w + x
	if i >= len(st.cells) || st.cells[i].X != x || st.cells[i].Y != y {
		return -1
	}
	return i
}

func (t *memTx) GetCell(ctx context.Context, matchID int64, x, y int) (*models.BoardCell, error) {
	st := t.state(matchID)
	if st == nil {
		return nil, nil
	}
	i := cellIndex(st, x, y)
	if i < 0 {
		return nil, nil
	}
	c := st.cells[i]
	return &c, nil
}

func (t *memTx) ListCells(ctx context.Context, matchID int64) ([]*models.BoardCell, error) {
	st := t.state(matchID)
	if st == nil {
		return nil, nil
	}
	cells := make([]*models.BoardCell, len(st.cells))
	for i := range st.cells {
		c := st.cells[i]
		cells[i] = &c
	}
	return cells, nil
}

func (t *memTx) SaveCell(ctx context.Context, c *models.BoardCell) error {
	st, err := t.mutable(c.MatchID)
	if err != nil {
		return err
	}
	i := cellIndex(st, c.X, c.Y)
	if i < 0 {
		return fmt.Errorf("save cell: (%d,%d) not found", c.X, c.Y)
	}
	st.cells[i] = *c
	return nil
}

func (t *memTx) CreateTrade(ctx context.Context, tr *models.TradeOffer) error {
	st, err := t.mutable(tr.MatchID)
	if err != nil {
		return err
	}
	tr.ID = t.store.nextID(&t.store.lastTradeID)
	st.trades = append(st.trades, *tr)
	return nil
}

func (t *memTx) GetTrade(ctx context.Context, matchID, offerID int64) (*models.TradeOffer, error) {
	st := t.state(matchID)
	if st == nil {
		return nil, nil
	}
	for _, tr := range st.trades {
		if tr.ID == offerID {
			c := tr
			return &c, nil
		}
	}
	return nil, nil
}

func (t *memTx) ListTrades(ctx context.Context, matchID int64, status models.TradeStatus) ([]*models.TradeOffer, error) {
	st := t.state(matchID)
	if st == nil {
		return nil, nil
	}
	var trades []*models.TradeOffer
	for _, tr := range st.trades {
		if status != "" && tr.Status != status {
			continue
		}
		c := tr
		trades = append(trades, &c)
	}
	return trades, nil
}

func (t *memTx) SaveTrade(ctx context.Context, tr *models.TradeOffer) error {
	st, err := t.mutable(tr.MatchID)
	if err != nil {
		return err
	}
	for i := range st.trades {
		if st.trades[i].ID == tr.ID {
			st.trades[i] = *tr
			return nil
		}
	}
	return fmt.Errorf("save trade: %d not found", tr.ID)
}

func (t *memTx) AppendAction(ctx context.Context, a *models.ActionLogEntry) error {
	st, err := t.mutable(a.MatchID)
	if err != nil {
		return err
	}
	a.ID = t.store.nextID(&t.store.lastActionID)
	st.actions = append(st.actions, *a)
	return nil
}

func (t *memTx) ListActions(ctx context.Context, matchID int64) ([]*models.ActionLogEntry, error) {
	st := t.state(matchID)
	if st == nil {
		return nil, nil
	}
	entries := make([]*models.ActionLogEntry, len(st.actions))
	for i := range st.actions {
		a := st.actions[i]
		entries[i] = &a
	}
	return entries, nil
}
