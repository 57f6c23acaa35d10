package engine

import (
	"context"
	"time"

	"github.com/avvvet/realm-services/internal/enginesvc/models"
)

type EventType string

const (
	EventMatchCreated       EventType = "match-created"
	EventMatchStarted       EventType = "match-started"
	EventMatchStopped       EventType = "match-stopped"
	EventMatchFinished      EventType = "match-finished"
	EventActionApplied      EventType = "action-applied"
	EventPlayerEliminated   EventType = "player-eliminated"
	EventTradeChanged       EventType = "trade-changed"
	EventResourcesGained    EventType = "resources-gained"
	EventLightningRecharged EventType = "lightning-recharged"
)

// MatchEvent describes a committed state change.
type MatchEvent struct {
	Type    EventType              `json:"type"`
	MatchID int64                  `json:"match_id"`
	Seat    int                    `json:"seat,omitempty"`
	Code    Code                   `json:"code,omitempty"`
	Match   *models.Match          `json:"match,omitempty"`
	Entry   *models.ActionLogEntry `json:"entry,omitempty"`
	Trade   *models.TradeOffer     `json:"trade,omitempty"`
	At      time.Time              `json:"at"`
}

// Notifier receives events after their unit of work has committed.
// Implementations must not block on slow I/O.
type Notifier interface {
	Notify(ctx context.Context, ev MatchEvent)
}

// Notifiers fans one event out to several notifiers.
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, ev MatchEvent) {
	for _, n := range ns {
		if n != nil {
			n.Notify(ctx, ev)
		}
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, MatchEvent) {}

func matchCopy(m *models.Match) *models.Match {
	c := *m
	return &c
}
