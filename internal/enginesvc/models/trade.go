package models

import "time"

type TradeStatus string

const (
	TradeOpen      TradeStatus = "OPEN"
	TradeAccepted  TradeStatus = "ACCEPTED"
	TradeCancelled TradeStatus = "CANCELLED"
	TradeExpired   TradeStatus = "EXPIRED"
)

func (s TradeStatus) Valid() bool {
	switch s {
	case TradeOpen, TradeAccepted, TradeCancelled, TradeExpired:
		return true
	}
	return false
}

// AnySeat as ToSeat opens an offer to every other seat.
const AnySeat = -1

type TradeOffer struct {
	ID             int64       `json:"id"`
	MatchID        int64       `json:"match_id"`
	FromSeat       int         `json:"from"`
	ToSeat         int         `json:"to"` // -1 = open to anyone
	Give           Resource    `json:"give"`
	Get            Resource    `json:"get"`
	Status         TradeStatus `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	ExpiresAt      time.Time   `json:"expires_at"`
	AcceptedBySeat *int        `json:"accepted_by_seat"`
	ClosedAt       *time.Time  `json:"closed_at"`
}

func (t *TradeOffer) IsOpen() bool {
	return t.Status == TradeOpen
}

// Close moves an open offer to its terminal status.
func (t *TradeOffer) Close(status TradeStatus, at time.Time) {
	t.Status = status
	t.ClosedAt = &at
}
