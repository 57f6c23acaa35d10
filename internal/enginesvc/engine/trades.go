package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avvvet/realm-services/internal/enginesvc/models"
	log "github.com/sirupsen/logrus"
)

type CreateTradeRequest struct {
	From  *int   `json:"from"`
	To    *int   `json:"to"` // -1 opens the offer to every seat
	Give  string `json:"give"`
	Get   string `json:"get"`
	TTLMs *int64 `json:"ttlMs"`
}

// CreateTrade opens a one-for-one offer from one seat.
func (e *Engine) CreateTrade(ctx context.Context, matchID int64, req CreateTradeRequest) (*models.TradeOffer, error) {
	if req.From == nil || req.To == nil || req.Give == "" || req.Get == "" {
		return nil, failure(CodeInvalidRequest, "from, to, give and get are required")
	}
	give, valid := models.ParseResource(req.Give)
	if !valid {
		return nil, failure(CodeInvalidRequest, fmt.Sprintf("unknown resource %q", req.Give))
	}
	get, valid := models.ParseResource(req.Get)
	if !valid {
		return nil, failure(CodeInvalidRequest, fmt.Sprintf("unknown resource %q", req.Get))
	}

	ttl := int64(models.DefaultTradeTTLMs)
	if req.TTLMs != nil && *req.TTLMs > 0 {
		ttl = *req.TTLMs
	}

	var offer *models.TradeOffer
	err := e.withMatch(ctx, matchID, func(u *unit) error {
		m, err := u.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if m == nil {
			return failure(CodeInvalidRequest, fmt.Sprintf("match %d not found", matchID))
		}
		from, err := u.GetPlayer(ctx, matchID, *req.From)
		if err != nil {
			return err
		}
		if from == nil {
			return failure(CodeInvalidRequest, fmt.Sprintf("seat %d not found", *req.From))
		}

		now := e.now()
		offer = &models.TradeOffer{
			MatchID:   matchID,
			FromSeat:  *req.From,
			ToSeat:    *req.To,
			Give:      give,
			Get:       get,
			Status:    models.TradeOpen,
			CreatedAt: now,
			ExpiresAt: now.Add(time.Duration(ttl) * time.Millisecond),
		}
		if err := u.CreateTrade(ctx, offer); err != nil {
			return err
		}
		u.emit(tradeEvent(offer))
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debugf("match %d: trade %d opened by seat %d (%s for %s)", matchID, offer.ID, offer.FromSeat, give, get)
	return offer, nil
}

// AcceptTrade swaps one unit of each side of the offer between its owner
// and the accepting seat. An offer found past its expiry is closed as
// EXPIRED and reported as such.
func (e *Engine) AcceptTrade(ctx context.Context, matchID, offerID int64, toSeat *int) (Outcome, error) {
	var out Outcome
	err := e.withMatch(ctx, matchID, func(u *unit) error {
		t, err := u.GetTrade(ctx, matchID, offerID)
		if err != nil {
			return err
		}
		if t == nil {
			out = fail(CodeNotFound)
			return nil
		}
		if !t.IsOpen() {
			out = fail(CodeOfferClosed)
			return nil
		}
		if toSeat == nil {
			out = fail(CodeMissingToSeat)
			return nil
		}
		seat := *toSeat
		if t.ToSeat != models.AnySeat && t.ToSeat != seat {
			out = fail(CodeNotTargetOfOffer)
			return nil
		}

		now := e.now()
		if now.After(t.ExpiresAt) {
			t.Close(models.TradeExpired, now)
			if err := u.SaveTrade(ctx, t); err != nil {
				return err
			}
			u.emit(tradeEvent(t))
			out = fail(CodeOfferExpired)
			return nil
		}

		from, err := u.GetPlayer(ctx, matchID, t.FromSeat)
		if err != nil {
			return err
		}
		to := from
		if seat != t.FromSeat {
			if to, err = u.GetPlayer(ctx, matchID, seat); err != nil {
				return err
			}
		}
		if from == nil || to == nil {
			out = fail(CodeInvalidPlayer)
			return nil
		}

		if from.Amount(t.Give) < 1 {
			out = fail(Code(ownerLacksPrefix + string(t.Give)))
			return nil
		}
		if to.Amount(t.Get) < 1 {
			out = fail(Code(accepterLacksPrefix + string(t.Get)))
			return nil
		}

		from.Add(t.Give, -1)
		to.Add(t.Give, 1)
		to.Add(t.Get, -1)
		from.Add(t.Get, 1)

		if err := u.SavePlayer(ctx, from); err != nil {
			return err
		}
		if to != from {
			if err := u.SavePlayer(ctx, to); err != nil {
				return err
			}
		}

		t.AcceptedBySeat = &seat
		t.Close(models.TradeAccepted, now)
		if err := u.SaveTrade(ctx, t); err != nil {
			return err
		}
		u.emit(tradeEvent(t))
		out = ok(CodeTradeAccepted)
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	log.Debugf("match %d: accept trade %d: %s", matchID, offerID, out.Message)
	return out, nil
}

// CancelTrade closes an open offer. When bySeat is given it must be the
// offer's owner; otherwise the offer is reported as not found.
func (e *Engine) CancelTrade(ctx context.Context, matchID, offerID int64, bySeat *int) (*models.TradeOffer, error) {
	var t *models.TradeOffer
	err := e.withMatch(ctx, matchID, func(u *unit) error {
		var err error
		if t, err = u.GetTrade(ctx, matchID, offerID); err != nil {
			return err
		}
		if t == nil || (bySeat != nil && *bySeat != t.FromSeat) {
			return failure(CodeNotFound, fmt.Sprintf("trade %d", offerID))
		}
		if !t.IsOpen() {
			return nil
		}

		t.Close(models.TradeCancelled, e.now())
		if err := u.SaveTrade(ctx, t); err != nil {
			return err
		}
		u.emit(tradeEvent(t))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTrades returns the offers of a match, oldest first, optionally
// restricted to one status.
func (e *Engine) ListTrades(ctx context.Context, matchID int64, status string) ([]*models.TradeOffer, error) {
	st := models.TradeStatus(strings.ToUpper(status))
	if status != "" && !st.Valid() {
		return nil, failure(CodeInvalidRequest, fmt.Sprintf("unknown status %q", status))
	}

	var trades []*models.TradeOffer
	err := e.view(ctx, func(tx Tx) error {
		var err error
		trades, err = tx.ListTrades(ctx, matchID, st)
		return err
	})
	if err != nil {
		return nil, err
	}
	return trades, nil
}

func tradeEvent(t *models.TradeOffer) MatchEvent {
	c := *t
	return MatchEvent{Type: EventTradeChanged, MatchID: t.MatchID, Seat: t.FromSeat, Trade: &c}
}
