package handlers

import (
	"net/http"
	"strconv"

	"github.com/avvvet/realm-services/internal/enginesvc/engine"
	"github.com/go-chi/chi"
)

type acceptRequest struct {
	ToSeat *int `json:"toSeat"`
}

func offerID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "offerId"), 10, 64)
	return id, err == nil
}

func (h *Handler) ListTrades(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(r)
	if !ok {
		h.badRequest(w, "invalid match id")
		return
	}

	trades, err := h.engine.ListTrades(r.Context(), id, r.URL.Query().Get("status"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusOK, "trades", trades)
}

func (h *Handler) CreateTrade(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(r)
	if !ok {
		h.badRequest(w, "invalid match id")
		return
	}

	var req engine.CreateTradeRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, err.Error())
		return
	}

	offer, err := h.engine.CreateTrade(r.Context(), id, req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusCreated, "trade created", offer)
}

func (h *Handler) AcceptTrade(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(r)
	if !ok {
		h.badRequest(w, "invalid match id")
		return
	}
	oid, ok := offerID(r)
	if !ok {
		h.badRequest(w, "invalid offer id")
		return
	}

	var req acceptRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, err.Error())
		return
	}

	out, err := h.engine.AcceptTrade(r.Context(), id, oid, req.ToSeat)
	h.outcome(w, out, err, http.StatusOK, func(c engine.Code) int { return kindStatus(c.Kind()) })
}

func (h *Handler) CancelTrade(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(r)
	if !ok {
		h.badRequest(w, "invalid match id")
		return
	}
	oid, ok := offerID(r)
	if !ok {
		h.badRequest(w, "invalid offer id")
		return
	}

	var bySeat *int
	if s := r.URL.Query().Get("bySeat"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			h.badRequest(w, "invalid bySeat")
			return
		}
		bySeat = &n
	}

	offer, err := h.engine.CancelTrade(r.Context(), id, oid, bySeat)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusOK, string(offer.Status), offer)
}
