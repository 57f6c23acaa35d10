package handlers

import (
	"context"
	"net/http"

	"github.com/avvvet/realm-services/internal/enginesvc/engine"
)

type moveRequest struct {
	Seat *int `json:"seat"`
	X    *int `json:"x"`
	Y    *int `json:"y"`
}

type moveFunc func(ctx context.Context, matchID int64, seat, x, y int) (engine.Outcome, error)

func (h *Handler) move(w http.ResponseWriter, r *http.Request, fn moveFunc) {
	id, ok := matchID(r)
	if !ok {
		h.badRequest(w, "invalid match id")
		return
	}

	var req moveRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, err.Error())
		return
	}
	if req.Seat == nil || req.X == nil || req.Y == nil {
		h.badRequest(w, "seat, x and y are required")
		return
	}

	out, err := fn(r.Context(), id, *req.Seat, *req.X, *req.Y)
	h.outcome(w, out, err, http.StatusAccepted, commandStatus)
}

func (h *Handler) Place(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.engine.Place)
}

func (h *Handler) Build(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.engine.Build)
}

func (h *Handler) Attack(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.engine.Attack)
}

func (h *Handler) EndTurn(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(r)
	if !ok {
		h.badRequest(w, "invalid match id")
		return
	}

	var req moveRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, err.Error())
		return
	}
	if req.Seat == nil {
		h.badRequest(w, "seat is required")
		return
	}

	out, err := h.engine.EndTurn(r.Context(), id, *req.Seat)
	h.outcome(w, out, err, http.StatusAccepted, commandStatus)
}

func (h *Handler) ResourceGain(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(r)
	if !ok {
		h.badRequest(w, "invalid match id")
		return
	}

	out, err := h.engine.ResourceGain(r.Context(), id)
	h.outcome(w, out, err, http.StatusAccepted, commandStatus)
}

func (h *Handler) LightningRecharge(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(r)
	if !ok {
		h.badRequest(w, "invalid match id")
		return
	}

	out, err := h.engine.LightningRecharge(r.Context(), id)
	h.outcome(w, out, err, http.StatusAccepted, commandStatus)
}
