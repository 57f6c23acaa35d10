package handlers

import (
	"net/http"

	"github.com/avvvet/realm-services/internal/enginesvc/advisor"
	"github.com/avvvet/realm-services/internal/enginesvc/models"
)

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(r)
	if !ok {
		h.badRequest(w, "invalid match id")
		return
	}

	b, err := h.engine.Board(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusOK, "board", b)
}

func (h *Handler) GetCell(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(r)
	x, okX := intParam(r, "x")
	y, okY := intParam(r, "y")
	if !ok || !okX || !okY {
		h.badRequest(w, "invalid match id or coordinates")
		return
	}

	c, err := h.engine.Cell(r.Context(), id, x, y)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusOK, "cell", c)
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(r)
	if !ok {
		h.badRequest(w, "invalid match id")
		return
	}

	players, err := h.engine.Players(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusOK, "players", players)
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(r)
	seat, okSeat := intParam(r, "seat")
	if !ok || !okSeat {
		h.badRequest(w, "invalid match id or seat")
		return
	}

	p, err := h.engine.Player(r.Context(), id, seat)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusOK, "player", p)
}

// GetAdvice recommends a move for the seat, or a starting cell while the
// match is pending.
func (h *Handler) GetAdvice(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(r)
	seat, okSeat := intParam(r, "seat")
	if !ok || !okSeat {
		h.badRequest(w, "invalid match id or seat")
		return
	}

	if _, err := h.engine.Player(r.Context(), id, seat); err != nil {
		h.fail(w, err)
		return
	}
	snap, err := h.engine.Snapshot(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}

	if snap.Match.Status == models.MatchPending {
		h.ok(w, http.StatusOK, "advice", advisor.Opening(snap, seat))
		return
	}

	h.ok(w, http.StatusOK, "advice", advisor.Recommend(snap, seat))
}
