package handlers

import (
	"net/http"

	"github.com/avvvet/realm-services/internal/enginesvc/engine"
)

func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var req engine.CreateMatchRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, err.Error())
		return
	}

	m, err := h.engine.Create(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusCreated, "match created", m)
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.engine.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusOK, "matches", matches)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(r)
	if !ok {
		h.badRequest(w, "invalid match id")
		return
	}

	m, err := h.engine.Get(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusOK, "match", m)
}

func (h *Handler) StartMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(r)
	if !ok {
		h.badRequest(w, "invalid match id")
		return
	}

	m, err := h.engine.Start(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusAccepted, "match started", m)
}

func (h *Handler) StopMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(r)
	if !ok {
		h.badRequest(w, "invalid match id")
		return
	}

	m, err := h.engine.Stop(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusOK, "match stopped", m)
}

func (h *Handler) ListActions(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(r)
	if !ok {
		h.badRequest(w, "invalid match id")
		return
	}

	entries, err := h.engine.ListActions(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, http.StatusOK, "actions", entries)
}
