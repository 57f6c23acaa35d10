package handlers

import (
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {

		// public routes here
		r.Get("/health", h.HealthHandler)

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", h.ListMatches)
			r.Get("/{id}", h.GetMatch)
			r.Get("/{id}/board", h.GetBoard)
			r.Get("/{id}/board/cells/{x}/{y}", h.GetCell)
			r.Get("/{id}/players", h.ListPlayers)
			r.Get("/{id}/players/{seat}", h.GetPlayer)
			r.Get("/{id}/players/{seat}/advice", h.GetAdvice)
			r.Get("/{id}/actions", h.ListActions)
			r.Get("/{id}/trades", h.ListTrades)

			// Secure routes
			r.Group(func(r chi.Router) {
				if h.tokenAuth != nil {
					r.Use(jwtauth.Verifier(h.tokenAuth))
					r.Use(jwtauth.Authenticator)
				}

				r.Post("/", h.CreateMatch)
				r.Post("/{id}/start", h.StartMatch)
				r.Post("/{id}/stop", h.StopMatch)

				r.Post("/{id}/actions/place", h.Place)
				r.Post("/{id}/actions/build", h.Build)
				r.Post("/{id}/actions/end-turn", h.EndTurn)
				r.Post("/{id}/actions/attack", h.Attack)

				r.Post("/{id}/resources/resource-gain", h.ResourceGain)
				r.Post("/{id}/resources/lightning-recharge", h.LightningRecharge)

				r.Post("/{id}/trades", h.CreateTrade)
				r.Post("/{id}/trades/{offerId}/accept", h.AcceptTrade)
				r.Post("/{id}/trades/{offerId}/cancel", h.CancelTrade)
			})
		})
	})
}

// InitAuth protects mutating routes with HS256 tokens signed by secret. An
// empty secret leaves them open.
func (h *Handler) InitAuth(secret string) {
	if secret == "" {
		log.Warn("JWT_SECRET_KEY not set, mutating routes are open")
		return
	}
	h.tokenAuth = jwtauth.New("HS256", []byte(secret), nil)

	expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()

	_, tokenString, _ := h.tokenAuth.Encode(map[string]interface{}{
		"service_id": "enginesvc",
		"exp":        expirationTime,
	})

	log.Debugf("DEBUG: JWT for testing expires soon : %s", tokenString)
}
