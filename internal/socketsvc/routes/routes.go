package routes

import (
	"net/http"
	"time"

	"github.com/avvvet/realm-services/internal/socketsvc/handlers"
	"github.com/avvvet/realm-services/internal/socketsvc/ws"
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

var tokenAuth *jwtauth.JWTAuth

func SetRoutes(r *chi.Mux, ws *ws.Ws, port string) {
	h := handlers.NewHandler(ws, port)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", h.HealthHandler)

		// Secure routes
		r.Group(func(r chi.Router) {
			if tokenAuth != nil {
				// browsers cannot set headers on a websocket handshake
				r.Use(jwtauth.Verify(tokenAuth, tokenFromQuery, jwtauth.TokenFromHeader, jwtauth.TokenFromCookie))
				r.Use(jwtauth.Authenticator)
			}

			r.Get("/ws", h.HandleWebSocket)
		})
	})
}

// InitAuth requires a token on the socket route when secret is set.
func InitAuth(secret string) {
	if secret == "" {
		tokenAuth = nil
		log.Warn("JWT_SECRET_KEY not set, websocket route is open")
		return
	}
	tokenAuth = jwtauth.New("HS256", []byte(secret), nil)

	expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()

	_, tokenString, _ := tokenAuth.Encode(map[string]interface{}{
		"service_id": "socketsvc",
		"exp":        expirationTime,
	})

	log.Debugf("DEBUG: JWT for testing expires soon : %s", tokenString)
}

func tokenFromQuery(r *http.Request) string {
	return r.URL.Query().Get("jwt")
}
