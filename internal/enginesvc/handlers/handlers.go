package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/avvvet/realm-services/internal/comm"
	"github.com/avvvet/realm-services/internal/enginesvc/engine"
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	engine    *engine.Engine
	tokenAuth *jwtauth.JWTAuth
	port      string
}

type Response = comm.Response

func NewHandler(eng *engine.Engine, port string) *Handler {
	return &Handler{engine: eng, port: port}
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("write response: %s", err)
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{
		Message: "engine service is running at port " + h.port,
		Code:    http.StatusOK,
		Data:    map[string]interface{}{"time": time.Now().UTC()},
	})
}

func (h *Handler) ok(w http.ResponseWriter, code int, message string, data interface{}) {
	h.CreateResponse(w, Response{Message: message, Code: code, Data: data})
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	h.CreateResponse(w, Response{
		Message: "invalid request",
		Code:    http.StatusBadRequest,
		Error:   msg,
	})
}

// fail answers a business failure by its kind, anything else with 500.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	if f, ok := engine.AsFailure(err); ok {
		h.CreateResponse(w, Response{
			Message: string(f.Code),
			Code:    kindStatus(f.Kind()),
			Error:   f.Error(),
		})
		return
	}

	log.Errorf("engine error: %s", err)
	h.CreateResponse(w, Response{
		Message: "internal error",
		Code:    http.StatusInternalServerError,
		Error:   "internal error",
	})
}

func kindStatus(k engine.Kind) int {
	switch k {
	case engine.KindNotFound:
		return http.StatusNotFound
	case engine.KindValidation:
		return http.StatusBadRequest
	case engine.KindConflict:
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

// commandStatus maps a failed command or tick: unknown targets are 404,
// every other refusal is 400.
func commandStatus(c engine.Code) int {
	if c.Kind() == engine.KindNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func (h *Handler) outcome(w http.ResponseWriter, out engine.Outcome, err error, success int, failStatus func(engine.Code) int) {
	if err != nil {
		h.fail(w, err)
		return
	}
	if out.Success {
		h.ok(w, success, string(out.Message), out)
		return
	}
	h.CreateResponse(w, Response{
		Message: string(out.Message),
		Code:    failStatus(out.Message),
		Data:    out,
		Error:   string(out.Message),
	})
}

func matchID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func intParam(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	return n, err == nil
}

func decode(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(v)
}
