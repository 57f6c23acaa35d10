package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avvvet/realm-services/internal/enginesvc/engine"
	"github.com/avvvet/realm-services/internal/enginesvc/store"
	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiResponse struct {
	Message string          `json:"message"`
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func setupRouter(t *testing.T, secret string) *chi.Mux {
	t.Helper()
	h := NewHandler(engine.New(store.NewMemoryStore()), "8080")
	h.InitAuth(secret)

	r := chi.NewRouter()
	h.SetRoutes(r)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) (int, apiResponse) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var rsp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rsp), w.Body.String())
	return w.Code, rsp
}

func createMatch(t *testing.T, r http.Handler) int64 {
	t.Helper()
	code, rsp := do(t, r, http.MethodPost, "/v1/matches", `{"players":2,"width":4,"height":4,"bots":[false,false]}`)
	require.Equal(t, http.StatusCreated, code, rsp.Error)

	var m struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rsp.Data, &m))
	assert.Equal(t, "PENDING", m.Status)
	return m.ID
}

func TestHealth(t *testing.T) {
	r := setupRouter(t, "")
	code, rsp := do(t, r, http.MethodGet, "/v1/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, rsp.Message, "8080")
}

func TestMatchLifecycleRoutes(t *testing.T) {
	r := setupRouter(t, "")
	id := createMatch(t, r)
	base := fmt.Sprintf("/v1/matches/%d", id)

	code, _ := do(t, r, http.MethodPost, base+"/start", "")
	assert.Equal(t, http.StatusAccepted, code)

	code, rsp := do(t, r, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, code)
	var m struct {
		Status      string `json:"status"`
		CurrentTurn *int   `json:"current_turn"`
	}
	require.NoError(t, json.Unmarshal(rsp.Data, &m))
	assert.Equal(t, "RUNNING", m.Status)
	assert.Equal(t, 1, *m.CurrentTurn)

	code, rsp = do(t, r, http.MethodGet, "/v1/matches?status=RUNNING", "")
	require.Equal(t, http.StatusOK, code)
	var list []json.RawMessage
	require.NoError(t, json.Unmarshal(rsp.Data, &list))
	assert.Len(t, list, 1)

	code, _ = do(t, r, http.MethodPost, base+"/stop", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestCreateMatchValidation(t *testing.T) {
	r := setupRouter(t, "")

	code, rsp := do(t, r, http.MethodPost, "/v1/matches", `{"players":1,"width":4,"height":4,"bots":[false]}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION", rsp.Message)

	code, _ = do(t, r, http.MethodPost, "/v1/matches", `{not json`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestNotFoundRoutes(t *testing.T) {
	r := setupRouter(t, "")

	tests := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/v1/matches/99", ""},
		{http.MethodPost, "/v1/matches/99/start", ""},
		{http.MethodGet, "/v1/matches/99/board", ""},
		{http.MethodGet, "/v1/matches/99/players/1", ""},
		{http.MethodPost, "/v1/matches/99/actions/build", `{"seat":1,"x":0,"y":0}`},
		{http.MethodPost, "/v1/matches/99/resources/resource-gain", ""},
		{http.MethodPost, "/v1/matches/99/trades/1/accept", `{"toSeat":2}`},
		{http.MethodPost, "/v1/matches/99/trades/1/cancel", ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			code, _ := do(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusNotFound, code)
		})
	}
}

func TestActionRoutes(t *testing.T) {
	r := setupRouter(t, "")
	id := createMatch(t, r)
	base := fmt.Sprintf("/v1/matches/%d", id)

	code, rsp := do(t, r, http.MethodPost, base+"/actions/place", `{"seat":2,"x":0,"y":0}`)
	require.Equal(t, http.StatusAccepted, code, rsp.Error)
	assert.Equal(t, "HOUSE_PLACED", rsp.Message)

	do(t, r, http.MethodPost, base+"/start", "")

	code, rsp = do(t, r, http.MethodPost, base+"/actions/end-turn", `{"seat":2}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "NOT_YOUR_TURN", rsp.Message)
	var out engine.Outcome
	require.NoError(t, json.Unmarshal(rsp.Data, &out))
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.TraceID)

	code, rsp = do(t, r, http.MethodPost, base+"/actions/attack", `{"seat":1,"x":0,"y":0}`)
	assert.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, "ATTACK_SUCCESS", rsp.Message)

	code, _ = do(t, r, http.MethodPost, base+"/actions/build", `{"seat":2}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, rsp = do(t, r, http.MethodGet, base+"/actions", "")
	require.Equal(t, http.StatusOK, code)
	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal(rsp.Data, &entries))
	assert.Len(t, entries, 2)

	code, rsp = do(t, r, http.MethodGet, base+"/board/cells/0/0", "")
	require.Equal(t, http.StatusOK, code)
	var cell struct {
		Owner int `json:"owner"`
		Hits  int `json:"hits"`
	}
	require.NoError(t, json.Unmarshal(rsp.Data, &cell))
	assert.Equal(t, 2, cell.Owner)
	assert.Equal(t, 1, cell.Hits)

	code, _ = do(t, r, http.MethodGet, base+"/board/cells/9/9", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, rsp = do(t, r, http.MethodPost, base+"/resources/lightning-recharge", "")
	assert.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, "NO_RECHARGE_SOME_HAVE_LIGHTNING", rsp.Message)
}

func TestTradeRoutes(t *testing.T) {
	r := setupRouter(t, "")
	id := createMatch(t, r)
	base := fmt.Sprintf("/v1/matches/%d/trades", id)

	code, rsp := do(t, r, http.MethodPost, base, `{"from":1,"to":2,"give":"wood","get":"glass"}`)
	require.Equal(t, http.StatusCreated, code, rsp.Error)
	var offer struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rsp.Data, &offer))
	assert.Equal(t, "OPEN", offer.Status)

	code, rsp = do(t, r, http.MethodPost, base, `{"from":1,"give":"wood","get":"glass"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_REQUEST", rsp.Message)

	code, rsp = do(t, r, http.MethodPost, fmt.Sprintf("%s/%d/accept", base, offer.ID), `{"toSeat":1}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "NOT_TARGET_OF_OFFER", rsp.Message)

	code, _ = do(t, r, http.MethodPost, fmt.Sprintf("%s/%d/cancel?bySeat=2", base, offer.ID), "")
	assert.Equal(t, http.StatusNotFound, code)

	code, rsp = do(t, r, http.MethodPost, fmt.Sprintf("%s/%d/accept", base, offer.ID), `{"toSeat":2}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "TRADE_ACCEPTED", rsp.Message)

	code, rsp = do(t, r, http.MethodPost, fmt.Sprintf("%s/%d/cancel?bySeat=1", base, offer.ID), "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ACCEPTED", rsp.Message)

	code, rsp = do(t, r, http.MethodGet, base+"?status=accepted", "")
	require.Equal(t, http.StatusOK, code)
	var list []json.RawMessage
	require.NoError(t, json.Unmarshal(rsp.Data, &list))
	assert.Len(t, list, 1)

	code, _ = do(t, r, http.MethodGet, base+"?status=bogus", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAdviceRoute(t *testing.T) {
	r := setupRouter(t, "")
	id := createMatch(t, r)
	base := fmt.Sprintf("/v1/matches/%d/players", id)

	code, rsp := do(t, r, http.MethodGet, base+"/1/advice", "")
	require.Equal(t, http.StatusOK, code)
	var advice struct {
		Action string `json:"action"`
		X      *int   `json:"x"`
	}
	require.NoError(t, json.Unmarshal(rsp.Data, &advice))
	assert.Equal(t, "PLACE_STARTING_HOUSE", advice.Action)
	assert.NotNil(t, advice.X)

	code, _ = do(t, r, http.MethodGet, base+"/7/advice", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestMutatingRoutesNeedToken(t *testing.T) {
	r := setupRouter(t, "secret")

	req := httptest.NewRequest(http.MethodPost, "/v1/matches", strings.NewReader(`{"players":2,"width":2,"height":2,"bots":[false,false]}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// reads stay public
	code, _ := do(t, r, http.MethodGet, "/v1/matches", "")
	assert.Equal(t, http.StatusOK, code)
}
