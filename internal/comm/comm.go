package comm

import "encoding/json"

// NATS subjects shared by the engine, socket and bot services.
const (
	TopicCommand = "engine.command"
	TopicReply   = "engine.reply"
	TopicEvents  = "engine.events"
)

// command types carried in WSMessage.Type
const (
	TypeJoinMatch   = "join-match"
	TypeLeaveMatch  = "leave-match"
	TypePlace       = "place"
	TypeBuild       = "build"
	TypeEndTurn     = "end-turn"
	TypeAttack      = "attack"
	TypeCreateTrade = "create-trade"
	TypeAcceptTrade = "accept-trade"
	TypeCancelTrade = "cancel-trade"
	TypeGetSnapshot = "get-snapshot"
	TypeMatchEvent  = "match-event"
	TypeError       = "error"
)

type WSMessage struct {
	Type     string          `json:"type"` // e.g. "build", "accept-trade"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

// ResponseType names the reply to a command type.
func ResponseType(t string) string {
	return t + "-response"
}

// Response is the body of every HTTP answer and NATS reply.
type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

type JoinMatch struct {
	MatchID int64 `json:"match_id"`
}

// MoveCommand is the payload of place, build, end-turn and attack.
type MoveCommand struct {
	MatchID int64 `json:"match_id"`
	Seat    int   `json:"seat"`
	X       int   `json:"x"`
	Y       int   `json:"y"`
}

type CreateTradeCommand struct {
	MatchID int64  `json:"match_id"`
	From    *int   `json:"from"`
	To      *int   `json:"to"`
	Give    string `json:"give"`
	Get     string `json:"get"`
	TTLMs   *int64 `json:"ttlMs"`
}

// TradeCommand is the payload of accept-trade and cancel-trade.
type TradeCommand struct {
	MatchID int64 `json:"match_id"`
	OfferID int64 `json:"offer_id"`
	Seat    *int  `json:"seat"`
}

type SnapshotRequest struct {
	MatchID int64 `json:"match_id"`
}
