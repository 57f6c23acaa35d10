package ws

import (
	"encoding/json"
	"sync"

	"github.com/avvvet/realm-services/internal/comm"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

type Publisher interface {
	Publish(topic string, payload []byte) error
}

// client serializes writes; a websocket allows one concurrent writer.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

type Ws struct {
	connMap sync.Map // socketId -> *client
	roomMap sync.Map // socketId -> match id
	Broker  Publisher
}

func NewWs() *Ws {
	return &Ws{}
}

// commands the engine service understands
var engineCommands = map[string]bool{
	comm.TypePlace:       true,
	comm.TypeBuild:       true,
	comm.TypeEndTurn:     true,
	comm.TypeAttack:      true,
	comm.TypeCreateTrade: true,
	comm.TypeAcceptTrade: true,
	comm.TypeCancelTrade: true,
	comm.TypeGetSnapshot: true,
}

// handle socket message from web clients
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch {
	case message.Type == comm.TypeJoinMatch:
		s.handleJoin(socketId, message)
	case message.Type == comm.TypeLeaveMatch:
		s.roomMap.Delete(socketId)
		s.reply(socketId, message.Type, comm.Response{Message: "left", Code: 200})
	case engineCommands[message.Type]:
		s.forward(socketId, message)
	default:
		log.Warnf("unknown event received: %s", message.Type)
		s.SendError(socketId, "unknown message type "+message.Type)
	}
}

func (s *Ws) handleJoin(socketId string, msg *comm.WSMessage) {
	var payload comm.JoinMatch
	if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.MatchID <= 0 {
		log.Errorf("Error: invalid join-match payload from socket %s", socketId)
		s.SendError(socketId, "join-match needs a match_id")
		return
	}

	s.StoreRoom(socketId, payload.MatchID)
	log.Infof("socket %s joined match %d", socketId, payload.MatchID)
	s.reply(socketId, msg.Type, comm.Response{Message: "joined", Code: 200, Data: payload})
}

// forward stamps the socket id on a command and hands it to the engine service.
func (s *Ws) forward(socketId string, msg *comm.WSMessage) {
	msg.SocketId = socketId

	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Failed to marshal WSMessage for NATS: %v", err)
		return
	}

	if err := s.Broker.Publish(comm.TopicCommand, bytes); err != nil {
		log.Errorf("Failed to publish to NATS topic %s: %v", comm.TopicCommand, err)
		s.SendError(socketId, "engine unavailable")
		return
	}

	log.Debugf("forwarded %s from socket %s", msg.Type, socketId)
}

func (s *Ws) reply(socketId, typ string, rsp comm.Response) {
	data, err := json.Marshal(rsp)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}
	s.Send(socketId, &comm.WSMessage{Type: comm.ResponseType(typ), Data: data, SocketId: socketId})
}

func (s *Ws) SendError(socketId, errorMsg string) {
	s.Send(socketId, map[string]interface{}{
		"type":  comm.TypeError,
		"error": errorMsg,
	})
}

// Send writes v as JSON to the socket. It reports false when the socket is gone.
func (s *Ws) Send(socketId string, v interface{}) bool {
	c, ok := s.connMap.Load(socketId)
	if !ok {
		return false
	}

	cl := c.(*client)
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if err := cl.conn.WriteJSON(v); err != nil {
		log.Errorf("write to socket %s: %v", socketId, err)
		return false
	}
	return true
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, &client{conn: conn})
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	c, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return c.(*client).conn, true
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
	s.roomMap.Delete(socketId)
}

func (s *Ws) StoreRoom(socketId string, matchID int64) {
	s.roomMap.Store(socketId, matchID)
}

func (s *Ws) GetRoom(socketId string) (int64, bool) {
	room, ok := s.roomMap.Load(socketId)
	if !ok {
		return 0, false
	}
	return room.(int64), true
}

// GetRoomSockets lists the sockets watching a match.
func (s *Ws) GetRoomSockets(matchID int64) []string {
	var sockets []string

	s.roomMap.Range(func(key, value interface{}) bool {
		if value.(int64) == matchID {
			sockets = append(sockets, key.(string))
		}
		return true // continue iterating
	})

	return sockets
}
