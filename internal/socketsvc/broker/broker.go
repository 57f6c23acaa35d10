package broker

import (
	"encoding/json"
	"strings"

	"github.com/avvvet/realm-services/internal/comm"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

type Broker struct {
	Conn           *nats.Conn
	SendMessage    func(socketId string, v interface{}) bool
	GetRoomSockets func(matchID int64) []string
}

func NewBroker(conn *nats.Conn, fncSend func(string, interface{}) bool, fncGetRoomSockets func(int64) []string) *Broker {
	return &Broker{
		Conn:           conn,
		SendMessage:    fncSend,
		GetRoomSockets: fncGetRoomSockets,
	}
}

// consume replies and events from the engine service
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// publish message to the engine service
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

// handleMessages receives a message from the engine service
func (b *Broker) handleMessages(msgNats *nats.Msg) {
	message := &comm.WSMessage{}
	if err := json.Unmarshal(msgNats.Data, message); err != nil {
		log.Errorf("Error %s", err)
		return
	}

	switch {
	case message.Type == comm.TypeMatchEvent:
		b.broadcast(message)
	case strings.HasSuffix(message.Type, "-response"):
		b.sendMessage(message)
	default:
		log.Errorf("Unknown message %s", message.Type)
	}
}

// send a reply to the socket that issued the command
func (b *Broker) sendMessage(m *comm.WSMessage) {
	if m.SocketId == "" {
		return
	}
	if !b.SendMessage(m.SocketId, m) {
		log.Debugf("socket %s gone, dropping %s", m.SocketId, m.Type)
	}
}

// broadcast fans an event out to every socket in the match room
func (b *Broker) broadcast(m *comm.WSMessage) {
	var ev struct {
		MatchID int64 `json:"match_id"`
	}
	if err := json.Unmarshal(m.Data, &ev); err != nil {
		log.Errorf("Error match event %s", err)
		return
	}

	for _, socketId := range b.GetRoomSockets(ev.MatchID) {
		b.SendMessage(socketId, m)
	}
}
