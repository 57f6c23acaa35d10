package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/avvvet/realm-services/internal/comm"
	"github.com/avvvet/realm-services/internal/enginesvc/engine"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const commandTimeout = 10 * time.Second

type publisher interface {
	Publish(subject string, data []byte) error
}

// Broker serves engine commands arriving over NATS and publishes committed
// match events for the socket and bot services.
type Broker struct {
	Conn   *nats.Conn
	pub    publisher
	Engine *engine.Engine
}

// NewBroker wires the connection only. Engine is set once the engine is
// built with this broker as its notifier.
func NewBroker(nc *nats.Conn) *Broker {
	return &Broker{Conn: nc, pub: nc}
}

// handles a command coming from the socket or bot service
func (b *Broker) handleMessage(msgNat *nats.Msg) {
	msg := &comm.WSMessage{}
	if err := json.Unmarshal(msgNat.Data, msg); err != nil {
		log.Errorf("Error nats message %s", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	rsp := b.Dispatch(ctx, msg)
	if err := b.reply(msgNat.Reply, msg, rsp); err != nil {
		log.Errorf("Error reply %s for socket %s: %s", msg.Type, msg.SocketId, err)
	}
}

// Dispatch runs one command against the engine and builds its reply.
func (b *Broker) Dispatch(ctx context.Context, msg *comm.WSMessage) comm.Response {
	switch msg.Type {
	case comm.TypePlace, comm.TypeBuild, comm.TypeAttack, comm.TypeEndTurn:
		var cmd comm.MoveCommand
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			return invalid(err)
		}
		out, err := b.move(ctx, msg.Type, cmd)
		return outcome(out, err, commandStatus)

	case comm.TypeCreateTrade:
		var cmd comm.CreateTradeCommand
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			return invalid(err)
		}
		offer, err := b.Engine.CreateTrade(ctx, cmd.MatchID, engine.CreateTradeRequest{
			From:  cmd.From,
			To:    cmd.To,
			Give:  cmd.Give,
			Get:   cmd.Get,
			TTLMs: cmd.TTLMs,
		})
		if err != nil {
			return failed(err)
		}
		return comm.Response{Message: "trade created", Code: http.StatusCreated, Data: offer}

	case comm.TypeAcceptTrade:
		var cmd comm.TradeCommand
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			return invalid(err)
		}
		out, err := b.Engine.AcceptTrade(ctx, cmd.MatchID, cmd.OfferID, cmd.Seat)
		return outcome(out, err, func(c engine.Code) int { return kindStatus(c.Kind()) })

	case comm.TypeCancelTrade:
		var cmd comm.TradeCommand
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			return invalid(err)
		}
		offer, err := b.Engine.CancelTrade(ctx, cmd.MatchID, cmd.OfferID, cmd.Seat)
		if err != nil {
			return failed(err)
		}
		return comm.Response{Message: string(offer.Status), Code: http.StatusOK, Data: offer}

	case comm.TypeGetSnapshot:
		var req comm.SnapshotRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			return invalid(err)
		}
		snap, err := b.Engine.Snapshot(ctx, req.MatchID)
		if err != nil {
			return failed(err)
		}
		return comm.Response{Message: "snapshot", Code: http.StatusOK, Data: snap}
	}

	log.Errorf("Unknown message %q", msg.Type)
	return comm.Response{
		Message: "unknown message",
		Code:    http.StatusBadRequest,
		Error:   fmt.Sprintf("unknown message type %q", msg.Type),
	}
}

func (b *Broker) move(ctx context.Context, typ string, cmd comm.MoveCommand) (engine.Outcome, error) {
	switch typ {
	case comm.TypePlace:
		return b.Engine.Place(ctx, cmd.MatchID, cmd.Seat, cmd.X, cmd.Y)
	case comm.TypeBuild:
		return b.Engine.Build(ctx, cmd.MatchID, cmd.Seat, cmd.X, cmd.Y)
	case comm.TypeAttack:
		return b.Engine.Attack(ctx, cmd.MatchID, cmd.Seat, cmd.X, cmd.Y)
	}
	return b.Engine.EndTurn(ctx, cmd.MatchID, cmd.Seat)
}

// reply answers on the request inbox when there is one, otherwise on the
// shared reply subject keyed by socket id.
func (b *Broker) reply(inbox string, msg *comm.WSMessage, rsp comm.Response) error {
	data, err := json.Marshal(rsp)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(&comm.WSMessage{
		Type:     comm.ResponseType(msg.Type),
		Data:     data,
		SocketId: msg.SocketId,
	})
	if err != nil {
		return err
	}

	topic := comm.TopicReply
	if inbox != "" {
		topic = inbox
	}
	return b.Publish(topic, payload)
}

// Notify publishes a committed match event on the events subject.
func (b *Broker) Notify(_ context.Context, ev engine.MatchEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Errorf("unable to marshal %s event for match %d: %s", ev.Type, ev.MatchID, err)
		return
	}

	payload, err := json.Marshal(&comm.WSMessage{Type: comm.TypeMatchEvent, Data: data})
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	b.Publish(comm.TopicEvents, payload)
}

// consume commands from the socket and bot services (Queue)
func (b *Broker) QueueSubscribeCommands(topic, queueGroup string) (*nats.Subscription, error) {
	sub, err := b.Conn.QueueSubscribe(topic, queueGroup, b.handleMessage)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.pub.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

func outcome(out engine.Outcome, err error, failStatus func(engine.Code) int) comm.Response {
	if err != nil {
		return failed(err)
	}
	if out.Success {
		return comm.Response{Message: string(out.Message), Code: http.StatusAccepted, Data: out}
	}
	return comm.Response{
		Message: string(out.Message),
		Code:    failStatus(out.Message),
		Data:    out,
		Error:   string(out.Message),
	}
}

func failed(err error) comm.Response {
	if f, ok := engine.AsFailure(err); ok {
		return comm.Response{Message: string(f.Code), Code: kindStatus(f.Kind()), Error: f.Error()}
	}
	log.Errorf("engine error: %s", err)
	return comm.Response{Message: "internal error", Code: http.StatusInternalServerError, Error: "internal error"}
}

func invalid(err error) comm.Response {
	return comm.Response{Message: "invalid request", Code: http.StatusBadRequest, Error: err.Error()}
}

func kindStatus(k engine.Kind) int {
	switch k {
	case engine.KindNotFound:
		return http.StatusNotFound
	case engine.KindConflict:
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

func commandStatus(c engine.Code) int {
	if c.Kind() == engine.KindNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}
