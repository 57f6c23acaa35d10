package main

import (
	"os"
	"os/signal"
	"time"

	config "github.com/avvvet/realm-services/configs"
	"github.com/avvvet/realm-services/internal/botsvc/bot"
	"github.com/avvvet/realm-services/internal/comm"
	natscli "github.com/avvvet/realm-services/internal/nats"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "bot"

var instanceId string

func init() {
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId[:8])
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	log.Printf("Starting Bot Service...")

	// Connect to NATS
	nc, err := natscli.Connect(SERVICE_NAME + "_service_" + instanceId)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer nc.Conn.Close()
	log.Infof("NATS connected at %s", nc.Url)

	b := bot.New(nc.Conn, 5*time.Second)

	// one bot instance per queue group, so a seat is never played twice
	sub, err := nc.Conn.QueueSubscribe(comm.TopicEvents, SERVICE_NAME, b.HandleEvent)
	if err != nil {
		log.Fatalf("Failed to subscribe to %s: %v", comm.TopicEvents, err)
	}

	log.Printf("Bot Service fully operational!")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	sub.Unsubscribe()
	log.Infof("%s service stopped", SERVICE_NAME)
}
